package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	mu    sync.Mutex
	paths []string
}

func (h *countingHandler) IngestFile(_ context.Context, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, path)
	return nil
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.paths)
}

func TestQueueProcessesAllJobs(t *testing.T) {
	h := &countingHandler{}
	q := NewIngestQueue(h, nil, WithWorkers(2), WithQueueSize(16))

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: "file", SubmittedAt: time.Now()}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, 10, h.count())
}

func TestQueueShutdownIsIdempotent(t *testing.T) {
	h := &countingHandler{}
	q := NewIngestQueue(h, nil, WithWorkers(1))

	ctx := context.Background()
	q.Shutdown(ctx)
	q.Shutdown(ctx)

	// enqueue after shutdown is a logged no-op
	assert.NoError(t, q.Enqueue(ctx, Job{Path: "late"}))
	assert.Equal(t, 0, h.count())
}
