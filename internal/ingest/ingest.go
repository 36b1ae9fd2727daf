package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kalasetu/artist-tracker/internal/extract"
	"github.com/kalasetu/artist-tracker/internal/metrics"
	"github.com/kalasetu/artist-tracker/internal/pipeline"
	"github.com/kalasetu/artist-tracker/internal/store"
)

// Ingestor turns watched files into artist records by copying them into the
// upload directory and running the extraction pipeline. Duplicate content is
// skipped by hash.
type Ingestor struct {
	Pipeline  *pipeline.Processor
	Artists   store.ArtistRepository
	UploadDir string
	// UserID is recorded as created_by on ingested records.
	UserID string
	Logger *slog.Logger
}

func NewIngestor(p *pipeline.Processor, artists store.ArtistRepository, uploadDir, userID string, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if userID == "" {
		userID = "ingest"
	}
	return &Ingestor{
		Pipeline:  p,
		Artists:   artists,
		UploadDir: uploadDir,
		UserID:    userID,
		Logger:    logger,
	}
}

// IngestFile satisfies async.FileHandler.
func (in *Ingestor) IngestFile(ctx context.Context, path string) error {
	if IsHidden(path) {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		metrics.IngestedFilesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("read watched file: %w", err)
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	exists, err := in.Artists.ArtistExistsByHash(ctx, hash)
	if err != nil {
		return err
	}
	if exists {
		in.Logger.Info("ingest.skip_duplicate", "path", path, "hash", hash[:12])
		return nil
	}

	originalName := filepath.Base(path)
	saved, err := extract.SaveUpload(in.UploadDir, originalName, content)
	if err != nil {
		metrics.IngestedFilesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("stage watched file: %w", err)
	}

	_, _, err = in.Pipeline.Process(ctx, pipeline.Input{
		StoragePath:      saved.Path,
		OriginalFilename: originalName,
		SavedFilename:    saved.SavedFilename,
		FileSize:         saved.Size,
		ContentHash:      saved.ContentHash,
		CreatedBy:        in.UserID,
	})
	if err != nil {
		metrics.IngestedFilesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		_ = extract.Cleanup(saved.Path)
		return err
	}

	metrics.IngestedFilesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	in.Logger.Info("ingest.ok", "path", path, "saved", saved.SavedFilename)
	return nil
}
