package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kalasetu/artist-tracker/constants"
	"github.com/kalasetu/artist-tracker/internal/common"
	"github.com/kalasetu/artist-tracker/internal/entity"
	"github.com/kalasetu/artist-tracker/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(common.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	for _, name := range []string{"Ravi Shankar", "Bismillah Khan"} {
		a := entity.Artist{
			OriginalFilename: "doc.pdf",
			ExtractionStatus: constants.ExtractionCompleted,
			CreatedBy:        "user-1",
		}
		require.NoError(t, a.SetProfile(entity.ArtistProfile{
			ArtistName: name,
			Summary:    entity.Str("Summary for " + name),
		}))
		require.NoError(t, s.CreateArtist(ctx, &a))
	}
	return s
}

func TestExportArtistsXLSX(t *testing.T) {
	s := seedStore(t)
	svc := NewService(s, nil)

	b, err := svc.ExportArtistsXLSX(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, b)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Artists")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 records

	assert.Equal(t, "Artist Name", rows[0][0])
	names := []string{rows[1][0], rows[2][0]}
	assert.Contains(t, names, "Ravi Shankar")
	assert.Contains(t, names, "Bismillah Khan")
}

func TestExportArtistsXLSXWithSearch(t *testing.T) {
	s := seedStore(t)
	svc := NewService(s, nil)

	b, err := svc.ExportArtistsXLSX(context.Background(), "shankar")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Artists")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ravi Shankar", rows[1][0])
}
