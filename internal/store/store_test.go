package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalasetu/artist-tracker/constants"
	"github.com/kalasetu/artist-tracker/internal/common"
	"github.com/kalasetu/artist-tracker/internal/entity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(common.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUserCreateAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := &entity.User{
		Username:     "meera",
		Email:        "meera@example.com",
		FullName:     "Meera Krishnan",
		PasswordHash: "x",
	}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "user", u.Role)

	byName, err := s.GetUserByUsernameOrEmail(ctx, "meera")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := s.GetUserByUsernameOrEmail(ctx, "meera@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	exists, err := s.UsernameExists(ctx, "meera")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.EmailExists(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.GetUserByID(ctx, "missing-id")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func seedArtist(t *testing.T, s *Store, name, guru, gharana string) *entity.Artist {
	t.Helper()
	a := &entity.Artist{
		OriginalFilename: name + ".pdf",
		ExtractionStatus: constants.ExtractionCompleted,
		CreatedBy:        "u1",
	}
	p := entity.ArtistProfile{ArtistName: name}
	if guru != "" {
		p.GuruName = entity.Str(guru)
	}
	if gharana != "" {
		p.GharanaDetails = &entity.GharanaDetails{GharanaName: entity.Str(gharana)}
	}
	require.NoError(t, a.SetProfile(p))
	require.NoError(t, s.CreateArtist(context.Background(), a))
	return a
}

func TestArtistSearchAndPagination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seedArtist(t, s, "Ravi Shankar", "Allauddin Khan", "Maihar")
	seedArtist(t, s, "Bismillah Khan", "", "Benares")
	for i := 0; i < 12; i++ {
		seedArtist(t, s, fmt.Sprintf("Artist %02d", i), "", "")
	}

	rows, total, err := s.ListArtists(ctx, ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(14), total)
	assert.Len(t, rows, 10)

	rows, total, err = s.ListArtists(ctx, ListParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(14), total)
	assert.Len(t, rows, 4)

	// search across artist, guru and gharana names, case-insensitive
	rows, total, err = s.ListArtists(ctx, ListParams{Page: 1, Limit: 10, Search: "shankar"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ravi Shankar", rows[0].ArtistName)

	_, total, err = s.ListArtists(ctx, ListParams{Page: 1, Limit: 10, Search: "allauddin"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = s.ListArtists(ctx, ListParams{Page: 1, Limit: 10, Search: "benares"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestArtistUpdateProfileRefreshesSearchColumns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := seedArtist(t, s, "Zakir Hussain", "", "")

	p, err := a.UnmarshalProfile()
	require.NoError(t, err)
	p.GuruName = entity.Str("Alla Rakha")
	p.GharanaDetails = &entity.GharanaDetails{GharanaName: entity.Str("Punjab")}

	require.NoError(t, s.UpdateArtistProfile(ctx, a.ID, p, constants.EnhancementDone))

	got, err := s.GetArtistByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alla Rakha", got.GuruName)
	assert.Equal(t, "Punjab", got.GharanaName)
	assert.Equal(t, constants.EnhancementDone, got.EnhancementStatus)
	require.NotNil(t, got.EnhancedAt)
}

func TestArtistDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := seedArtist(t, s, "To Delete", "", "")
	require.NoError(t, s.DeleteArtist(ctx, a.ID))

	err := s.DeleteArtist(ctx, a.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestJobLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.StartJob(ctx, "bio.pdf", "/tmp/bio.pdf", constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusRunning, job.Status)

	require.NoError(t, s.FinishOCR(ctx, job.ID, OCROutcome{Method: "pdf-text", Confidence: 0.9, TextLength: 1200}))
	got, err := s.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusOCROK, got.Status)
	assert.Equal(t, "pdf-text", got.OCRMethod)

	require.NoError(t, s.FinishParse(ctx, job.ID, "artist-1", true))
	got, err = s.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusLLMOK, got.Status)
	assert.True(t, got.UsedFallback)
	require.NotNil(t, got.FinishedAt)
}

func TestJobListFilterAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, f := range []string{"bio.pdf", "scan.jpg", "biography.docx"} {
		_, err := s.StartJob(ctx, f, "/tmp/"+f, constants.PDF)
		require.NoError(t, err)
	}

	jobs, total, err := s.ListJobs(ctx, ListParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, jobs, 2)

	jobs, total, err = s.ListJobs(ctx, ListParams{Search: "bio"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, j := range jobs {
		assert.Contains(t, j.Filename, "bio")
	}
}

func TestPruneStaleJobs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stale, err := s.StartJob(ctx, "stuck.pdf", "/tmp/stuck.pdf", constants.PDF)
	require.NoError(t, err)
	fresh, err := s.StartJob(ctx, "active.pdf", "/tmp/active.pdf", constants.PDF)
	require.NoError(t, err)

	old := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, s.DB().Model(&entity.ExtractJob{}).
		Where("id = ?", stale.ID).Update("started_at", old).Error)

	n, err := s.PruneStaleJobs(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.GetJobByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusFailed, got.Status)

	got, err = s.GetJobByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusRunning, got.Status)
}

func TestJobFailureRecorded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	job, err := s.StartJob(ctx, "scan.jpg", "/tmp/scan.jpg", constants.IMAGE)
	require.NoError(t, err)

	require.NoError(t, s.FailJob(ctx, job.ID, "tesseract: exit status 1"))
	got, err := s.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "tesseract")
}
