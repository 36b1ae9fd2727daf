package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kalasetu/artist-tracker/constants"
	"github.com/kalasetu/artist-tracker/internal/common"
	"github.com/kalasetu/artist-tracker/internal/entity"
)

// OCROutcome carries the text-extraction stage result onto a job row.
type OCROutcome struct {
	Method       string
	Confidence   float32
	TextLength   int
	ErrorMessage string
}

// JobRepository is the interface the pipeline depends on for audit rows.
type JobRepository interface {
	StartJob(ctx context.Context, filename, storagePath string, format constants.Format) (*entity.ExtractJob, error)
	FinishOCR(ctx context.Context, jobID string, out OCROutcome) error
	FinishParse(ctx context.Context, jobID, artistID string, usedFallback bool) error
	FailJob(ctx context.Context, jobID, errMsg string) error
	GetJobByID(ctx context.Context, id string) (*entity.ExtractJob, error)
	ListJobs(ctx context.Context, p ListParams) ([]entity.ExtractJob, int64, error)
	PruneStaleJobs(ctx context.Context, olderThan time.Duration) (int64, error)
}

func (s *Store) StartJob(ctx context.Context, filename, storagePath string, format constants.Format) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		Filename:    filename,
		StoragePath: storagePath,
		Format:      format,
		Status:      constants.JobStatusRunning,
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, common.NewAppError("DB_ERROR", "start job", err)
	}
	return job, nil
}

func (s *Store) FinishOCR(ctx context.Context, jobID string, out OCROutcome) error {
	updates := map[string]any{
		"ocr_method":     out.Method,
		"ocr_confidence": out.Confidence,
		"text_length":    out.TextLength,
	}
	if out.ErrorMessage != "" {
		now := time.Now().UTC()
		updates["status"] = constants.JobStatusFailed
		updates["error_message"] = out.ErrorMessage
		updates["finished_at"] = &now
	} else {
		updates["status"] = constants.JobStatusOCROK
	}
	return s.updateJob(ctx, jobID, updates)
}

func (s *Store) FinishParse(ctx context.Context, jobID, artistID string, usedFallback bool) error {
	now := time.Now().UTC()
	return s.updateJob(ctx, jobID, map[string]any{
		"status":        constants.JobStatusLLMOK,
		"artist_id":     artistID,
		"used_fallback": usedFallback,
		"finished_at":   &now,
	})
}

func (s *Store) FailJob(ctx context.Context, jobID, errMsg string) error {
	now := time.Now().UTC()
	return s.updateJob(ctx, jobID, map[string]any{
		"status":        constants.JobStatusFailed,
		"error_message": errMsg,
		"finished_at":   &now,
	})
}

func (s *Store) GetJobByID(ctx context.Context, id string) (*entity.ExtractJob, error) {
	var job entity.ExtractJob
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewAppError("JOB_NOT_FOUND", "extract job not found", common.ErrNotFound)
		}
		return nil, common.NewAppError("DB_ERROR", "get job", err)
	}
	return &job, nil
}

// ListJobs returns extract jobs newest-first, optionally filtered by
// filename substring.
func (s *Store) ListJobs(ctx context.Context, p ListParams) ([]entity.ExtractJob, int64, error) {
	p.Normalize()
	q := s.db.WithContext(ctx).Model(&entity.ExtractJob{})
	if p.Search != "" {
		q = q.Where("filename LIKE ?", "%"+p.Search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "count jobs", err)
	}
	var jobs []entity.ExtractJob
	err := q.Order("started_at DESC").Limit(p.Limit).Offset(p.Offset()).Find(&jobs).Error
	if err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "list jobs", err)
	}
	return jobs, total, nil
}

// PruneStaleJobs fails RUNNING jobs older than the cutoff. Used by the
// maintenance scheduler: a job stuck in RUNNING means the process died
// mid-pipeline.
func (s *Store) PruneStaleJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&entity.ExtractJob{}).
		Where("status = ? AND started_at < ?", constants.JobStatusRunning, cutoff).
		Updates(map[string]any{
			"status":        constants.JobStatusFailed,
			"error_message": "stale job pruned by maintenance",
			"finished_at":   &now,
		})
	if res.Error != nil {
		return 0, common.NewAppError("DB_ERROR", "prune jobs", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) updateJob(ctx context.Context, jobID string, updates map[string]any) error {
	err := s.db.WithContext(ctx).Model(&entity.ExtractJob{}).
		Where("id = ?", jobID).Updates(updates).Error
	if err != nil {
		return common.NewAppError("DB_ERROR", "update job", err)
	}
	return nil
}
