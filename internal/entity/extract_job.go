package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kalasetu/artist-tracker/constants"
)

// ExtractJob is the audit row for one pipeline run. Failures are recorded
// here rather than silently discarded, so degraded extractions can be
// reviewed after the fact.
type ExtractJob struct {
	ID       string `gorm:"primaryKey" json:"id"`
	ArtistID string `gorm:"index" json:"artist_id,omitempty"`

	Filename    string            `json:"filename"`
	StoragePath string            `json:"-"`
	Format      constants.Format  `json:"format"`
	Status      constants.JobStatus `gorm:"index" json:"status"`

	OCRMethod     string  `json:"ocr_method,omitempty"`
	OCRConfidence float32 `json:"ocr_confidence,omitempty"`
	TextLength    int     `json:"text_length,omitempty"`
	UsedFallback  bool    `json:"used_fallback"`
	ErrorMessage  string  `json:"error_message,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (j *ExtractJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.StartedAt.IsZero() {
		j.StartedAt = time.Now().UTC()
	}
	return nil
}
