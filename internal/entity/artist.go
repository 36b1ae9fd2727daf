package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kalasetu/artist-tracker/constants"
)

// Artist is the persisted extraction record: uploaded-file metadata, raw
// extracted text, and the structured profile document. ArtistName, GuruName
// and GharanaName are denormalized from the profile for indexed search.
type Artist struct {
	ID          string `gorm:"primaryKey" json:"id"`
	ArtistName  string `gorm:"index" json:"artist_name"`
	GuruName    string `gorm:"index" json:"guru_name"`
	GharanaName string `gorm:"index" json:"gharana_name"`

	Profile json.RawMessage `gorm:"type:text" json:"artist_info"`

	OriginalFilename string `json:"original_filename"`
	SavedFilename    string `json:"saved_filename"`
	StoragePath      string `json:"-"`
	FileExt          string `json:"file_ext"`
	FileSize         int64  `json:"file_size"`
	ContentHash      string `json:"content_hash"`

	ExtractedText     string                      `gorm:"type:text" json:"extracted_text"`
	ExtractionStatus  constants.ExtractionStatus  `json:"extraction_status"`
	EnhancementStatus constants.EnhancementStatus `json:"enhancement_status,omitempty"`
	EnhancedAt        *time.Time                  `json:"enhanced_at,omitempty"`

	CreatedBy string    `gorm:"index" json:"created_by"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Artist) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// SetProfile stores the document and refreshes the denormalized search columns.
func (a *Artist) SetProfile(p ArtistProfile) error {
	doc, err := p.MarshalDoc()
	if err != nil {
		return err
	}
	a.Profile = doc
	a.ArtistName = p.ArtistName
	a.GuruName = p.GuruNameOrEmpty()
	a.GharanaName = p.GharanaNameOrEmpty()
	return nil
}

// UnmarshalProfile decodes the stored document.
func (a *Artist) UnmarshalProfile() (ArtistProfile, error) {
	var p ArtistProfile
	if len(a.Profile) == 0 {
		return p, nil
	}
	err := json.Unmarshal(a.Profile, &p)
	return p, err
}
