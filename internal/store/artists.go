package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kalasetu/artist-tracker/constants"
	"github.com/kalasetu/artist-tracker/internal/common"
	"github.com/kalasetu/artist-tracker/internal/entity"
)

// ListParams control pagination and search over artist records.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// Normalize clamps paging values into their allowed ranges.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int { return (p.Page - 1) * p.Limit }

// ArtistRepository is the interface the handlers and pipeline depend on.
type ArtistRepository interface {
	CreateArtist(ctx context.Context, a *entity.Artist) error
	GetArtistByID(ctx context.Context, id string) (*entity.Artist, error)
	ListArtists(ctx context.Context, p ListParams) ([]entity.Artist, int64, error)
	UpdateArtistProfile(ctx context.Context, id string, profile entity.ArtistProfile, status constants.EnhancementStatus) error
	DeleteArtist(ctx context.Context, id string) error
	ArtistExistsByHash(ctx context.Context, contentHash string) (bool, error)
}

func (s *Store) CreateArtist(ctx context.Context, a *entity.Artist) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return common.NewAppError("DB_ERROR", "create artist", err)
	}
	return nil
}

func (s *Store) GetArtistByID(ctx context.Context, id string) (*entity.Artist, error) {
	var a entity.Artist
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewAppError("ARTIST_NOT_FOUND", "artist not found", common.ErrNotFound)
		}
		return nil, common.NewAppError("DB_ERROR", "get artist", err)
	}
	return &a, nil
}

// ListArtists returns a page of records ordered newest-first, with the total
// count for pagination. Search matches artist, guru and gharana names
// case-insensitively.
func (s *Store) ListArtists(ctx context.Context, p ListParams) ([]entity.Artist, int64, error) {
	p.Normalize()

	q := s.db.WithContext(ctx).Model(&entity.Artist{})
	if search := strings.TrimSpace(p.Search); search != "" {
		pat := "%" + strings.ToLower(search) + "%"
		q = q.Where(
			"LOWER(artist_name) LIKE ? OR LOWER(guru_name) LIKE ? OR LOWER(gharana_name) LIKE ?",
			pat, pat, pat,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "count artists", err)
	}

	var rows []entity.Artist
	err := q.Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "list artists", err)
	}
	return rows, total, nil
}

// UpdateArtistProfile replaces the stored document, refreshes the search
// columns, and stamps the enhancement state when requested.
func (s *Store) UpdateArtistProfile(ctx context.Context, id string, profile entity.ArtistProfile, status constants.EnhancementStatus) error {
	a, err := s.GetArtistByID(ctx, id)
	if err != nil {
		return err
	}
	if err := a.SetProfile(profile); err != nil {
		return common.NewAppError("ENCODE_ERROR", "marshal profile", err)
	}
	updates := map[string]any{
		"profile":      a.Profile,
		"artist_name":  a.ArtistName,
		"guru_name":    a.GuruName,
		"gharana_name": a.GharanaName,
	}
	if status == constants.EnhancementDone {
		now := time.Now().UTC()
		updates["enhancement_status"] = status
		updates["enhanced_at"] = &now
	}
	err = s.db.WithContext(ctx).Model(&entity.Artist{}).
		Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return common.NewAppError("DB_ERROR", "update artist", err)
	}
	return nil
}

// ArtistExistsByHash reports whether a record with this content hash already
// exists. The ingest watcher uses it to skip duplicate files.
func (s *Store) ArtistExistsByHash(ctx context.Context, contentHash string) (bool, error) {
	if contentHash == "" {
		return false, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&entity.Artist{}).
		Where("content_hash = ?", contentHash).Count(&n).Error
	if err != nil {
		return false, common.NewAppError("DB_ERROR", "check content hash", err)
	}
	return n > 0, nil
}

func (s *Store) DeleteArtist(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&entity.Artist{}, "id = ?", id)
	if res.Error != nil {
		return common.NewAppError("DB_ERROR", "delete artist", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NewAppError("ARTIST_NOT_FOUND", "artist not found", common.ErrNotFound)
	}
	return nil
}
