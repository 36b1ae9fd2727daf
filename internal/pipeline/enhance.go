package pipeline

import (
	"context"
	"errors"

	"github.com/kalasetu/artist-tracker/constants"
	"github.com/kalasetu/artist-tracker/internal/entity"
	"github.com/kalasetu/artist-tracker/internal/llm"
	"github.com/kalasetu/artist-tracker/internal/metrics"
)

// Enhance asks the model to fill missing contact details and social media on
// an existing record. Existing non-null values always win over the model's
// output; the merge below enforces what the prompt only requests.
func (p *Processor) Enhance(ctx context.Context, artistID string) (*entity.Artist, error) {
	artist, err := p.Artists.GetArtistByID(ctx, artistID)
	if err != nil {
		return nil, err
	}

	existing, err := artist.UnmarshalProfile()
	if err != nil {
		p.Logger.Warn("pipeline.enhance.stored_profile_unreadable", "artist_id", artistID, "error", err)
		existing = entity.MinimalProfile(artist.ArtistName)
	}

	enhanced, _, err := p.Profiles.EnhanceProfile(ctx, llm.EnhanceRequest{
		ArtistName:      artist.ArtistName,
		ExistingProfile: artist.Profile,
		DocumentText:    artist.ExtractedText,
	})

	merged := existing
	switch {
	case err == nil:
		merged = mergeProfiles(existing, enhanced)
	case errors.Is(err, llm.ErrUnusableResponse):
		// the model answered with junk: keep what we have and mark enhanced
		p.Logger.Warn("pipeline.enhance.unusable_response", "artist_id", artistID, "error", err)
	default:
		metrics.EnhancementsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		p.Logger.Error("pipeline.enhance.failed", "artist_id", artistID, "error", err)
		return nil, err
	}
	merged.GuaranteeName(artist.ArtistName)

	if err := p.Artists.UpdateArtistProfile(ctx, artistID, merged, constants.EnhancementDone); err != nil {
		metrics.EnhancementsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.EnhancementsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	p.Logger.Info("pipeline.enhance.ok", "artist_id", artistID, "artist_name", artist.ArtistName)
	return p.Artists.GetArtistByID(ctx, artistID)
}

// mergeProfiles keeps every non-null value from old, letting new fill only
// the gaps.
func mergeProfiles(old, fresh entity.ArtistProfile) entity.ArtistProfile {
	out := fresh
	out.ArtistName = old.ArtistName

	out.GuruName = keepStr(old.GuruName, fresh.GuruName)
	out.Summary = keepStr(old.Summary, fresh.Summary)
	out.ExtractionConfidence = keepStr(old.ExtractionConfidence, fresh.ExtractionConfidence)
	if fresh.AdditionalNotes == nil {
		out.AdditionalNotes = old.AdditionalNotes
	}
	if len(old.Achievements) > 0 {
		out.Achievements = old.Achievements
	}

	out.GharanaDetails = mergeGharana(old.GharanaDetails, fresh.GharanaDetails)
	out.Biography = mergeBiography(old.Biography, fresh.Biography)
	out.ContactDetails = mergeContact(old.ContactDetails, fresh.ContactDetails)
	return out
}

func keepStr(old, fresh *string) *string {
	if old != nil && *old != "" {
		return old
	}
	return fresh
}

func mergeGharana(old, fresh *entity.GharanaDetails) *entity.GharanaDetails {
	if old == nil {
		return fresh
	}
	if fresh == nil {
		return old
	}
	return &entity.GharanaDetails{
		GharanaName: keepStr(old.GharanaName, fresh.GharanaName),
		Style:       keepStr(old.Style, fresh.Style),
		Tradition:   keepStr(old.Tradition, fresh.Tradition),
	}
}

func mergeBiography(old, fresh *entity.Biography) *entity.Biography {
	if old == nil {
		return fresh
	}
	if fresh == nil {
		return old
	}
	return &entity.Biography{
		EarlyLife:        keepStr(old.EarlyLife, fresh.EarlyLife),
		Background:       keepStr(old.Background, fresh.Background),
		Education:        keepStr(old.Education, fresh.Education),
		CareerHighlights: keepStr(old.CareerHighlights, fresh.CareerHighlights),
	}
}

func mergeContact(old, fresh *entity.ContactDetails) *entity.ContactDetails {
	if old == nil {
		return fresh
	}
	if fresh == nil {
		return old
	}
	out := &entity.ContactDetails{}

	switch {
	case old.SocialMedia == nil:
		out.SocialMedia = fresh.SocialMedia
	case fresh.SocialMedia == nil:
		out.SocialMedia = old.SocialMedia
	default:
		out.SocialMedia = &entity.SocialMedia{
			Instagram: keepStr(old.SocialMedia.Instagram, fresh.SocialMedia.Instagram),
			Facebook:  keepStr(old.SocialMedia.Facebook, fresh.SocialMedia.Facebook),
			Twitter:   keepStr(old.SocialMedia.Twitter, fresh.SocialMedia.Twitter),
			YouTube:   keepStr(old.SocialMedia.YouTube, fresh.SocialMedia.YouTube),
			LinkedIn:  keepStr(old.SocialMedia.LinkedIn, fresh.SocialMedia.LinkedIn),
			Spotify:   keepStr(old.SocialMedia.Spotify, fresh.SocialMedia.Spotify),
			TikTok:    keepStr(old.SocialMedia.TikTok, fresh.SocialMedia.TikTok),
			Other:     keepStr(old.SocialMedia.Other, fresh.SocialMedia.Other),
		}
	}

	switch {
	case old.ContactInfo == nil:
		out.ContactInfo = fresh.ContactInfo
	case fresh.ContactInfo == nil:
		out.ContactInfo = old.ContactInfo
	default:
		info := &entity.ContactInfo{
			Website: keepStr(old.ContactInfo.Website, fresh.ContactInfo.Website),
			Phone:   keepStr(old.ContactInfo.Phone, fresh.ContactInfo.Phone),
			Email:   keepStr(old.ContactInfo.Email, fresh.ContactInfo.Email),
		}
		info.PhoneNumbers = old.ContactInfo.PhoneNumbers
		if len(info.PhoneNumbers) == 0 {
			info.PhoneNumbers = fresh.ContactInfo.PhoneNumbers
		}
		info.Emails = old.ContactInfo.Emails
		if len(info.Emails) == 0 {
			info.Emails = fresh.ContactInfo.Emails
		}
		out.ContactInfo = info
	}

	switch {
	case old.Address == nil:
		out.Address = fresh.Address
	case fresh.Address == nil:
		out.Address = old.Address
	default:
		out.Address = &entity.Address{
			FullAddress: keepStr(old.Address.FullAddress, fresh.Address.FullAddress),
			City:        keepStr(old.Address.City, fresh.Address.City),
			State:       keepStr(old.Address.State, fresh.Address.State),
			Country:     keepStr(old.Address.Country, fresh.Address.Country),
		}
	}
	return out
}
