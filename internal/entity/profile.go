package entity

import (
	"encoding/json"
	"strings"
)

// ArtistProfile is the structured document extracted from an uploaded file.
// Every field except ArtistName may be null; the persistence layer guarantees
// ArtistName is never empty.
type ArtistProfile struct {
	ArtistName           string          `json:"artist_name"`
	GuruName             *string         `json:"guru_name"`
	GharanaDetails       *GharanaDetails `json:"gharana_details"`
	Biography            *Biography      `json:"biography"`
	Achievements         []Achievement   `json:"achievements"`
	ContactDetails       *ContactDetails `json:"contact_details"`
	Summary              *string         `json:"summary"`
	ExtractionConfidence *string         `json:"extraction_confidence"`
	AdditionalNotes      *string         `json:"additional_notes"`
}

// GharanaDetails describes the artist's lineage/school of style.
type GharanaDetails struct {
	GharanaName *string `json:"gharana_name"`
	Style       *string `json:"style"`
	Tradition   *string `json:"tradition"`
}

type Biography struct {
	EarlyLife        *string `json:"early_life"`
	Background       *string `json:"background"`
	Education        *string `json:"education"`
	CareerHighlights *string `json:"career_highlights"`
}

type Achievement struct {
	Type    *string `json:"type"`
	Title   *string `json:"title"`
	Year    *string `json:"year"`
	Details *string `json:"details"`
}

type ContactDetails struct {
	SocialMedia *SocialMedia `json:"social_media"`
	ContactInfo *ContactInfo `json:"contact_info"`
	Address     *Address     `json:"address"`
}

type SocialMedia struct {
	Instagram *string `json:"instagram"`
	Facebook  *string `json:"facebook"`
	Twitter   *string `json:"twitter"`
	YouTube   *string `json:"youtube"`
	LinkedIn  *string `json:"linkedin"`
	Spotify   *string `json:"spotify"`
	TikTok    *string `json:"tiktok"`
	Other     *string `json:"other"`
}

type ContactInfo struct {
	PhoneNumbers []string `json:"phone_numbers"`
	Emails       []string `json:"emails"`
	Website      *string  `json:"website"`
	Phone        *string  `json:"phone"`
	Email        *string  `json:"email"`
}

type Address struct {
	FullAddress *string `json:"full_address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Country     *string `json:"country"`
}

// MinimalProfile returns the smallest valid profile for a guaranteed name.
// Used when a stored profile cannot be decoded and a baseline is needed.
func MinimalProfile(artistName string) ArtistProfile {
	summary := "Artist information for " + artistName
	return ArtistProfile{
		ArtistName: artistName,
		Summary:    &summary,
	}
}

// GuaranteeName forces the artist name onto the profile when the extracted
// value is missing or blank.
func (p *ArtistProfile) GuaranteeName(name string) {
	if strings.TrimSpace(p.ArtistName) == "" {
		p.ArtistName = name
	}
}

// GharanaName returns the denormalized gharana name, or "".
func (p *ArtistProfile) GharanaNameOrEmpty() string {
	if p.GharanaDetails == nil || p.GharanaDetails.GharanaName == nil {
		return ""
	}
	return *p.GharanaDetails.GharanaName
}

// GuruNameOrEmpty returns the guru name, or "".
func (p *ArtistProfile) GuruNameOrEmpty() string {
	if p.GuruName == nil {
		return ""
	}
	return *p.GuruName
}

// MarshalDoc serializes the profile to its stored JSON form.
func (p *ArtistProfile) MarshalDoc() (json.RawMessage, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Str returns a pointer to s, for building profiles in code and tests.
func Str(s string) *string { return &s }
