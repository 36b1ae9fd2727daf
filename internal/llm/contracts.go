package llm

import (
	"context"
	"errors"

	"github.com/kalasetu/artist-tracker/internal/entity"
)

// ErrUnusableResponse marks model output that arrived but could not be
// parsed or validated into a profile. Callers with an existing profile keep
// it instead of failing the operation.
var ErrUnusableResponse = errors.New("unusable model response")

type ExtractRequest struct {
	// ArtistName is derived from the filename and is authoritative: it is
	// stamped onto the result regardless of what the model returns.
	ArtistName   string
	DocumentText string
	FilenameHint string
}

type EnhanceRequest struct {
	ArtistName      string
	ExistingProfile []byte // current profile document as JSON
	DocumentText    string
}

// ProfileExtractor is the interface the pipeline depends on.
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, req ExtractRequest) (entity.ArtistProfile, []byte /*rawJSON*/, error)
	EnhanceProfile(ctx context.Context, req EnhanceRequest) (entity.ArtistProfile, []byte, error)
}
