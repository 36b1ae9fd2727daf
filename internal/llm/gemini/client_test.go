package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalasetu/artist-tracker/internal/llm"
)

func newFakeGemini(t *testing.T, modelText string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.NotEmpty(t, r.URL.Query().Get("key"))

		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]any{{"text": modelText}},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestExtractProfileForcesArtistName(t *testing.T) {
	srv := newFakeGemini(t, "```json\n{\"artist_name\": \"Someone Else\", \"summary\": \"A tabla maestro.\"}\n```")
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	profile, doc, err := c.ExtractProfile(context.Background(), llm.ExtractRequest{
		ArtistName:   "Zakir Hussain",
		DocumentText: "Zakir Hussain is a tabla maestro.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Zakir Hussain", profile.ArtistName)
	require.NotNil(t, profile.Summary)
	assert.Equal(t, "A tabla maestro.", *profile.Summary)
	assert.Contains(t, string(doc), "Zakir Hussain")
}

func TestExtractProfileRejectsGarbage(t *testing.T) {
	srv := newFakeGemini(t, "I am sorry, I cannot process this document.")
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	_, _, err := c.ExtractProfile(context.Background(), llm.ExtractRequest{ArtistName: "X Y"})
	assert.ErrorIs(t, err, llm.ErrUnusableResponse)
}

func TestEnhanceProfileUnusableOnBadType(t *testing.T) {
	srv := newFakeGemini(t, `{"artist_name": "Zakir Hussain", "guru_name": 12345}`)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	_, _, err := c.EnhanceProfile(context.Background(), llm.EnhanceRequest{
		ArtistName:      "Zakir Hussain",
		ExistingProfile: []byte(`{"artist_name":"Zakir Hussain"}`),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrUnusableResponse)
}

func TestExtractProfileUnavailableWithoutKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	c := NewClient(Config{}, nil)
	_, _, err := c.ExtractProfile(context.Background(), llm.ExtractRequest{ArtistName: "X Y"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEnhanceProfileRoundTrip(t *testing.T) {
	srv := newFakeGemini(t, `{"artist_name": "Kishori Amonkar", "contact_details": {"contact_info": {"website": "https://example.org", "phone_numbers": null, "emails": null, "phone": null, "email": null}}}`)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	profile, _, err := c.EnhanceProfile(context.Background(), llm.EnhanceRequest{
		ArtistName:      "Kishori Amonkar",
		ExistingProfile: []byte(`{"artist_name":"Kishori Amonkar"}`),
	})
	require.NoError(t, err)
	require.NotNil(t, profile.ContactDetails)
	require.NotNil(t, profile.ContactDetails.ContactInfo)
	require.NotNil(t, profile.ContactDetails.ContactInfo.Website)
	assert.Equal(t, "https://example.org", *profile.ContactDetails.ContactInfo.Website)
}
