package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalasetu/artist-tracker/internal/common"
	"github.com/kalasetu/artist-tracker/internal/entity"
	"github.com/kalasetu/artist-tracker/internal/llm"
)

// ErrUnavailable is returned when the client has no API key configured.
// It chains to common.ErrUnavailable so transport layers map it to 503.
var ErrUnavailable error = common.NewAppError("LLM_UNAVAILABLE", "AI service not available", common.ErrUnavailable)

// ExtractProfile implements llm.ProfileExtractor against the generateContent
// endpoint. The response is parsed leniently, the filename-derived artist
// name is stamped on, and the document is validated before returning.
func (c *Client) ExtractProfile(ctx context.Context, req llm.ExtractRequest) (entity.ArtistProfile, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"artist_name", req.ArtistName,
		"text_len", len(req.DocumentText),
	)

	prompt := llm.BuildExtractionPrompt(req)
	raw, err := c.generate(ctx, rid, prompt)
	if err != nil {
		c.log.Error("llm.extract.call_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ArtistProfile{}, nil, err
	}

	profile, doc, err := c.decodeProfile(rid, raw, req.ArtistName)
	if err != nil {
		return entity.ArtistProfile{}, raw, err
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"artist_name", profile.ArtistName,
		"has_guru", profile.GuruName != nil,
		"achievements", len(profile.Achievements),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return profile, doc, nil
}

// EnhanceProfile fills null fields on an existing profile, preserving every
// non-null value the document already has.
func (c *Client) EnhanceProfile(ctx context.Context, req llm.EnhanceRequest) (entity.ArtistProfile, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.enhance.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"artist_name", req.ArtistName,
		"existing_bytes", len(req.ExistingProfile),
	)

	prompt := llm.BuildEnhancementPrompt(req)
	raw, err := c.generate(ctx, rid, prompt)
	if err != nil {
		c.log.Error("llm.enhance.call_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ArtistProfile{}, nil, err
	}

	profile, doc, err := c.decodeProfile(rid, raw, req.ArtistName)
	if err != nil {
		return entity.ArtistProfile{}, raw, err
	}

	c.log.Info("llm.enhance.ok",
		"req_id", rid,
		"artist_name", profile.ArtistName,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return profile, doc, nil
}

// decodeProfile runs the lenient parse, forces the artist name, and
// validates against the profile schema. Every failure chains
// llm.ErrUnusableResponse: the call reached the model but the payload is junk.
func (c *Client) decodeProfile(rid string, raw []byte, artistName string) (entity.ArtistProfile, []byte, error) {
	doc, err := llm.ExtractJSONPayload(string(raw))
	if err != nil {
		c.log.Error("llm.decode.no_json", "req_id", rid, "raw_bytes", len(raw), "error", err)
		return entity.ArtistProfile{}, nil, fmt.Errorf("parse model response: %v: %w", err, llm.ErrUnusableResponse)
	}

	doc, err = llm.ForceArtistName(doc, artistName)
	if err != nil {
		c.log.Error("llm.decode.force_name_failed", "req_id", rid, "error", err)
		return entity.ArtistProfile{}, nil, fmt.Errorf("force artist name: %v: %w", err, llm.ErrUnusableResponse)
	}

	schema := llm.BuildProfileJSONSchema()
	if err := llm.ValidateJSONAgainstSchema(schema, doc); err != nil {
		c.log.Error("llm.decode.schema_validation_failed", "req_id", rid, "error", err)
		return entity.ArtistProfile{}, nil, fmt.Errorf("schema validation failed: %v: %w", err, llm.ErrUnusableResponse)
	}

	var profile entity.ArtistProfile
	if err := json.Unmarshal(doc, &profile); err != nil {
		c.log.Error("llm.decode.unmarshal_failed", "req_id", rid, "error", err)
		return entity.ArtistProfile{}, nil, fmt.Errorf("unmarshal profile: %v: %w", err, llm.ErrUnusableResponse)
	}
	return profile, doc, nil
}

// generate posts a single-turn prompt and returns the first candidate text.
// Calls run through the rate limiter and circuit breaker.
func (c *Client) generate(ctx context.Context, rid, prompt string) ([]byte, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":      c.cfg.Temperature,
			"responseMimeType": "application/json",
		},
	}

	return c.breaker.Execute(func() ([]byte, error) {
		raw, err := c.post(ctx, rid, body)
		if err != nil {
			return nil, err
		}

		var resp struct {
			Candidates []struct {
				Content struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"content"`
			} `json:"candidates"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("decode gemini response: %w", err)
		}
		if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("no candidates in gemini response")
		}
		return []byte(strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)), nil
	})
}

func (c *Client) post(ctx context.Context, rid string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini http error: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("llm.http.body_close_error", "req_id", rid, "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	c.log.Debug("llm.http.response",
		"req_id", rid,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, truncate(string(raw), 2048))
	}
	return raw, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
