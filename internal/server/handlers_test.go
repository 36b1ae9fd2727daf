package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kalasetu/artist-tracker/internal/auth"
	"github.com/kalasetu/artist-tracker/internal/common"
	"github.com/kalasetu/artist-tracker/internal/entity"
	"github.com/kalasetu/artist-tracker/internal/export"
	"github.com/kalasetu/artist-tracker/internal/extract"
	"github.com/kalasetu/artist-tracker/internal/llm"
	"github.com/kalasetu/artist-tracker/internal/pipeline"
	"github.com/kalasetu/artist-tracker/internal/store"
)

type stubText struct {
	text string
	err  error
}

func (s stubText) Extract(_ context.Context, _ string) (extract.TextExtractionResult, error) {
	if s.err != nil {
		return extract.TextExtractionResult{}, s.err
	}
	return extract.TextExtractionResult{
		Text: s.text, Pages: 1, SourceType: "PDF", Method: "pdf-text", Confidence: 0.95,
	}, nil
}

type stubProfiles struct {
	err error
}

func (s stubProfiles) ExtractProfile(_ context.Context, req llm.ExtractRequest) (entity.ArtistProfile, []byte, error) {
	if s.err != nil {
		return entity.ArtistProfile{}, nil, s.err
	}
	p := entity.MinimalProfile(req.ArtistName)
	raw, _ := json.Marshal(p)
	return p, raw, nil
}

func (s stubProfiles) EnhanceProfile(_ context.Context, req llm.EnhanceRequest) (entity.ArtistProfile, []byte, error) {
	if s.err != nil {
		return entity.ArtistProfile{}, nil, s.err
	}
	p := entity.MinimalProfile(req.ArtistName)
	p.GuruName = entity.Str("Alla Rakha")
	raw, _ := json.Marshal(p)
	return p, raw, nil
}

func newTestServer(t *testing.T, text extract.TextExtractor, profiles llm.ProfileExtractor) *Server {
	t.Helper()

	st, err := store.Open(common.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := &common.Config{}
	cfg.Server.Addr = ":0"
	cfg.Server.ReadTimeout = 5 * time.Second
	cfg.Server.WriteTimeout = 5 * time.Second
	cfg.Server.AllowOrigins = []string{"*"}
	cfg.Upload.Dir = t.TempDir()
	cfg.Upload.MaxSizeMB = 16
	cfg.Auth.JWTSecret = "test-secret"

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Hour)
	proc := pipeline.NewProcessor(nil, pipeline.Config{}, text, profiles, st, st)
	exporter := export.NewService(st, nil)

	return New(cfg, st, tokens, proc, exporter, zap.NewNop())
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerAndLogin(t *testing.T, s *Server) string {
	t.Helper()
	resp := doJSON(t, s, "POST", "/api/auth/register", "", map[string]string{
		"username":  "zakir",
		"email":     "zakir@example.com",
		"full_name": "Zakir Hussain",
		"password":  "tabla123",
	})
	require.Equal(t, 201, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, s, "POST", "/api/auth/login", "", map[string]string{
		"username_or_email": "zakir",
		"password":          "tabla123",
	})
	require.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func uploadFile(t *testing.T, s *Server, token, filename string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/extract", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t, stubText{text: "text"}, stubProfiles{})

	cases := []map[string]string{
		{"username": "ab", "email": "a@b.co", "full_name": "A B", "password": "secret1"},
		{"username": "valid_user", "email": "not-an-email", "full_name": "A B", "password": "secret1"},
		{"username": "valid_user", "email": "a@b.co", "full_name": "X", "password": "secret1"},
		{"username": "valid_user", "email": "a@b.co", "full_name": "A B", "password": "short"},
		{"username": "bad name!", "email": "a@b.co", "full_name": "A B", "password": "secret1"},
	}
	for i, body := range cases {
		resp := doJSON(t, s, "POST", "/api/auth/register", "", body)
		require.Equalf(t, 400, resp.StatusCode, "case %d", i)
		resp.Body.Close()
	}
}

func TestRegisterDuplicate(t *testing.T) {
	s := newTestServer(t, stubText{text: "text"}, stubProfiles{})
	_ = registerAndLogin(t, s)

	resp := doJSON(t, s, "POST", "/api/auth/register", "", map[string]string{
		"username":  "zakir",
		"email":     "other@example.com",
		"full_name": "Other Person",
		"password":  "secret1",
	})
	require.Equal(t, 409, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "USERNAME_TAKEN", body["code"])
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t, stubText{text: "text"}, stubProfiles{})
	_ = registerAndLogin(t, s)

	resp := doJSON(t, s, "POST", "/api/auth/login", "", map[string]string{
		"username_or_email": "zakir",
		"password":          "wrong",
	})
	require.Equal(t, 401, resp.StatusCode)
	resp.Body.Close()
}

func TestAuthProfile(t *testing.T) {
	s := newTestServer(t, stubText{text: "text"}, stubProfiles{})
	token := registerAndLogin(t, s)

	resp := doJSON(t, s, "GET", "/api/auth/profile", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "zakir", body["username"])
	require.NotContains(t, body, "password_hash")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, stubText{text: "text"}, stubProfiles{})

	for _, path := range []string{"/api/artists", "/api/results", "/api/auth/profile"} {
		resp := doJSON(t, s, "GET", path, "", nil)
		require.Equalf(t, 401, resp.StatusCode, "path %s", path)
		resp.Body.Close()
	}

	resp := doJSON(t, s, "GET", "/api/artists", "garbage-token", nil)
	require.Equal(t, 401, resp.StatusCode)
	resp.Body.Close()
}

func TestExtractUploadHappyPath(t *testing.T) {
	bio := "Born in 1951, he trained under his father and toured worldwide. Contact: artist@example.com."
	s := newTestServer(t, stubText{text: bio}, stubProfiles{})
	token := registerAndLogin(t, s)

	resp := uploadFile(t, s, token, "zakir-hussain.pdf", []byte("%PDF-1.4 fake"))
	require.Equal(t, 201, resp.StatusCode)
	body := decodeBody(t, resp)

	artist, ok := body["artist"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Zakir Hussain", artist["artist_name"])
	require.Equal(t, "completed", artist["extraction_status"])

	job, ok := body["job"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "LLM_OK", job["status"])

	// The record is retrievable afterwards.
	resp = doJSON(t, s, "GET", "/api/artists/"+artist["id"].(string), token, nil)
	require.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()
}

func TestExtractUploadRejectsUnsupportedType(t *testing.T) {
	s := newTestServer(t, stubText{text: "text"}, stubProfiles{})
	token := registerAndLogin(t, s)

	resp := uploadFile(t, s, token, "notes.txt", []byte("plain text"))
	require.Equal(t, 400, resp.StatusCode)
	resp.Body.Close()
}

func TestExtractUploadRejectsOversize(t *testing.T) {
	s := newTestServer(t, stubText{text: "text"}, stubProfiles{})
	token := registerAndLogin(t, s)
	s.config.Upload.MaxSizeMB = 1

	big := bytes.Repeat([]byte("x"), 2*1024*1024)
	resp := uploadFile(t, s, token, "huge.pdf", big)
	require.Equal(t, 400, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "FILE_TOO_LARGE", body["code"])
}

func TestExtractUploadTruncatesPreview(t *testing.T) {
	long := strings.Repeat("Zakir Hussain toured the world playing tabla. ", 10)
	s := newTestServer(t, stubText{text: long}, stubProfiles{})
	token := registerAndLogin(t, s)

	resp := uploadFile(t, s, token, "zakir-hussain.pdf", []byte("%PDF fake"))
	require.Equal(t, 201, resp.StatusCode)
	body := decodeBody(t, resp)

	preview := body["text_preview"].(string)
	require.Len(t, preview, 203)
	require.True(t, strings.HasSuffix(preview, "..."))
	require.Equal(t, float64(len(long)), body["text_length"])
}

func TestExtractUploadFallbackOnModelFailure(t *testing.T) {
	bio := "He trained under Ustad Alla Rakha and performed widely across India and abroad for decades."
	s := newTestServer(t, stubText{text: bio}, stubProfiles{err: errors.New("model down")})
	token := registerAndLogin(t, s)

	resp := uploadFile(t, s, token, "zakir-hussain.pdf", []byte("%PDF-1.4 fake"))
	require.Equal(t, 201, resp.StatusCode)
	body := decodeBody(t, resp)

	artist := body["artist"].(map[string]any)
	require.Equal(t, "completed_fallback", artist["extraction_status"])
	require.Equal(t, "Zakir Hussain", artist["artist_name"])
}

func TestListArtistsPaginationAndSearch(t *testing.T) {
	s := newTestServer(t, stubText{text: "a biography long enough to pass"}, stubProfiles{})
	token := registerAndLogin(t, s)

	for _, name := range []string{"ravi-shankar.pdf", "bismillah-khan.pdf", "ali-akbar-khan.pdf"} {
		resp := uploadFile(t, s, token, name, []byte("%PDF fake"))
		require.Equal(t, 201, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, s, "GET", "/api/artists?page=1&limit=2", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, float64(3), body["total"])
	require.Equal(t, float64(2), body["total_pages"])
	require.Len(t, body["artists"], 2)

	resp = doJSON(t, s, "GET", "/api/artists?search=khan", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, float64(2), body["total"])
}

func TestDeleteArtist(t *testing.T) {
	s := newTestServer(t, stubText{text: "a biography long enough"}, stubProfiles{})
	token := registerAndLogin(t, s)

	resp := uploadFile(t, s, token, "ravi-shankar.pdf", []byte("%PDF fake"))
	require.Equal(t, 201, resp.StatusCode)
	body := decodeBody(t, resp)
	id := body["artist"].(map[string]any)["id"].(string)

	resp = doJSON(t, s, "DELETE", "/api/artists/"+id, token, nil)
	require.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, s, "GET", "/api/artists/"+id, token, nil)
	require.Equal(t, 404, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteArtistForbiddenForOtherUser(t *testing.T) {
	s := newTestServer(t, stubText{text: "a biography long enough"}, stubProfiles{})
	token := registerAndLogin(t, s)

	resp := uploadFile(t, s, token, "ravi-shankar.pdf", []byte("%PDF fake"))
	require.Equal(t, 201, resp.StatusCode)
	body := decodeBody(t, resp)
	id := body["artist"].(map[string]any)["id"].(string)

	resp = doJSON(t, s, "POST", "/api/auth/register", "", map[string]string{
		"username":  "intruder",
		"email":     "intruder@example.com",
		"full_name": "Someone Else",
		"password":  "secret1",
	})
	require.Equal(t, 201, resp.StatusCode)
	otherToken := decodeBody(t, resp)["access_token"].(string)

	resp = doJSON(t, s, "DELETE", "/api/artists/"+id, otherToken, nil)
	require.Equal(t, 403, resp.StatusCode)
	resp.Body.Close()

	// the record is untouched
	resp = doJSON(t, s, "GET", "/api/artists/"+id, token, nil)
	require.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()
}

func TestMalformedIDRejected(t *testing.T) {
	s := newTestServer(t, stubText{text: "text"}, stubProfiles{})
	token := registerAndLogin(t, s)

	for _, path := range []string{"/api/artists/not-a-uuid", "/api/results/not-a-uuid", "/api/jobs/not-a-uuid"} {
		resp := doJSON(t, s, "GET", path, token, nil)
		require.Equalf(t, 400, resp.StatusCode, "path %s", path)
		resp.Body.Close()
	}
}

func TestEnhanceArtist(t *testing.T) {
	s := newTestServer(t, stubText{text: "a biography long enough"}, stubProfiles{})
	token := registerAndLogin(t, s)

	resp := uploadFile(t, s, token, "zakir-hussain.pdf", []byte("%PDF fake"))
	require.Equal(t, 201, resp.StatusCode)
	body := decodeBody(t, resp)
	id := body["artist"].(map[string]any)["id"].(string)

	resp = doJSON(t, s, "POST", "/api/artists/"+id+"/enhance", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, "enhanced", body["enhancement_status"])
	require.Equal(t, "Alla Rakha", body["guru_name"])
}

func TestResultsSummaryAndDetail(t *testing.T) {
	s := newTestServer(t, stubText{text: "a biography long enough"}, stubProfiles{})
	token := registerAndLogin(t, s)

	resp := uploadFile(t, s, token, "ravi-shankar.pdf", []byte("%PDF fake"))
	require.Equal(t, 201, resp.StatusCode)
	body := decodeBody(t, resp)
	artistID := body["artist"].(map[string]any)["id"].(string)

	resp = doJSON(t, s, "GET", "/api/results", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, float64(1), body["total"])

	rows := body["results"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	require.Equal(t, artistID, row["id"])
	require.Equal(t, "ravi-shankar.pdf", row["filename"])
	require.Equal(t, "Ravi Shankar", row["artist_name"])
	require.Equal(t, "completed", row["extraction_status"])
	require.NotEmpty(t, row["created_at"])
	require.NotEmpty(t, row["created_by"])
	// summary rows carry no text or profile payload
	require.NotContains(t, row, "extracted_text")
	require.NotContains(t, row, "artist_info")

	resp = doJSON(t, s, "GET", "/api/results/"+artistID, token, nil)
	require.Equal(t, 200, resp.StatusCode)
	full := decodeBody(t, resp)
	require.Equal(t, "Ravi Shankar", full["artist_name"])
	require.Contains(t, full, "artist_info")
}

func TestJobsAudit(t *testing.T) {
	s := newTestServer(t, stubText{text: "a biography long enough"}, stubProfiles{})
	token := registerAndLogin(t, s)

	resp := uploadFile(t, s, token, "ravi-shankar.pdf", []byte("%PDF fake"))
	require.Equal(t, 201, resp.StatusCode)
	body := decodeBody(t, resp)
	jobID := body["job"].(map[string]any)["id"].(string)

	resp = doJSON(t, s, "GET", "/api/jobs", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, float64(1), body["total"])
	require.Len(t, body["jobs"], 1)

	resp = doJSON(t, s, "GET", "/api/jobs/"+jobID, token, nil)
	require.Equal(t, 200, resp.StatusCode)
	job := decodeBody(t, resp)
	require.Equal(t, "LLM_OK", job["status"])
	require.Equal(t, "pdf-text", job["ocr_method"])
}

func TestExportArtistsEndpoint(t *testing.T) {
	s := newTestServer(t, stubText{text: "a biography long enough"}, stubProfiles{})
	token := registerAndLogin(t, s)

	resp := uploadFile(t, s, token, "ravi-shankar.pdf", []byte("%PDF fake"))
	require.Equal(t, 201, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, s, "GET", "/api/artists/export", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	// XLSX is a zip archive.
	require.True(t, bytes.HasPrefix(data, []byte("PK")), "expected zip magic")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, stubText{text: "text"}, stubProfiles{})
	resp := doJSON(t, s, "GET", "/api/health", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, stubText{text: "text"}, stubProfiles{})
	resp := doJSON(t, s, "GET", "/metrics", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(data), "go_goroutines")
}
