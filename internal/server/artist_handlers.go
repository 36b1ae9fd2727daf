package server

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/kalasetu/artist-tracker/constants"
	"github.com/kalasetu/artist-tracker/internal/extract"
	"github.com/kalasetu/artist-tracker/internal/pipeline"
	"github.com/kalasetu/artist-tracker/internal/store"
)

// handleExtract accepts a multipart document upload, stores it, and runs the
// extraction pipeline synchronously. The response carries the created artist
// record plus the job audit row.
func (s *Server) handleExtract(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	ext := filepath.Ext(fileHeader.Filename)
	if !constants.IsAllowedExt(ext) {
		return badRequest(c, fmt.Sprintf("unsupported file type %q, allowed: %s",
			ext, strings.Join(constants.AllowedExtList(), ", ")))
	}
	if fileHeader.Size > s.config.MaxUploadBytes() {
		return c.Status(400).JSON(fiber.Map{
			"error": fmt.Sprintf("file exceeds %d MB limit", s.config.Upload.MaxSizeMB),
			"code":  "FILE_TOO_LARGE",
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return fail(c, err)
	}
	content, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return fail(c, err)
	}

	saved, err := extract.SaveUpload(s.config.Upload.Dir, fileHeader.Filename, content)
	if err != nil {
		return fail(c, err)
	}

	claims := claimsFrom(c)
	artist, job, err := s.pipeline.Process(c.Context(), pipeline.Input{
		StoragePath:      saved.Path,
		OriginalFilename: fileHeader.Filename,
		SavedFilename:    saved.SavedFilename,
		FileSize:         saved.Size,
		ContentHash:      saved.ContentHash,
		CreatedBy:        claims.UserID,
	})
	if err != nil {
		if !s.config.Upload.KeepOnError {
			_ = extract.Cleanup(saved.Path)
		}
		s.logger.Warn("extraction failed",
			zap.String("filename", fileHeader.Filename), zap.Error(err))
		return fail(c, err)
	}

	preview := artist.ExtractedText
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return c.Status(201).JSON(fiber.Map{
		"success":      true,
		"artist_id":    artist.ID,
		"artist_name":  artist.ArtistName,
		"filename":     fileHeader.Filename,
		"text_length":  len(artist.ExtractedText),
		"text_preview": preview,
		"artist":       artist,
		"job":          job,
	})
}

func (s *Server) handleListArtists(c *fiber.Ctx) error {
	params := store.ListParams{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
		Search: strings.TrimSpace(c.Query("search")),
	}
	params.Normalize()

	artists, total, err := s.store.ListArtists(c.Context(), params)
	if err != nil {
		return fail(c, err)
	}
	totalPages := (total + int64(params.Limit) - 1) / int64(params.Limit)
	return c.JSON(fiber.Map{
		"success":     true,
		"artists":     artists,
		"page":        params.Page,
		"limit":       params.Limit,
		"total":       total,
		"total_pages": totalPages,
	})
}

func (s *Server) handleGetArtist(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	artist, err := s.store.GetArtistByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(artist)
}

func (s *Server) handleDeleteArtist(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	artist, err := s.store.GetArtistByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	claims := claimsFrom(c)
	if claims.Role != "admin" && artist.CreatedBy != claims.UserID {
		return c.Status(403).JSON(fiber.Map{"error": "not allowed to delete this record", "code": "FORBIDDEN"})
	}
	if err := s.store.DeleteArtist(c.Context(), id); err != nil {
		return fail(c, err)
	}
	if artist.StoragePath != "" {
		_ = extract.Cleanup(artist.StoragePath)
	}
	s.logger.Info("artist deleted", zap.String("id", id), zap.String("name", artist.ArtistName))
	return c.JSON(fiber.Map{"deleted": id})
}

// handleEnhanceArtist re-runs the model over the stored text and merges the
// result into the existing profile, never overwriting known data.
func (s *Server) handleEnhanceArtist(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	artist, err := s.pipeline.Enhance(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(artist)
}

func (s *Server) handleExportArtists(c *fiber.Ctx) error {
	data, err := s.exporter.ExportArtistsXLSX(c.Context(), strings.TrimSpace(c.Query("search")))
	if err != nil {
		return fail(c, err)
	}
	filename := "artists_" + time.Now().UTC().Format("20060102_150405") + ".xlsx"
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
