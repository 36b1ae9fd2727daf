package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kalasetu/artist-tracker/constants"
	"github.com/kalasetu/artist-tracker/internal/store"
)

// resultRow is the summary shape the results listing returns. The full
// record, profile included, is served per-id.
type resultRow struct {
	ID               string                     `json:"id"`
	Filename         string                     `json:"filename"`
	ArtistName       string                     `json:"artist_name"`
	ExtractionStatus constants.ExtractionStatus `json:"extraction_status"`
	CreatedAt        time.Time                  `json:"created_at"`
	CreatedBy        string                     `json:"created_by"`
}

// handleListResults pages through processed documents as summary rows.
func (s *Server) handleListResults(c *fiber.Ctx) error {
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
	rows := make([]resultRow, 0, len(artists))
	for _, a := range artists {
		rows = append(rows, resultRow{
			ID:               a.ID,
			Filename:         a.OriginalFilename,
			ArtistName:       a.ArtistName,
			ExtractionStatus: a.ExtractionStatus,
			CreatedAt:        a.CreatedAt,
			CreatedBy:        a.CreatedBy,
		})
	}
	totalPages := (total + int64(params.Limit) - 1) / int64(params.Limit)
	return c.JSON(fiber.Map{
		"success":     true,
		"results":     rows,
		"page":        params.Page,
		"limit":       params.Limit,
		"total":       total,
		"total_pages": totalPages,
	})
}

// handleGetResult returns the full stored record for one document.
func (s *Server) handleGetResult(c *fiber.Ctx) error {
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

// handleListJobs pages through the extraction job audit trail.
func (s *Server) handleListJobs(c *fiber.Ctx) error {
	params := store.ListParams{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
		Search: strings.TrimSpace(c.Query("search")),
	}
	params.Normalize()

	jobs, total, err := s.store.ListJobs(c.Context(), params)
	if err != nil {
		return fail(c, err)
	}
	totalPages := (total + int64(params.Limit) - 1) / int64(params.Limit)
	return c.JSON(fiber.Map{
		"success":     true,
		"jobs":        jobs,
		"page":        params.Page,
		"limit":       params.Limit,
		"total":       total,
		"total_pages": totalPages,
	})
}

func (s *Server) handleGetJob(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	job, err := s.store.GetJobByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(job)
}
