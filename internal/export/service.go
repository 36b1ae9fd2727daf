package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kalasetu/artist-tracker/internal/store"
)

// Service produces XLSX bytes for artist record exports.
type Service struct {
	artists store.ArtistRepository
	logger  *slog.Logger
}

func NewService(artists store.ArtistRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{artists: artists, logger: logger}
}

// ExportArtistsXLSX returns an XLSX workbook with one row per artist record
// matching the search filter. An empty search exports everything.
func (s *Service) ExportArtistsXLSX(ctx context.Context, search string) ([]byte, error) {
	start := time.Now()

	// page through everything; the export is not bounded by API paging
	params := store.ListParams{Page: 1, Limit: 100, Search: search}
	f := excelize.NewFile()
	const sheet = "Artists"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIdx, _ := f.GetSheetIndex("Sheet1"); defaultIdx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Artist Name",
		"Guru Name",
		"Gharana",
		"Summary",
		"Original Filename",
		"Extraction Status",
		"Enhancement Status",
		"Confidence",
		"Created By",
		"Created At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	total := 0
	for {
		rows, _, err := s.artists.ListArtists(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("query artists: %w", err)
		}
		if len(rows) == 0 {
			break
		}

		for _, a := range rows {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}

			summary := ""
			confidence := ""
			if p, err := a.UnmarshalProfile(); err == nil {
				if p.Summary != nil {
					summary = *p.Summary
				}
				if p.ExtractionConfidence != nil {
					confidence = *p.ExtractionConfidence
				}
			}

			write(1, a.ArtistName)
			write(2, a.GuruName)
			write(3, a.GharanaName)
			write(4, truncate(summary, 140))
			write(5, a.OriginalFilename)
			write(6, string(a.ExtractionStatus))
			write(7, string(a.EnhancementStatus))
			write(8, confidence)
			write(9, a.CreatedBy)
			write(10, a.CreatedAt.UTC().Format("2006-01-02 15:04"))
			row++
		}

		total += len(rows)
		if len(rows) < params.Limit {
			break
		}
		params.Page++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "C", 24)
	_ = f.SetColWidth(sheet, "D", "D", 48)
	_ = f.SetColWidth(sheet, "E", "E", 36)
	_ = f.SetColWidth(sheet, "F", "I", 18)
	_ = f.SetColWidth(sheet, "J", "J", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", total,
		"search", search,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
