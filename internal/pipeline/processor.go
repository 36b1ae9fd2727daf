package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/kalasetu/artist-tracker/constants"
	"github.com/kalasetu/artist-tracker/internal/common"
	"github.com/kalasetu/artist-tracker/internal/entity"
	"github.com/kalasetu/artist-tracker/internal/extract"
	"github.com/kalasetu/artist-tracker/internal/llm"
	"github.com/kalasetu/artist-tracker/internal/metrics"
	"github.com/kalasetu/artist-tracker/internal/store"
)

// Config holds thresholds for the extraction pipeline.
type Config struct {
	// MinTextLen rejects documents whose extracted text is shorter than
	// this, before any model call. Default 10.
	MinTextLen int
}

// Processor coordinates text extraction then profile parsing for one file,
// recording an extract job as the audit trail for the run.
type Processor struct {
	Logger   *slog.Logger
	Cfg      Config
	Text     extract.TextExtractor
	Profiles llm.ProfileExtractor
	Artists  store.ArtistRepository
	Jobs     store.JobRepository
}

// Input describes a stored upload ready for processing.
type Input struct {
	StoragePath      string
	OriginalFilename string
	SavedFilename    string
	FileSize         int64
	ContentHash      string
	CreatedBy        string
}

func NewProcessor(logger *slog.Logger, cfg Config, text extract.TextExtractor, profiles llm.ProfileExtractor, artists store.ArtistRepository, jobs store.JobRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinTextLen <= 0 {
		cfg.MinTextLen = 10
	}
	return &Processor{
		Logger:   logger,
		Cfg:      cfg,
		Text:     text,
		Profiles: profiles,
		Artists:  artists,
		Jobs:     jobs,
	}
}

// Process runs the full pipeline: start a job, extract text, parse a profile
// (model first, pattern-matching fallback second), persist the artist record,
// and finish the job. The artist name derived from the original filename is
// guaranteed onto the result no matter which parse path ran.
func (p *Processor) Process(ctx context.Context, in Input) (*entity.Artist, *entity.ExtractJob, error) {
	start := time.Now()
	defer func() { metrics.ExtractionDuration.Observe(time.Since(start).Seconds()) }()

	ext := constants.NormalizeExt(filepath.Ext(in.OriginalFilename))
	format := constants.MapExtToFormat(ext)
	if format == "" {
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, nil, common.NewAppError("UNSUPPORTED_TYPE",
			fmt.Sprintf("file type not allowed. allowed types: %s", strings.Join(constants.AllowedExtList(), ", ")),
			common.ErrInvalidInput)
	}

	artistName := extract.ArtistNameFromFilename(in.OriginalFilename)

	job, err := p.Jobs.StartJob(ctx, in.OriginalFilename, in.StoragePath, format)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, nil, err
	}

	p.Logger.Info("pipeline.start",
		"job_id", job.ID,
		"filename", in.OriginalFilename,
		"artist_name", artistName,
		"format", string(format),
	)

	// Stage 1: text extraction
	res, err := p.Text.Extract(ctx, in.StoragePath)
	if err != nil {
		_ = p.Jobs.FinishOCR(ctx, job.ID, store.OCROutcome{ErrorMessage: err.Error()})
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		p.Logger.Error("pipeline.text.failed", "job_id", job.ID, "error", err)
		return nil, job, common.NewAppError("EXTRACTION_FAILED", "could not extract text from document", err)
	}

	text := strings.TrimSpace(res.Text)
	if len(text) < p.Cfg.MinTextLen {
		msg := "could not extract sufficient text from the document"
		_ = p.Jobs.FinishOCR(ctx, job.ID, store.OCROutcome{
			Method:       res.Method,
			Confidence:   res.Confidence,
			TextLength:   len(text),
			ErrorMessage: msg,
		})
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		p.Logger.Warn("pipeline.text.insufficient", "job_id", job.ID, "text_len", len(text))
		return nil, job, common.NewAppError("INSUFFICIENT_TEXT", msg, common.ErrInvalidInput)
	}

	if err := p.Jobs.FinishOCR(ctx, job.ID, store.OCROutcome{
		Method:     res.Method,
		Confidence: res.Confidence,
		TextLength: len(text),
	}); err != nil {
		return nil, job, err
	}

	p.Logger.Info("pipeline.text.ok",
		"job_id", job.ID,
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(text),
		"confidence", res.Confidence,
	)

	// Stage 2: profile parse, model first then fallback
	profile, usedFallback := p.parseProfile(ctx, job.ID, artistName, in.OriginalFilename, text)
	profile.GuaranteeName(artistName)

	status := constants.ExtractionCompleted
	if usedFallback {
		status = constants.ExtractionFallback
	}

	artist := &entity.Artist{
		OriginalFilename: in.OriginalFilename,
		SavedFilename:    in.SavedFilename,
		StoragePath:      in.StoragePath,
		FileExt:          ext,
		FileSize:         in.FileSize,
		ContentHash:      in.ContentHash,
		ExtractedText:    text,
		ExtractionStatus: status,
		CreatedBy:        in.CreatedBy,
	}
	if err := artist.SetProfile(profile); err != nil {
		// unreachable for a profile built in-process, but keep the audit honest
		_ = p.Jobs.FailJob(ctx, job.ID, err.Error())
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, job, common.NewAppError("PROFILE_ENCODE", "encode profile", err)
	}

	if err := p.Artists.CreateArtist(ctx, artist); err != nil {
		_ = p.Jobs.FailJob(ctx, job.ID, err.Error())
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		p.Logger.Error("pipeline.persist.failed", "job_id", job.ID, "error", err)
		return nil, job, err
	}

	if err := p.Jobs.FinishParse(ctx, job.ID, artist.ID, usedFallback); err != nil {
		return artist, job, err
	}
	// the in-memory row still says RUNNING; return what was persisted
	if refreshed, err := p.Jobs.GetJobByID(ctx, job.ID); err == nil {
		job = refreshed
	}

	if usedFallback {
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeFallback).Inc()
	} else {
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeCompleted).Inc()
	}

	p.Logger.Info("pipeline.ok",
		"job_id", job.ID,
		"artist_id", artist.ID,
		"artist_name", artist.ArtistName,
		"used_fallback", usedFallback,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return artist, job, nil
}

// parseProfile calls the model and falls back to pattern matching when the
// model is unavailable or its output cannot be used.
func (p *Processor) parseProfile(ctx context.Context, jobID, artistName, filename, text string) (entity.ArtistProfile, bool) {
	profile, _, err := p.Profiles.ExtractProfile(ctx, llm.ExtractRequest{
		ArtistName:   artistName,
		DocumentText: text,
		FilenameHint: filename,
	})
	if err == nil {
		metrics.LLMRequestsTotal.WithLabelValues("extract", metrics.OutcomeOK).Inc()
		return profile, false
	}

	metrics.LLMRequestsTotal.WithLabelValues("extract", metrics.OutcomeError).Inc()
	p.Logger.Warn("pipeline.parse.fallback", "job_id", jobID, "error", err)
	return llm.BuildFallbackProfile(artistName, text), true
}
