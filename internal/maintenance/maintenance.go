package maintenance

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kalasetu/artist-tracker/internal/store"
)

// Config for the background maintenance scheduler.
type Config struct {
	// CronSpec is a standard 5-field cron expression. Default: hourly.
	CronSpec string
	// StaleJobAge marks RUNNING jobs older than this as failed. Default 1h.
	StaleJobAge time.Duration
}

// Scheduler periodically fails pipeline jobs stuck in RUNNING, which happens
// when the process dies mid-extraction.
type Scheduler struct {
	cfg    Config
	jobs   store.JobRepository
	logger *slog.Logger
	cron   *cron.Cron
}

func NewScheduler(cfg Config, jobs store.JobRepository, logger *slog.Logger) *Scheduler {
	if cfg.CronSpec == "" {
		cfg.CronSpec = "0 * * * *"
	}
	if cfg.StaleJobAge <= 0 {
		cfg.StaleJobAge = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:    cfg,
		jobs:   jobs,
		logger: logger,
		cron:   cron.New(),
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CronSpec, s.runOnce)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("maintenance.started", "cron", s.cfg.CronSpec, "stale_job_age", s.cfg.StaleJobAge.String())
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("maintenance.stopped")
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.jobs.PruneStaleJobs(ctx, s.cfg.StaleJobAge)
	if err != nil {
		s.logger.Error("maintenance.prune.failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Warn("maintenance.prune.ok", "pruned", n)
	}
	if removed := sweepTempArtifacts(os.TempDir(), s.cfg.StaleJobAge); removed > 0 {
		s.logger.Info("maintenance.temp.ok", "removed", removed)
	}
}

// sweepTempArtifacts removes leftover OCR scratch directories (rasterized
// pages, converted photos) older than the cutoff. They are normally cleaned
// by the extractor; this catches the ones orphaned by crashes.
func sweepTempArtifacts(tmpDir string, olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, pattern := range []string{"at-pp-*", "at-heic-*"} {
		matches, err := filepath.Glob(filepath.Join(tmpDir, pattern))
		if err != nil {
			continue
		}
		for _, dir := range matches {
			st, err := os.Stat(dir)
			if err != nil || !st.IsDir() || st.ModTime().After(cutoff) {
				continue
			}
			if os.RemoveAll(dir) == nil {
				removed++
			}
		}
	}
	return removed
}
