package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kalasetu/artist-tracker/internal/async"
	"github.com/kalasetu/artist-tracker/internal/auth"
	"github.com/kalasetu/artist-tracker/internal/common"
	"github.com/kalasetu/artist-tracker/internal/export"
	"github.com/kalasetu/artist-tracker/internal/extract"
	"github.com/kalasetu/artist-tracker/internal/ingest"
	"github.com/kalasetu/artist-tracker/internal/llm/gemini"
	"github.com/kalasetu/artist-tracker/internal/maintenance"
	"github.com/kalasetu/artist-tracker/internal/ocr"
	"github.com/kalasetu/artist-tracker/internal/pipeline"
	"github.com/kalasetu/artist-tracker/internal/server"
	"github.com/kalasetu/artist-tracker/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	zlog, _ := zap.NewProduction()
	defer zlog.Sync()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(slogger)

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		zlog.Fatal("load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		zlog.Fatal("invalid config", zap.Error(err))
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	defer st.Close()

	textExtractor := extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Pdftotext:           cfg.OCR.Pdftotext,
		Pdftoppm:            cfg.OCR.Pdftoppm,
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		TessdataDir:         cfg.OCR.TessdataDir,
		DPI:                 cfg.OCR.DPI,
		MaxPages:            cfg.OCR.MaxPages,
		EnableTSVConfidence: cfg.OCR.TSVConfidence,
	}, slogger), slogger)

	profiles := gemini.NewClient(gemini.Config{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RPM,
		Burst:             cfg.LLM.Burst,
	}, slogger)
	if !profiles.Available() {
		zlog.Warn("no API key configured, extraction runs in fallback-only mode")
	}

	proc := pipeline.NewProcessor(slogger, pipeline.Config{
		MinTextLen: cfg.Upload.MinTextLen,
	}, textExtractor, profiles, st, st)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	exporter := export.NewService(st, slogger)

	srv := server.New(cfg, st, tokens, proc, exporter, zlog)

	sched := maintenance.NewScheduler(maintenance.Config{
		CronSpec:    cfg.Maintenance.CronSpec,
		StaleJobAge: cfg.Maintenance.StaleJobAge,
	}, st, slogger)
	if err := sched.Start(); err != nil {
		zlog.Fatal("start maintenance scheduler", zap.Error(err))
	}
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var queue *async.IngestQueue
	if len(cfg.Ingest.WatchDirs) > 0 {
		ingestor := ingest.NewIngestor(proc, st, cfg.Upload.Dir, cfg.Ingest.UserID, slogger)
		queue = async.NewIngestQueue(ingestor, slogger,
			async.WithWorkers(cfg.Ingest.Workers),
			async.WithQueueSize(cfg.Ingest.QueueSize),
		)

		evCh, errCh, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       cfg.Ingest.WatchDirs,
			InitialScan: true,
			Debounce:    cfg.Ingest.Debounce,
		})
		if err != nil {
			zlog.Fatal("start directory watcher", zap.Error(err))
		}
		go func() {
			for path := range evCh {
				if err := queue.Enqueue(ctx, async.Job{Path: path, SubmittedAt: time.Now()}); err != nil {
					zlog.Warn("enqueue watched file", zap.String("path", path), zap.Error(err))
				}
			}
		}()
		go func() {
			for err := range errCh {
				zlog.Warn("watcher error", zap.Error(err))
			}
		}()
		zlog.Info("directory ingestion enabled", zap.Strings("dirs", cfg.Ingest.WatchDirs))
	}

	go func() {
		if err := srv.Start(); err != nil {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutdown signal received")

	if err := srv.Shutdown(); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}
	if queue != nil {
		drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		queue.Shutdown(drainCtx)
		cancel()
	}
}
