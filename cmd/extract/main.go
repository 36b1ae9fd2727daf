package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/kalasetu/artist-tracker/internal/extract"
	"github.com/kalasetu/artist-tracker/internal/llm"
	"github.com/kalasetu/artist-tracker/internal/llm/gemini"
	"github.com/kalasetu/artist-tracker/internal/ocr"
)

// One-shot extraction for a single document: text stage plus profile stage,
// printed to stdout. Useful for debugging OCR quality without the server.
func main() {
	lang := flag.String("lang", "eng", "tesseract language")
	textOnly := flag.Bool("text-only", false, "print extracted text and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "extract [-lang eng] [-text-only] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	extractor := ocr.NewExtractor(ocr.Config{TesseractLang: *lang}, logger)
	result, err := extractor.Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("text extracted",
		"method", result.Method, "pages", result.Pages,
		"chars", len(result.Text), "confidence", result.Confidence)

	if *textOnly {
		os.Stdout.WriteString(result.Text)
		return
	}

	artistName := extract.ArtistNameFromFilename(path)

	var profile any
	client := gemini.NewClient(gemini.Config{}, logger)
	if client.Available() {
		p, _, err := client.ExtractProfile(ctx, llm.ExtractRequest{
			ArtistName:   artistName,
			DocumentText: result.Text,
			FilenameHint: path,
		})
		if err != nil {
			logger.Warn("model extraction failed, using fallback", "error", err)
			profile = llm.BuildFallbackProfile(artistName, result.Text)
		} else {
			profile = p
		}
	} else {
		logger.Info("no API key, using pattern-matching fallback")
		profile = llm.BuildFallbackProfile(artistName, result.Text)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profile); err != nil {
		logger.Error("encode profile", "error", err)
		os.Exit(1)
	}
}
