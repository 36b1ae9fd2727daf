package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// convertHEICToPNG converts a HEIC/HEIF photo to a temporary PNG that
// tesseract can read. Returns the PNG path and a cleanup func for the
// temp directory.
func (e *Extractor) convertHEICToPNG(ctx context.Context, in string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "at-heic-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	out := filepath.Join(tmpDir, "page.png")
	if _, stderr, err := e.runner.Run(ctx, e.cfg.Heifconvert, in, out); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("heic convert: %w: %s", err, string(stderr))
	}
	if _, err := os.Stat(out); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("heic convert produced no output: %w", err)
	}
	return out, cleanup, nil
}
