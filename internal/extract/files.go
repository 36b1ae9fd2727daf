package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename strips path components and characters that are unsafe in
// a stored filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = reUnsafe.ReplaceAllString(name, "")
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return name
}

// UniqueFilename prefixes a sanitized name with a UTC timestamp, matching
// the stored-filename format that ArtistNameFromFilename knows to strip.
func UniqueFilename(original string, now time.Time) string {
	return now.UTC().Format("20060102_150405") + "_" + SanitizeFilename(original)
}

// SavedFile describes an upload persisted to the uploads directory.
type SavedFile struct {
	Path          string
	SavedFilename string
	Size          int64
	ContentHash   string
}

// SaveUpload writes content into dir under a unique name and returns its
// metadata, including the sha256 content hash.
func SaveUpload(dir, originalFilename string, content []byte) (SavedFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SavedFile{}, fmt.Errorf("create upload dir: %w", err)
	}
	saved := UniqueFilename(originalFilename, time.Now())
	path := filepath.Join(dir, saved)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return SavedFile{}, fmt.Errorf("write upload: %w", err)
	}
	sum := sha256.Sum256(content)
	return SavedFile{
		Path:          path,
		SavedFilename: saved,
		Size:          int64(len(content)),
		ContentHash:   hex.EncodeToString(sum[:]),
	}, nil
}

// Cleanup removes a stored upload, ignoring already-gone files.
func Cleanup(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
