package tool

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// TempRoot is the directory all staged and converted files live under. Set
// once at startup before any download happens.
var TempRoot = ""

// InitTempRoot resolves and creates the staging directory. An empty dir
// argument falls back to a picshift subdirectory of the system temp dir.
func InitTempRoot(dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "picshift")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp dir %s: %v", dir, err)
	}
	TempRoot = dir
	return dir, nil
}

// TempFilePath returns a fresh unique path under TempRoot carrying the given
// extension (with dot, may be empty).
func TempFilePath(ext string) string {
	return filepath.Join(TempRoot, uuid.New().String()+ext)
}

// SaveTemp streams r into a fresh temp file and returns its path and size.
// The file is removed again when the copy fails.
func SaveTemp(r io.Reader, ext string) (string, int64, error) {
	path := TempFilePath(ext)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %v", err)
	}
	n, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		RemoveQuiet(path)
		return "", 0, fmt.Errorf("failed to write temp file: %v", err)
	}
	return path, n, nil
}

// WriteTemp stores data in a fresh temp file and returns its path.
func WriteTemp(data []byte, ext string) (string, error) {
	path := TempFilePath(ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write temp file: %v", err)
	}
	return path, nil
}

// RemoveQuiet deletes path, logging (not returning) any failure. Missing
// files are not reported.
func RemoveQuiet(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		DefaultLogger.Warnf("Failed to remove temp file %s: %v", path, err)
	}
}
