// Package archive packs and unpacks the ZIP containers used for batch
// input and output.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hazuki-dev/picshift/tool"
	"github.com/hazuki-dev/picshift/types"
)

// ErrMalformed reports an unreadable or corrupt archive.
var ErrMalformed = errors.New("malformed archive")

// Entry is one supported image extracted from an archive.
type Entry struct {
	Name string
	Data []byte
}

// Member is one file to pack, read from disk at pack time.
type Member struct {
	Name       string
	SourcePath string
}

// Extract opens the ZIP at path and returns its supported image entries.
// Directories and entries without a supported image extension are skipped
// silently; entries that fail to read are skipped with a log line.
func Extract(path string) ([]Entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer r.Close()

	var entries []Entry
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(f.Name)
		if !types.IsSupportedImageName(name) {
			tool.DefaultLogger.Debugf("[Archive] Skipping unsupported entry: %s", f.Name)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			tool.DefaultLogger.Warnf("[Archive] Failed to open entry %s: %v", f.Name, err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			tool.DefaultLogger.Warnf("[Archive] Failed to read entry %s: %v", f.Name, err)
			continue
		}
		entries = append(entries, Entry{Name: name, Data: data})
	}
	return entries, nil
}

// Pack writes a new ZIP at path containing the members in input order. An
// empty member list still produces a valid (empty) archive; callers avoid
// that case.
func Pack(path string, members []Member) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %v", err)
	}
	w := zip.NewWriter(out)

	for _, m := range members {
		src, err := os.Open(m.SourcePath)
		if err != nil {
			w.Close()
			out.Close()
			return fmt.Errorf("failed to open %s: %v", m.SourcePath, err)
		}
		entry, err := w.Create(m.Name)
		if err == nil {
			_, err = io.Copy(entry, src)
		}
		src.Close()
		if err != nil {
			w.Close()
			out.Close()
			return fmt.Errorf("failed to pack %s: %v", m.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		out.Close()
		return fmt.Errorf("failed to finalize archive: %v", err)
	}
	return out.Close()
}
