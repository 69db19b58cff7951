// Package cleanup reclaims temp files orphaned by abandoned sessions.
package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/hazuki-dev/picshift/tool"
)

// Config holds the janitor settings.
type Config struct {
	Dir      string        // staging directory to sweep
	MaxAge   time.Duration // files older than this are removed
	Interval time.Duration // time between sweeps
}

// Stats reports what one sweep removed.
type Stats struct {
	FilesRemoved int
	BytesFreed   int64
}

// Runner periodically sweeps the staging directory. A session whose user
// never picks a format leaves its staged files behind; the store's TTL
// forgets the session while the files stay on disk until this reclaims them.
type Runner struct {
	cfg Config
}

// NewRunner creates a janitor for the given config.
func NewRunner(cfg Config) *Runner {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 2 * time.Hour
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	return &Runner{cfg: cfg}
}

// Sweep removes regular files under Dir older than MaxAge.
func (r *Runner) Sweep() Stats {
	var st Stats
	cutoff := time.Now().Add(-r.cfg.MaxAge)

	entries, err := os.ReadDir(r.cfg.Dir)
	if err != nil {
		tool.DefaultLogger.Warnf("[Cleanup] Cannot read staging dir %s: %v", r.cfg.Dir, err)
		return st
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(r.cfg.Dir, e.Name())
		if err := os.Remove(path); err != nil {
			tool.DefaultLogger.Warnf("[Cleanup] Failed to remove %s: %v", path, err)
			continue
		}
		st.FilesRemoved++
		st.BytesFreed += info.Size()
	}
	if st.FilesRemoved > 0 {
		tool.DefaultLogger.Infof("[Cleanup] Removed %d stale files (%s)", st.FilesRemoved, tool.FormatSize(st.BytesFreed))
	}
	return st
}

// Run sweeps on the configured interval until the context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
