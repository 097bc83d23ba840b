package workers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"uav-logchat/flightdesk/internal/constants"
	"uav-logchat/flightdesk/internal/logging"
)

// UploadSweeper deletes .bin files left in the upload directory by parses
// that never reached their cleanup (crash, kill -9).
type UploadSweeper struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

// NewUploadSweeper creates a sweeper for dir removing files older than maxAge
func NewUploadSweeper(dir string, maxAge time.Duration) *UploadSweeper {
	return &UploadSweeper{
		dir:    dir,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Start sweeps once immediately and then every interval until ctx is done
func (s *UploadSweeper) Start(ctx context.Context, interval time.Duration) {
	logging.Info("Upload sweeper starting", "dir", s.dir, "interval", interval.String(), "max_age", s.maxAge.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Sweep()

	for {
		select {
		case <-ctx.Done():
			logging.Info("Upload sweeper shutting down")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep removes stale uploads and returns how many were deleted.
func (s *UploadSweeper) Sweep() int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		logging.Warn("Upload sweep failed", "dir", s.dir, "error", err.Error())
		return 0
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), constants.LogFileExtension) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Warn("Failed to remove stale upload", "path", path, "error", err.Error())
			continue
		}
		removed++
	}

	if removed > 0 {
		logging.Info("Removed stale uploads", "count", removed, "dir", s.dir)
	}
	return removed
}
