// Package reaper runs the retention sweep: once on startup and every 24
// hours thereafter, it deletes any events/site_id=*/date=* partition
// directory older than the configured retention window (spec §4.12).
package reaper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mallardmetrics/mallard/internal/logger"
)

const sweepInterval = 24 * time.Hour

// maxDeleteAttempts bounds retries of a single partition deletion: a
// RemoveAll failure on a partition directory is usually a transient
// filesystem contention issue (a flush still mid-write to a sibling
// file), not a reason to leave the directory around until tomorrow.
const maxDeleteAttempts = 3

// Reaper owns the background sweep loop.
type Reaper struct {
	dataDir       string
	retentionDays int
}

// New returns a Reaper over dataDir. retentionDays == 0 disables the
// sweep entirely: Run still ticks but Sweep is a no-op (spec §4.12).
func New(dataDir string, retentionDays int) *Reaper {
	return &Reaper{dataDir: dataDir, retentionDays: retentionDays}
}

// Run blocks, sweeping immediately and then every 24 hours, until ctx is
// canceled.
func (r *Reaper) Run(ctx context.Context) {
	r.Sweep()
	tick := time.NewTicker(sweepInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			r.Sweep()
		}
	}
}

// Sweep deletes every date=YYYY-MM-DD directory older than the retention
// window, across every site_id=* directory under dataDir. It is safe to
// call concurrently with flushes writing new partitions elsewhere in the
// tree: a sweep only ever touches directories strictly older than today.
func (r *Reaper) Sweep() {
	if r.retentionDays <= 0 {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -r.retentionDays).Format("2006-01-02")

	eventsDir := filepath.Join(r.dataDir, "events")
	siteDirs, err := os.ReadDir(eventsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Get().Error().Err(err).Str("events_dir", eventsDir).Msg("reaper: failed to list events directory")
		}
		return
	}

	for _, siteDir := range siteDirs {
		if !siteDir.IsDir() || !strings.HasPrefix(siteDir.Name(), "site_id=") {
			continue
		}
		sitePath := filepath.Join(eventsDir, siteDir.Name())
		dateDirs, err := os.ReadDir(sitePath)
		if err != nil {
			logger.Get().Error().Err(err).Str("path", sitePath).Msg("reaper: failed to list site directory")
			continue
		}
		for _, dateDir := range dateDirs {
			date, ok := strings.CutPrefix(dateDir.Name(), "date=")
			if !dateDir.IsDir() || !ok || date >= cutoff {
				continue
			}
			r.deletePartition(filepath.Join(sitePath, dateDir.Name()))
		}
	}
}

func (r *Reaper) deletePartition(path string) {
	fileCount := countFiles(path)
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxDeleteAttempts-1)
	if err := backoff.Retry(func() error { return os.RemoveAll(path) }, b); err != nil {
		logger.Get().Error().Err(err).Str("path", path).Msg("reaper: failed to delete expired partition")
		return
	}
	logger.Get().Info().Str("path", path).Int("files", fileCount).Msg("reaper: deleted expired partition")
}

func countFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}
