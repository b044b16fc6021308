// Package storage turns buffered events into date-partitioned, ZSTD
// compressed Parquet files; internal/flush calls Writer.Flush periodically
// to keep the hot table small (spec §4.6, §4.7).
//
// Layout on disk mirrors the original implementation exactly:
//
//	<data_dir>/events/site_id=<site>/date=<YYYY-MM-DD>/0001.parquet
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mallardmetrics/mallard/internal/logger"
	"github.com/mallardmetrics/mallard/internal/safety"
)

// partitionDir returns the directory holding site/date's partition files.
// Callers must validate siteID and date with safety.IsSafePathComponent
// before calling this — partitionDir does not re-check.
func partitionDir(dataDir, siteID, date string) string {
	return filepath.Join(dataDir, "events", "site_id="+siteID, "date="+date)
}

// nextFilePath picks the next unused NNNN.parquet name in dir, creating dir
// if needed. A failed mkdir is logged and surfaced as an error; the caller
// treats it the same as any other flush failure.
func nextFilePath(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create partition dir %s: %w", dir, err)
	}
	for num := 1; ; num++ {
		path := filepath.Join(dir, fmt.Sprintf("%04d.parquet", num))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
}

// partitionKey groups rows by the (site_id, date) pair a Parquet file is
// written per.
type partitionKey struct {
	siteID string
	date   string
}

func safePartition(siteID, date string) bool {
	if !safety.IsSafePathComponent(siteID) {
		logger.Get().Warn().Str("site_id", siteID).Msg("skipping flush for invalid site_id")
		return false
	}
	if !safety.IsSafePathComponent(date) {
		logger.Get().Warn().Str("date", date).Msg("skipping flush for invalid date partition")
		return false
	}
	return true
}
