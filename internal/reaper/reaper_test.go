package reaper

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mkPartition(t *testing.T, dataDir, site, date string) string {
	t.Helper()
	dir := filepath.Join(dataDir, "events", "site_id="+site, "date="+date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "0001.parquet"), []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestSweepRemovesOnlyExpiredPartitions(t *testing.T) {
	dataDir := t.TempDir()
	old := mkPartition(t, dataDir, "example.com", "2020-01-01")
	today := time.Now().UTC().Format("2006-01-02")
	recent := mkPartition(t, dataDir, "example.com", today)

	r := New(dataDir, 30)
	r.Sweep()

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("expected old partition to be removed, stat err = %v", err)
	}
	if _, err := os.Stat(recent); err != nil {
		t.Errorf("expected recent partition to survive, got %v", err)
	}
}

func TestSweepDisabledWhenRetentionIsZero(t *testing.T) {
	dataDir := t.TempDir()
	old := mkPartition(t, dataDir, "example.com", "2000-01-01")

	r := New(dataDir, 0)
	r.Sweep()

	if _, err := os.Stat(old); err != nil {
		t.Errorf("expected sweep to be a no-op with retentionDays=0, got %v", err)
	}
}

func TestSweepOnNonexistentDataDir(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "missing"), 30)
	r.Sweep() // must not panic
}

func TestSweepIgnoresNonPartitionDirectories(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, "events", "not-a-site-dir"), 0o755); err != nil {
		t.Fatal(err)
	}
	r := New(dataDir, 30)
	r.Sweep() // must not panic or misinterpret the directory
}
