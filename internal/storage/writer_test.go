package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPartitionDir(t *testing.T) {
	dir := partitionDir("/data", "example.com", "2024-01-15")
	want := filepath.Join("/data", "events", "site_id=example.com", "date=2024-01-15")
	if dir != want {
		t.Errorf("got %s want %s", dir, want)
	}
}

func TestNextFilePathIncrementsAndCreatesDir(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "site_id=example.com", "date=2024-01-15")

	p1, err := nextFilePath(dir)
	if err != nil {
		t.Fatalf("nextFilePath: %v", err)
	}
	if filepath.Base(p1) != "0001.parquet" {
		t.Errorf("expected 0001.parquet, got %s", filepath.Base(p1))
	}
	if err := os.WriteFile(p1, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p2, err := nextFilePath(dir)
	if err != nil {
		t.Fatalf("nextFilePath: %v", err)
	}
	if filepath.Base(p2) != "0002.parquet" {
		t.Errorf("expected 0002.parquet, got %s", filepath.Base(p2))
	}
}

func TestSafePartitionRejectsTraversal(t *testing.T) {
	if safePartition("../../etc", "2024-01-15") {
		t.Error("expected traversal site_id to be rejected")
	}
	if safePartition("example.com", "../../etc") {
		t.Error("expected traversal date to be rejected")
	}
	if !safePartition("example.com", "2024-01-15") {
		t.Error("expected valid partition to be accepted")
	}
}
