package tasks

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProgressRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	p, err := LoadProgress(path)
	if err != nil {
		t.Fatalf("LoadProgress failed: %v", err)
	}
	if p.IsCompleted("FY2023") {
		t.Error("Expected empty progress to report nothing completed")
	}

	if err := p.Mark("FY2023", StatusCompleted); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if err := p.Mark("FY2019", StatusNotFound); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if err := p.Mark("FY2024", StatusError); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}

	// Reload from disk and verify persistence.
	p2, err := LoadProgress(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if !p2.IsCompleted("FY2023") {
		t.Error("Expected FY2023 completed after reload")
	}
	// A missing archive is terminal, an error is retryable.
	if !p2.IsCompleted("FY2019") {
		t.Error("Expected FY2019 (not_found) to count as completed")
	}
	if p2.IsCompleted("FY2024") {
		t.Error("Expected FY2024 (error) to be retried")
	}

	status, ok := p2.Status("FY2024")
	if !ok || status != StatusError {
		t.Errorf("Expected error status for FY2024, got %q (ok=%v)", status, ok)
	}

	entries := p2.Entries()
	if len(entries) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(entries))
	}
}

func TestProgressClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	p, err := LoadProgress(path)
	if err != nil {
		t.Fatalf("LoadProgress failed: %v", err)
	}
	if err := p.Mark("FY2023", StatusCompleted); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if err := p.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	p2, err := LoadProgress(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if p2.IsCompleted("FY2023") {
		t.Error("Expected cleared progress to be empty")
	}

	// Clearing a non-existent file is fine.
	if err := p2.Clear(); err != nil {
		t.Errorf("Clear on missing file failed: %v", err)
	}
}

func TestProgressRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	if _, err := LoadProgress(path); err == nil {
		t.Error("Expected error for corrupt progress file")
	}
}
