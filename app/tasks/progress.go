package tasks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type ProgressStatus string

const (
	StatusCompleted ProgressStatus = "completed"
	StatusNotFound  ProgressStatus = "not_found"
	StatusError     ProgressStatus = "error"
)

type progressEntry struct {
	Status    ProgressStatus `json:"status"`
	UpdatedAt string         `json:"updated_at"`
}

// Progress is the bootstrap checkpoint file: a source-keyed status map
// persisted as JSON after each segment. Replaying a completed segment is
// safe regardless (ingestion is idempotent), the checkpoint just avoids
// re-downloading gigabytes.
type Progress struct {
	path    string
	entries map[string]progressEntry
}

// LoadProgress reads the checkpoint at path, starting empty when the file
// does not exist yet.
func LoadProgress(path string) (*Progress, error) {
	p := &Progress{path: path, entries: make(map[string]progressEntry)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress file: %w", err)
	}

	if err := json.Unmarshal(data, &p.entries); err != nil {
		return nil, fmt.Errorf("failed to parse progress file: %w", err)
	}
	return p, nil
}

// IsCompleted reports whether a source segment finished successfully or was
// marked permanently absent.
func (p *Progress) IsCompleted(source string) bool {
	entry, ok := p.entries[source]
	return ok && (entry.Status == StatusCompleted || entry.Status == StatusNotFound)
}

// Status returns the recorded status for a source segment.
func (p *Progress) Status(source string) (ProgressStatus, bool) {
	entry, ok := p.entries[source]
	return entry.Status, ok
}

// Entries returns a copy of the full status map for reporting.
func (p *Progress) Entries() map[string]ProgressStatus {
	out := make(map[string]ProgressStatus, len(p.entries))
	for source, entry := range p.entries {
		out[source] = entry.Status
	}
	return out
}

// Mark records the status of a source segment and persists the file.
func (p *Progress) Mark(source string, status ProgressStatus) error {
	p.entries[source] = progressEntry{
		Status:    status,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create progress directory: %w", err)
	}

	data, err := json.MarshalIndent(p.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	return nil
}

// Clear removes the checkpoint file, forcing the next bootstrap to start
// from scratch.
func (p *Progress) Clear() error {
	p.entries = make(map[string]progressEntry)
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove progress file: %w", err)
	}
	return nil
}
