package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/globalopps/sam-atlas/app/ingest"
)

// BootstrapArchiveTask downloads one fiscal year archive extract and runs
// it through the ingestion pipeline. The archive is held in a temporary
// directory only for the duration of the task.
type BootstrapArchiveTask struct {
	Task
	Year       int
	downloader *Downloader
	pipeline   *ingest.Pipeline
	archiveURL string
	chunkSize  int
}

// ErrArchiveNotFound marks a fiscal year whose archive does not exist
// upstream; the runner records it in the checkpoint and moves on.
var ErrArchiveNotFound = errors.New("archive not found")

func NewBootstrapArchiveTask(year int, archiveBaseURL string, downloader *Downloader,
	pipeline *ingest.Pipeline, chunkSize int) *BootstrapArchiveTask {
	return &BootstrapArchiveTask{
		Task:       NewTask(TaskTypeBootstrapArchive, fmt.Sprintf("FY%d", year)),
		Year:       year,
		downloader: downloader,
		pipeline:   pipeline,
		archiveURL: fmt.Sprintf("%sFY%d_archived_opportunities.csv?privacy=Public", archiveBaseURL, year),
		chunkSize:  chunkSize,
	}
}

func (t *BootstrapArchiveTask) Execute(ctx context.Context) error {
	tmpDir, err := os.MkdirTemp("", "sam-atlas-archive-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	csvPath := filepath.Join(tmpDir, fmt.Sprintf("FY%d.csv", t.Year))

	if err := t.downloader.Fetch(ctx, t.archiveURL, csvPath); err != nil {
		// Old fiscal years roll off the archive listing.
		slog.Warn("Archive unavailable", "source", t.Source, "error", err)
		return ErrArchiveNotFound
	}

	info, err := os.Stat(csvPath)
	if err != nil {
		return fmt.Errorf("failed to stat download: %w", err)
	}
	slog.Info("Processing archive",
		"source", t.Source, "size_mb", info.Size()/(1024*1024))

	inserted, skipped, err := t.pipeline.IngestFile(ctx, csvPath, t.Source, t.chunkSize)
	t.Inserted, t.Skipped = inserted, skipped
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", t.Source, err)
	}

	slog.Info("Task completed",
		"type", t.Type, "source", t.Source, "duration", t.GetDuration(),
		"inserted", inserted, "skipped", skipped)
	return nil
}
