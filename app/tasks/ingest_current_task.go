package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/globalopps/sam-atlas/app/ingest"
)

// CurrentSource is the checkpoint key for the current opportunities CSV.
const CurrentSource = "CURRENT"

// IngestCurrentTask downloads the current opportunities extract and runs it
// through the ingestion pipeline.
type IngestCurrentTask struct {
	Task
	downloader *Downloader
	pipeline   *ingest.Pipeline
	currentURL string
	chunkSize  int
}

func NewIngestCurrentTask(currentURL string, downloader *Downloader,
	pipeline *ingest.Pipeline, chunkSize int) *IngestCurrentTask {
	return &IngestCurrentTask{
		Task:       NewTask(TaskTypeIngestCurrent, CurrentSource),
		downloader: downloader,
		pipeline:   pipeline,
		currentURL: currentURL,
		chunkSize:  chunkSize,
	}
}

func (t *IngestCurrentTask) Execute(ctx context.Context) error {
	tmpDir, err := os.MkdirTemp("", "sam-atlas-current-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	csvPath := filepath.Join(tmpDir, "current.csv")

	if err := t.downloader.Fetch(ctx, t.currentURL, csvPath); err != nil {
		return fmt.Errorf("failed to download current CSV: %w", err)
	}

	inserted, skipped, err := t.pipeline.IngestFile(ctx, csvPath, t.Source, t.chunkSize)
	t.Inserted, t.Skipped = inserted, skipped
	if err != nil {
		return fmt.Errorf("failed to ingest current data: %w", err)
	}

	slog.Info("Task completed",
		"type", t.Type, "source", t.Source, "duration", t.GetDuration(),
		"inserted", inserted, "skipped", skipped)
	return nil
}
