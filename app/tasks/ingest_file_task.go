package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/globalopps/sam-atlas/app/ingest"
)

// IngestFileTask runs an already-downloaded CSV file through the ingestion
// pipeline. Used by the admin API and for offline extracts.
type IngestFileTask struct {
	Task
	Path      string
	pipeline  *ingest.Pipeline
	chunkSize int
}

func NewIngestFileTask(path string, pipeline *ingest.Pipeline, chunkSize int) *IngestFileTask {
	return &IngestFileTask{
		Task:      NewTask(TaskTypeIngestFile, path),
		Path:      path,
		pipeline:  pipeline,
		chunkSize: chunkSize,
	}
}

func (t *IngestFileTask) Execute(ctx context.Context) error {
	inserted, skipped, err := t.pipeline.IngestFile(ctx, t.Path, t.Source, t.chunkSize)
	t.Inserted, t.Skipped = inserted, skipped
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", t.Path, err)
	}

	slog.Info("Task completed",
		"type", t.Type, "source", t.Source, "duration", t.GetDuration(),
		"inserted", inserted, "skipped", skipped)
	return nil
}
