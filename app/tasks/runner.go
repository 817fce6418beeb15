package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/globalopps/sam-atlas/app/ingest"
)

// Runner executes ingestion tasks one after another. Ingestion is
// deliberately single-writer (one SQLite connection, check-then-insert
// dedup), so there is no worker pool here; parallelism would buy nothing
// the database would not serialize again.
type Runner struct {
	progress *Progress

	TotalInserted int
	TotalSkipped  int
}

func NewRunner(progress *Progress) *Runner {
	return &Runner{progress: progress}
}

// Run executes the given tasks in order, skipping sources the checkpoint
// already marks complete and recording each outcome. Task failures are
// recorded and do not stop the remaining tasks; the first context
// cancellation stops everything.
func (r *Runner) Run(ctx context.Context, taskList []TaskInterface) error {
	start := time.Now()

	for _, task := range taskList {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.progress.IsCompleted(task.GetSource()) {
			slog.Info("Skipping completed source", "source", task.GetSource())
			continue
		}

		task.Start()
		err := task.Execute(ctx)

		inserted, skipped := task.Counts()
		r.TotalInserted += inserted
		r.TotalSkipped += skipped

		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case errors.Is(err, ErrArchiveNotFound):
			if perr := r.progress.Mark(task.GetSource(), StatusNotFound); perr != nil {
				return perr
			}
		case err != nil:
			slog.Error("Task failed", "type", task.GetType(), "source", task.GetSource(), "error", err)
			if perr := r.progress.Mark(task.GetSource(), StatusError); perr != nil {
				return perr
			}
		default:
			if perr := r.progress.Mark(task.GetSource(), StatusCompleted); perr != nil {
				return perr
			}
		}
	}

	slog.Info("Run complete",
		"tasks", len(taskList),
		"inserted", r.TotalInserted,
		"skipped", r.TotalSkipped,
		"duration", time.Since(start).Round(time.Second))
	return nil
}

// BuildBootstrapTasks assembles the standard bootstrap sequence: one task
// per fiscal year archive in ascending order, then the current extract.
func BuildBootstrapTasks(startYear, endYear int, archiveBaseURL, currentURL string,
	downloader *Downloader, pipeline *ingest.Pipeline, chunkSize int,
	skipCurrent bool) ([]TaskInterface, error) {
	if startYear > endYear {
		return nil, fmt.Errorf("invalid year range %d-%d", startYear, endYear)
	}

	var taskList []TaskInterface
	for year := startYear; year <= endYear; year++ {
		taskList = append(taskList,
			NewBootstrapArchiveTask(year, archiveBaseURL, downloader, pipeline, chunkSize))
	}
	if !skipCurrent {
		taskList = append(taskList,
			NewIngestCurrentTask(currentURL, downloader, pipeline, chunkSize))
	}
	return taskList, nil
}
