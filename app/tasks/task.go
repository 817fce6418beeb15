// Package tasks contains the ingestion orchestration: download-and-ingest
// units of work, the progress checkpoint file, and the sequential runner
// that executes them. The pipeline itself knows nothing about any of this.
package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeBootstrapArchive TaskType = "bootstrap_archive"
	TaskTypeIngestCurrent    TaskType = "ingest_current"
	TaskTypeIngestFile       TaskType = "ingest_file"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetSource() string
	Start()
	GetDuration() time.Duration
	Counts() (inserted, skipped int)
}

// Task carries the bookkeeping shared by all task types. Source is the
// segment identifier used for progress checkpointing ("FY2023", "CURRENT",
// or a file path).
type Task struct {
	ID        string
	Type      TaskType
	Source    string
	StartedAt *time.Time

	Inserted int
	Skipped  int
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetSource() string {
	return t.Source
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func (t *Task) Counts() (int, int) {
	return t.Inserted, t.Skipped
}

func NewTask(taskType TaskType, source string) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:     uniqueID,
		Type:   taskType,
		Source: source,
	}
}
