package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/globalopps/sam-atlas/app/database"
	"github.com/globalopps/sam-atlas/app/sam"
)

// How often the file loop reports progress, in chunks.
const progressLogInterval = 10

// Pipeline applies the classifier to raw rows and performs dedup-aware,
// insert-only writes against the store. It is stateless across batches;
// callers own running totals.
type Pipeline struct {
	classifier *sam.Classifier
	repo       database.OpportunityRepository
}

func NewPipeline(classifier *sam.Classifier, repo database.OpportunityRepository) *Pipeline {
	return &Pipeline{classifier: classifier, repo: repo}
}

// IngestBatch classifies and stores one batch of rows under a single
// transaction. Rows with an unresolvable country, a missing or duplicate
// NoticeId, or a failing insert are skipped; a skip never aborts the rest
// of the batch. Only inability to process the batch as a whole is returned
// as an error.
func (p *Pipeline) IngestBatch(rows []sam.RawRow, source string) (inserted, skipped int, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}

	err = p.repo.InTransaction(func(w database.OpportunityWriter) error {
		for _, row := range rows {
			rec, ok := p.classifier.Classify(row)
			if !ok {
				skipped++
				continue
			}

			if rec.NoticeID == "" {
				skipped++
				continue
			}

			exists, err := w.Exists(rec.NoticeID)
			if err != nil {
				return fmt.Errorf("failed to check notice %s: %w", rec.NoticeID, err)
			}
			if exists {
				skipped++
				continue
			}

			if err := w.Insert(rec); err != nil {
				slog.Warn("Insert failed, skipping row",
					"source", source, "notice_id", rec.NoticeID, "error", err)
				skipped++
				continue
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("batch from %s failed: %w", source, err)
	}

	return inserted, skipped, nil
}

// IngestFile streams a CSV file through the pipeline chunk by chunk and
// returns the accumulated counts.
func (p *Pipeline) IngestFile(ctx context.Context, path, source string, chunkSize int) (inserted, skipped int, err error) {
	reader, err := NewReader(path, chunkSize)
	if err != nil {
		return 0, 0, err
	}
	defer reader.Close()

	chunkNum := 0
	for {
		select {
		case <-ctx.Done():
			return inserted, skipped, ctx.Err()
		default:
		}

		rows, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, skipped, fmt.Errorf("failed to read chunk from %s: %w", path, err)
		}

		chunkNum++
		batchInserted, batchSkipped, err := p.IngestBatch(rows, source)
		if err != nil {
			return inserted, skipped, err
		}
		inserted += batchInserted
		skipped += batchSkipped

		if chunkNum%progressLogInterval == 0 {
			slog.Info("Ingestion progress",
				"source", source, "chunks", chunkNum,
				"inserted", inserted, "skipped", skipped)
		}
	}

	if malformed := reader.Skipped(); malformed > 0 {
		slog.Warn("Malformed CSV lines dropped", "source", source, "count", malformed)
	}

	slog.Info("File ingestion complete",
		"source", source, "chunks", chunkNum,
		"inserted", inserted, "skipped", skipped)

	return inserted, skipped, nil
}
