package database

import (
	"github.com/globalopps/sam-atlas/app/sam"
)

// OpportunityWriter is the write surface handed to an ingestion batch. When
// obtained through InTransaction, all writes and existence checks share one
// transaction and commit together.
type OpportunityWriter interface {
	Exists(noticeID string) (bool, error)
	Insert(rec *sam.Record) error
}

// OpportunityRepository is the full store surface: ingestion writes plus the
// aggregate read shapes the dashboard consumes.
type OpportunityRepository interface {
	OpportunityWriter

	// InTransaction runs fn with a writer scoped to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	InTransaction(fn func(OpportunityWriter) error) error

	GetCount() (int, error)
	CountByRegion() (map[string]int, error)
	CountBySubRegion() (map[string]map[string]int, error)
	CountRecentByRegion(days int) (map[string]int, error)
	CountByCountry(region string) (map[string]int, error)
	GetRecent(region string, limit int) ([]Opportunity, error)

	Optimize() error
	Clear() error
}
