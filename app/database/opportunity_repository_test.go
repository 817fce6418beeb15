package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/globalopps/sam-atlas/app/sam"
)

func setupTestRepo(t *testing.T) *SQLOpportunityRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewOpportunityRepository(db)
}

func testRecord(noticeID, iso3, region, subRegion string) *sam.Record {
	date := "2024-03-15"
	return &sam.Record{
		NoticeID:       noticeID,
		Title:          "Test opportunity",
		PostedDate:     "2024-03-15 10-30-00",
		NormalizedDate: &date,
		PopCountry:     "Kenya (KEN)",
		ISO3:           iso3,
		Region:         region,
		SubRegion:      subRegion,
	}
}

func TestInsertAndExists(t *testing.T) {
	repo := setupTestRepo(t)

	exists, err := repo.Exists("N1")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected N1 to not exist in empty store")
	}

	if err := repo.Insert(testRecord("N1", "KEN", "AFRICA", "Eastern Africa")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	exists, err = repo.Exists("N1")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Expected N1 to exist after insert")
	}
}

func TestInsertDuplicateNoticeIDFails(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Insert(testRecord("N1", "KEN", "AFRICA", "Eastern Africa")); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	// Uniqueness is enforced by the schema, not only by the Exists check.
	if err := repo.Insert(testRecord("N1", "JOR", "MIDDLE_EAST", "Near-East")); err == nil {
		t.Error("Expected unique constraint error for duplicate NoticeId")
	}

	count, err := repo.GetCount()
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 record, got %d", count)
	}
}

func TestAggregateCounts(t *testing.T) {
	repo := setupTestRepo(t)

	records := []*sam.Record{
		testRecord("N1", "KEN", "AFRICA", "Eastern Africa"),
		testRecord("N2", "UGA", "AFRICA", "Eastern Africa"),
		testRecord("N3", "NGA", "AFRICA", "Western Africa"),
		testRecord("N4", "JOR", "MIDDLE_EAST", "Near-East"),
	}
	for _, rec := range records {
		if err := repo.Insert(rec); err != nil {
			t.Fatalf("Insert %s failed: %v", rec.NoticeID, err)
		}
	}

	total, err := repo.GetCount()
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if total != 4 {
		t.Errorf("Expected 4 records, got %d", total)
	}

	byRegion, err := repo.CountByRegion()
	if err != nil {
		t.Fatalf("CountByRegion failed: %v", err)
	}
	if byRegion["AFRICA"] != 3 || byRegion["MIDDLE_EAST"] != 1 {
		t.Errorf("Unexpected region counts: %v", byRegion)
	}

	bySubRegion, err := repo.CountBySubRegion()
	if err != nil {
		t.Fatalf("CountBySubRegion failed: %v", err)
	}
	if bySubRegion["AFRICA"]["Eastern Africa"] != 2 {
		t.Errorf("Expected 2 in Eastern Africa, got %v", bySubRegion)
	}
	if bySubRegion["AFRICA"]["Western Africa"] != 1 {
		t.Errorf("Expected 1 in Western Africa, got %v", bySubRegion)
	}
}

func TestCountRecentByRegion(t *testing.T) {
	repo := setupTestRepo(t)

	old := "2019-01-01"
	oldRec := testRecord("N-OLD", "KEN", "AFRICA", "Eastern Africa")
	oldRec.NormalizedDate = &old
	if err := repo.Insert(oldRec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Unparseable date: excluded from the trailing window regardless.
	nullRec := testRecord("N-NULL", "KEN", "AFRICA", "Eastern Africa")
	nullRec.NormalizedDate = nil
	if err := repo.Insert(nullRec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	recent, err := repo.CountRecentByRegion(30)
	if err != nil {
		t.Fatalf("CountRecentByRegion failed: %v", err)
	}
	if recent["AFRICA"] != 0 {
		t.Errorf("Expected no recent AFRICA records, got %d", recent["AFRICA"])
	}
}

func TestCountByCountry(t *testing.T) {
	repo := setupTestRepo(t)

	rec := testRecord("N1", "KEN", "AFRICA", "Eastern Africa")
	if err := repo.Insert(rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	byCountry, err := repo.CountByCountry("AFRICA")
	if err != nil {
		t.Fatalf("CountByCountry failed: %v", err)
	}
	if byCountry["Kenya (KEN)"] != 1 {
		t.Errorf("Unexpected country counts: %v", byCountry)
	}
}

func TestGetRecent(t *testing.T) {
	repo := setupTestRepo(t)

	dates := []string{"2024-01-01", "2024-03-01", "2024-02-01"}
	for i, date := range dates {
		d := date
		rec := testRecord("N"+string(rune('1'+i)), "KEN", "AFRICA", "Eastern Africa")
		rec.NormalizedDate = &d
		if err := repo.Insert(rec); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	recent, err := repo.GetRecent("AFRICA", 2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(recent))
	}
	if recent[0].NormalizedDate == nil || *recent[0].NormalizedDate != "2024-03-01" {
		t.Errorf("Expected newest first, got %v", recent[0].NormalizedDate)
	}
}

func TestInTransactionCommitsAndRollsBack(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.InTransaction(func(w OpportunityWriter) error {
		return w.Insert(testRecord("N1", "KEN", "AFRICA", "Eastern Africa"))
	})
	if err != nil {
		t.Fatalf("InTransaction failed: %v", err)
	}

	count, _ := repo.GetCount()
	if count != 1 {
		t.Errorf("Expected committed insert, count=%d", count)
	}

	sentinel := errors.New("abort")
	err = repo.InTransaction(func(w OpportunityWriter) error {
		if err := w.Insert(testRecord("N2", "KEN", "AFRICA", "Eastern Africa")); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Expected sentinel error, got %v", err)
	}

	count, _ = repo.GetCount()
	if count != 1 {
		t.Errorf("Expected rollback to discard N2, count=%d", count)
	}
}

func TestTransactionWriterSeesUncommittedRows(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.InTransaction(func(w OpportunityWriter) error {
		if err := w.Insert(testRecord("N1", "KEN", "AFRICA", "Eastern Africa")); err != nil {
			return err
		}
		exists, err := w.Exists("N1")
		if err != nil {
			return err
		}
		if !exists {
			t.Error("Expected in-transaction Exists to see uncommitted insert")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTransaction failed: %v", err)
	}
}

func TestClearAndOptimize(t *testing.T) {
	repo := setupTestRepo(t)

	if err := repo.Insert(testRecord("N1", "KEN", "AFRICA", "Eastern Africa")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, _ := repo.GetCount()
	if count != 0 {
		t.Errorf("Expected empty store after Clear, count=%d", count)
	}
	if err := repo.Optimize(); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
}
