package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/globalopps/sam-atlas/app/sam"
)

var _ OpportunityRepository = (*SQLOpportunityRepository)(nil)

// SQLOpportunityRepository is the SQLite implementation of
// OpportunityRepository.
type SQLOpportunityRepository struct {
	db *DB
}

func NewOpportunityRepository(db *DB) *SQLOpportunityRepository {
	return &SQLOpportunityRepository{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx so the writer methods
// work inside and outside a transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

type txWriter struct {
	q querier
}

func (w *txWriter) Exists(noticeID string) (bool, error) {
	return existsIn(w.q, noticeID)
}

func (w *txWriter) Insert(rec *sam.Record) error {
	return insertIn(w.q, rec)
}

func (r *SQLOpportunityRepository) Exists(noticeID string) (bool, error) {
	return existsIn(r.db, noticeID)
}

func (r *SQLOpportunityRepository) Insert(rec *sam.Record) error {
	return insertIn(r.db, rec)
}

// InTransaction runs fn against a transaction-scoped writer. A nil return
// from fn commits; any error rolls back and is returned.
func (r *SQLOpportunityRepository) InTransaction(fn func(OpportunityWriter) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txWriter{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed (%v) after error: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func existsIn(q querier, noticeID string) (bool, error) {
	var one int
	err := q.QueryRow("SELECT 1 FROM opportunities WHERE notice_id = ? LIMIT 1", noticeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check notice %s: %w", noticeID, err)
	}
	return true, nil
}

func insertIn(q querier, rec *sam.Record) error {
	_, err := q.Exec(`
		INSERT INTO opportunities (
			notice_id, title, sol_number, department, cgac, sub_tier,
			fpds_code, office, aac_code, posted_date, posted_date_normalized,
			type, base_type, archive_type, archive_date,
			set_aside_code, set_aside, response_deadline,
			naics_code, classification_code,
			pop_street_address, pop_city, pop_state, pop_zip, pop_country,
			pop_country_iso3, region, sub_region,
			active, award_number, award_date, award_amount, awardee,
			primary_contact_title, primary_contact_name,
			primary_contact_email, primary_contact_phone,
			link, description
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		          ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.NoticeID, rec.Title, rec.SolicitationNumber, rec.Department, rec.CGAC,
		rec.SubTier, rec.FPDSCode, rec.Office, rec.AACCode,
		rec.PostedDate, rec.NormalizedDate,
		rec.Type, rec.BaseType, rec.ArchiveType, rec.ArchiveDate,
		rec.SetAsideCode, rec.SetAside, rec.ResponseDeadline,
		rec.NaicsCode, rec.ClassificationCode,
		rec.PopStreetAddress, rec.PopCity, rec.PopState, rec.PopZip, rec.PopCountry,
		rec.ISO3, rec.Region, rec.SubRegion,
		rec.Active, rec.AwardNumber, rec.AwardDate, rec.AwardAmount, rec.Awardee,
		rec.PrimaryContactTitle, rec.PrimaryContactName,
		rec.PrimaryContactEmail, rec.PrimaryContactPhone,
		rec.Link, rec.Description)

	if err != nil {
		return fmt.Errorf("failed to insert notice %s: %w", rec.NoticeID, err)
	}
	return nil
}

// GetCount returns the total number of stored opportunities.
func (r *SQLOpportunityRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM opportunities").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count opportunities: %w", err)
	}
	return count, nil
}

// CountByRegion returns opportunity counts grouped by region.
func (r *SQLOpportunityRepository) CountByRegion() (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT region, COUNT(*)
		FROM opportunities
		GROUP BY region
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by region: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var region string
		var count int
		if err := rows.Scan(&region, &count); err != nil {
			return nil, fmt.Errorf("failed to scan region count: %w", err)
		}
		counts[region] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating region counts: %w", err)
	}
	return counts, nil
}

// CountBySubRegion returns counts grouped by region and sub-region.
func (r *SQLOpportunityRepository) CountBySubRegion() (map[string]map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT region, sub_region, COUNT(*)
		FROM opportunities
		GROUP BY region, sub_region
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by sub-region: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]map[string]int)
	for rows.Next() {
		var region, subRegion string
		var count int
		if err := rows.Scan(&region, &subRegion, &count); err != nil {
			return nil, fmt.Errorf("failed to scan sub-region count: %w", err)
		}
		if counts[region] == nil {
			counts[region] = make(map[string]int)
		}
		counts[region][subRegion] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sub-region counts: %w", err)
	}
	return counts, nil
}

// CountRecentByRegion returns counts grouped by region for opportunities
// posted within the trailing window of days.
func (r *SQLOpportunityRepository) CountRecentByRegion(days int) (map[string]int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")

	rows, err := r.db.Query(`
		SELECT region, COUNT(*)
		FROM opportunities
		WHERE posted_date_normalized >= ?
		GROUP BY region
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent by region: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var region string
		var count int
		if err := rows.Scan(&region, &count); err != nil {
			return nil, fmt.Errorf("failed to scan recent count: %w", err)
		}
		counts[region] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent counts: %w", err)
	}
	return counts, nil
}

// CountByCountry returns counts grouped by standardized country within a
// region.
func (r *SQLOpportunityRepository) CountByCountry(region string) (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT pop_country, COUNT(*)
		FROM opportunities
		WHERE region = ?
		GROUP BY pop_country
	`, region)
	if err != nil {
		return nil, fmt.Errorf("failed to count by country: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var country string
		var count int
		if err := rows.Scan(&country, &count); err != nil {
			return nil, fmt.Errorf("failed to scan country count: %w", err)
		}
		counts[country] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country counts: %w", err)
	}
	return counts, nil
}

// GetRecent returns the most recently posted opportunities for a region.
func (r *SQLOpportunityRepository) GetRecent(region string, limit int) ([]Opportunity, error) {
	rows, err := r.db.Query(`
		SELECT id, notice_id, COALESCE(title, ''), COALESCE(department, ''),
		       COALESCE(sub_tier, ''), COALESCE(office, ''),
		       COALESCE(posted_date, ''), posted_date_normalized,
		       COALESCE(type, ''), COALESCE(set_aside, ''),
		       COALESCE(response_deadline, ''), COALESCE(naics_code, ''),
		       COALESCE(pop_city, ''), COALESCE(pop_country, ''),
		       pop_country_iso3, region, sub_region,
		       COALESCE(active, ''), COALESCE(award_amount, ''),
		       COALESCE(link, ''), COALESCE(created_at, '')
		FROM opportunities
		WHERE region = ?
		ORDER BY posted_date_normalized DESC
		LIMIT ?
	`, region, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent opportunities: %w", err)
	}
	defer rows.Close()

	var opportunities []Opportunity
	for rows.Next() {
		var opp Opportunity
		err := rows.Scan(
			&opp.ID, &opp.NoticeID, &opp.Title, &opp.Department,
			&opp.SubTier, &opp.Office,
			&opp.PostedDate, &opp.NormalizedDate,
			&opp.Type, &opp.SetAside,
			&opp.ResponseDeadline, &opp.NaicsCode,
			&opp.PopCity, &opp.PopCountry,
			&opp.ISO3, &opp.Region, &opp.SubRegion,
			&opp.Active, &opp.AwardAmount,
			&opp.Link, &opp.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity row: %w", err)
		}
		opportunities = append(opportunities, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating opportunity rows: %w", err)
	}
	return opportunities, nil
}

// Optimize refreshes planner statistics and compacts the database file.
// Run after a bulk bootstrap, not during normal ingestion.
func (r *SQLOpportunityRepository) Optimize() error {
	if _, err := r.db.Exec("ANALYZE"); err != nil {
		return fmt.Errorf("failed to analyze database: %w", err)
	}
	if _, err := r.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

// Clear removes all stored opportunities. Used before a from-scratch
// bootstrap.
func (r *SQLOpportunityRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM opportunities"); err != nil {
		return fmt.Errorf("failed to clear opportunities: %w", err)
	}
	return nil
}
