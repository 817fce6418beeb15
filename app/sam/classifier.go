// Package sam holds the SAM.gov domain types and the record classifier that
// turns raw CSV rows into persistable opportunity records.
package sam

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/globalopps/sam-atlas/app/geo"
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Classifier resolves the place-of-performance country of a row and tags it
// with the portfolio region. Rows whose country cannot be resolved are
// dropped; everything else is kept even when individual fields are dirty.
type Classifier struct {
	taxonomy *geo.Taxonomy
}

func NewClassifier(taxonomy *geo.Taxonomy) *Classifier {
	return &Classifier{taxonomy: taxonomy}
}

// Classify converts one raw row into a Record. The second return value is
// false when the row should be dropped (unresolvable country). Every
// returned record has ISO3, Region and SubRegion set.
func (c *Classifier) Classify(row RawRow) (*Record, bool) {
	iso3, ok := c.taxonomy.Resolve(row[ColPopCountry])
	if !ok {
		return nil, false
	}

	placement, ok := c.taxonomy.Region(iso3)
	if !ok {
		// Resolve only returns codes present in the taxonomy; reaching this
		// branch means the tables are corrupted.
		panic("geo: resolved code " + iso3 + " has no region placement")
	}

	name, _ := c.taxonomy.DisplayName(iso3)

	rec := &Record{
		NoticeID:            strings.TrimSpace(row[ColNoticeID]),
		Title:               row[ColTitle],
		SolicitationNumber:  row[ColSolicitationNumber],
		Department:          row[ColDepartment],
		CGAC:                row[ColCGAC],
		SubTier:             row[ColSubTier],
		FPDSCode:            row[ColFPDSCode],
		Office:              row[ColOffice],
		AACCode:             row[ColAACCode],
		PostedDate:          row[ColPostedDate],
		NormalizedDate:      NormalizePostedDate(row[ColPostedDate]),
		Type:                row[ColType],
		BaseType:            row[ColBaseType],
		ArchiveType:         row[ColArchiveType],
		ArchiveDate:         row[ColArchiveDate],
		SetAsideCode:        row[ColSetAsideCode],
		SetAside:            row[ColSetAside],
		ResponseDeadline:    row[ColResponseDeadline],
		NaicsCode:           row[ColNaicsCode],
		ClassificationCode:  row[ColClassificationCode],
		PopStreetAddress:    row[ColPopStreetAddress],
		PopCity:             row[ColPopCity],
		PopState:            row[ColPopState],
		PopZip:              row[ColPopZip],
		PopCountry:          name + " (" + iso3 + ")",
		ISO3:                iso3,
		Region:              placement.Region,
		SubRegion:           placement.SubRegion,
		Active:              row[ColActive],
		AwardNumber:         row[ColAwardNumber],
		AwardDate:           row[ColAwardDate],
		AwardAmount:         row[ColAwardAmount],
		Awardee:             row[ColAwardee],
		PrimaryContactTitle: row[ColPrimaryContactTitle],
		PrimaryContactName:  row[ColPrimaryContactName],
		PrimaryContactEmail: row[ColPrimaryContactEmail],
		PrimaryContactPhone: row[ColPrimaryContactPhone],
		Link:                row[ColLink],
		Description:         row[ColDescription],
	}

	return rec, true
}

// NormalizePostedDate reduces a SAM.gov posted date to ISO YYYY-MM-DD.
// The feed writes either a bare date or "YYYY-MM-DD HH-MM-SS"; anything
// else goes through a generic parse. Returns nil when nothing works —
// an unparseable date never drops the row.
func NormalizePostedDate(raw string) *string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	if isoDateRe.MatchString(value) {
		return &value
	}

	if idx := strings.IndexByte(value, ' '); idx > 0 {
		datePart := value[:idx]
		if isoDateRe.MatchString(datePart) {
			return &datePart
		}
	}

	parsed, err := dateparse.ParseAny(value)
	if err != nil {
		return nil
	}
	formatted := parsed.Format("2006-01-02")
	return &formatted
}
