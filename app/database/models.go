package database

// Opportunity is the read-side projection of a stored opportunity record,
// as returned by the repository query methods. Write-side persistence goes
// through sam.Record.
type Opportunity struct {
	ID               int64
	NoticeID         string
	Title            string
	Department       string
	SubTier          string
	Office           string
	PostedDate       string
	NormalizedDate   *string
	Type             string
	SetAside         string
	ResponseDeadline string
	NaicsCode        string
	PopCity          string
	PopCountry       string
	ISO3             string
	Region           string
	SubRegion        string
	Active           string
	AwardAmount      string
	Link             string
	CreatedAt        string
}
