package sam

// RawRow is one decoded CSV row, keyed by header column name. A missing key
// means the column was absent from the row; values are passed through
// verbatim.
type RawRow map[string]string

// Record is a classified opportunity ready for persistence. Pass-through
// fields keep the SAM.gov values verbatim; ISO3, Region and SubRegion are
// derived and always set; NormalizedDate is nil when the posted date could
// not be parsed.
type Record struct {
	NoticeID           string
	Title              string
	SolicitationNumber string
	Department         string
	CGAC               string
	SubTier            string
	FPDSCode           string
	Office             string
	AACCode            string
	PostedDate         string
	NormalizedDate     *string
	Type               string
	BaseType           string
	ArchiveType        string
	ArchiveDate        string
	SetAsideCode       string
	SetAside           string
	ResponseDeadline   string
	NaicsCode          string
	ClassificationCode string
	PopStreetAddress   string
	PopCity            string
	PopState           string
	PopZip             string
	PopCountry         string // standardized "Display Name (ISO3)" form
	ISO3               string
	Region             string
	SubRegion          string
	Active             string
	AwardNumber        string
	AwardDate          string
	AwardAmount        string
	Awardee            string
	PrimaryContactTitle string
	PrimaryContactName  string
	PrimaryContactEmail string
	PrimaryContactPhone string
	Link               string
	Description        string
}
