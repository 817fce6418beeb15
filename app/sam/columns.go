package sam

// SAM.gov Contract Opportunities CSV column names, in feed order. The feed
// occasionally adds columns; anything not listed here is ignored by the
// classifier.
const (
	ColNoticeID            = "NoticeId"
	ColTitle               = "Title"
	ColSolicitationNumber  = "Sol#"
	ColDepartment          = "Department/Ind.Agency"
	ColCGAC                = "CGAC"
	ColSubTier             = "Sub-Tier"
	ColFPDSCode            = "FPDS Code"
	ColOffice              = "Office"
	ColAACCode             = "AAC Code"
	ColPostedDate          = "PostedDate"
	ColType                = "Type"
	ColBaseType            = "BaseType"
	ColArchiveType         = "ArchiveType"
	ColArchiveDate         = "ArchiveDate"
	ColSetAsideCode        = "SetASideCode"
	ColSetAside            = "SetASide"
	ColResponseDeadline    = "ResponseDeadLine"
	ColNaicsCode           = "NaicsCode"
	ColClassificationCode  = "ClassificationCode"
	ColPopStreetAddress    = "PopStreetAddress"
	ColPopCity             = "PopCity"
	ColPopState            = "PopState"
	ColPopZip              = "PopZip"
	ColPopCountry          = "PopCountry"
	ColActive              = "Active"
	ColAwardNumber         = "AwardNumber"
	ColAwardDate           = "AwardDate"
	ColAwardAmount         = "Award$"
	ColAwardee             = "Awardee"
	ColPrimaryContactTitle = "PrimaryContactTitle"
	ColPrimaryContactName  = "PrimaryContactFullName"
	ColPrimaryContactEmail = "PrimaryContactEmail"
	ColPrimaryContactPhone = "PrimaryContactPhone"
	ColLink                = "Link"
	ColDescription         = "Description"
)

// Columns lists every column the classifier reads, in feed order.
var Columns = []string{
	ColNoticeID,
	ColTitle,
	ColSolicitationNumber,
	ColDepartment,
	ColCGAC,
	ColSubTier,
	ColFPDSCode,
	ColOffice,
	ColAACCode,
	ColPostedDate,
	ColType,
	ColBaseType,
	ColArchiveType,
	ColArchiveDate,
	ColSetAsideCode,
	ColSetAside,
	ColResponseDeadline,
	ColNaicsCode,
	ColClassificationCode,
	ColPopStreetAddress,
	ColPopCity,
	ColPopState,
	ColPopZip,
	ColPopCountry,
	ColActive,
	ColAwardNumber,
	ColAwardDate,
	ColAwardAmount,
	ColAwardee,
	ColPrimaryContactTitle,
	ColPrimaryContactName,
	ColPrimaryContactEmail,
	ColPrimaryContactPhone,
	ColLink,
	ColDescription,
}
