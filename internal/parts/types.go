package parts

import "time"

type Priority string

const (
	PriorityAOG Priority = "AOG"
	PriorityWSP Priority = "WSP"
	PriorityUSR Priority = "USR"
	PriorityRTN Priority = "RTN"
)

// Sheet is a spreadsheet attachment already read into text cells.
type Sheet struct {
	Name string
	Rows [][]string
}

// Attachment carries the parseable content of a mail attachment.
// Text is filled for PDF/plain attachments, Sheets for XLSX.
type Attachment struct {
	FileName string
	Text     string
	Sheets   []Sheet
}

type RawEmail struct {
	FromEmail   string
	Subject     string
	BodyText    string
	BodyHTML    string
	ReceivedAt  time.Time
	Attachments []Attachment
}

type PartRequestRecord struct {
	PartNumber           string   `json:"partNumber"`
	Description          string   `json:"description"`
	Quantity             float64  `json:"quantity"`
	UnitOfMeasure        string   `json:"unitOfMeasure"`
	AircraftType         string   `json:"aircraftType"`
	Priority             Priority `json:"priority"`
	AlternatePartNumbers []string `json:"alternatePartNumbers"`
	Remarks              string   `json:"remarks"`
	OrderNumber          string   `json:"orderNumber,omitempty"`
}

type ParsingResult struct {
	Airline           *string             `json:"airline"`
	IsAviationRequest bool                `json:"isAviationRequest"`
	Orders            []PartRequestRecord `json:"orders"`
	Strategy          string              `json:"strategy,omitempty"`
}
