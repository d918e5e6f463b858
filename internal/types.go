package internal

// Email statuses as stored in the emails table.
const (
	StatusFetched   = "fetched"
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
	StatusExported  = "exported"
)

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// OrderRow is one stored part request extracted from an email.
type OrderRow struct {
	ID                   int64
	EmailID              int
	LineNo               int
	Airline              *string
	Strategy             string
	PartNumber           string
	Description          string
	Quantity             float64
	UnitOfMeasure        string
	AircraftType         string
	Priority             string
	AlternatePartNumbers []string
	Remarks              string
	OrderNumber          string
	PushedAt             *string
	ExternalID           *string
}

// OrderExportRow is an order joined with its email for spreadsheet export.
type OrderExportRow struct {
	OrderRow
	Sender     string
	Subject    string
	ReceivedAt string
}
