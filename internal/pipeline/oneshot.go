package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"partsdesk/internal/mail"
	"partsdesk/internal/parts"
	"partsdesk/internal/util"
)

// Input types accepted by ParseInput.
const (
	InputEmail      = "eml"
	InputEmailText  = "email_text"
	InputEmailTable = "email_table"
	InputXLSX       = "xlsx"
	InputCSV        = "csv"
	InputPDF        = "pdf"
)

// InputTypeFor guesses the input type from a file extension.
func InputTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml":
		return InputEmail
	case ".html", ".htm":
		return InputEmailTable
	case ".xlsx", ".xlsm":
		return InputXLSX
	case ".csv":
		return InputCSV
	case ".pdf":
		return InputPDF
	default:
		return InputEmailText
	}
}

// ParseInput runs the parser chain over a single file without touching the database.
// from and subject fill in the headers a bare body or attachment does not carry.
func ParseInput(d *parts.Dispatcher, inputType, path, from, subject string, maxBytes int64) (parts.ParsingResult, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return parts.ParsingResult{}, err
	}

	email := parts.RawEmail{FromEmail: from, Subject: subject}
	switch inputType {
	case InputEmail:
		decoded, err := mail.Decode(blob, maxBytes)
		if err != nil {
			return parts.ParsingResult{}, err
		}
		email = decoded.Email
		email.FromEmail = util.FirstNonEmpty(email.FromEmail, from)
		email.Subject = util.FirstNonEmpty(email.Subject, subject)
	case InputEmailText:
		email.BodyText = string(blob)
	case InputEmailTable:
		email.BodyHTML = string(blob)
	case InputXLSX, InputCSV, InputPDF:
		att, ok, err := mail.ReadAttachment(filepath.Base(path), "", blob)
		if err != nil {
			return parts.ParsingResult{}, err
		}
		if ok {
			email.Attachments = []parts.Attachment{att}
		}
	default:
		return parts.ParsingResult{}, fmt.Errorf("unsupported input type: %s", inputType)
	}

	return d.Parse(email), nil
}
