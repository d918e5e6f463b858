package mail

import (
	"bytes"
	"encoding/csv"
	"fmt"
	netmail "net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"partsdesk/internal/parts"
)

// Decoded is a parsed RFC 822 message ready for the parser chain.
type Decoded struct {
	MessageID string
	Email     parts.RawEmail
	// AttachmentErrors lists attachments that could not be read; the email is still usable.
	AttachmentErrors []string
}

// Decode reads raw message bytes. maxBytes <= 0 disables the size check.
func Decode(raw []byte, maxBytes int64) (Decoded, error) {
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return Decoded{}, fmt.Errorf("email is %d bytes, limit is %d", len(raw), maxBytes)
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return Decoded{}, fmt.Errorf("read envelope: %w", err)
	}

	out := Decoded{
		MessageID: strings.Trim(env.GetHeader("Message-ID"), "<> "),
		Email: parts.RawEmail{
			FromEmail:  strings.TrimSpace(env.GetHeader("From")),
			Subject:    strings.TrimSpace(env.GetHeader("Subject")),
			BodyText:   env.Text,
			BodyHTML:   env.HTML,
			ReceivedAt: parseDate(env.GetHeader("Date")),
		},
	}

	for _, att := range env.Attachments {
		name := strings.TrimSpace(att.FileName)
		if name == "" {
			name = "attachment"
		}
		a, ok, err := ReadAttachment(name, att.ContentType, att.Content)
		if err != nil {
			out.AttachmentErrors = append(out.AttachmentErrors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if ok {
			out.Email.Attachments = append(out.Email.Attachments, a)
		}
	}
	return out, nil
}

// ReadAttachment turns one attachment into parser input. ok is false for types the parsers cannot use.
func ReadAttachment(name, contentType string, content []byte) (parts.Attachment, bool, error) {
	ext := strings.ToLower(filepath.Ext(name))
	ct := strings.ToLower(contentType)
	a := parts.Attachment{FileName: name}

	switch {
	case ext == ".xlsx" || ext == ".xlsm" || strings.Contains(ct, "spreadsheetml"):
		sheets, err := readXLSX(content)
		if err != nil {
			return a, false, err
		}
		a.Sheets = sheets
	case ext == ".csv" || ct == "text/csv":
		sheet, err := readCSV(name, content)
		if err != nil {
			return a, false, err
		}
		a.Sheets = []parts.Sheet{sheet}
	case ext == ".pdf" || ct == "application/pdf":
		text, err := readPDF(content)
		if err != nil {
			return a, false, err
		}
		a.Text = text
	case ext == ".txt" || ct == "text/plain":
		a.Text = string(content)
	default:
		return a, false, nil
	}
	return a, true, nil
}

func readXLSX(content []byte) ([]parts.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []parts.Sheet{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		out = append(out, parts.Sheet{Name: sheet, Rows: rows})
	}
	return out, nil
}

func readCSV(name string, content []byte) (parts.Sheet, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if bytes.Count(content, []byte(";")) > bytes.Count(content, []byte(",")) {
		r.Comma = ';'
	}
	rows, err := r.ReadAll()
	if err != nil {
		return parts.Sheet{}, err
	}
	return parts.Sheet{Name: name, Rows: rows}, nil
}

func readPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func parseDate(v string) time.Time {
	if strings.TrimSpace(v) == "" {
		return time.Time{}
	}
	t, err := netmail.ParseDate(v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
