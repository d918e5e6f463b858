package parts

import (
	"strings"
	"unicode/utf8"
)

const (
	StrategyGenericTable = "generic_table"
	StrategyFreeform     = "freeform"
)

// Strategy is one step of a parser chain. An empty result hands over to the next step.
type Strategy struct {
	Name  string
	Parse func(email RawEmail) ([]PartRequestRecord, error)
}

// TableStrategy parses the first qualifying HTML table, then spreadsheet attachments.
func TableStrategy(name string, opts TableOptions) Strategy {
	return Strategy{Name: name, Parse: func(email RawEmail) ([]PartRequestRecord, error) {
		return parseTables(email, opts)
	}}
}

func GenericTableStrategy() Strategy {
	return TableStrategy(StrategyGenericTable, TableOptions{})
}

// FreeformStrategy reads the body text (or the flattened HTML), then text attachments.
func FreeformStrategy(maxChars int) Strategy {
	return Strategy{Name: StrategyFreeform, Parse: func(email RawEmail) ([]PartRequestRecord, error) {
		if records := ParseFreeform(truncate(bodyText(email), maxChars)); len(records) > 0 {
			return records, nil
		}
		for _, att := range email.Attachments {
			if strings.TrimSpace(att.Text) == "" {
				continue
			}
			if records := ParseFreeform(truncate(att.Text, maxChars)); len(records) > 0 {
				return records, nil
			}
		}
		return nil, nil
	}}
}

func parseTables(email RawEmail, opts TableOptions) ([]PartRequestRecord, error) {
	if strings.TrimSpace(email.BodyHTML) != "" {
		grids, err := gridsFromHTML(email.BodyHTML)
		if err != nil {
			return nil, err
		}
		if t, ok := locateTable(grids, opts); ok {
			if records := extractRows(t, opts); len(records) > 0 {
				return records, nil
			}
		}
	}
	for _, att := range email.Attachments {
		for _, sheet := range att.Sheets {
			if t, ok := locateTable([]grid{gridFromSheet(sheet)}, opts); ok {
				if records := extractRows(t, opts); len(records) > 0 {
					return records, nil
				}
			}
		}
	}
	return nil, nil
}

func bodyText(email RawEmail) string {
	if strings.TrimSpace(email.BodyText) != "" {
		return email.BodyText
	}
	if strings.TrimSpace(email.BodyHTML) != "" {
		return htmlToText(email.BodyHTML)
	}
	return ""
}

func truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := text[:maxChars]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
