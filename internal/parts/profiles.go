package parts

import (
	"regexp"
	"strings"

	"partsdesk/internal/util"
)

const (
	CompanyNordwind  = "Nordwind"
	CompanyUTair     = "UTair"
	CompanyYakutia   = "Yakutia"
	CompanyRedWings  = "Red Wings"
	CompanyAzurAir   = "Azur Air"
	maxKeyLabelRunes = 40
)

// DefaultRegistry holds the vendor profiles known at startup.
func DefaultRegistry() *Registry {
	return NewRegistry(
		CompanyProfile{
			Name:    CompanyNordwind,
			Domains: []string{"nordwind.ru", "nordwindairlines.ru"},
			Strategies: []Strategy{
				TableStrategy("nordwind_table", TableOptions{Synonyms: nordwindSynonyms}),
			},
		},
		CompanyProfile{
			Name:    CompanyUTair,
			Domains: []string{"utair.ru", "utair-engineering.ru"},
			Strategies: []Strategy{
				TableStrategy("utair_table", TableOptions{RequireDescription: true, RejectCyrillicPartNumbers: true}),
			},
		},
		CompanyProfile{
			Name:    CompanyYakutia,
			Domains: []string{"yakutia.aero"},
			Strategies: []Strategy{
				{Name: "yakutia_blocks", Parse: func(email RawEmail) ([]PartRequestRecord, error) {
					return ParseKeyValueBlocks(bodyText(email), DefaultSynonyms), nil
				}},
			},
		},
		CompanyProfile{
			Name:    CompanyRedWings,
			Domains: []string{"flyredwings.com", "redwings.aero"},
			Strategies: []Strategy{
				{Name: "redwings_list", Parse: func(email RawEmail) ([]PartRequestRecord, error) {
					return ParseNumberedList(bodyText(email)), nil
				}},
			},
		},
		CompanyProfile{
			Name:    CompanyAzurAir,
			Domains: []string{"azurair.ru"},
			Strategies: []Strategy{
				TableStrategy("azur_table", TableOptions{PartNumberAsDescription: true}),
			},
		},
	)
}

var nordwindSynonyms = DefaultSynonyms.
	Extend(FieldPartNumber, "обозначение", "ipc ref").
	Extend(FieldQuantity, "потребность", "req").
	Extend(FieldNotes, "статус")

var (
	keyValueLine = regexp.MustCompile(`^\s*([^:]{1,60}?)\s*[:=]\s*(.*)$`)
	// 1) 642-1000-505 – VALVE ASSY – 2 EA
	numberedListLine = regexp.MustCompile(`^\s*\d{1,3}\s*[.)]\s*(.+?)\s+[-–—]\s+(.+?)\s+[-–—]\s+(\d+(?:[.,]\d+)?)\s*([A-Za-zА-Яа-яЁё.]*)\s*$`)
)

// ParseKeyValueBlocks reads "Label: value" blocks, one request per block. A blank line or a
// repeated part-number label closes the block.
func ParseKeyValueBlocks(text string, table SynonymTable) []PartRequestRecord {
	out := []PartRequestRecord{}
	var cur draft
	flush := func() {
		if cur.partCell != "" && cur.quantity != "" {
			if rec, ok := finalize(cur, TableOptions{}); ok {
				out = append(out, rec)
			}
		}
		cur = draft{}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(strings.ReplaceAll(raw, "\u00A0", " "))
		if line == "" {
			flush()
			continue
		}
		m := keyValueLine.FindStringSubmatch(line)
		if m == nil || len([]rune(m[1])) > maxKeyLabelRunes {
			continue
		}
		field, ok := table.FieldFor(m[1])
		if !ok {
			continue
		}
		value := util.CollapseSpaces(m[2])

		switch field {
		case FieldPartNumber:
			if cur.partCell != "" {
				flush()
			}
			cur.partCell = value
		case FieldDescription:
			cur.description = value
		case FieldQuantity:
			qty, unit := util.SplitQtyUnit(value)
			cur.quantity = qty
			if cur.unit == "" {
				cur.unit = unit
			}
		case FieldUnit:
			cur.unit = value
		case FieldAircraftType:
			cur.aircraft = value
		case FieldNotes:
			cur.notes = value
		case FieldAltPartNumber:
			cur.altCells = append(cur.altCells, value)
		case FieldOrderNumber:
			cur.orderNumber = value
		}
	}
	flush()
	return out
}

// ParseNumberedList reads "N) P/N – description – qty unit" lines.
func ParseNumberedList(text string) []PartRequestRecord {
	out := []PartRequestRecord{}
	for _, line := range splitLines(text) {
		m := numberedListLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rec, ok := finalize(draft{partCell: m[1], description: m[2], quantity: m[3], unit: m[4]}, TableOptions{})
		if ok {
			out = append(out, rec)
		}
	}
	return out
}
