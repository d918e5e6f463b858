package parts

import (
	"reflect"
	"testing"
)

const rowspanHTML = `<table>
<tr><th>P/N</th><th>Description</th><th>Qty</th></tr>
<tr><td rowspan="3">2315M20-3</td><td>BRAKE ASSY</td><td>2</td></tr>
<tr><td>2315M20-1</td></tr>
<tr><td>2315M20-2</td></tr>
<tr><td>65-90305-5</td><td>FILTER</td><td>1</td></tr>
</table>`

func parseHTML(t *testing.T, body string, opts TableOptions) []PartRequestRecord {
	t.Helper()
	records, err := parseTables(RawEmail{BodyHTML: body}, opts)
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestRowspanContinuationRows(t *testing.T) {
	records := parseHTML(t, rowspanHTML, TableOptions{})
	if len(records) != 2 {
		t.Fatalf("len=%d", len(records))
	}
	if !reflect.DeepEqual(records[0].AlternatePartNumbers, []string{"2315M20-1", "2315M20-2"}) {
		t.Fatalf("alts=%v", records[0].AlternatePartNumbers)
	}
	if records[0].Remarks != "Alt P/N: 2315M20-1, 2315M20-2" {
		t.Fatalf("remarks=%q", records[0].Remarks)
	}
	if records[1].PartNumber != "65-90305-5" || len(records[1].AlternatePartNumbers) != 0 {
		t.Fatalf("second=%+v", records[1])
	}
}

func TestHeaderInSeparateTable(t *testing.T) {
	body := `<table><tr><td>Part Number</td><td>Description</td><td>Quantity</td></tr></table>
<table>
<tr><td>3214552-2</td><td>STARTER</td><td>1</td></tr>
<tr><td>C20136000</td><td>WHEEL</td><td>2 шт</td></tr>
</table>`
	records := parseHTML(t, body, TableOptions{})
	if len(records) != 2 {
		t.Fatalf("len=%d", len(records))
	}
	if records[1].PartNumber != "C20136000" || records[1].Quantity != 2 {
		t.Fatalf("second=%+v", records[1])
	}
}

func TestFirstQualifyingTableWins(t *testing.T) {
	body := `<table><tr><td>Contact</td><td>Phone</td></tr><tr><td>Ivan</td><td>+7 900</td></tr></table>
<table><tr><th>P/N</th><th>Qty</th></tr><tr><td>AAA-1</td><td>1</td></tr></table>
<table><tr><th>P/N</th><th>Qty</th></tr><tr><td>BBB-2</td><td>1</td></tr></table>`
	records := parseHTML(t, body, TableOptions{})
	if len(records) != 1 || records[0].PartNumber != "AAA-1" {
		t.Fatalf("records=%+v", records)
	}
}

func TestRowSkipsAndDefaults(t *testing.T) {
	body := `<table>
<tr><th>Part No</th><th>Name</th><th>Q-ty</th><th>Unit</th></tr>
<tr><td>D23189000–5</td><td>WHEEL
  ASSY</td><td>1</td><td>D23189000-5</td></tr>
<tr><td>NO-QTY-1</td><td>PANEL</td><td></td><td>EA</td></tr>
<tr><td>SHORT-1</td><td>PANEL</td></tr>
<tr><td>BAD-QTY</td><td>PANEL</td><td>n/a</td><td>EA</td></tr>
<tr><td>GOOD-2</td><td>SEAL</td><td>10</td><td>pcs</td></tr>
</table>`
	records := parseHTML(t, body, TableOptions{})
	if len(records) != 2 {
		t.Fatalf("len=%d %+v", len(records), records)
	}
	first := records[0]
	if first.PartNumber != "D23189000-5" {
		t.Fatalf("pn=%q", first.PartNumber)
	}
	if first.Description != "WHEEL ASSY" {
		t.Fatalf("desc=%q", first.Description)
	}
	// a unit cell repeating the part number means misaligned columns
	if first.UnitOfMeasure != "EA" {
		t.Fatalf("um=%q", first.UnitOfMeasure)
	}
	if records[1].UnitOfMeasure != "EA" || records[1].Quantity != 10 {
		t.Fatalf("second=%+v", records[1])
	}
}

func TestResolveColumns(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		field   Field
		want    int
	}{
		{"alt column is not the part number", []string{"Alt P/N", "P/N", "Qty"}, FieldPartNumber, 1},
		{"alt column", []string{"Alt P/N", "P/N", "Qty"}, FieldAltPartNumber, 0},
		{"secondary before primary", []string{"Secondary P/N", "P/N", "Qty"}, FieldPartNumber, 1},
		{"superseded before primary", []string{"Superseded P/N", "Part Number", "Qty"}, FieldPartNumber, 1},
		{"replacement column", []string{"P/N", "Replacement P/N", "Qty"}, FieldAltPartNumber, 1},
		{"description beats item", []string{"Item", "Part number", "Description", "Qty"}, FieldDescription, 2},
		{"unit must equal", []string{"P/N", "Unit price", "Qty"}, FieldUnit, -1},
		{"cyrillic headers", []string{"№ п/п", "Партномер", "Наименование", "Кол-во", "Ед. изм."}, FieldUnit, 4},
		{"cyrillic quantity", []string{"№ п/п", "Партномер", "Наименование", "Кол-во", "Ед. изм."}, FieldQuantity, 3},
		{"order column", []string{"PO Number", "Part No", "Qty"}, FieldOrderNumber, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := ResolveColumns(tc.headers, DefaultSynonyms)
			if got := m.Index(tc.field); got != tc.want {
				t.Fatalf("%s index=%d want %d", tc.field, got, tc.want)
			}
		})
	}
}

func TestSynonymTableExtendCopies(t *testing.T) {
	ext := DefaultSynonyms.Extend(FieldQuantity, "Потребность")
	if _, ok := ext.FieldFor("Потребность"); !ok {
		t.Fatalf("extended synonym not found")
	}
	if f, ok := DefaultSynonyms.FieldFor("Потребность"); ok {
		t.Fatalf("default table changed: %s", f)
	}
}
