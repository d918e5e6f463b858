package parts

import (
	"reflect"
	"testing"
)

func TestProfileNordwindHeaders(t *testing.T) {
	html := `<table>
<tr><td>Обозначение</td><td>Наименование</td><td>Потребность</td><td>Статус</td></tr>
<tr><td>2315M20-3</td><td>Тормоз колеса</td><td>2</td><td>AOG</td></tr>
</table>`
	res := NewDispatcher(DefaultRegistry()).Parse(RawEmail{FromEmail: "tech@nordwind.ru", Subject: "Заявка", BodyHTML: html})
	if res.Airline == nil || *res.Airline != CompanyNordwind {
		t.Fatalf("airline=%v", res.Airline)
	}
	if res.Strategy != "nordwind_table" || len(res.Orders) != 1 {
		t.Fatalf("strategy=%q len=%d", res.Strategy, len(res.Orders))
	}
	if res.Orders[0].Remarks != "AOG" || res.Orders[0].Priority != PriorityAOG {
		t.Fatalf("record=%+v", res.Orders[0])
	}
}

func TestProfileUTairStrict(t *testing.T) {
	html := `<table>
<tr><th>P/N</th><th>Description</th><th>Qty</th></tr>
<tr><td>ABC-123</td><td>VALVE</td><td>1</td></tr>
<tr><td>АБВ-12</td><td>КЛАПАН</td><td>2</td></tr>
<tr><td>XYZ-9</td><td></td><td>3</td></tr>
</table>`
	res := NewDispatcher(DefaultRegistry()).Parse(RawEmail{FromEmail: "Supply <supply@mail.utair.ru>", BodyHTML: html})
	if res.Airline == nil || *res.Airline != CompanyUTair {
		t.Fatalf("airline=%v", res.Airline)
	}
	if res.Strategy != "utair_table" {
		t.Fatalf("strategy=%q", res.Strategy)
	}
	if len(res.Orders) != 1 || res.Orders[0].PartNumber != "ABC-123" {
		t.Fatalf("orders=%+v", res.Orders)
	}
}

func TestProfileAzurPlaceholderDescription(t *testing.T) {
	html := `<table><tr><th>PN</th><th>Description</th><th>Qty</th></tr><tr><td>S1820-612</td><td> </td><td>4</td></tr></table>`
	res := NewDispatcher(DefaultRegistry()).Parse(RawEmail{FromEmail: "eng@azurair.ru", BodyHTML: html})
	if res.Strategy != "azur_table" || len(res.Orders) != 1 {
		t.Fatalf("strategy=%q len=%d", res.Strategy, len(res.Orders))
	}
	if res.Orders[0].Description != "S1820-612" {
		t.Fatalf("desc=%q", res.Orders[0].Description)
	}
}

func TestProfileYakutiaBlocks(t *testing.T) {
	body := "Добрый день!\r\n" +
		"P/N: 2315M20-3\r\n" +
		"Description: Brake assy\r\n" +
		"Qty: 2 EA\r\n" +
		"A/C: RA-89001\r\n" +
		"\r\n" +
		"P/N: C20136000\r\n" +
		"Description: Wheel\r\n" +
		"Qty: 1\r\n" +
		"Alt P/N: C20136001\r\n"
	res := NewDispatcher(DefaultRegistry()).Parse(RawEmail{FromEmail: "omto@yakutia.aero", BodyText: body})
	if res.Strategy != "yakutia_blocks" || len(res.Orders) != 2 {
		t.Fatalf("strategy=%q orders=%+v", res.Strategy, res.Orders)
	}
	first, second := res.Orders[0], res.Orders[1]
	if first.PartNumber != "2315M20-3" || first.Quantity != 2 || first.AircraftType != "RA-89001" {
		t.Fatalf("first=%+v", first)
	}
	if !reflect.DeepEqual(second.AlternatePartNumbers, []string{"C20136001"}) || second.Remarks != "Alt P/N: C20136001" {
		t.Fatalf("second=%+v", second)
	}
}

func TestParseKeyValueBlocksRepeatedLabel(t *testing.T) {
	body := "P/N: AAA-1\nQty: 1\nP/N: BBB-2\nQty: 3 шт"
	records := ParseKeyValueBlocks(body, DefaultSynonyms)
	if len(records) != 2 {
		t.Fatalf("len=%d", len(records))
	}
	if records[1].PartNumber != "BBB-2" || records[1].Quantity != 3 || records[1].UnitOfMeasure != "EA" {
		t.Fatalf("second=%+v", records[1])
	}
}

func TestProfileRedWingsNumberedList(t *testing.T) {
	body := "Коллеги, прошу предложение:\n1) 642-1000-505 – VALVE ASSY – 2 EA\n2) 3214552-2 — STARTER — 1 шт\nСпасибо"
	res := NewDispatcher(DefaultRegistry()).Parse(RawEmail{FromEmail: "mto@flyredwings.com", BodyText: body})
	if res.Strategy != "redwings_list" || len(res.Orders) != 2 {
		t.Fatalf("strategy=%q orders=%+v", res.Strategy, res.Orders)
	}
	if res.Orders[0].Description != "VALVE ASSY" || res.Orders[1].UnitOfMeasure != "EA" {
		t.Fatalf("orders=%+v", res.Orders)
	}
}

func TestDetectAirline(t *testing.T) {
	reg := DefaultRegistry()
	cases := []struct {
		from string
		want string
	}{
		{"omto@yakutia.aero", CompanyYakutia},
		{"Supply Dept <Supply@Mail.UTair.ru>", CompanyUTair},
		{"a@nordwindairlines.ru", CompanyNordwind},
		{"someone@gmail.com", ""},
		{"not-an-address", ""},
	}
	for _, tc := range cases {
		t.Run(tc.from, func(t *testing.T) {
			p, ok := reg.Detect(tc.from)
			if tc.want == "" {
				if ok {
					t.Fatalf("unexpected %s", p.Name)
				}
				return
			}
			if !ok || p.Name != tc.want {
				t.Fatalf("got %q", p.Name)
			}
		})
	}
}
