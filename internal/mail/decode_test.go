package mail

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/xuri/excelize/v2"
)

func mkXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodePlainMessage(t *testing.T) {
	raw := strings.Join([]string{
		"From: Supply <supply@utair.ru>",
		"To: sales@partsdesk.example",
		"Subject: AOG: need part",
		"Date: Tue, 14 May 2024 09:30:00 +0300",
		"Message-ID: <abc123@utair.ru>",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"642-1000-505  AIR INLET  1 EA",
		"",
	}, "\r\n")
	d, err := Decode([]byte(raw), 0)
	if err != nil {
		t.Fatal(err)
	}
	if d.MessageID != "abc123@utair.ru" {
		t.Fatalf("messageId=%q", d.MessageID)
	}
	if d.Email.Subject != "AOG: need part" || !strings.Contains(d.Email.FromEmail, "supply@utair.ru") {
		t.Fatalf("email=%+v", d.Email)
	}
	if !strings.Contains(d.Email.BodyText, "AIR INLET") {
		t.Fatalf("text=%q", d.Email.BodyText)
	}
	want := time.Date(2024, 5, 14, 6, 30, 0, 0, time.UTC)
	if !d.Email.ReceivedAt.Equal(want) {
		t.Fatalf("receivedAt=%v", d.Email.ReceivedAt)
	}
}

func TestDecodeSizeLimit(t *testing.T) {
	if _, err := Decode(bytes.Repeat([]byte("x"), 100), 10); err == nil {
		t.Fatalf("expected size error")
	}
}

func TestDecodeSpreadsheetAttachment(t *testing.T) {
	blob := mkXLSX(t, [][]any{
		{"Part Number", "Description", "Qty"},
		{"2315M20-3", "BRAKE ASSY", 2},
	})
	part, err := enmime.Builder().
		From("Stores", "stores@carrier.example").
		To("Sales", "sales@partsdesk.example").
		Subject("RFQ").
		Date(time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)).
		Text([]byte("Please see the attached list.")).
		AddAttachment(blob, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "request.xlsx").
		AddAttachment([]byte("ignored"), "application/octet-stream", "logo.bin").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	d, err := Decode(buf.Bytes(), 10<<20)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Email.Attachments) != 1 {
		t.Fatalf("attachments=%d", len(d.Email.Attachments))
	}
	att := d.Email.Attachments[0]
	if att.FileName != "request.xlsx" || len(att.Sheets) != 1 {
		t.Fatalf("att=%+v", att)
	}
	rows := att.Sheets[0].Rows
	if len(rows) != 2 || rows[1][0] != "2315M20-3" || rows[1][2] != "2" {
		t.Fatalf("rows=%v", rows)
	}
}

func TestReadCSVSemicolon(t *testing.T) {
	sheet, err := readCSV("list.csv", []byte("P/N;Qty\nAAA-1;2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sheet.Rows) != 2 || sheet.Rows[1][0] != "AAA-1" {
		t.Fatalf("rows=%v", sheet.Rows)
	}
}

func TestReadAttachmentBrokenSpreadsheet(t *testing.T) {
	_, ok, err := ReadAttachment("broken.xlsx", "", []byte("not a zip"))
	if err == nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}
