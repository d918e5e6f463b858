package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"partsdesk/internal"
)

var exportHeaders = []string{
	"priority", "airline", "part_number", "description", "quantity", "unit_of_measure",
	"aircraft_type", "alternate_part_numbers", "remarks", "order_number",
	"sender", "subject", "received_at", "email_id", "line_no", "strategy",
}

func ExportRowsToXLSX(rows []internal.OrderExportRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.Priority)
		set(2, derefString(row.Airline))
		set(3, row.PartNumber)
		set(4, row.Description)
		set(5, row.Quantity)
		set(6, row.UnitOfMeasure)
		set(7, row.AircraftType)
		set(8, strings.Join(row.AlternatePartNumbers, ", "))
		set(9, row.Remarks)
		set(10, row.OrderNumber)
		set(11, row.Sender)
		set(12, row.Subject)
		set(13, row.ReceivedAt)
		set(14, row.EmailID)
		set(15, row.LineNo)
		set(16, row.Strategy)
	}

	if len(rows) > 0 {
		_ = f.AutoFilter(sheet, "A1:P1", nil)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
