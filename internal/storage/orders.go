package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"partsdesk/internal"
	"partsdesk/internal/parts"
)

// ReplaceOrders stores the parsing result of one email, dropping whatever an earlier run stored.
func (d *DB) ReplaceOrders(emailID int, result parts.ParsingResult) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE emails SET airline = ?, isAviation = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`,
		result.Airline, result.IsAviationRequest, emailID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM orders WHERE emailId = ?`, emailID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO orders (
  emailId, lineNo, airline, strategy, partNumber, description, quantity, unitOfMeasure,
  aircraftType, priority, alternatesJson, remarks, orderNumber
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range result.Orders {
		altJSON, _ := json.Marshal(rec.AlternatePartNumbers)
		if _, err := stmt.Exec(
			emailID, i+1, result.Airline, result.Strategy, rec.PartNumber, rec.Description, rec.Quantity, rec.UnitOfMeasure,
			rec.AircraftType, string(rec.Priority), string(altJSON), rec.Remarks, rec.OrderNumber,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const orderColumns = `o.id, o.emailId, o.lineNo, o.airline, o.strategy, o.partNumber, o.description, o.quantity,
  o.unitOfMeasure, o.aircraftType, o.priority, o.alternatesJson, o.remarks, o.orderNumber, o.pushedAt, o.externalId`

func scanOrder(scan func(dest ...any) error, extra ...any) (internal.OrderRow, error) {
	var row internal.OrderRow
	var aircraft, remarks, orderNumber sql.NullString
	var altJSON string
	dest := []any{
		&row.ID, &row.EmailID, &row.LineNo, &row.Airline, &row.Strategy, &row.PartNumber, &row.Description, &row.Quantity,
		&row.UnitOfMeasure, &aircraft, &row.Priority, &altJSON, &remarks, &orderNumber, &row.PushedAt, &row.ExternalID,
	}
	if err := scan(append(dest, extra...)...); err != nil {
		return row, err
	}
	row.AircraftType = aircraft.String
	row.Remarks = remarks.String
	row.OrderNumber = orderNumber.String
	_ = json.Unmarshal([]byte(altJSON), &row.AlternatePartNumbers)
	return row, nil
}

func (d *DB) ListOrdersByEmail(emailID int) ([]internal.OrderRow, error) {
	rows, err := d.conn.Query(`SELECT `+orderColumns+` FROM orders o WHERE o.emailId = ? ORDER BY o.lineNo ASC`, emailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.OrderRow
	for rows.Next() {
		row, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListUnpushedOrders returns orders not yet accepted by the orders API, oldest email first.
func (d *DB) ListUnpushedOrders(limit int) ([]internal.OrderRow, error) {
	rows, err := d.conn.Query(`SELECT `+orderColumns+` FROM orders o WHERE o.pushedAt IS NULL ORDER BY o.emailId ASC, o.lineNo ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.OrderRow
	for rows.Next() {
		row, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) MarkOrderPushed(orderID int64, externalID string) error {
	_, err := d.conn.Exec(`UPDATE orders SET pushedAt = ?, externalId = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), externalID, orderID)
	return err
}

// GetExportRows lists the orders of one email, or of every email when emailID is 0.
func (d *DB) GetExportRows(emailID int) ([]internal.OrderExportRow, error) {
	rows, err := d.conn.Query(`
SELECT `+orderColumns+`, e.sender, e.subject, e.receivedAt
FROM orders o
JOIN emails e ON e.id = o.emailId
WHERE (? = 0 OR o.emailId = ?)
ORDER BY
  CASE o.priority WHEN 'AOG' THEN 1 WHEN 'WSP' THEN 2 WHEN 'USR' THEN 3 ELSE 4 END,
  o.emailId ASC,
  o.lineNo ASC
`, emailID, emailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.OrderExportRow
	for rows.Next() {
		var sender, subject, receivedAt sql.NullString
		order, err := scanOrder(rows.Scan, &sender, &subject, &receivedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, internal.OrderExportRow{
			OrderRow:   order,
			Sender:     sender.String,
			Subject:    subject.String,
			ReceivedAt: receivedAt.String,
		})
	}
	return out, rows.Err()
}
