package storage

import (
	"partsdesk/internal/procurement"
)

const quoteDateLayout = "2006-01-02"

// InsertQuoteBatch writes a validated procurement batch in one transaction.
func (d *DB) InsertQuoteBatch(batchID, source string, items []procurement.LineItem) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO quote_batches (id, source, itemCount) VALUES (?, ?, ?)`, batchID, source, len(items)); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO quote_items (
  batchId, lineNo, supplier, quoteDate, partNumber, qty, isMoq, um, condition, leadTime, timeUnit,
  price, currency, validTo, deliveryCondition, deliveryPlace, itemNote, emailSubject, stkQty,
  description, fromEmail, moq
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, it := range items {
		var validTo *string
		if it.ValidTo != nil {
			v := it.ValidTo.Format(quoteDateLayout)
			validTo = &v
		}
		if _, err := stmt.Exec(
			batchID, i+1, it.Supplier, it.Date.Format(quoteDateLayout), it.PartNumber, it.Qty, it.IsMOQ, it.UM, it.Condition,
			it.LeadTime, it.TimeUnit, it.Price, it.Currency, validTo, it.DeliveryCondition, it.DeliveryPlace, it.ItemNote,
			it.EmailSubject, it.StkQty, it.Description, it.From, it.MOQ,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) CountQuoteItems(batchID string) (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM quote_items WHERE batchId = ?`, batchID).Scan(&n)
	return n, err
}
