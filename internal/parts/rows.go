package parts

import (
	"strings"

	"partsdesk/internal/util"
)

// draft is one accepted row before normalization; alternates stay split by source until
// finalize merges them.
type draft struct {
	partCell    string
	description string
	quantity    string
	unit        string
	aircraft    string
	notes       string
	orderNumber string
	altCells    []string
	spanAlts    []string
}

// extractState is threaded through the row fold. open indexes the draft whose part-number
// cell spans further rows; remaining counts the continuation rows still expected.
type extractState struct {
	drafts    []draft
	open      int
	remaining int
}

func extractRows(t locatedTable, opts TableOptions) []PartRequestRecord {
	state := extractState{open: -1}
	for _, row := range t.data {
		state = state.step(row, t, opts)
	}

	out := make([]PartRequestRecord, 0, len(state.drafts))
	for _, d := range state.drafts {
		if rec, ok := finalize(d, opts); ok {
			out = append(out, rec)
		}
	}
	return out
}

func (s extractState) step(row []cell, t locatedTable, opts TableOptions) extractState {
	if s.remaining > 0 && s.open >= 0 && len(row) < t.width {
		if alt := firstNonEmpty(row); alt != "" {
			s.drafts[s.open].spanAlts = append(s.drafts[s.open].spanAlts, TokenizeAlternateCell(alt)...)
		}
		s.remaining--
		if s.remaining == 0 {
			s.open = -1
		}
		return s
	}
	s.open, s.remaining = -1, 0

	cols := t.columns
	if len(row) <= cols.maxIndex() {
		return s
	}

	at := func(f Field) string {
		i := cols.Index(f)
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i].text)
	}

	d := draft{
		partCell:    util.CollapseSpaces(at(FieldPartNumber)),
		description: at(FieldDescription),
		quantity:    at(FieldQuantity),
		unit:        util.CollapseSpaces(at(FieldUnit)),
		aircraft:    util.CollapseSpaces(at(FieldAircraftType)),
		notes:       util.CollapseSpaces(at(FieldNotes)),
		orderNumber: util.CollapseSpaces(at(FieldOrderNumber)),
	}
	for _, i := range cols.AltColumns() {
		if i < len(row) {
			d.altCells = append(d.altCells, row[i].text)
		}
	}

	if d.partCell == "" || d.quantity == "" {
		return s
	}
	if opts.RequireDescription && strings.TrimSpace(d.description) == "" {
		return s
	}

	s.drafts = append(s.drafts, d)
	if span := row[cols.Index(FieldPartNumber)].rowSpan; span > 1 {
		s.open = len(s.drafts) - 1
		s.remaining = span - 1
	}
	return s
}

// finalize applies field normalization and alternate merging; false drops the row.
func finalize(d draft, opts TableOptions) (PartRequestRecord, bool) {
	main, inline := SplitInlineAlternates(d.partCell)
	pn := util.NormalizePartNumber(main)
	if pn == "" {
		return PartRequestRecord{}, false
	}
	if opts.RejectCyrillicPartNumbers && util.HasCyrillic(pn) {
		return PartRequestRecord{}, false
	}

	qty, ok := util.ParseQuantity(d.quantity)
	if !ok {
		return PartRequestRecord{}, false
	}

	desc := util.CollapseSpaces(d.description)
	if desc == "" && opts.PartNumberAsDescription {
		desc = pn
	}

	var columnAlts []string
	for _, c := range d.altCells {
		columnAlts = append(columnAlts, TokenizeAlternateCell(c)...)
	}
	notes, noteAlts := ExtractNoteAlternates(d.notes)
	alts := MergeAlternates(pn, inline, columnAlts, noteAlts, d.spanAlts)

	return PartRequestRecord{
		PartNumber:           pn,
		Description:          desc,
		Quantity:             qty,
		UnitOfMeasure:        util.NormalizeUnit(d.unit, pn),
		AircraftType:         d.aircraft,
		Priority:             PriorityRTN,
		AlternatePartNumbers: alts,
		Remarks:              RenderRemarks(notes, alts),
		OrderNumber:          d.orderNumber,
	}, true
}

func firstNonEmpty(row []cell) string {
	for _, c := range row {
		if t := strings.TrimSpace(c.text); t != "" {
			return t
		}
	}
	return ""
}
