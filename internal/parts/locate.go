package parts

import "partsdesk/internal/util"

// ColumnIndexMap is the field -> column mapping of one table. Alternate part numbers may come
// from several columns.
type ColumnIndexMap struct {
	index map[Field]int
	alts  []int
}

func (m ColumnIndexMap) Index(f Field) int {
	if f == FieldAltPartNumber {
		if len(m.alts) == 0 {
			return -1
		}
		return m.alts[0]
	}
	if i, ok := m.index[f]; ok {
		return i
	}
	return -1
}

func (m ColumnIndexMap) AltColumns() []int {
	return m.alts
}

func (m ColumnIndexMap) maxIndex() int {
	max := -1
	for _, i := range m.index {
		if i > max {
			max = i
		}
	}
	return max
}

// TableOptions is the per-profile variant of the generic table strategy.
type TableOptions struct {
	Synonyms SynonymTable
	// RequireDescription makes both header qualification and row acceptance need a description.
	RequireDescription bool
	// RejectCyrillicPartNumbers drops rows whose part number contains Cyrillic letters.
	RejectCyrillicPartNumbers bool
	// PartNumberAsDescription fills a blank description with the part number.
	PartNumberAsDescription bool
}

func (o TableOptions) synonyms() SynonymTable {
	if o.Synonyms == nil {
		return DefaultSynonyms
	}
	return o.Synonyms
}

// ResolveColumns maps header cells to fields. For each field its synonyms are tried in order
// against every unclaimed header, so "Description" beats "Item" whatever the column order.
func ResolveColumns(headers []string, table SynonymTable) ColumnIndexMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = util.NormalizeHeader(h)
	}

	m := ColumnIndexMap{index: map[Field]int{}}
	claimed := map[int]bool{}
	for _, f := range fieldPrecedence {
		set, ok := table[f]
		if !ok {
			continue
		}
		if f == FieldAltPartNumber {
			for i, h := range normalized {
				if set.Matches(h) {
					m.alts = append(m.alts, i)
					claimed[i] = true
				}
			}
			continue
		}
	synonyms:
		for _, syn := range set.Synonyms {
			probe := SynonymSet{Mode: set.Mode, Synonyms: []string{syn}}
			for i, h := range normalized {
				if claimed[i] || !probe.Matches(h) {
					continue
				}
				m.index[f] = i
				claimed[i] = true
				break synonyms
			}
		}
	}
	return m
}

func (o TableOptions) qualifies(m ColumnIndexMap) bool {
	if m.Index(FieldPartNumber) < 0 || m.Index(FieldQuantity) < 0 {
		return false
	}
	if o.RequireDescription && m.Index(FieldDescription) < 0 {
		return false
	}
	return true
}

type locatedTable struct {
	columns ColumnIndexMap
	width   int
	data    [][]cell
}

// locateTable returns the first qualifying table in document order.
func locateTable(grids []grid, opts TableOptions) (locatedTable, bool) {
	table := opts.synonyms()

	// Header row mailed as its own one-row table, data in the next one.
	if len(grids) >= 2 && len(grids[0].rows) == 1 && len(grids[1].rows) > 1 {
		headers := cellTexts(grids[0].rows[0])
		cols := ResolveColumns(headers, table)
		if opts.qualifies(cols) {
			return locatedTable{columns: cols, width: len(headers), data: grids[1].rows}, true
		}
	}

	for _, g := range grids {
		if len(g.rows) < 2 {
			continue
		}
		headers := cellTexts(g.rows[0])
		cols := ResolveColumns(headers, table)
		if !opts.qualifies(cols) {
			continue
		}
		return locatedTable{columns: cols, width: len(headers), data: g.rows[1:]}, true
	}
	return locatedTable{}, false
}

func cellTexts(row []cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = util.CollapseSpaces(c.text)
	}
	return out
}
