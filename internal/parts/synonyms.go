package parts

import (
	"strings"

	"partsdesk/internal/util"
)

type Field int

const (
	FieldPartNumber Field = iota
	FieldDescription
	FieldQuantity
	FieldUnit
	FieldAircraftType
	FieldNotes
	FieldAltPartNumber
	FieldOrderNumber
)

func (f Field) String() string {
	switch f {
	case FieldPartNumber:
		return "part_number"
	case FieldDescription:
		return "description"
	case FieldQuantity:
		return "quantity"
	case FieldUnit:
		return "unit"
	case FieldAircraftType:
		return "aircraft_type"
	case FieldNotes:
		return "notes"
	case FieldAltPartNumber:
		return "alt_part_number"
	case FieldOrderNumber:
		return "order_number"
	default:
		return "unknown"
	}
}

// MatchMode fixes how a header is compared with a field's synonyms.
type MatchMode int

const (
	// HeaderContains: the normalized header contains the synonym.
	HeaderContains MatchMode = iota
	// HeaderEquals: the normalized header is exactly the synonym.
	HeaderEquals
)

type SynonymSet struct {
	Mode     MatchMode
	Synonyms []string
}

func (s SynonymSet) Matches(header string) bool {
	h := util.NormalizeHeader(header)
	if h == "" {
		return false
	}
	for _, syn := range s.Synonyms {
		switch s.Mode {
		case HeaderEquals:
			if h == syn {
				return true
			}
		default:
			if strings.Contains(h, syn) {
				return true
			}
		}
	}
	return false
}

// SynonymTable is keyed by semantic field. Vendor profiles extend a copy of DefaultSynonyms.
type SynonymTable map[Field]SynonymSet

// fieldPrecedence is the resolution order; a column claimed by an earlier field is not
// offered to later ones ("alt part number" must not resolve as the primary part number).
var fieldPrecedence = []Field{
	FieldAltPartNumber,
	FieldPartNumber,
	FieldQuantity,
	FieldUnit,
	FieldOrderNumber,
	FieldDescription,
	FieldAircraftType,
	FieldNotes,
}

var DefaultSynonyms = normalizeSynonyms(SynonymTable{
	FieldPartNumber: {Mode: HeaderContains, Synonyms: []string{
		"part no", "part number", "part num", "part #", "p/n", "pn", "part",
		"партномер", "парт номер", "номер детали", "каталожный номер", "номер по каталогу", "артикул", "p/n №",
	}},
	FieldDescription: {Mode: HeaderContains, Synonyms: []string{
		"description", "descr", "desc", "nomenclature", "name", "item",
		"наименование", "описание", "название", "номенклатура",
	}},
	FieldQuantity: {Mode: HeaderContains, Synonyms: []string{
		"qty", "q-ty", "quantity", "quan", "кол-во", "количество", "кол во",
	}},
	FieldUnit: {Mode: HeaderEquals, Synonyms: []string{
		"unit", "units", "uom", "u/m", "um", "unit of measure", "measure",
		"ед", "ед. изм", "ед.изм", "ед изм", "единица", "единица измерения", "ед. измерения",
	}},
	FieldAircraftType: {Mode: HeaderContains, Synonyms: []string{
		"aircraft", "a/c", "ac type", "acft", "тип вс", "тип воздушного судна", "борт", "тип самолета",
	}},
	FieldNotes: {Mode: HeaderContains, Synonyms: []string{
		"remark", "note", "comment", "condition", "cond",
		"примечан", "комментар", "состояние", "замечан",
	}},
	FieldAltPartNumber: {Mode: HeaderContains, Synonyms: []string{
		"alt", "alternate", "interchange", "ipc alt", "secondary", "supersed", "replac",
		"альтернатив", "взаимозамен", "аналог",
	}},
	FieldOrderNumber: {Mode: HeaderContains, Synonyms: []string{
		"order no", "order number", "order #", "po no", "po number", "p.o", "purchase order", "request no",
		"номер заказа", "№ заказа", "заказ №", "номер заявки", "№ заявки", "order",
	}},
})

func normalizeSynonyms(t SynonymTable) SynonymTable {
	for f, set := range t {
		for i, syn := range set.Synonyms {
			set.Synonyms[i] = util.NormalizeHeader(syn)
		}
		t[f] = set
	}
	return t
}

// Extend returns a copy of the table with extra synonyms appended to the given field.
func (t SynonymTable) Extend(field Field, extra ...string) SynonymTable {
	out := make(SynonymTable, len(t))
	for k, v := range t {
		out[k] = SynonymSet{Mode: v.Mode, Synonyms: append([]string(nil), v.Synonyms...)}
	}
	set := out[field]
	for _, syn := range extra {
		set.Synonyms = append(set.Synonyms, util.NormalizeHeader(syn))
	}
	out[field] = set
	return out
}

// FieldFor resolves a single label (a table header or a "Key:" prefix) to its field.
func (t SynonymTable) FieldFor(label string) (Field, bool) {
	for _, f := range fieldPrecedence {
		if set, ok := t[f]; ok && set.Matches(label) {
			return f, true
		}
	}
	return 0, false
}
