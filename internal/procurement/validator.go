// Package procurement checks operator-submitted quote batches before anything is stored.
// A single bad field rejects the whole batch, and the error lists every problem found
// with its "[index].field" path.
package procurement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type fieldKind int

const (
	kindText fieldKind = iota
	kindEnum
	kindDate
	kindPositive
	kindCount
	kindBool
	kindCurrency
	kindEmail
)

// FieldSpec describes one accepted key of a line item.
type FieldSpec struct {
	Name       string
	Kind       fieldKind
	Required   bool
	EnumValues []string
}

var (
	UnitsOfMeasure = []string{"EA", "PR", "SET", "KT", "M", "FT", "IN", "KG", "LB", "L", "GAL", "QT", "RL", "SH", "BX", "PK", "CN", "TU", "CS", "DZ"}
	Conditions     = []string{"NE", "NS", "FN", "OH", "SV", "AR", "RP", "IN", "IT", "US", "RD"}
	Incoterms      = []string{"EXW", "FCA", "CPT", "CIP", "DAP", "DPU", "DDP", "FAS", "FOB", "CFR", "CIF", "DAT"}
	TimeUnits      = []string{"days", "weeks", "months"}
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

var stockNotePattern = regexp.MustCompile(`(?i)stock|stk`)

// Fields is the complete line-item schema; keys outside it are rejected.
var Fields = []FieldSpec{
	{Name: "supplier", Kind: kindText, Required: true},
	{Name: "date", Kind: kindDate, Required: true},
	{Name: "part_number", Kind: kindText, Required: true},
	{Name: "qty", Kind: kindPositive, Required: true},
	{Name: "is_moq", Kind: kindBool},
	{Name: "um", Kind: kindEnum, Required: true, EnumValues: UnitsOfMeasure},
	{Name: "condition", Kind: kindEnum, Required: true, EnumValues: Conditions},
	{Name: "lead_time", Kind: kindCount},
	{Name: "time_unit", Kind: kindEnum, EnumValues: TimeUnits},
	{Name: "price", Kind: kindPositive, Required: true},
	{Name: "currency", Kind: kindCurrency, Required: true},
	{Name: "valid_to", Kind: kindDate},
	{Name: "delivery_condition", Kind: kindEnum, Required: true, EnumValues: Incoterms},
	{Name: "delivery_place", Kind: kindText},
	{Name: "item_note", Kind: kindText},
	{Name: "email_subject", Kind: kindText},
	{Name: "stk_qty", Kind: kindCount},
	{Name: "description", Kind: kindText},
	{Name: "from", Kind: kindEmail, Required: true},
	{Name: "moq", Kind: kindPositive},
}

var fieldIndex = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// LineItem is a validated quote line with transforms applied.
type LineItem struct {
	Supplier          string     `json:"supplier"`
	Date              time.Time  `json:"date"`
	PartNumber        string     `json:"part_number"`
	Qty               float64    `json:"qty"`
	IsMOQ             bool       `json:"is_moq"`
	UM                string     `json:"um"`
	Condition         string     `json:"condition"`
	LeadTime          *int64     `json:"lead_time,omitempty"`
	TimeUnit          string     `json:"time_unit,omitempty"`
	Price             float64    `json:"price"`
	Currency          string     `json:"currency"`
	ValidTo           *time.Time `json:"valid_to,omitempty"`
	DeliveryCondition string     `json:"delivery_condition"`
	DeliveryPlace     string     `json:"delivery_place,omitempty"`
	ItemNote          string     `json:"item_note,omitempty"`
	EmailSubject      string     `json:"email_subject,omitempty"`
	StkQty            *int64     `json:"stk_qty,omitempty"`
	Description       string     `json:"description,omitempty"`
	From              string     `json:"from"`
	MOQ               *float64   `json:"moq,omitempty"`
}

// Issue is one validation problem inside a batch.
type Issue struct {
	Path    string // "[2].currency"
	Value   string
	Message string
}

func (i Issue) String() string {
	if i.Value != "" {
		return fmt.Sprintf("%s: %s (got %s)", i.Path, i.Message, i.Value)
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// BatchError rejects a whole batch.
type BatchError struct {
	Issues []Issue
}

func (e *BatchError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("procurement batch rejected, %d issue(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

// Validate decodes a JSON array of line items. Either every item is valid and all are returned,
// or a *BatchError describes every problem.
func Validate(data []byte) ([]LineItem, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &BatchError{Issues: []Issue{{Path: "$", Message: "expected a JSON array of objects: " + err.Error()}}}
	}
	if dec.More() {
		return nil, &BatchError{Issues: []Issue{{Path: "$", Message: "trailing data after the array"}}}
	}
	return ValidateItems(raw)
}

func ValidateItems(raw []map[string]any) ([]LineItem, error) {
	if len(raw) == 0 {
		return nil, &BatchError{Issues: []Issue{{Path: "$", Message: "batch is empty"}}}
	}

	var issues []Issue
	items := make([]LineItem, 0, len(raw))
	for i, obj := range raw {
		item, itemIssues := validateItem(i, obj)
		issues = append(issues, itemIssues...)
		items = append(items, item)
	}
	if len(issues) > 0 {
		return nil, &BatchError{Issues: issues}
	}

	for i := range items {
		applyTransforms(&items[i])
	}
	return items, nil
}

func validateItem(index int, obj map[string]any) (LineItem, []Issue) {
	var issues []Issue
	add := func(field string, value any, msg string) {
		path := fmt.Sprintf("[%d]", index)
		if field != "" {
			path += "." + field
		}
		issues = append(issues, Issue{Path: path, Value: display(value), Message: msg})
	}

	if obj == nil {
		add("", nil, "item must be an object")
		return LineItem{}, issues
	}

	unknown := make([]string, 0)
	for key := range obj {
		if _, ok := fieldIndex[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		add(key, nil, "unknown field")
	}

	var item LineItem
	for _, spec := range Fields {
		value, present := obj[spec.Name]
		if !present || value == nil || isBlankString(value) {
			if spec.Required {
				add(spec.Name, nil, "required field is missing")
			}
			continue
		}
		if msg := assign(&item, spec, value); msg != "" {
			add(spec.Name, value, msg)
		}
	}
	return item, issues
}

// assign checks one value and stores it on the item; a non-empty return is the problem found.
func assign(item *LineItem, spec FieldSpec, value any) string {
	switch spec.Kind {
	case kindText:
		s, ok := value.(string)
		if !ok {
			return "must be a string"
		}
		setText(item, spec.Name, strings.TrimSpace(s))

	case kindEnum:
		s, ok := value.(string)
		if !ok {
			return "must be a string"
		}
		canonical, ok := matchEnum(spec.EnumValues, strings.TrimSpace(s))
		if !ok {
			return "must be one of: " + strings.Join(spec.EnumValues, ", ")
		}
		setText(item, spec.Name, canonical)

	case kindCurrency:
		s, ok := value.(string)
		if !ok || !currencyPattern.MatchString(s) {
			return "must be a 3-letter upper-case currency code"
		}
		item.Currency = s

	case kindDate:
		s, ok := value.(string)
		if !ok {
			return "must be a YYYY-MM-DD string"
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return "must be a valid YYYY-MM-DD date"
		}
		if spec.Name == "date" {
			item.Date = t
		} else {
			item.ValidTo = &t
		}

	case kindPositive:
		f, ok := toFloat(value)
		if !ok {
			return "must be a number"
		}
		if f <= 0 {
			return "must be greater than 0"
		}
		switch spec.Name {
		case "qty":
			item.Qty = f
		case "price":
			item.Price = f
		case "moq":
			item.MOQ = &f
		}

	case kindCount:
		n, ok := toInt(value)
		if !ok {
			return "must be a whole number"
		}
		if n < 0 {
			return "must not be negative"
		}
		if spec.Name == "lead_time" {
			item.LeadTime = &n
		} else {
			item.StkQty = &n
		}

	case kindBool:
		b, ok := value.(bool)
		if !ok {
			return "must be true or false"
		}
		item.IsMOQ = b

	case kindEmail:
		s, ok := value.(string)
		if !ok {
			return "must be an email address"
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != strings.TrimSpace(s) {
			return "must be an email address"
		}
		item.From = addr.Address
	}
	return ""
}

func setText(item *LineItem, name, v string) {
	switch name {
	case "supplier":
		item.Supplier = v
	case "part_number":
		item.PartNumber = v
	case "um":
		item.UM = v
	case "condition":
		item.Condition = v
	case "time_unit":
		item.TimeUnit = v
	case "delivery_condition":
		item.DeliveryCondition = v
	case "delivery_place":
		item.DeliveryPlace = v
	case "item_note":
		item.ItemNote = v
	case "email_subject":
		item.EmailSubject = v
	case "description":
		item.Description = v
	}
}

// applyTransforms runs after the whole batch passed validation.
func applyTransforms(item *LineItem) {
	if item.Condition == "IN" {
		item.Condition = "IT"
	}
	if item.LeadTime != nil && *item.LeadTime == 0 && stockNotePattern.MatchString(item.ItemNote) {
		one := int64(1)
		item.LeadTime = &one
		item.TimeUnit = "days"
	}
	if item.LeadTime != nil && item.TimeUnit == "" {
		item.TimeUnit = "days"
	}
}

// matchEnum accepts any letter case and returns the canonical spelling.
func matchEnum(values []string, s string) (string, bool) {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return v, true
		}
	}
	return "", false
}

func toFloat(value any) (float64, bool) {
	n, ok := value.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toInt(value any) (int64, bool) {
	n, ok := value.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int64(f), true
}

func isBlankString(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

func display(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return fmt.Sprintf("%q", v)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
