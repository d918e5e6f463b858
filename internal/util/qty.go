package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	qtyStripPattern   = regexp.MustCompile(`[^0-9.,]`)
	thousandsDot      = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	thousandsComma    = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
	trailingUnitRegex = regexp.MustCompile(`(?i)^\s*(\d+(?:[.,]\d+)?)\s*([A-Za-zА-Яа-яЁё./]*)\s*$`)
)

// ParseQuantity strips everything but digits and separators and parses the rest.
// Only finite positive values are accepted.
func ParseQuantity(input string) (float64, bool) {
	token := qtyStripPattern.ReplaceAllString(input, "")
	token = strings.Trim(token, ".,")
	if token == "" {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(normalizeNumericToken(token), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

// SplitQtyUnit splits a "2 EA" style cell into its quantity text and unit text.
func SplitQtyUnit(input string) (string, string) {
	m := trailingUnitRegex.FindStringSubmatch(strings.ReplaceAll(input, "\u00A0", " "))
	if m == nil {
		return strings.TrimSpace(input), ""
	}
	return m[1], strings.TrimSpace(m[2])
}

// NormalizeUnit maps a unit cell to a unit of measure, falling back to EA.
// A unit equal to the part number means the columns are misaligned and is ignored.
func NormalizeUnit(unit, partNumber string) string {
	u := strings.TrimSpace(unit)
	if u == "" || strings.EqualFold(u, strings.TrimSpace(partNumber)) {
		return "EA"
	}
	switch strings.Trim(strings.ToLower(u), ". ") {
	case "шт", "штук", "штука", "pcs", "pc", "pce", "each", "ea":
		return "EA"
	case "компл", "комплект", "kit", "kt":
		return "KT"
	case "set", "sets":
		return "SET"
	case "пар", "пара", "pair", "pr":
		return "PR"
	case "м", "метр", "m":
		return "M"
	case "кг", "kg":
		return "KG"
	case "л", "l", "ltr":
		return "L"
	}
	return strings.ToUpper(u)
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if thousandsDot.MatchString(compact) && strings.Count(compact, ".") > 1 {
		return strings.ReplaceAll(compact, ".", "")
	}
	if thousandsComma.MatchString(compact) && strings.Count(compact, ",") > 1 {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && strings.Contains(compact, ".") {
		// 1,234.5 or 1.234,5: the last separator is the decimal one.
		if strings.LastIndex(compact, ",") > strings.LastIndex(compact, ".") {
			compact = strings.ReplaceAll(compact, ".", "")
		} else {
			compact = strings.ReplaceAll(compact, ",", "")
		}
	}
	return strings.ReplaceAll(compact, ",", ".")
}
