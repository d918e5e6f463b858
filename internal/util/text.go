package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces      = regexp.MustCompile(`\s+`)
	dashReplacer  = strings.NewReplacer("–", "-", "—", "-", "‒", "-", "―", "-", "−", "-", "‐", "-", "‑", "-")
	headerTrimSet = " .:*#\u00A0"
)

// CollapseSpaces replaces every whitespace run (newlines included) with one space.
func CollapseSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// NormalizeHeader prepares a table header cell for synonym matching.
func NormalizeHeader(input string) string {
	s := norm.NFKC.String(input)
	s = strings.ToLower(strings.ReplaceAll(s, "ё", "е"))
	s = CollapseSpaces(s)
	return strings.Trim(s, headerTrimSet)
}

// NormalizeDashes maps en/em dashes and similar code points to an ASCII hyphen.
func NormalizeDashes(input string) string {
	return dashReplacer.Replace(input)
}

// NormalizePartNumber cleans a part number cell: NFKC, ASCII hyphens, no inner whitespace runs.
func NormalizePartNumber(input string) string {
	s := norm.NFKC.String(input)
	s = NormalizeDashes(s)
	s = CollapseSpaces(s)
	return strings.Trim(s, " ,;:")
}

func HasCyrillic(input string) bool {
	for _, r := range input {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

func HasDigit(input string) bool {
	for _, r := range input {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
