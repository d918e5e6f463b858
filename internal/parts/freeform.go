package parts

import (
	"regexp"
	"strings"

	"partsdesk/internal/util"
)

// Part-number shapes. A token must contain a digit and match one of them.
var (
	PartNumberAlnumHyphen     = regexp.MustCompile(`^[A-Za-z0-9]+(?:-[A-Za-z0-9]+)+$`)
	PartNumberAlnumDot        = regexp.MustCompile(`^[A-Za-z0-9]+(?:\.[A-Za-z0-9]+)+$`)
	PartNumberAlnumSlash      = regexp.MustCompile(`^[A-Za-z0-9]+(?:/[A-Za-z0-9\-]+)+$`)
	PartNumberBareAlnum       = regexp.MustCompile(`^[A-Za-z0-9]{2,}$`)
	PartNumberLetterDigit     = regexp.MustCompile(`^[A-Za-z]{1,5}\d+[A-Za-z0-9\-]*$`)
	PartNumberCommaMultiToken = regexp.MustCompile(`^[A-Za-z0-9\-./]+(?:\s*,\s*[A-Za-z0-9\-./]+)+$`)
)

var partNumberShapes = []*regexp.Regexp{
	PartNumberAlnumHyphen,
	PartNumberAlnumDot,
	PartNumberAlnumSlash,
	PartNumberBareAlnum,
	PartNumberLetterDigit,
	PartNumberCommaMultiToken,
}

// Description shapes: words only, in upper, title, lower or Cyrillic script.
var (
	DescriptionUpperWords    = regexp.MustCompile(`^[A-Z][A-Z\s\-/,&()'.]*[A-Z)]$`)
	DescriptionTitleWords    = regexp.MustCompile(`^[A-Z][a-z]+(?:[\s\-/,]+[A-Za-z][A-Za-z()]*)*$`)
	DescriptionLowerWords    = regexp.MustCompile(`^[a-z]+(?:[\s\-/,]+[a-z()]+)*$`)
	DescriptionCyrillicWords = regexp.MustCompile(`^[А-ЯЁа-яё][А-ЯЁа-яёA-Za-z\s\-/,().]*$`)
)

var descriptionShapes = []*regexp.Regexp{
	DescriptionUpperWords,
	DescriptionTitleWords,
	DescriptionLowerWords,
	DescriptionCyrillicWords,
}

var (
	freeformQtyPattern   = regexp.MustCompile(`(?i)(?:^|[\s|;:\t])(?:qty|q-ty|кол-во)?[\s:=]*(\d+(?:[.,]\d+)?)\s*(ea|each|pcs|pc|pce|set|sets|kit|kt|pr|шт\.?|компл\.?)?\.?\s*$`)
	freeformColumnSplit  = regexp.MustCompile(`\t+|\s*\|\s*|\s*;\s*|\s{2,}`)
	freeformLeadingIndex = regexp.MustCompile(`^\s*(?:\d{1,3}[.)]|#\d{1,3}|[-*•])\s+`)
)

var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^--+$`),
	regexp.MustCompile(`^>`),
	regexp.MustCompile(`(?i)^(спасибо|с уважением|thank|thanks|best regards|regards|kind regards|br,)`),
	regexp.MustCompile(`(?i)^(тел|tel|phone|mob|fax|факс)[.:\s]`),
	regexp.MustCompile(`(?i)^e-?mail[:\s]`),
	regexp.MustCompile(`(?i)^(from|sent|to|cc|subject|от|кому|тема|отправлено):`),
	regexp.MustCompile(`(?i)^(http|www\.)`),
}

func IsPartNumber(token string) bool {
	t := strings.TrimSpace(token)
	if t == "" || !util.HasDigit(t) {
		return false
	}
	for _, re := range partNumberShapes {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

func IsDescription(token string) bool {
	t := strings.TrimSpace(token)
	if t == "" || util.HasDigit(t) {
		return false
	}
	for _, re := range descriptionShapes {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

// ParseFreeform is the recall-oriented fallback for bodies without a usable table.
// Ambiguous rows can be mis-swapped; that is accepted.
func ParseFreeform(text string) []PartRequestRecord {
	out := []PartRequestRecord{}
	for _, line := range splitLines(text) {
		if rec, ok := parseFreeformLine(line); ok {
			out = append(out, rec)
		}
	}
	return out
}

func parseFreeformLine(line string) (PartRequestRecord, bool) {
	if isLikelyNoise(line) {
		return PartRequestRecord{}, false
	}
	line = freeformLeadingIndex.ReplaceAllString(line, "")

	loc := freeformQtyPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return PartRequestRecord{}, false
	}
	qtyText := line[loc[2]:loc[3]]
	unit := ""
	if loc[4] >= 0 {
		unit = line[loc[4]:loc[5]]
	}
	rest := strings.TrimSpace(line[:loc[0]])
	rest = strings.TrimRight(rest, " -–—:|;,")

	pn, desc := splitPartAndDescription(rest)
	if pn == "" || desc == "" {
		return PartRequestRecord{}, false
	}

	var commaAlts []string
	if PartNumberCommaMultiToken.MatchString(pn) {
		tokens := splitAlternateTokens(pn)
		pn, commaAlts = tokens[0], tokens[1:]
	}

	rec, ok := finalize(draft{partCell: pn, description: desc, quantity: qtyText, unit: unit}, TableOptions{})
	if !ok {
		return PartRequestRecord{}, false
	}
	if len(commaAlts) > 0 {
		rec.AlternatePartNumbers, rec.Remarks = MergeRemarks(rec.PartNumber, rec.Remarks, rec.AlternatePartNumbers, commaAlts)
	}
	return rec, true
}

// splitPartAndDescription assumes "P/N  description" order and swaps when only the second
// column looks like a part number.
func splitPartAndDescription(rest string) (string, string) {
	cols := []string{}
	for _, c := range freeformColumnSplit.Split(rest, -1) {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}

	switch {
	case len(cols) >= 2:
		a, b := cols[0], strings.Join(cols[1:], " ")
		if IsPartNumber(a) {
			return a, b
		}
		if IsPartNumber(cols[len(cols)-1]) && (IsDescription(a) || !IsPartNumber(a)) {
			return cols[len(cols)-1], strings.Join(cols[:len(cols)-1], " ")
		}
		return "", ""
	case len(cols) == 1:
		words := strings.Fields(cols[0])
		if len(words) < 2 {
			return "", ""
		}
		if first := strings.TrimRight(words[0], ":,"); IsPartNumber(first) {
			return first, strings.TrimLeft(strings.Join(words[1:], " "), "-–— ")
		}
		if last := words[len(words)-1]; IsPartNumber(last) {
			return last, strings.TrimRight(strings.Join(words[:len(words)-1], " "), "-–— ")
		}
	}
	return "", ""
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\u00A0", " "))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isLikelyNoise(line string) bool {
	for _, re := range ignorePatterns {
		if re.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}
