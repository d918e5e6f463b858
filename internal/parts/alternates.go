package parts

import (
	"regexp"
	"strings"

	"partsdesk/internal/util"
)

const (
	altRemarksLabel = "Alt P/N:"
	altToken        = `[A-Z0-9][A-Z0-9\-./]*[A-Z0-9]|[A-Z0-9]`
)

var (
	// 642-1000-505 (ALT 642-1000-501)
	inlineAltPattern = regexp.MustCompile(`(?i)^(.*?)\s*\(\s*alt(?:ernate)?\b\.?\s*(?:p/?n\b)?\s*[:#.]?\s*([^()]+?)\s*\)\s*$`)
	// "ALT 642-1000-501-1" inside free-text notes
	noteAltPattern = regexp.MustCompile(`(?i)\balt(?:ernate)?(?:[\s.:#]+p/?n)?[\s.:#]+(` + altToken + `)`)
	// a previously rendered "Alt P/N: a, b" segment; the list ends at the first non part number
	remarksAltPattern = regexp.MustCompile(`(?i)alt p/n:\s*([^;]*)`)
	leadingAltToken   = regexp.MustCompile(`(?i)^\s*(` + altToken + `)`)
	altTokenSplit     = regexp.MustCompile(`[\n\r,;]+|\s+or\s+|\s+или\s+`)
	altPrefix         = regexp.MustCompile(`(?i)^alt(?:ernate)?(?:[\s.:#]+p/?n)?[\s.:#]+`)
)

// SplitInlineAlternates splits "MAIN (ALT X)" into MAIN and its alternates.
func SplitInlineAlternates(partCell string) (string, []string) {
	m := inlineAltPattern.FindStringSubmatch(strings.TrimSpace(partCell))
	if m == nil {
		return partCell, nil
	}
	return m[1], splitAlternateTokens(m[2])
}

// ExtractNoteAlternates pulls ALT markers and any earlier "Alt P/N:" segment out of a notes text.
// The returned notes have both removed.
func ExtractNoteAlternates(notes string) (string, []string) {
	var alts []string
	rest := remarksAltPattern.ReplaceAllStringFunc(notes, func(seg string) string {
		m := remarksAltPattern.FindStringSubmatch(seg)
		listed, tail := splitRenderedAlternates(m[1])
		alts = append(alts, listed...)
		return " " + tail
	})
	rest = noteAltPattern.ReplaceAllStringFunc(rest, func(seg string) string {
		m := noteAltPattern.FindStringSubmatch(seg)
		if !util.HasDigit(m[1]) {
			return seg
		}
		alts = append(alts, m[1])
		return " "
	})
	return cleanNotes(rest), alts
}

// TokenizeAlternateCell splits a dedicated alternate-number column; cells may hold several
// numbers on separate lines.
func TokenizeAlternateCell(text string) []string {
	return splitAlternateTokens(text)
}

// MergeAlternates concatenates the sources in order, dropping blanks, duplicates
// (case-insensitive) and the primary part number.
func MergeAlternates(primary string, sources ...[]string) []string {
	seen := map[string]struct{}{strings.ToUpper(strings.TrimSpace(primary)): {}}
	out := []string{}
	for _, src := range sources {
		for _, alt := range src {
			alt = util.NormalizePartNumber(alt)
			if alt == "" {
				continue
			}
			key := strings.ToUpper(alt)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, alt)
		}
	}
	return out
}

// RenderRemarks joins the notes and the "Alt P/N:" segment.
func RenderRemarks(notes string, alts []string) string {
	parts := []string{}
	if n := strings.TrimSpace(notes); n != "" {
		parts = append(parts, n)
	}
	if len(alts) > 0 {
		parts = append(parts, altRemarksLabel+" "+strings.Join(alts, ", "))
	}
	return strings.Join(parts, "; ")
}

// MergeRemarks re-renders remarks so reprocessing never appends a second "Alt P/N:" segment.
func MergeRemarks(primary, remarks string, extra ...[]string) ([]string, string) {
	notes, noted := ExtractNoteAlternates(remarks)
	alts := MergeAlternates(primary, append([][]string{noted}, extra...)...)
	return alts, RenderRemarks(notes, alts)
}

func splitAlternateTokens(text string) []string {
	out := []string{}
	for _, tok := range altTokenSplit.Split(text, -1) {
		tok = altPrefix.ReplaceAllString(strings.TrimSpace(tok), "")
		tok = strings.Trim(tok, " ()[]")
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// splitRenderedAlternates reads the comma list after "Alt P/N:". Tokens must carry a digit;
// the first one that does not, and everything after it, is returned as note text.
func splitRenderedAlternates(list string) ([]string, string) {
	var alts []string
	pieces := strings.Split(list, ",")
	for i, piece := range pieces {
		m := leadingAltToken.FindStringSubmatch(piece)
		if m == nil || !util.HasDigit(m[1]) {
			return alts, strings.Join(pieces[i:], ",")
		}
		alts = append(alts, m[1])
		if rest := strings.TrimSpace(piece[len(m[0]):]); rest != "" {
			return alts, strings.Join(append([]string{rest}, pieces[i+1:]...), ",")
		}
	}
	return alts, ""
}

func cleanNotes(notes string) string {
	s := util.CollapseSpaces(notes)
	s = strings.ReplaceAll(s, "/ /", "/")
	s = strings.ReplaceAll(s, " ;", ";")
	return strings.Trim(s, " /,;-")
}
