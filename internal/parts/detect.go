package parts

import (
	"net/mail"
	"sort"
	"strings"
)

var aviationKeywords = []string{
	"aircraft", "aog", "p/n", "part number", "part no", "alt p/n", "boeing", "airbus", "embraer",
	"bombardier", "sukhoi", "superjet", "a320", "a321", "a330", "b737", "b777", "crj",
	"landing gear", "engine", "apu", "avionics", "mro", "ipc", "cmm", "serviceable", "overhaul",
	"самолет", "самолёт", "воздушн", "вс ", "борт", "запчаст", "двигател", "шасси", "авиа",
	"партномер", "ми-8",
}

// SenderDomain returns the lower-cased part after the last "@", unwrapping display-name forms.
func SenderDomain(from string) string {
	addr := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}
	i := strings.LastIndex(addr, "@")
	if i < 0 {
		return ""
	}
	return strings.Trim(strings.ToLower(addr[i+1:]), " >")
}

// DetectAirline maps a sender to a company name: exact domain first, then containment in
// either direction so subdomains and aliases still resolve.
func DetectAirline(from string, domains map[string]string) (string, bool) {
	domain := SenderDomain(from)
	if domain == "" {
		return "", false
	}
	if name, ok := domains[domain]; ok {
		return name, true
	}
	for _, e := range sortedDomains(domains) {
		if strings.Contains(domain, e.domain) || strings.Contains(e.domain, domain) {
			return e.company, true
		}
	}
	return "", false
}

// IsAviationText reports whether the text mentions aviation-domain vocabulary.
func IsAviationText(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range aviationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type domainEntry struct {
	domain  string
	company string
}

// sortedDomains gives containment matching a stable order: longest domain first.
func sortedDomains(domains map[string]string) []domainEntry {
	out := make([]domainEntry, 0, len(domains))
	for d, c := range domains {
		out = append(out, domainEntry{domain: d, company: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].domain) != len(out[j].domain) {
			return len(out[i].domain) > len(out[j].domain)
		}
		return out[i].domain < out[j].domain
	})
	return out
}
