package parts

import "strings"

type priorityRule struct {
	name        string
	subjectOnly bool
	priority    Priority
	match       func(text string) bool
}

func containsFold(needle string) func(string) bool {
	return func(text string) bool {
		return strings.Contains(strings.ToLower(text), needle)
	}
}

func containsLiteral(needle string) func(string) bool {
	return func(text string) bool {
		return strings.Contains(text, needle)
	}
}

// priorityRules are evaluated in order; the first match wins.
// "urgent" is a literal match, so lower-case "urgent stock replenishment" stays WSP while
// "Urgent Stock Replenishment" reaches the USR rule.
var priorityRules = []priorityRule{
	{name: "asap", subjectOnly: true, priority: PriorityAOG, match: containsFold("asap")},
	{name: "urgent", priority: PriorityWSP, match: containsLiteral("urgent")},
	{name: "aog", priority: PriorityAOG, match: containsLiteral("AOG")},
	{name: "no-go", priority: PriorityAOG, match: containsLiteral("NO-GO")},
	{name: "critical", priority: PriorityWSP, match: containsFold("critical")},
	{name: "crt", priority: PriorityWSP, match: containsLiteral("CRT!")},
	{name: "usr", priority: PriorityUSR, match: containsFold("urgent stock replenishment")},
}

// ClassifyPriority maps (subject, text) to exactly one priority. The subject is checked against
// the whole rule list before the text is, so a subject match always wins.
func ClassifyPriority(subject, text string) Priority {
	if p, ok := matchRules(subject, true); ok {
		return p
	}
	if p, ok := matchRules(text, false); ok {
		return p
	}
	return PriorityRTN
}

func matchRules(text string, subject bool) (Priority, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, r := range priorityRules {
		if r.subjectOnly && !subject {
			continue
		}
		if r.match(text) {
			return r.priority, true
		}
	}
	return "", false
}

// classifyRecord looks at the row's own text before the email body; the subject outranks both.
func classifyRecord(subject, body string, rec PartRequestRecord) Priority {
	rowText := strings.TrimSpace(rec.Remarks + "\n" + rec.Description)
	if p := ClassifyPriority(subject, rowText); p != PriorityRTN {
		return p
	}
	return ClassifyPriority(subject, body)
}
