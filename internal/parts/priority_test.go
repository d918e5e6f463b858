package parts

import (
	"testing"
	"testing/quick"
)

func TestClassifyPriority(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		body    string
		want    Priority
	}{
		{"empty", "", "", PriorityRTN},
		{"asap in subject", "Need it ASAP", "", PriorityAOG},
		{"asap only counts in subject", "", "please reply asap", PriorityRTN},
		{"urgent", "", "urgent request for quotation", PriorityWSP},
		{"aog literal", "", "A/C is AOG at VKO", PriorityAOG},
		{"aog is case sensitive", "", "catalog attached", PriorityRTN},
		{"no-go", "RFQ", "aircraft NO-GO item", PriorityAOG},
		{"critical", "", "CRITICAL spare", PriorityWSP},
		{"crt", "", "CRT! seal kit", PriorityWSP},
		{"usr", "", "Urgent Stock Replenishment", PriorityUSR},
		{"lower-case urgent outranks usr", "", "urgent stock replenishment", PriorityWSP},
		{"subject wins over body", "AOG: need part", "critical, urgent", PriorityAOG},
		{"subject rule order", "Critical spares", "AOG", PriorityWSP},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyPriority(tc.subject, tc.body); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestClassifyPriorityIsTotal(t *testing.T) {
	valid := func(subject, body string) bool {
		switch ClassifyPriority(subject, body) {
		case PriorityAOG, PriorityWSP, PriorityUSR, PriorityRTN:
			return true
		}
		return false
	}
	if err := quick.Check(valid, nil); err != nil {
		t.Fatal(err)
	}
}

func TestClassifyPrioritySubjectDominates(t *testing.T) {
	prop := func(body string) bool {
		return ClassifyPriority("AOG: need part", body) == PriorityAOG
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatal(err)
	}
}
