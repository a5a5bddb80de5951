package classify

import (
	"strings"
	"testing"
)

func TestParseReply_WellFormed(t *testing.T) {
	reply := "Category: RE Industry\nSynopsis: A wind farm broke ground. Construction starts next year."

	category, synopsis, err := ParseReply(reply)
	if err != nil {
		t.Fatalf("ParseReply failed: %v", err)
	}
	if category != "RE Industry" {
		t.Errorf("category = %q", category)
	}
	if synopsis != "A wind farm broke ground. Construction starts next year." {
		t.Errorf("synopsis = %q", synopsis)
	}
}

func TestParseReply_BracketedValuesFromTemplateEcho(t *testing.T) {
	reply := "Category: [Govt policy]\nSynopsis: [New subsidy rules were announced.]"

	category, synopsis, err := ParseReply(reply)
	if err != nil {
		t.Fatalf("ParseReply failed: %v", err)
	}
	if category != "Govt policy" {
		t.Errorf("category = %q", category)
	}
	if synopsis != "New subsidy rules were announced." {
		t.Errorf("synopsis = %q", synopsis)
	}
}

func TestParseReply_PreambleBeforeMarkers(t *testing.T) {
	reply := "Sure, here is the analysis you asked for.\n\nCategory: Stakeholders\nSynopsis: Residents filed a complaint.\nIt spans two lines."

	category, synopsis, err := ParseReply(reply)
	if err != nil {
		t.Fatalf("ParseReply failed: %v", err)
	}
	if category != "Stakeholders" {
		t.Errorf("category = %q", category)
	}
	if !strings.Contains(synopsis, "two lines") {
		t.Errorf("synopsis should keep everything after the marker, got %q", synopsis)
	}
}

func TestParseReply_MalformedReplies(t *testing.T) {
	cases := map[string]string{
		"no markers at all":     "The article is about offshore wind.",
		"missing category":      "Synopsis: something happened.",
		"missing synopsis":      "Category: CIP",
		"empty category value":  "Category:\nSynopsis: text",
		"empty synopsis value":  "Category: CIP\nSynopsis:   ",
		"empty reply":           "",
		"truncated mid-marker":  "Catego",
		"whitespace only reply": "   \n  ",
	}

	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseReply(reply); err == nil {
				t.Errorf("expected parse error for %q", reply)
			}
		})
	}
}
