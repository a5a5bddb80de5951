package classify

import (
	"fmt"
	"strings"
)

// Reply markers the model is instructed to emit. The reply is free text, so
// parsing is a contract with an unreliable counterparty: every deviation maps
// to a parse error, and the caller maps that to sentinel values.
const (
	markerCategory = "Category:"
	markerSynopsis = "Synopsis:"
)

// ParseReply extracts the category and synopsis from a model reply. The
// category is the text after the first "Category:" marker up to the end of
// that line; the synopsis is everything after the first "Synopsis:" marker,
// trimmed. Missing markers or empty values are errors.
func ParseReply(reply string) (category, synopsis string, err error) {
	catIdx := strings.Index(reply, markerCategory)
	if catIdx < 0 {
		return "", "", fmt.Errorf("reply has no %q marker", markerCategory)
	}

	rest := reply[catIdx+len(markerCategory):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		category = rest[:nl]
	} else {
		category = rest
	}
	category = trimValue(category)
	if category == "" {
		return "", "", fmt.Errorf("reply has an empty category")
	}

	synIdx := strings.Index(reply, markerSynopsis)
	if synIdx < 0 {
		return "", "", fmt.Errorf("reply has no %q marker", markerSynopsis)
	}

	synopsis = trimValue(reply[synIdx+len(markerSynopsis):])
	if synopsis == "" {
		return "", "", fmt.Errorf("reply has an empty synopsis")
	}

	return category, synopsis, nil
}

// trimValue strips whitespace and the square brackets the instruction
// template shows around placeholder values, which some replies echo back.
func trimValue(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && len(s) >= 2 {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
