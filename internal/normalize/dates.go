package normalize

import (
	"regexp"

	"contracheques/internal/core"
)

var competencyPattern = regexp.MustCompile(`\d{2}/\d{4}`)

// ResolveCompetencyDate scans a page's raw text for the first MM/YYYY
// occurrence. A page represents exactly one competency period, so the
// result applies to every line item sourced from it. Pages without a
// match get the opaque sentinel, never an error.
func ResolveCompetencyDate(pageText string) string {
	if m := competencyPattern.FindString(pageText); m != "" {
		return m
	}
	return core.DateSentinel
}

// ApplyCompetencyDate stamps every item with the page's resolved date.
func ApplyCompetencyDate(items []core.LineItem, date string) {
	for i := range items {
		items[i].Date = date
	}
}
