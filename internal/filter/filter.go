// Package filter computes row visibility from an arbitration-ID query.
package filter

import (
	"strings"

	"github.com/tOgg1/canplay/internal/models"
)

// Matches reports whether id passes query: an empty query matches everything,
// otherwise id must contain query ignoring case.
func Matches(id, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(id), strings.ToLower(query))
}

// Visibility returns one flag per frame, recomputed from scratch on each call.
func Visibility(frames []models.Frame, query string) []bool {
	visible := make([]bool, len(frames))
	needle := strings.ToLower(query)
	for i := range frames {
		visible[i] = needle == "" || strings.Contains(strings.ToLower(frames[i].ArbitrationID), needle)
	}
	return visible
}

// VisibleIDs applies the same rule to a list of identifiers, such as the
// activity grid, so both surfaces agree.
func VisibleIDs(ids []string, query string) []bool {
	visible := make([]bool, len(ids))
	for i, id := range ids {
		visible[i] = Matches(id, query)
	}
	return visible
}

// Count returns how many entries in visible are set.
func Count(visible []bool) int {
	n := 0
	for _, v := range visible {
		if v {
			n++
		}
	}
	return n
}
