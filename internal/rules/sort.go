package rules

import (
	"slices"
	"strings"
)

// SortKey is the catalog ordering key: the lowercase title.
func SortKey(e Entry) string {
	return strings.ToLower(e.Title)
}

// Sort orders entries by SortKey. Entries with equal keys keep their order.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return strings.Compare(SortKey(a), SortKey(b))
	})
}
