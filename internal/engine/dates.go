package engine

import (
	"sort"
	"strings"
	"time"
)

// dateLayouts are the reporting-period formats seen in snapshot files.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseDate tries every known layout.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompareDates orders two reporting-period identifiers. Values that parse as
// dates compare chronologically and sort before anything that does not;
// unparseable values compare as text.
func CompareDates(a, b string) int {
	if a == b {
		return 0
	}
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	case okA && okB && !ta.Equal(tb):
		if ta.Before(tb) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// SortDates returns a sorted copy of dates in ascending period order.
func SortDates(dates []string) []string {
	out := append([]string(nil), dates...)
	sort.SliceStable(out, func(i, j int) bool {
		return CompareDates(out[i], out[j]) < 0
	})
	return out
}
