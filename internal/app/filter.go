package app

import (
	"fmt"
	"strings"
	"time"
)

// monthKey combines the independent year and month selections into the
// single "YYYY-MM" key the store filters on. Empty inputs mean no
// constraint; a month without a year is interpreted against the current
// year.
func monthKey(year, month string) string {
	switch {
	case year == "" && month == "":
		return ""
	case month == "":
		return ""
	case year == "":
		return fmt.Sprintf("%d-%s", time.Now().Year(), month)
	default:
		return year + "-" + month
	}
}

// splitMonths decomposes "YYYY-MM" keys into the distinct years and distinct
// months present, preserving the input's newest-first order.
func splitMonths(keys []string) (years, months []string) {
	seenYear := map[string]bool{}
	seenMonth := map[string]bool{}
	for _, key := range keys {
		y, m, ok := strings.Cut(key, "-")
		if !ok {
			continue
		}
		if !seenYear[y] {
			seenYear[y] = true
			years = append(years, y)
		}
		if !seenMonth[m] {
			seenMonth[m] = true
			months = append(months, m)
		}
	}
	return years, months
}

// cycle returns the element after current in choices, with the empty string
// (no constraint) spliced in front. An unknown current restarts the cycle.
func cycle(choices []string, current string) string {
	if len(choices) == 0 {
		return ""
	}
	all := append([]string{""}, choices...)
	for i, c := range all {
		if c == current {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}
