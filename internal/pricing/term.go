package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultTermMonths is the contract length assumed when a term label cannot be read.
const DefaultTermMonths = 36

var (
	monthsPattern = regexp.MustCompile(`(?i)(\d+)\s*month`)
	yearsPattern  = regexp.MustCompile(`(?i)(\d+)\s*year`)
)

// ParseTermMonths converts a free-text contract term such as "36 Months" or "2 Year"
// into a number of months. The result is always at least 1.
func ParseTermMonths(term string) int {
	term = strings.TrimSpace(term)
	if term == "" {
		return DefaultTermMonths
	}

	if m := monthsPattern.FindStringSubmatch(term); m != nil {
		return positiveOrDefault(m[1], 1)
	}
	if m := yearsPattern.FindStringSubmatch(term); m != nil {
		return positiveOrDefault(m[1], 12)
	}

	return DefaultTermMonths
}

func positiveOrDefault(digits string, factor int) int {
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 || n > 1200 {
		return DefaultTermMonths
	}
	return n * factor
}
