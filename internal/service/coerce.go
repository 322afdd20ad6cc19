package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// serialDateEpoch is the spreadsheet day-zero (1899-12-30).
var serialDateEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var categorySuffixRe = regexp.MustCompile(`\(([^)]+)\)\s*$`)

var leadingNumberRe = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?`)

// parseScore coerces a numeric field permissively: a trailing unit or
// annotation after the number ("7 pts") is ignored, anything without a
// leading number defaults to 0.
func parseScore(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err == nil {
		return value
	}
	if prefix := leadingNumberRe.FindString(trimmed); prefix != "" {
		value, err = strconv.ParseFloat(prefix, 64)
		if err == nil {
			return value
		}
	}
	return 0
}

// coerceDate converts a spreadsheet serial date (a pure number strictly
// between 1000 and 100000, counted as days since 1899-12-30) into an ISO
// calendar date string. Any other non-empty value passes through unchanged;
// empty input yields the empty string.
func coerceDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	serial, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || serial <= 1000 || serial >= 100000 {
		return trimmed
	}
	return serialDateEpoch.AddDate(0, 0, int(serial)).Format("2006-01-02")
}

// categoryID extracts the parenthesized suffix of a category label, e.g.
// "Organizational Context (GV.OC)" -> "GV.OC". Labels without parentheses
// pass through unchanged.
func categoryID(category string) string {
	trimmed := strings.TrimSpace(category)
	if m := categorySuffixRe.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return trimmed
}

// splitList breaks a semicolon-separated (legacy columns: comma-separated)
// list field into trimmed, non-empty items.
func splitList(raw string) []string {
	separator := ";"
	if !strings.Contains(raw, ";") {
		separator = ","
	}
	var items []string
	for _, part := range strings.Split(raw, separator) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// parseYes decodes the "Yes"/non-"Yes" boolean encoding.
func parseYes(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "yes")
}

func formatYes(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func formatScore(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// nowISO stamps mutation timestamps.
func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
