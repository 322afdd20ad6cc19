package tabular

import "strings"

// EscapeValue quotes a field for CSV output when it contains a comma, a
// double quote, or a newline; internal quotes are doubled. Fields without
// special characters pass through unchanged.
func EscapeValue(value string) string {
	if !strings.ContainsAny(value, ",\"\n\r") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
