// Package export renders flat field-map datasets into downloadable formats.
package export

import (
	"fmt"
	"strings"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/tabular"
)

// Dataset defines tabular export content: ordered headers plus one
// header->value map per row.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. Cells are looked up by
// header name so missing cells render as empty fields and every row matches
// the header width.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	var sb strings.Builder
	writeLine := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(tabular.EscapeValue(cell))
		}
		sb.WriteString("\r\n")
	}
	writeLine(data.Headers)
	cells := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			cells[i] = row[header]
		}
		writeLine(cells)
	}
	return []byte(sb.String()), nil
}
