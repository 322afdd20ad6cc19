package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is one parsed row keyed by trimmed header name.
type Record map[string]string

// Get returns the trimmed value for the first matching column name.
func (r Record) Get(names ...string) string {
	for _, name := range names {
		if v, ok := r[name]; ok {
			trimmed := strings.TrimSpace(v)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// Has reports whether the record carries the named column, even if empty.
func (r Record) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Warning represents a non-fatal issue encountered while decoding.
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result contains the decoded records alongside any warnings.
type Result struct {
	Headers  []string
	Records  []Record
	Warnings []Warning
}

// Decode parses delimited text with a header row into header->value records.
// Rows with a mismatched column count are padded or truncated to the header
// width and reported as warnings. A missing header row is a hard error.
func Decode(data []byte) (*Result, error) {
	br := bufio.NewReader(bytes.NewReader(data))
	stripBOM(br)

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty input: no header row found")
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	result := &Result{Headers: headers}
	rowNum := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("row %d: %w", parseErr.Line, err)
			}
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if len(row) != len(headers) {
			result.Warnings = append(result.Warnings, Warning{
				Row:     rowNum,
				Message: fmt.Sprintf("expected %d columns, found %d", len(headers), len(row)),
			})
		}

		record := make(Record, len(headers))
		for i, header := range headers {
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}

func stripBOM(r *bufio.Reader) {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
}
