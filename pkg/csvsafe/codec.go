// Package csvsafe parses and serializes delimited text with spreadsheet
// formula-injection neutralization applied on the way out.
package csvsafe

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// ErrNoHeader is returned when the input contains no header line at all.
var ErrNoHeader = errors.New("csvsafe: missing header line")

// formulaTriggers is the canonical set of cell-leading characters that
// spreadsheet applications interpret as formula starts. Cells beginning with
// one of these are prefixed with a single quote during serialization.
const formulaTriggers = "=+-@\t\r"

// Row is a single parsed record, keyed by header name.
type Row struct {
	// Line is the 1-based line number the record started on in the source text.
	Line   int
	Values map[string]string
}

// Document is the result of parsing one delimited text payload.
type Document struct {
	Headers []string
	Rows    []Row
}

type Option func(*options)

type options struct {
	delimiter rune
}

func WithDelimiter(d rune) Option {
	return func(o *options) { o.delimiter = d }
}

// Parse reads delimited text. The first non-empty record is the header line;
// subsequent records are zipped to the headers positionally. Records shorter
// than the header are padded with empty strings, longer ones are truncated.
func Parse(text string, opts ...Option) (*Document, error) {
	o := options{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}

	text = strings.TrimPrefix(text, "\uFEFF")

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = o.delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrNoHeader
		}
		return nil, err
	}
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	doc := &Document{Headers: headers}
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if isBlank(rec) {
			continue
		}
		line, _ := r.FieldPos(0)

		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				values[h] = rec[i]
			} else {
				values[h] = ""
			}
		}
		doc.Rows = append(doc.Rows, Row{Line: line, Values: values})
	}
	return doc, nil
}

// Serialize renders a header line followed by one line per row, in the given
// header order. Every cell passes through formula sanitization before
// delimiter escaping.
func Serialize(headers []string, rows []map[string]string, opts ...Option) string {
	o := options{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}

	var b strings.Builder
	writeRecord(&b, headers, o.delimiter)
	for _, row := range rows {
		rec := make([]string, len(headers))
		for i, h := range headers {
			rec[i] = row[h]
		}
		writeRecord(&b, rec, o.delimiter)
	}
	return b.String()
}

// SerializeRecords is Serialize for positional records already in header order.
func SerializeRecords(headers []string, records [][]string, opts ...Option) string {
	o := options{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}

	var b strings.Builder
	writeRecord(&b, headers, o.delimiter)
	for _, rec := range records {
		row := make([]string, len(headers))
		copy(row, rec)
		writeRecord(&b, row, o.delimiter)
	}
	return b.String()
}

func writeRecord(b *strings.Builder, rec []string, delimiter rune) {
	for i, cell := range rec {
		if i > 0 {
			b.WriteRune(delimiter)
		}
		b.WriteString(escapeCell(sanitizeCell(cell), delimiter))
	}
	b.WriteByte('\n')
}

// sanitizeCell neutralizes formula injection: a value whose trimmed form
// starts with a trigger character gets a leading single quote so spreadsheet
// applications treat it as literal text.
func sanitizeCell(cell string) string {
	if cell == "" {
		return cell
	}
	// Tab and carriage return trigger before trimming would discard them.
	if strings.ContainsRune(formulaTriggers, rune(cell[0])) {
		return "'" + cell
	}
	trimmed := strings.TrimSpace(cell)
	if trimmed != "" && strings.ContainsRune(formulaTriggers, rune(trimmed[0])) {
		return "'" + cell
	}
	return cell
}

func escapeCell(cell string, delimiter rune) string {
	if strings.ContainsRune(cell, delimiter) ||
		strings.ContainsAny(cell, "\"\n\r") {
		return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return cell
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
