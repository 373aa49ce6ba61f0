package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

// ErrNoColumns is returned when a dataset has no headers to lay out.
var ErrNoColumns = errors.New("dataset has no columns")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Dataset is a table keyed by header name. Cells missing from a row render empty.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Record returns the cells of row i in header order.
func (d Dataset) Record(i int) []string {
	record := make([]string, len(d.Headers))
	for col, header := range d.Headers {
		record[col] = d.Rows[i][header]
	}
	return record
}

// CSVOption tweaks CSV output.
type CSVOption func(*CSVExporter)

// WithDelimiter switches the field separator, e.g. ';' for locales that use a decimal comma.
func WithDelimiter(r rune) CSVOption {
	return func(e *CSVExporter) { e.delimiter = r }
}

// WithBOM prefixes the output with a UTF-8 byte order mark so spreadsheet apps detect the encoding.
func WithBOM() CSVOption {
	return func(e *CSVExporter) { e.bom = true }
}

// CSVExporter writes datasets as CSV.
type CSVExporter struct {
	delimiter rune
	bom       bool
}

// NewCSVExporter builds a comma separated exporter.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{delimiter: ','}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ContentType is the MIME type of rendered output.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Render writes the header line followed by one line per row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("render csv: %w", ErrNoColumns)
	}
	var buf bytes.Buffer
	if e.bom {
		buf.Write(utf8BOM)
	}
	w := csv.NewWriter(&buf)
	w.Comma = e.delimiter
	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i := range data.Rows {
		if err := w.Write(data.Record(i)); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
