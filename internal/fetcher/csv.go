package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// CSVOptions configures the CSV table reader.
type CSVOptions struct {
	Delimiter  rune   // default ','
	Comment    rune   // comment character (0 = none)
	Charset    string // e.g. "windows-1252" for legacy vendor exports; "" = UTF-8
	LazyQuotes bool
	TrimSpace  bool // trim whitespace around every field
}

// ReadCSV parses a CSV stream into a Table. The first record is the
// header row; remaining records become data rows. Rows may have
// variable field counts — short rows are padded by the normalizer's
// out-of-range handling, not here.
func ReadCSV(r io.Reader, opts CSVOptions) (Table, error) {
	if opts.Charset != "" {
		enc, err := htmlindex.Get(opts.Charset)
		if err != nil {
			return Table{}, eris.Wrapf(err, "csv: unsupported charset %q", opts.Charset)
		}
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	var t Table
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, eris.Wrap(err, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}

		if first {
			first = false
			t.Headers = record
			continue
		}

		row := make([]any, len(record))
		for i, field := range record {
			row[i] = field
		}
		t.Rows = append(t.Rows, row)
	}

	if first {
		return Table{}, eris.New("csv: empty input, no header row")
	}
	return t, nil
}
