package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions configures the XLSX table reader.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // extra rows to skip before the header row
}

// ReadXLSX reads one worksheet into a Table. The first row after
// SkipRows is the header row. Numeric cells are decoded as float64 so
// downstream coercion sees real numbers; everything else stays string.
func ReadXLSX(path string, opts XLSXOptions) (Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return Table{}, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := pickSheet(f, opts)
	if err != nil {
		return Table{}, err
	}

	var t Table
	headerAt := opts.SkipRows
	for i, row := range sheet.Rows {
		if i < headerAt {
			continue
		}
		if i == headerAt {
			t.Headers = make([]string, len(row.Cells))
			for j, cell := range row.Cells {
				t.Headers[j] = cell.String()
			}
			continue
		}
		t.Rows = append(t.Rows, rowToCells(row))
	}

	if t.Headers == nil {
		return Table{}, eris.Errorf("xlsx: sheet %q has no header row", sheet.Name)
	}
	return t, nil
}

func pickSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToCells(row *xlsx.Row) []any {
	cells := make([]any, len(row.Cells))
	for j, cell := range row.Cells {
		if cell.Type() == xlsx.CellTypeNumeric {
			if v, err := cell.Float(); err == nil {
				cells[j] = v
				continue
			}
		}
		cells[j] = cell.String()
	}
	return cells
}
