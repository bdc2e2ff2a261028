// Package export renders a comparison result as an XLSX report or a
// plain-text terminal summary.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/partsdesk/compare-cli/internal/model"
)

// Sheet names in the exported workbook.
const (
	SheetSummary = "Summary"
	SheetMatches = "Matches"
	SheetOnlyA   = "Only in A"
	SheetOnlyB   = "Only in B"
)

// matchColumns defines the ordered Matches sheet columns.
var matchColumns = []string{
	"Key",
	"Description A",
	"Description B",
	"Price A",
	"Price B",
	"Diff $",
	"Diff %",
	"Similarity %",
}

// exclusiveColumns defines the ordered columns of both exclusive sheets.
var exclusiveColumns = []string{"Key", "Description", "Price"}

// WriteXLSX writes the comparison result as a multi-sheet workbook:
// a five-row summary sheet plus up to three data sheets. A data sheet
// is omitted entirely when its sequence is empty.
func WriteXLSX(result model.ComparisonResult, path string) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, result); err != nil {
		return err
	}
	if len(result.Matches) > 0 {
		if err := addMatchesSheet(f, result.Matches); err != nil {
			return err
		}
	}
	if len(result.OnlyA) > 0 {
		if err := addExclusiveSheet(f, SheetOnlyA, result.OnlyA); err != nil {
			return err
		}
	}
	if len(result.OnlyB) > 0 {
		if err := addExclusiveSheet(f, SheetOnlyB, result.OnlyB); err != nil {
			return err
		}
	}

	return eris.Wrap(f.Save(path), "export: save workbook")
}

func addSummarySheet(f *xlsx.File, result model.ComparisonResult) error {
	sheet, err := f.AddSheet(SheetSummary)
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	header := sheet.AddRow()
	header.AddCell().SetString("Metric")
	header.AddCell().SetString("Value")

	metrics := []struct {
		name  string
		value int
	}{
		{"Total File A", result.TotalA},
		{"Total File B", result.TotalB},
		{"Matches", len(result.Matches)},
		{"Only in A", len(result.OnlyA)},
		{"Only in B", len(result.OnlyB)},
	}
	for _, m := range metrics {
		row := sheet.AddRow()
		row.AddCell().SetString(m.name)
		row.AddCell().SetInt(m.value)
	}
	return nil
}

func addMatchesSheet(f *xlsx.File, matches []model.MatchRecord) error {
	sheet, err := f.AddSheet(SheetMatches)
	if err != nil {
		return eris.Wrap(err, "export: add matches sheet")
	}

	header := sheet.AddRow()
	for _, col := range matchColumns {
		header.AddCell().SetString(col)
	}

	for _, m := range matches {
		row := sheet.AddRow()
		row.AddCell().SetString(m.Key)
		row.AddCell().SetString(m.DescriptionA)
		row.AddCell().SetString(m.DescriptionB)
		row.AddCell().SetFloat(m.PriceA)
		row.AddCell().SetFloat(m.PriceB)
		row.AddCell().SetFloat(m.PriceDiff)
		row.AddCell().SetFloat(m.PriceDiffPct)
		row.AddCell().SetFloat(m.Similarity)
	}
	return nil
}

func addExclusiveSheet(f *xlsx.File, name string, records []model.ExclusiveRecord) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}

	header := sheet.AddRow()
	for _, col := range exclusiveColumns {
		header.AddCell().SetString(col)
	}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Key)
		row.AddCell().SetString(r.Description)
		row.AddCell().SetFloat(r.Price)
	}
	return nil
}
