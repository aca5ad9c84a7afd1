package bank

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// ImportXLSX reads items from a spreadsheet laid out like the CSV format: a
// header row followed by one item per row. An empty sheet name selects the
// first sheet.
func ImportXLSX(path, sheet string) ([]Item, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheets
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var header []string
	items := []Item{}
	for _, row := range rows {
		if blankRecord(row) {
			continue
		}
		if header == nil {
			header = trimAll(row)
			continue
		}
		items = append(items, rowToItem(header, trimAll(row)))
	}
	return items, nil
}

// WriteXLSX writes items to a new workbook using the CSV column layout.
func WriteXLSX(path string, items []Item) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, h := range CSVHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set header %s: %w", h, err)
		}
	}

	for i, it := range items {
		it = Normalize(it)
		values := []any{it.Stem}
		for _, c := range it.Choices {
			values = append(values, c)
		}
		values = append(values, it.AnswerKey, it.Explanation,
			joinList(it.Tags, ", "), it.Difficulty, joinList(it.References, "; "))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
