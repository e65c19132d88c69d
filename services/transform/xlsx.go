package transform

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook flattens the first sheet of an xlsx file into a Table. The
// first row is the header; cells are kept as strings the way the sheet
// serializes them.
func ReadWorkbook(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	t := &Table{Headers: rows[0]}
	for _, raw := range rows[1:] {
		row := make(map[string]any, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(raw) && raw[i] != "" {
				row[h] = raw[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteWorkbook renders the table into a single-sheet xlsx file.
func WriteWorkbook(t *Table, sheetName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]any, len(t.Headers))
		for j, h := range t.Headers {
			if v, ok := row[h]; ok {
				cells[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
