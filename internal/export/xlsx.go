// Package export encodes generated tables into downloadable spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/upb/llm-datagen/services/generator"
)

// SheetName is the single worksheet every export writes
const SheetName = "Data"

// ContentTypeXLSX is the media type for the encoded workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes table as a workbook with a header row followed by one row per record
func WriteXLSX(w io.Writer, table *generator.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]any, len(table.Columns))
	for i, name := range table.Columns {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range table.Rows {
		values := make([]any, len(table.Columns))
		for i, name := range table.Columns {
			values[i] = cellValue(row[name])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// cellValue keeps scalars as-is and renders anything else with fmt
func cellValue(v any) any {
	switch v := v.(type) {
	case nil:
		return ""
	case string, bool, int, int64, float64:
		return v
	default:
		return fmt.Sprint(v)
	}
}
