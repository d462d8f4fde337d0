package export

import (
	"fmt"
	"io"

	"leadtracker/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName  = "Leads"
	dateLayout = "2006-01-02 15:04"
)

var headers = []string{"ID", "Nombre", "Correo", "Teléfono", "Interés", "Fecha de registro"}

var widths = []float64{8, 30, 32, 18, 28, 20}

// WriteLeadsXLSX writes the leads as a single-sheet workbook.
func WriteLeadsXLSX(w io.Writer, leads []models.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeHeader(f, SheetName, headerStyle); err != nil {
		return err
	}

	for i, lead := range leads {
		row := i + 2
		values := []any{
			lead.ID,
			lead.FullName,
			lead.Email,
			lead.Phone,
			lead.Interest,
			lead.RegisteredAt.Format(dateLayout),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("write lead %d: %w", lead.ID, err)
			}
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int) error {
	for i, title := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("header column %d: %w", i+1, err)
		}
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("write header %q: %w", title, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("style header %q: %w", title, err)
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("size column %s: %w", col, err)
		}
	}
	return nil
}
