// Package export renders consultation records as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dukerupert/leadline/internal/model"
)

const (
	// Filename is suggested to the browser in Content-Disposition.
	Filename = "consultations.xlsx"
	// ContentType is the MIME type of the workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetName  = "Consultations"
	TimeLayout = "2006-01-02 15:04:05"
)

// Header is the first row of the sheet.
var Header = []string{"Name", "Phone", "Submitted At", "Privacy Consent", "Status"}

// Rows converts records to sheet rows in the given order, header excluded.
// A nil loc formats timestamps in UTC.
func Rows(records []model.Consultation, loc *time.Location) [][]string {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		consent := "No"
		if r.AgreedToPrivacyPolicy {
			consent = "Yes"
		}
		rows = append(rows, []string{
			r.Name,
			r.PhoneNumber,
			r.CreatedAt.In(loc).Format(TimeLayout),
			consent,
			string(model.NormalizeStatus(string(r.Status))),
		})
	}
	return rows
}

// Consultations writes a single-sheet workbook of records to w.
func Consultations(w io.Writer, records []model.Consultation, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, 1, Header); err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range Rows(records, loc) {
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "A", "B", 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "C", "C", 22); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
