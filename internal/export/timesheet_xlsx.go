package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const timesheetSheet = "Timesheet"

var timesheetColumns = []string{"Date", "Operator", "Job", "Start", "End", "Hours", "Notes"}

// TimesheetRow is one work session rendered for the timesheet.
type TimesheetRow struct {
	Date     time.Time
	Operator string
	Job      string
	Start    time.Time
	End      *time.Time
	Hours    float64
	Notes    string
}

// WriteTimesheet renders rows as an XLSX workbook with a totals row.
func WriteTimesheet(w io.Writer, rows []TimesheetRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), timesheetSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	header := make([]interface{}, len(timesheetColumns))
	for i, c := range timesheetColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(timesheetSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(timesheetSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	var total float64
	for i, r := range rows {
		end := ""
		if r.End != nil {
			end = r.End.Format("15:04")
		}
		row := []interface{}{
			r.Date.Format("2006-01-02"),
			r.Operator,
			r.Job,
			r.Start.Format("15:04"),
			end,
			r.Hours,
			r.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(timesheetSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
		total += r.Hours
	}

	totalRow := len(rows) + 2
	totalLabel, _ := excelize.CoordinatesToCellName(5, totalRow)
	totalCell, _ := excelize.CoordinatesToCellName(6, totalRow)
	if err := f.SetCellValue(timesheetSheet, totalLabel, "Total"); err != nil {
		return err
	}
	if err := f.SetCellValue(timesheetSheet, totalCell, total); err != nil {
		return err
	}
	if err := f.SetRowStyle(timesheetSheet, totalRow, totalRow, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(timesheetSheet, "A", "F", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(timesheetSheet, "G", "G", 48); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// RoundHours converts a duration to hours rounded to two decimals.
func RoundHours(d time.Duration) float64 {
	return float64(int64(d.Hours()*100+0.5)) / 100
}
