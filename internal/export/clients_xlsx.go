package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ClientRow is one client parsed from an import sheet.
type ClientRow struct {
	Line         int    `json:"-"`
	CompanyName  string `json:"companyName"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// clientHeaders maps normalised header text to a ClientRow field setter.
var clientHeaders = map[string]func(*ClientRow, string){
	"company":       func(r *ClientRow, v string) { r.CompanyName = v },
	"company name":  func(r *ClientRow, v string) { r.CompanyName = v },
	"contact":       func(r *ClientRow, v string) { r.ContactName = v },
	"contact name":  func(r *ClientRow, v string) { r.ContactName = v },
	"email":         func(r *ClientRow, v string) { r.ContactEmail = v },
	"contact email": func(r *ClientRow, v string) { r.ContactEmail = v },
	"phone":         func(r *ClientRow, v string) { r.Phone = v },
	"address":       func(r *ClientRow, v string) { r.Address = v },
}

// ReadClientRows reads clients from the first sheet of an XLSX workbook. The
// first row is the header; columns are matched by name, case-insensitively.
// Blank rows are skipped.
func ReadClientRows(r io.Reader) ([]ClientRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	setters := make([]func(*ClientRow, string), len(rows[0]))
	found := false
	for i, h := range rows[0] {
		if set, ok := clientHeaders[strings.ToLower(strings.TrimSpace(h))]; ok {
			setters[i] = set
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("no recognised columns in header row")
	}

	var out []ClientRow
	for i := 1; i < len(rows); i++ {
		row := ClientRow{Line: i + 1}
		blank := true
		for col, v := range rows[i] {
			v = strings.TrimSpace(v)
			if col < len(setters) && setters[col] != nil && v != "" {
				setters[col](&row, v)
				blank = false
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out, nil
}
