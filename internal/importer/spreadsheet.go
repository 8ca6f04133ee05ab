// Package importer reads route sheets in the fixed column layout agreed
// with the upstream spreadsheet producer. Columns are addressed by letter,
// not header text: the producer guarantees positions, not names.
//
//	A route number   B sequence      C assigned driver
//	D address        E contact info  F customer name
//	G amount         H COD flag      I notes
//
// Row 1 is the header and is skipped.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	colRouteNumber = "A"
	colSequence    = "B"
	colDriverName  = "C"
	colAddress     = "D"
	colContact     = "E"
	colCustomer    = "F"
	colAmount      = "G"
	colCOD         = "H"
	colNotes       = "I"
)

// Row is one parsed stop line from the sheet.
type Row struct {
	RouteNumber  string
	Sequence     int
	DriverName   string
	Address      string
	ContactInfo  string
	CustomerName string
	Amount       float64
	IsCOD        bool
	Notes        string
	Line         int // 1-based sheet row, for error reporting
}

// RowError records a rejected line; parsing continues past it.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// Parse reads the first sheet of an xlsx stream into rows, collecting
// per-row errors rather than aborting on the first bad line.
func Parse(r io.Reader) ([]Row, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}

	var (
		parsed  []Row
		rowErrs []RowError
	)
	for i := range rows {
		line := i + 1
		if line == 1 {
			continue // header
		}
		row, err := parseLine(f, sheet, line)
		if err != nil {
			if err == errBlankLine {
				continue
			}
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		parsed = append(parsed, row)
	}
	return parsed, rowErrs, nil
}

var errBlankLine = fmt.Errorf("blank line")

func parseLine(f *excelize.File, sheet string, line int) (Row, error) {
	cell := func(col string) string {
		v, _ := f.GetCellValue(sheet, fmt.Sprintf("%s%d", col, line))
		return strings.TrimSpace(v)
	}

	row := Row{
		RouteNumber:  cell(colRouteNumber),
		DriverName:   cell(colDriverName),
		Address:      cell(colAddress),
		ContactInfo:  cell(colContact),
		CustomerName: cell(colCustomer),
		Notes:        cell(colNotes),
		Line:         line,
	}

	if row.RouteNumber == "" && row.CustomerName == "" {
		return Row{}, errBlankLine
	}
	if row.RouteNumber == "" {
		return Row{}, fmt.Errorf("missing route number (column %s)", colRouteNumber)
	}
	if row.CustomerName == "" {
		return Row{}, fmt.Errorf("missing customer name (column %s)", colCustomer)
	}

	if seq := cell(colSequence); seq != "" {
		n, err := strconv.Atoi(seq)
		if err != nil || n < 1 {
			return Row{}, fmt.Errorf("bad sequence %q (column %s)", seq, colSequence)
		}
		row.Sequence = n
	}

	if amt := cell(colAmount); amt != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(amt, ",", ""), 64)
		if err != nil {
			return Row{}, fmt.Errorf("bad amount %q (column %s)", amt, colAmount)
		}
		row.Amount = v
	}

	row.IsCOD = parseFlag(cell(colCOD))
	return row, nil
}

// parseFlag accepts the flag spellings seen in producer sheets.
func parseFlag(s string) bool {
	switch strings.ToUpper(s) {
	case "YES", "Y", "TRUE", "1", "COD":
		return true
	}
	return false
}

// ExportRow is one stop line written back out in the same layout.
type ExportRow struct {
	RouteNumber  string
	Sequence     int
	DriverName   string
	Address      string
	ContactInfo  string
	CustomerName string
	Amount       float64
	IsCOD        bool
	Notes        string
}

// Export builds an xlsx file in the producer layout, header row included.
func Export(rows []ExportRow) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := []interface{}{"Route", "Seq", "Driver", "Address", "Contact", "Customer", "Amount", "COD", "Notes"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cod := ""
		if r.IsCOD {
			cod = "YES"
		}
		vals := []interface{}{r.RouteNumber, r.Sequence, r.DriverName, r.Address, r.ContactInfo, r.CustomerName, r.Amount, cod, r.Notes}
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cellName, &vals); err != nil {
			return nil, err
		}
	}
	return f, nil
}
