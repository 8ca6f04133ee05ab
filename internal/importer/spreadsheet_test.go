package importer

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sheetFromRows(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return &buf
}

func TestParseColumnContract(t *testing.T) {
	buf := sheetFromRows(t, [][]interface{}{
		{"Route", "Seq", "Driver", "Address", "Contact", "Customer", "Amount", "COD", "Notes"},
		{"R-101", 1, "John Smith", "12 Main St", "555-0101", "Acme Corp", "120.50", "YES", "leave at dock"},
		{"R-101", 2, "John Smith", "9 Oak Ave", "", "Beta LLC", "", "", ""},
	})

	rows, rowErrs, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("row errors: %v", rowErrs)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	r := rows[0]
	if r.RouteNumber != "R-101" || r.Sequence != 1 {
		t.Errorf("route/seq = %q/%d", r.RouteNumber, r.Sequence)
	}
	// column C is the driver, column F the customer
	if r.DriverName != "John Smith" {
		t.Errorf("driver (col C) = %q", r.DriverName)
	}
	if r.CustomerName != "Acme Corp" {
		t.Errorf("customer (col F) = %q", r.CustomerName)
	}
	if r.Address != "12 Main St" || r.ContactInfo != "555-0101" {
		t.Errorf("address/contact = %q/%q", r.Address, r.ContactInfo)
	}
	if r.Amount != 120.50 || !r.IsCOD || r.Notes != "leave at dock" {
		t.Errorf("amount/cod/notes = %v/%v/%q", r.Amount, r.IsCOD, r.Notes)
	}

	if rows[1].IsCOD || rows[1].Amount != 0 {
		t.Errorf("blank optional cells must default: %+v", rows[1])
	}
}

func TestParseRejectsBadRowsAndContinues(t *testing.T) {
	buf := sheetFromRows(t, [][]interface{}{
		{"Route", "Seq", "Driver", "Address", "Contact", "Customer", "Amount", "COD", "Notes"},
		{"R-102", "x", "John", "addr", "", "Acme", "", "", ""},  // bad sequence
		{"", 2, "John", "addr", "", "Acme", "", "", ""},         // missing route
		{"R-102", 3, "John", "addr", "", "", "", "", ""},        // missing customer
		{"R-102", 4, "John", "addr", "", "Acme", "abc", "", ""}, // bad amount
		{"R-102", 5, "John", "addr", "", "Acme", "10", "N", ""}, // good
	})

	rows, rowErrs, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 1 || rows[0].Sequence != 5 {
		t.Fatalf("rows = %+v, want only the last", rows)
	}
	if len(rowErrs) != 4 {
		t.Fatalf("row errors = %v, want 4", rowErrs)
	}
	if rowErrs[0].Line != 2 {
		t.Errorf("first error line = %d, want 2", rowErrs[0].Line)
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	buf := sheetFromRows(t, [][]interface{}{
		{"Route", "Seq", "Driver", "Address", "Contact", "Customer", "Amount", "COD", "Notes"},
		{"", "", "", "", "", "", "", "", ""},
		{"R-103", 1, "", "addr", "", "Acme", "", "", ""},
	})

	rows, rowErrs, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("row errors: %v", rowErrs)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}

func TestParseFlagSpellings(t *testing.T) {
	for _, s := range []string{"YES", "y", "True", "1", "cod"} {
		if !parseFlag(s) {
			t.Errorf("parseFlag(%q) = false", s)
		}
	}
	for _, s := range []string{"", "NO", "0", "maybe"} {
		if parseFlag(s) {
			t.Errorf("parseFlag(%q) = true", s)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	out, err := Export([]ExportRow{
		{RouteNumber: "R-200", Sequence: 1, DriverName: "Jane", Address: "1 Elm", ContactInfo: "555", CustomerName: "Gamma", Amount: 55, IsCOD: true, Notes: "n"},
		{RouteNumber: "R-200", Sequence: 2, DriverName: "Jane", Address: "2 Elm", CustomerName: "Delta"},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var buf bytes.Buffer
	if err := out.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, rowErrs, err := Parse(&buf)
	if err != nil || len(rowErrs) != 0 {
		t.Fatalf("Parse exported: %v %v", err, rowErrs)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].CustomerName != "Gamma" || !rows[0].IsCOD || rows[0].Amount != 55 {
		t.Errorf("row 1 mismatch: %+v", rows[0])
	}
	if rows[1].DriverName != "Jane" || rows[1].IsCOD {
		t.Errorf("row 2 mismatch: %+v", rows[1])
	}
}
