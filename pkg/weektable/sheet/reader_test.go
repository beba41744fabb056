package sheet

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ukaji3/weektable-go/pkg/weektable/models"
	"github.com/xuri/excelize/v2"
)

func TestReadFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Name")
	f.SetCellValue(sheetName, "B1", "Qty")
	f.SetCellValue(sheetName, "C1", "Price")
	f.SetCellValue(sheetName, "A2", "Apple")
	f.SetCellValue(sheetName, "B2", 100)
	f.SetCellValue(sheetName, "C2", 200.5)
	f.SetCellValue(sheetName, "A3", "Pear")
	f.SetCellValue(sheetName, "C3", 3.25)

	// A second sheet must be ignored.
	f.NewSheet("Other")
	f.SetCellValue("Other", "A1", "ignored")

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	in, err := os.Open(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer in.Close()

	records, err := ReadFirstSheet(in, "test.xlsx")
	if err != nil {
		t.Fatalf("ReadFirstSheet failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if got := records[0].Names(); !reflect.DeepEqual(got, []string{"Name", "Qty", "Price"}) {
		t.Errorf("Expected header order [Name Qty Price], got %v", got)
	}
	if v, _ := records[0].Get("Name"); v != "Apple" {
		t.Errorf("Expected 'Apple', got %v", v)
	}
	if v, _ := records[0].Get("Qty"); v != int64(100) {
		t.Errorf("Expected int64(100), got %v (type: %T)", v, v)
	}
	if v, _ := records[0].Get("Price"); v != 200.5 {
		t.Errorf("Expected 200.5, got %v", v)
	}

	// Missing cell defaults to nil but the field is present.
	v, ok := records[1].Get("Qty")
	if !ok || v != nil {
		t.Errorf("Expected Qty present with nil value, got %v (present: %v)", v, ok)
	}
}

func TestReadFirstSheetXLS(t *testing.T) {
	in, err := os.Open(filepath.Join("testdata", "week.xls"))
	if err != nil {
		t.Fatalf("Failed to open fixture: %v", err)
	}
	defer in.Close()

	records, err := ReadFirstSheet(in, "week.XLS")
	if err != nil {
		t.Fatalf("ReadFirstSheet failed: %v", err)
	}

	// Row 3 of the sheet has no records and is skipped.
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if got := records[0].Names(); !reflect.DeepEqual(got, []string{"Day", "Morning", "Evening", "Note"}) {
		t.Errorf("Expected header [Day Morning Evening Note], got %v", got)
	}

	tests := []struct {
		row   int
		field string
		want  interface{}
	}{
		{0, "Day", "MONDAY"},
		{0, "Morning", 1.5},
		{0, "Evening", int64(2)},
		{0, "Note", "hello"},
		{1, "Day", "TUESDAY"},
		{1, "Morning", int64(3)},
		{1, "Evening", 4.25},
		{1, "Note", nil},
	}
	for _, tt := range tests {
		v, ok := records[tt.row].Get(tt.field)
		if !ok {
			t.Errorf("record %d: field %q missing", tt.row, tt.field)
			continue
		}
		if v != tt.want {
			t.Errorf("record %d %s: expected %v (%T), got %v (%T)", tt.row, tt.field, tt.want, tt.want, v, v)
		}
	}
}

func TestReadFirstSheetInvalid(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"xlsx", "broken.xlsx"},
		{"xls", "broken.xls"},
		{"no extension", "upload"},
	}

	for _, tt := range tests {
		_, err := ReadFirstSheet(strings.NewReader("not a workbook"), tt.filename)
		if err == nil {
			t.Errorf("%s: expected error for invalid workbook", tt.name)
		}
	}
}

func TestRecords(t *testing.T) {
	grid := [][]string{
		{},
		{"", "Day", "", "Day", ""},
		{"", "MONDAY", "x", "dup", "1.5"},
		{"", "", "", "", ""},
		{"", "TUESDAY"},
	}

	records := Records(grid)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	wantNames := []string{"Day", "__EMPTY", "Day_1", "__EMPTY_1"}
	if got := records[0].Names(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("Records header = %v, expected %v", got, wantNames)
	}

	want := models.Record{Fields: []models.Field{
		{Name: "Day", Value: "MONDAY"},
		{Name: "__EMPTY", Value: "x"},
		{Name: "Day_1", Value: "dup"},
		{Name: "__EMPTY_1", Value: 1.5},
	}}
	if !reflect.DeepEqual(records[0], want) {
		t.Errorf("Records[0] = %+v, expected %+v", records[0], want)
	}

	if v, ok := records[1].Get("__EMPTY_1"); !ok || v != nil {
		t.Errorf("Expected trailing missing cell to be nil, got %v", v)
	}
}

func TestRecordsEmpty(t *testing.T) {
	if got := Records(nil); got == nil || len(got) != 0 {
		t.Errorf("Records(nil) = %v, expected empty non-nil slice", got)
	}
	if got := Records([][]string{{"Only", "Header"}}); len(got) != 0 {
		t.Errorf("Expected no records for header-only grid, got %d", len(got))
	}
}

func TestHeaderNames(t *testing.T) {
	tests := []struct {
		row      []string
		expected []string
	}{
		{[]string{"a", "b"}, []string{"a", "b"}},
		{[]string{"a", "a", "a"}, []string{"a", "a_1", "a_2"}},
		{[]string{"a_1", "a", "a"}, []string{"a_1", "a", "a_2"}},
		{[]string{"", ""}, []string{"__EMPTY", "__EMPTY_1"}},
	}

	for _, tt := range tests {
		result := headerNames(tt.row, 0, len(tt.row)-1)
		if !reflect.DeepEqual(result, tt.expected) {
			t.Errorf("headerNames(%q) = %q, expected %q", tt.row, result, tt.expected)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"hello", "hello"},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"", ""},
	}

	for _, tt := range tests {
		result := parseValue(tt.input)
		if result != tt.expected {
			t.Errorf("parseValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}

func TestWriteWorkbook(t *testing.T) {
	rows := []models.ExportRow{
		{Day: "MONDAY", Morning: 27.778, Evening: 28.07, Total: 55.848},
		{Day: "TUESDAY", Morning: 21.93, Evening: 22.222, Total: 44.152},
		{Day: models.TotalLabel, Morning: 49.708, Evening: 50.292, Total: 100},
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, rows); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	records, err := ReadFirstSheet(bytes.NewReader(buf.Bytes()), "out.xlsx")
	if err != nil {
		t.Fatalf("ReadFirstSheet failed: %v", err)
	}
	if len(records) != len(rows) {
		t.Fatalf("Expected %d records, got %d", len(rows), len(records))
	}
	if got := records[0].Names(); !reflect.DeepEqual(got, models.ExportHeader) {
		t.Errorf("Expected header %v, got %v", models.ExportHeader, got)
	}

	last := records[len(records)-1]
	if v, _ := last.Get("Day"); v != models.TotalLabel {
		t.Errorf("Expected trailing TOTAL row, got %v", v)
	}
	if v, _ := last.Get("Total"); v != int64(100) {
		t.Errorf("Expected Total 100, got %v (type: %T)", v, v)
	}
	if v, _ := records[0].Get("Morning"); v != 27.778 {
		t.Errorf("Expected Morning 27.778, got %v", v)
	}
}
