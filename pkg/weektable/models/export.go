package models

// TotalLabel is the Day value of the trailing summary row of an export.
const TotalLabel = "TOTAL"

// ExportHeader lists the exported column names in order.
var ExportHeader = []string{"Day", "Morning", "Evening", "Total"}

// ExportRow represents one exported spreadsheet row.
type ExportRow struct {
	// Day is the row label, or TotalLabel for the summary row.
	Day string `json:"Day"`
	// Morning is the first value.
	Morning float64 `json:"Morning"`
	// Evening is the second value.
	Evening float64 `json:"Evening"`
	// Total is Morning + Evening rounded to 3 decimals.
	Total float64 `json:"Total"`
}
