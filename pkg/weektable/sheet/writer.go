package sheet

import (
	"io"

	"github.com/ukaji3/weektable-go/pkg/weektable/models"
	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the worksheet exported rows are written to.
const DefaultSheetName = "Sheet1"

// WriteWorkbook writes rows as a single-sheet workbook with a header row.
func WriteWorkbook(w io.Writer, rows []models.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(models.ExportHeader))
	for i, name := range models.ExportHeader {
		header[i] = name
	}
	if err := f.SetSheetRow(DefaultSheetName, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{r.Day, r.Morning, r.Evening, r.Total}
		if err := f.SetSheetRow(DefaultSheetName, cell, &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
