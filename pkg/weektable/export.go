package weektable

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ukaji3/weektable-go/pkg/blob"
	"github.com/ukaji3/weektable-go/pkg/weektable/models"
	"github.com/ukaji3/weektable-go/pkg/weektable/sheet"
)

// XLSXContentType is the MIME type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportRows converts a set into spreadsheet rows followed by a TOTAL row.
func ExportRows(set models.EntitySet) ([]models.ExportRow, error) {
	if len(set) == 0 {
		return nil, ErrEmptyExport
	}

	rows := make([]models.ExportRow, 0, len(set)+1)
	for _, e := range set {
		rows = append(rows, models.ExportRow{
			Day:     e.Label,
			Morning: e.ValueA,
			Evening: e.ValueB,
			Total:   e.Total,
		})
	}

	morning, evening, total := ColumnTotals(set)
	rows = append(rows, models.ExportRow{
		Day:     models.TotalLabel,
		Morning: morning,
		Evening: evening,
		Total:   total,
	})
	return rows, nil
}

// ExportFilename returns the workbook name for an export made at t.
// Example: generated_table_2024-05-01T10-20-30-123Z.xlsx
func ExportFilename(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "generated_table_" + ts + ".xlsx"
}

// Export writes the set as a workbook into store and returns its metadata.
func Export(ctx context.Context, set models.EntitySet, store blob.Store, now time.Time) (blob.Info, error) {
	rows, err := ExportRows(set)
	if err != nil {
		return blob.Info{}, err
	}

	var buf bytes.Buffer
	if err := sheet.WriteWorkbook(&buf, rows); err != nil {
		return blob.Info{}, fmt.Errorf("write workbook: %w", err)
	}

	info, err := store.Put(ctx, ExportFilename(now), &buf, blob.PutOptions{
		ContentType: XLSXContentType,
		Metadata:    map[string]string{"rows": fmt.Sprint(len(set))},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store workbook: %w", err)
	}
	return info, nil
}
