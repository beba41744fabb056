// Package sheet reads and writes the spreadsheets exchanged by weektable.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/ukaji3/weektable-go/pkg/weektable/models"
	"github.com/xuri/excelize/v2"
)

// ErrNoWorksheet indicates the workbook has no sheets.
var ErrNoWorksheet = errors.New("no worksheet found")

// ReadFirstSheet parses the first worksheet into records. The file name
// extension selects the format: ".xls" is read as a legacy BIFF workbook,
// anything else as OOXML.
func ReadFirstSheet(r io.Reader, filename string) ([]models.Record, error) {
	var (
		grid [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		grid, err = readXLS(r)
	default:
		grid, err = readXLSX(r)
	}
	if err != nil {
		return nil, err
	}
	return Records(grid), nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readXLS(r io.Reader) (grid [][]string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			grid, err = nil, fmt.Errorf("open workbook: malformed xls: %v", p)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, ErrNoWorksheet
	}

	grid = make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := xlsRow(ws, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		// LastCol is one past the last used column.
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// xlsRow returns nil for a row index without records, where
// WorkSheet.Row would dereference a missing entry.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

// Records converts a cell grid into header-keyed records. The first row of
// the used range is the header; every later row with at least one value
// becomes a record spanning all header columns, with nil for empty cells.
func Records(grid [][]string) []models.Record {
	minRow, maxRow, minCol, maxCol := findDataBounds(grid)
	if minRow < 0 {
		return []models.Record{}
	}

	header := headerNames(grid[minRow], minCol, maxCol)
	records := make([]models.Record, 0, maxRow-minRow)
	for rowIdx := minRow + 1; rowIdx <= maxRow; rowIdx++ {
		row := grid[rowIdx]
		fields := make([]models.Field, len(header))
		hasData := false
		for i, name := range header {
			v := cellValue(row, minCol+i)
			fields[i] = models.Field{Name: name}
			if v == "" {
				continue
			}
			hasData = true
			fields[i].Value = parseValue(v)
		}
		if hasData {
			records = append(records, models.Record{Fields: fields})
		}
	}
	return records
}

// headerNames names each column of the used range. Empty headers become
// __EMPTY and repeated names get a numeric suffix (_1, _2, ...).
func headerNames(row []string, minCol, maxCol int) []string {
	seen := make(map[string]int)
	names := make([]string, 0, maxCol-minCol+1)
	for col := minCol; col <= maxCol; col++ {
		base := cellValue(row, col)
		if base == "" {
			base = "__EMPTY"
		}
		name := base
		if n, ok := seen[base]; ok {
			for {
				n++
				name = fmt.Sprintf("%s_%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		names = append(names, name)
	}
	return names
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
