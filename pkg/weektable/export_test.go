package weektable

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/weektable-go/pkg/blob"
	"github.com/ukaji3/weektable-go/pkg/weektable/models"
	"github.com/ukaji3/weektable-go/pkg/weektable/sheet"
)

func generatedSet(t *testing.T) models.EntitySet {
	t.Helper()
	res, err := Normalize(models.NewEntitySet(models.DefaultWeek()), DefaultTarget, NewRandomSource(2024))
	require.NoError(t, err)
	return res.Entities
}

func TestExportRows(t *testing.T) {
	set := generatedSet(t)

	rows, err := ExportRows(set)
	require.NoError(t, err)
	require.Len(t, rows, len(set)+1)

	for i, e := range set {
		assert.Equal(t, models.ExportRow{Day: e.Label, Morning: e.ValueA, Evening: e.ValueB, Total: e.Total}, rows[i])
	}

	last := rows[len(rows)-1]
	morning, evening, total := ColumnTotals(set)
	assert.Equal(t, models.ExportRow{Day: models.TotalLabel, Morning: morning, Evening: evening, Total: total}, last)
	assert.Equal(t, 100.0, last.Total)
}

func TestExportRowsEmpty(t *testing.T) {
	_, err := ExportRows(nil)
	assert.True(t, errors.Is(err, ErrEmptyExport))

	_, err = Export(context.Background(), models.EntitySet{}, blob.NewMemory(), time.Now())
	assert.True(t, errors.Is(err, ErrEmptyExport))
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 20, 30, 123_000_000, time.UTC)
	assert.Equal(t, "generated_table_2024-05-01T10-20-30-123Z.xlsx", ExportFilename(ts))

	// Local times are converted to UTC.
	local := ts.In(time.FixedZone("X", 2*60*60))
	assert.Equal(t, ExportFilename(ts), ExportFilename(local))
}

func TestExportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	set := generatedSet(t)

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	infoA, err := Export(ctx, set, store, first)
	require.NoError(t, err)
	infoB, err := Export(ctx, set, store, first.Add(time.Second))
	require.NoError(t, err)
	assert.NotEqual(t, infoA.Key, infoB.Key)
	assert.Equal(t, XLSXContentType, infoA.ContentType)

	readBack := func(key string) []models.Record {
		_, rc, err := store.Get(ctx, key)
		require.NoError(t, err)
		defer rc.Close()
		records, err := sheet.ReadFirstSheet(rc, key)
		require.NoError(t, err)
		return records
	}

	a := readBack(infoA.Key)
	b := readBack(infoB.Key)
	assert.Equal(t, a, b)
	require.Len(t, a, len(set)+1)

	day, _ := a[len(a)-1].Get("Day")
	assert.Equal(t, models.TotalLabel, day)
	assert.Equal(t, models.ExportHeader, a[0].Names())
}
