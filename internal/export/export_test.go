package export

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testReport() OwnerReport {
	now := time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)
	return OwnerReport{
		OwnerID:     1,
		State:       models.StateAll,
		GeneratedAt: now,
		Bookings: []*models.Booking{
			{ID: 7, ItemID: 3, ItemName: "Drill", BookerID: 2, Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Status: models.StatusWaiting},
			{ID: 5, ItemID: 4, ItemName: "Saw", BookerID: 9, Start: now.Add(-2 * time.Hour), End: now.Add(-time.Hour), Status: models.StatusApproved},
		},
	}
}

func TestExporter_Write(t *testing.T) {
	logger := zerolog.New(io.Discard)
	e := NewExporter(time.UTC, &logger)

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, testReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.True(t, strings.HasPrefix(rows[0][0], "Owner 1, state ALL"))
	assert.Equal(t, "Item", rows[1][1])
	assert.Equal(t, []string{"7", "Drill", "3", "2", "15.06.2030 13:00", "15.06.2030 14:00", "WAITING"}, rows[2])
	assert.Equal(t, "APPROVED", rows[3][6])
}

func TestExporter_Render(t *testing.T) {
	logger := zerolog.New(io.Discard)
	e := NewExporter(nil, &logger)

	report := testReport()
	report.Bookings = nil
	data, err := e.Render(report)
	require.NoError(t, err)
	assert.Equal(t, "bookings_owner1_ALL_20300615_120000.xlsx", report.FileName())

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
