// Package export renders booking reports as XLSX workbooks.
package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var columns = []struct {
	title string
	width float64
}{
	{"ID", 8},
	{"Item", 30},
	{"Item ID", 10},
	{"Booker ID", 12},
	{"Start", 20},
	{"End", 20},
	{"Status", 12},
}

// OwnerReport is every booking on one owner's items in a given state.
type OwnerReport struct {
	OwnerID     int64
	State       models.BookingState
	GeneratedAt time.Time
	Bookings    []*models.Booking
}

func (r OwnerReport) FileName() string {
	return fmt.Sprintf("bookings_owner%d_%s_%s.xlsx", r.OwnerID, r.State, r.GeneratedAt.Format("20060102_150405"))
}

type Exporter struct {
	location *time.Location
	logger   *zerolog.Logger
}

// NewExporter renders times in loc.
func NewExporter(loc *time.Location, logger *zerolog.Logger) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{location: loc, logger: logger}
}

// Write renders the report as a workbook into w.
func (e *Exporter) Write(w io.Writer, report OwnerReport) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Owner %d, state %s, generated %s",
		report.OwnerID, report.State, report.GeneratedAt.In(e.location).Format("02.01.2006 15:04")))
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, c := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, c.title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, name, name, c.width)
	}

	styles := e.statusStyles(f)
	for i, b := range report.Bookings {
		row := i + 3
		values := []any{
			b.ID,
			b.ItemName,
			b.ItemID,
			b.BookerID,
			b.Start.In(e.location).Format("02.01.2006 15:04"),
			b.End.In(e.location).Format("02.01.2006 15:04"),
			string(b.Status),
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, start, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
		if style, ok := styles[b.Status]; ok {
			cell, _ := excelize.CoordinatesToCellName(len(columns), row)
			_ = f.SetCellStyle(sheetName, cell, cell, style)
		}
	}

	_ = f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func (e *Exporter) statusStyles(f *excelize.File) map[models.BookingStatus]int {
	colors := map[models.BookingStatus]string{
		models.StatusWaiting:  "#FFF2CC",
		models.StatusApproved: "#E2EFDA",
		models.StatusRejected: "#FCE4D6",
	}
	styles := make(map[models.BookingStatus]int, len(colors))
	for status, color := range colors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			styles[status] = style
		}
	}
	return styles
}

// Render returns the workbook as bytes.
func (e *Exporter) Render(report OwnerReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, report); err != nil {
		return nil, err
	}
	e.logger.Info().
		Int64("owner_id", report.OwnerID).
		Int("bookings", len(report.Bookings)).
		Int("size", buf.Len()).
		Msg("export rendered")
	return buf.Bytes(), nil
}
