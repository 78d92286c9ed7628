// Package reports renders the roster into the report formats the front
// desk hands out: the tabular PDF and the master spreadsheet.
package reports

import (
	"bytes"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/shakerpd/jail-roster-api/models"
)

// pdfColumns is the report table layout, widths in mm on landscape A4.
var pdfColumns = []struct {
	header string
	width  float64
}{
	{"Location", 22},
	{"Cell", 14},
	{"Name", 42},
	{"OCA #", 26},
	{"Arrest Date", 22},
	{"Charges", 58},
	{"Bond", 18},
	{"Court Date", 22},
	{"Release Date", 24},
	{"Status", 24},
	{"Notes", 28},
}

// RosterPDF renders the full roster as the landscape report, one row per
// record with the derived status column.
func RosterPDF(records []models.InmateRecord, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Jail Roster Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 5, "Generated: "+generatedAt.Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 7)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, col.header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 6)
	for _, record := range records {
		row := []string{
			record.JailLocation,
			record.Cell,
			record.Name,
			record.OCANumber,
			reportDate(record.ArrestDateTime),
			truncate(record.Charges, 48),
			record.Bond,
			reportDate(record.CourtDate),
			reportDate(record.ReleaseDateTime),
			string(record.Status()),
			truncate(record.HoldersNotes, 22),
		}
		for i, cell := range row {
			pdf.CellFormat(pdfColumns[i].width, 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func reportDate(s string) string {
	t, ok := models.ParseWhen(s)
	if !ok {
		return ""
	}
	return t.Format("01/02/2006")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
