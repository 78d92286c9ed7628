package reports

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shakerpd/jail-roster-api/models"
)

// SheetName is the worksheet the roster lives on in the master workbook.
const SheetName = "Jail Roster"

// excelHeaders is the legacy master-roster column order. The sex and
// charge-class pairs are mark columns holding "X", bond change notice
// holds "Y".
var excelHeaders = []string{
	"CELL",
	"Day #",
	"Total #",
	"NAME",
	"DOB",
	"SSN",
	"Sex_M",
	"Sex_F",
	"OCA #",
	"Arrest Date/Time",
	"Mis",
	"Fel",
	"Charge(s)",
	"Court Packet",
	"INST",
	"Court Case Ticket #",
	"Bond Chng Notice Y",
	"Bond",
	"Waiver",
	"Court Date",
	"Release Date/Time",
	"Holders / Notes",
	"Charging Docs filed with Court",
}

// RosterExcel renders the roster in the master-workbook layout: a title
// row, the header row, then one row per record with the enum fields
// expanded back into mark columns.
func RosterExcel(records []models.InmateRecord, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(SheetName, "A1", "Master Jail Roster "+generatedAt.Format("01/02/2006")); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(excelHeaders))
	for i, h := range excelHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A2", &header); err != nil {
		return nil, err
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			record.Cell,
			record.DayNumber,
			record.TotalNumber,
			record.Name,
			record.DOB,
			record.SSN,
			mark(record.Sex == models.SexMale),
			mark(record.Sex == models.SexFemale),
			record.OCANumber,
			record.ArrestDateTime,
			mark(record.ChargeClass == models.ChargeMisdemeanor),
			mark(record.ChargeClass == models.ChargeFelony),
			record.Charges,
			record.CourtPacket,
			record.Inst,
			record.CourtCaseTicket,
			notice(record.BondChangeNotice),
			record.Bond,
			record.Waiver,
			record.CourtDate,
			record.ReleaseDateTime,
			record.HoldersNotes,
			record.ChargingDocs,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseRosterExcel reads a master-workbook upload back into records. The
// title and header rows are skipped, rows without a name are ignored, and
// the mark pairs collapse to enums under the exactly-one rule. Parsed
// records carry no id; the caller assigns them on insert.
func ParseRosterExcel(r io.Reader) ([]models.InmateRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	var records []models.InmateRecord
	for i, row := range rows {
		if i < 2 {
			continue
		}
		at := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}
		if at(3) == "" {
			continue
		}
		record := models.InmateRecord{
			Cell:             at(0),
			DayNumber:        at(1),
			TotalNumber:      at(2),
			Name:             at(3),
			DOB:              at(4),
			SSN:              at(5),
			Sex:              models.SexFromMarks(marked(at(6)), marked(at(7))),
			OCANumber:        at(8),
			ArrestDateTime:   at(9),
			ChargeClass:      models.ChargeClassFromMarks(marked(at(10)), marked(at(11))),
			Charges:          at(12),
			CourtPacket:      at(13),
			Inst:             at(14),
			CourtCaseTicket:  at(15),
			BondChangeNotice: marked(at(16)),
			Bond:             at(17),
			Waiver:           at(18),
			CourtDate:        at(19),
			ReleaseDateTime:  at(20),
			HoldersNotes:     at(21),
			ChargingDocs:     at(22),
		}
		records = append(records, record)
	}
	return records, nil
}

func mark(set bool) string {
	if set {
		return "X"
	}
	return ""
}

func notice(set bool) string {
	if set {
		return "Y"
	}
	return ""
}

func marked(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X", "Y", "YES", "TRUE", "1":
		return true
	}
	return false
}
