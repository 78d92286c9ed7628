package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shakerpd/jail-roster-api/api"
	"github.com/shakerpd/jail-roster-api/api/scheduler"
	"github.com/shakerpd/jail-roster-api/config"
	"github.com/shakerpd/jail-roster-api/databases"
	"github.com/shakerpd/jail-roster-api/models"
	"github.com/shakerpd/jail-roster-api/reports"
)

// Export exported for testing purposes
type Export struct {
	DB databases.RosterDatabase
}

type emailReportRequest struct {
	Email string `json:"email"`
}

func (h Export) roster(r *http.Request) ([]models.InmateRecord, error) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	records, err := h.DB.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.InmateRecord{}
	}
	return records, nil
}

// ExportPDFHandler renders the roster report and serves it as a download
func (h Export) ExportPDFHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.roster(r)
	if err != nil {
		config.ErrorStatus("failed to get roster", http.StatusInternalServerError, w, err)
		return
	}

	pdf, err := reports.RosterPDF(records, time.Now())
	if err != nil {
		config.ErrorStatus("failed to render report", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="jail_roster.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// EmailReportHandler renders the roster report and sends it to the
// requested address as a PDF attachment via SendGrid
func (h Export) EmailReportHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req emailReportRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		config.ErrorStatus("a valid email address is required", http.StatusBadRequest, w, fmt.Errorf("invalid email %q", req.Email))
		return
	}

	records, err := h.roster(r)
	if err != nil {
		config.ErrorStatus("failed to get roster", http.StatusInternalServerError, w, err)
		return
	}

	pdf, err := reports.RosterPDF(records, time.Now())
	if err != nil {
		config.ErrorStatus("failed to render report", http.StatusInternalServerError, w, err)
		return
	}

	subject := "Jail Roster Report " + time.Now().Format("01/02/2006")
	body := fmt.Sprintf("Attached is the current jail roster report.\n\nRecords on roster: %d", len(records))
	if err := scheduler.SendRosterReport(req.Email, subject, body, pdf); err != nil {
		config.ErrorStatus("failed to send report email", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("roster report emailed", "to", req.Email, "records", len(records))

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "report sent"}`))
}

// ExportExcelHandler serves the roster in the master-workbook layout
func (h Export) ExportExcelHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.roster(r)
	if err != nil {
		config.ErrorStatus("failed to get roster", http.StatusInternalServerError, w, err)
		return
	}

	workbook, err := reports.RosterExcel(records, time.Now())
	if err != nil {
		config.ErrorStatus("failed to render workbook", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="jail_roster.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(workbook)
}

// ImportExcelHandler appends records parsed from an uploaded workbook
func (h Export) ImportExcelHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	file, _, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("missing file field", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	records, err := reports.ParseRosterExcel(file)
	if err != nil {
		config.ErrorStatus("failed to parse workbook", http.StatusBadRequest, w, err)
		return
	}

	h.insertImported(w, r, records)
}

// ExportJSONHandler serves the roster as a pretty-printed JSON download
func (h Export) ExportJSONHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.roster(r)
	if err != nil {
		config.ErrorStatus("failed to get roster", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="jail_roster.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ImportJSONHandler appends records parsed from an uploaded JSON array
func (h Export) ImportJSONHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	file, _, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("missing file field", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	var records []models.InmateRecord
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		config.ErrorStatus("failed to parse json", http.StatusBadRequest, w, err)
		return
	}

	h.insertImported(w, r, records)
}

// insertImported assigns fresh ids and timestamps to imported records and
// inserts them alongside the existing roster.
func (h Export) insertImported(w http.ResponseWriter, r *http.Request, records []models.InmateRecord) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	imported := 0
	for i := range records {
		record := records[i]
		if record.Name == "" {
			continue
		}
		record.ID = primitive.NewObjectID().Hex()
		record.HasPhoto = false
		record.Normalize()
		record.CreatedAt = now
		record.UpdatedAt = now

		if _, err := h.DB.InsertOne(ctx, record); err != nil {
			config.ErrorStatus("failed to insert imported record", http.StatusInternalServerError, w, err)
			return
		}
		imported++
	}

	user, _ := api.SessionFrom(r.Context())
	zap.S().Infow("roster import complete", "imported", imported, "username", user.Username)

	b, _ := json.Marshal(map[string]interface{}{"message": "import complete", "imported": imported})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
