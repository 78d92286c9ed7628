package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shakerpd/jail-roster-api/api/handlers"
	"github.com/shakerpd/jail-roster-api/databases"
	"github.com/shakerpd/jail-roster-api/databases/mocks"
	"github.com/shakerpd/jail-roster-api/models"
)

func rosterDatabaseWithList(records []models.InmateRecord) (databases.RosterDatabase, *mocks.CollectionHelper) {
	var db databases.DatabaseHelper
	var cursorHelper databases.CursorHelper

	db = &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.InmateRecord)
		*arg = records
	})
	conn.On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	db.(*MockDatabaseHelper).On("Collection", "roster").Return(conn)

	return databases.NewRosterDatabase(db), conn
}

func TestExport_ExportPDFHandler(t *testing.T) {
	db, _ := rosterDatabaseWithList([]models.InmateRecord{{ID: "1", Name: "Doe, John"}})
	h := handlers.Export{DB: db}

	req, err := http.NewRequest("GET", "/api/roster/export/pdf", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ExportPDFHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))
}

func TestExport_EmailReportHandlerInvalidEmail(t *testing.T) {
	h := handlers.Export{}

	req, err := http.NewRequest("POST", "/api/roster/export/pdf/email", strings.NewReader(`{"email": "not-an-address"}`))
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.EmailReportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "valid email address is required")
}

func TestExport_ExportExcelHandler(t *testing.T) {
	db, _ := rosterDatabaseWithList([]models.InmateRecord{{ID: "1", Name: "Doe, John"}})
	h := handlers.Export{DB: db}

	req, err := http.NewRequest("GET", "/api/roster/export/xlsx", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ExportExcelHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Body.Bytes())
}

func TestExport_ExportJSONHandler(t *testing.T) {
	db, _ := rosterDatabaseWithList([]models.InmateRecord{{ID: "1", Name: "Doe, John"}})
	h := handlers.Export{DB: db}

	req, err := http.NewRequest("GET", "/api/roster/export/json", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ExportJSONHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "jail_roster.json")

	var got []models.InmateRecord
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestExport_ImportJSONHandlerSkipsNameless(t *testing.T) {
	db, conn := rosterDatabaseWithList(nil)
	h := handlers.Export{DB: db}

	upload, _ := json.Marshal([]models.InmateRecord{
		{ID: "old-id-1", Name: "Doe, John"},
		{Name: ""},
	})
	body, contentType := multipartFile(t, "file", "roster.json", upload)

	req, err := http.NewRequest("POST", "/api/roster/import/json", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ImportJSONHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"imported":1`)
	conn.AssertNumberOfCalls(t, "InsertOne", 1)
}

func TestExport_ImportExcelHandlerBadWorkbook(t *testing.T) {
	h := handlers.Export{}

	body, contentType := multipartFile(t, "file", "roster.xlsx", []byte("not a workbook"))

	req, err := http.NewRequest("POST", "/api/roster/import/xlsx", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ImportExcelHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to parse workbook")
}
