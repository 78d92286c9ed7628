package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shakerpd/jail-roster-api/models"
)

// rosterServer fakes the API for shell tests, counting mutations.
type rosterServer struct {
	mu      sync.Mutex
	records []models.InmateRecord
	creates int
	updates int
	deletes int
	lastPut string

	unauthorized bool
}

func (rs *rosterServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username": "admin", "name": "Demo Administrator", "role": "admin"}`))
	})
	mux.HandleFunc("/api/roster", func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		defer rs.mu.Unlock()
		if rs.unauthorized {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			rs.creates++
			var record models.InmateRecord
			_ = json.NewDecoder(r.Body).Decode(&record)
			record.ID = "server-assigned-1"
			rs.records = append(rs.records, record)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(record)
		default:
			_ = json.NewEncoder(w).Encode(rs.records)
		}
	})
	mux.HandleFunc("/api/roster/", func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		defer rs.mu.Unlock()
		if rs.unauthorized {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		id := strings.TrimPrefix(r.URL.Path, "/api/roster/")
		switch r.Method {
		case http.MethodPut:
			rs.updates++
			rs.lastPut = id
			var record models.InmateRecord
			_ = json.NewDecoder(r.Body).Decode(&record)
			record.ID = id
			_ = json.NewEncoder(w).Encode(record)
		case http.MethodDelete:
			rs.deletes++
			w.Write([]byte(`{"message": "record deleted"}`))
		}
	})
	return mux
}

func newTestShell(t *testing.T, rs *rosterServer) (*Shell, func()) {
	t.Helper()
	srv := httptest.NewServer(rs.handler())
	sh := NewShell(New(srv.URL))
	if err := sh.Login(context.Background(), "admin", "pw"); err != nil {
		srv.Close()
		t.Fatal(err)
	}
	return sh, srv.Close
}

func TestShell_ToggleAddTransitions(t *testing.T) {
	rs := &rosterServer{}
	sh, done := newTestShell(t, rs)
	defer done()

	assert.Equal(t, ModeNone, sh.Mode())

	sh.ToggleAdd()
	assert.Equal(t, ModeAdd, sh.Mode())
	assert.True(t, sh.Draft().IsDraft())

	// toggle while adding cancels
	sh.ToggleAdd()
	assert.Equal(t, ModeNone, sh.Mode())
	assert.Nil(t, sh.Draft())
}

func TestShell_EditDiscardsAddDraft(t *testing.T) {
	rs := &rosterServer{}
	sh, done := newTestShell(t, rs)
	defer done()

	sh.ToggleAdd()
	draftID := sh.Draft().ID

	sh.Edit(models.InmateRecord{ID: "abc123", Name: "Doe, John"})
	assert.Equal(t, ModeEdit, sh.Mode())
	assert.Equal(t, "abc123", sh.Draft().ID)
	assert.NotEqual(t, draftID, sh.Draft().ID)
}

func TestShell_SaveDraftIssuesExactlyOneCreate(t *testing.T) {
	rs := &rosterServer{}
	sh, done := newTestShell(t, rs)
	defer done()

	sh.ToggleAdd()
	sh.UpdateDraft(models.InmateRecord{Name: "Doe, John"})

	err := sh.Save(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, rs.creates)
	assert.Equal(t, 0, rs.updates)
	assert.Equal(t, ModeNone, sh.Mode())
	assert.Nil(t, sh.Draft())

	// collection refetched after the mutation
	assert.Len(t, sh.Records(), 1)
	assert.Equal(t, "server-assigned-1", sh.Records()[0].ID)
}

func TestShell_SaveExistingIssuesExactlyOnePutToID(t *testing.T) {
	rs := &rosterServer{}
	sh, done := newTestShell(t, rs)
	defer done()

	sh.Edit(models.InmateRecord{ID: "abc123", Name: "Doe, John"})

	err := sh.Save(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, rs.creates)
	assert.Equal(t, 1, rs.updates)
	assert.Equal(t, "abc123", rs.lastPut)
}

func TestShell_UnauthorizedSaveClearsSessionOnceWithoutRetry(t *testing.T) {
	rs := &rosterServer{}
	sh, done := newTestShell(t, rs)
	defer done()

	rs.mu.Lock()
	rs.unauthorized = true
	rs.mu.Unlock()

	sh.ToggleAdd()
	sh.UpdateDraft(models.InmateRecord{Name: "Doe, John"})

	err := sh.Save(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, sh.Session())
	assert.Equal(t, ModeNone, sh.Mode())

	// the create never lands and nothing is retried
	assert.Equal(t, 0, rs.creates)
}

func TestShell_DeleteGatedByRoleAndConfirm(t *testing.T) {
	rs := &rosterServer{records: []models.InmateRecord{{ID: "abc123", Name: "Doe, John"}}}
	sh, done := newTestShell(t, rs)
	defer done()

	// declined confirmation never calls the API
	err := sh.Delete(context.Background(), "abc123", func() bool { return false })
	assert.NoError(t, err)
	assert.Equal(t, 0, rs.deletes)

	err = sh.Delete(context.Background(), "abc123", func() bool { return true })
	assert.NoError(t, err)
	assert.Equal(t, 1, rs.deletes)
}

func TestShell_DeleteUnreachableForOfficer(t *testing.T) {
	sh := NewShell(New("http://unused.invalid"))
	sh.session = &models.SessionUser{Username: "officer", Role: models.RoleOfficer}

	err := sh.Delete(context.Background(), "abc123", func() bool { return true })
	assert.Error(t, err)
}

func TestShell_VisiblePartitionAndSearch(t *testing.T) {
	records := []models.InmateRecord{
		{ID: "1", Name: "Doe, John", Cell: "A-1"},
		{ID: "2", Name: "Roe, Jane", Cell: "B-2", ReleaseDateTime: "2025-01-03T09:00"},
		{ID: "3", Name: "Doe, Richard", Cell: "C-3"},
	}
	sh := NewShell(New("http://unused.invalid"))
	sh.records = records

	// every record lands in exactly one partition
	sh.SetTab(TabActive)
	active := sh.Visible()
	sh.SetTab(TabReleased)
	released := sh.Visible()
	assert.Len(t, active, 2)
	assert.Len(t, released, 1)
	assert.Equal(t, len(records), len(active)+len(released))

	// search filters within the current tab only
	sh.SetTab(TabActive)
	sh.SetSearch("doe")
	visible := sh.Visible()
	assert.Len(t, visible, 2)
	for _, record := range visible {
		assert.True(t, record.Active())
		assert.True(t, record.Matches("doe"))
	}

	sh.SetSearch("nobody")
	assert.Empty(t, sh.Visible())
}

func TestShell_CancelDiscardsDraft(t *testing.T) {
	sh := NewShell(New("http://unused.invalid"))
	sh.Edit(models.InmateRecord{ID: "abc123", Name: "Doe, John"})

	sh.Cancel()
	assert.Equal(t, ModeNone, sh.Mode())
	assert.Nil(t, sh.Draft())
}
