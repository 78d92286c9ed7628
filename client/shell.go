package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shakerpd/jail-roster-api/models"
)

// Mode is the editor lifecycle state: no editor open, composing a new
// draft, or editing an existing record.
type Mode string

// Editor modes
const (
	ModeNone Mode = "none"
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// Tab selects which partition of the roster is in view.
type Tab string

// Roster tabs
const (
	TabActive   Tab = "active"
	TabReleased Tab = "released"
)

// ConfirmFunc asks the operator to confirm a destructive action.
type ConfirmFunc func() bool

// Shell drives the record lifecycle against the API: session state, the
// cached collection, the open editor and the search/tab view. The server
// collection is the single source of truth; every successful mutation is
// followed by a full refetch, never a local merge.
type Shell struct {
	api *Client

	session *models.SessionUser
	records []models.InmateRecord
	draft   *models.InmateRecord
	mode    Mode

	searchTerm string
	tab        Tab

	// notice is the last user-visible error, cleared by the next
	// successful operation. All failure paths feed it; none alert or
	// silently drop.
	notice string
}

// NewShell creates a shell over the given API client.
func NewShell(api *Client) *Shell {
	return &Shell{api: api, mode: ModeNone, tab: TabActive}
}

// Session returns the logged-in user, or nil.
func (s *Shell) Session() *models.SessionUser { return s.session }

// Mode returns the current editor state.
func (s *Shell) Mode() Mode { return s.mode }

// Draft returns the record bound to the open editor, or nil.
func (s *Shell) Draft() *models.InmateRecord { return s.draft }

// Records returns the cached collection.
func (s *Shell) Records() []models.InmateRecord { return s.records }

// Notice returns the last user-visible error message, if any.
func (s *Shell) Notice() string { return s.notice }

// Restore probes the server for an existing session, as after a reload.
func (s *Shell) Restore(ctx context.Context) error {
	user, err := s.api.Me(ctx)
	if err != nil {
		s.session = nil
		if errors.Is(err, ErrUnauthorized) {
			return nil
		}
		return err
	}
	s.session = &user
	return s.Refresh(ctx)
}

// Login authenticates and loads the collection.
func (s *Shell) Login(ctx context.Context, username, password string) error {
	user, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.notice = err.Error()
		return err
	}
	s.session = &user
	s.notice = ""
	return s.Refresh(ctx)
}

// Logout drops the session. Server-side revocation is best effort.
func (s *Shell) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		zap.S().Debugw("logout call failed", "error", err)
	}
	s.session = nil
	s.records = nil
	s.draft = nil
	s.mode = ModeNone
}

// Refresh refetches the full collection.
func (s *Shell) Refresh(ctx context.Context) error {
	records, err := s.api.Roster(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.clearSession()
			return err
		}
		s.notice = err.Error()
		return err
	}
	s.records = records
	return nil
}

// ToggleAdd opens the add editor with a fresh draft, or closes it when
// already adding.
func (s *Shell) ToggleAdd() {
	if s.mode == ModeAdd {
		s.draft = nil
		s.mode = ModeNone
		return
	}
	s.draft = &models.InmateRecord{
		ID: fmt.Sprintf("%s%d", models.DraftIDPrefix, time.Now().UnixMilli()),
	}
	s.mode = ModeAdd
}

// Edit binds the editor to an existing record. An in-progress add draft
// is discarded.
func (s *Shell) Edit(record models.InmateRecord) {
	copied := record
	s.draft = &copied
	s.mode = ModeEdit
}

// Cancel closes the editor and discards the draft.
func (s *Shell) Cancel() {
	s.draft = nil
	s.mode = ModeNone
}

// UpdateDraft replaces the open draft's contents, keeping its identity.
func (s *Shell) UpdateDraft(record models.InmateRecord) {
	if s.draft == nil {
		return
	}
	record.ID = s.draft.ID
	*s.draft = record
}

// Save persists the open draft: a create when the identifier still
// carries the draft marker, otherwise a full-record update. The editor
// closes regardless of outcome; on success the collection is refetched,
// on 401 the session clears, and any other failure lands in Notice.
func (s *Shell) Save(ctx context.Context) error {
	if s.draft == nil {
		return nil
	}
	record := *s.draft
	s.draft = nil
	s.mode = ModeNone

	var err error
	if record.IsDraft() {
		_, err = s.api.Create(ctx, record)
	} else {
		_, err = s.api.Update(ctx, record)
	}
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.clearSession()
			return err
		}
		s.notice = err.Error()
		return err
	}

	s.notice = ""
	return s.Refresh(ctx)
}

// Delete removes a record after confirmation. Only an admin session may
// reach the call at all.
func (s *Shell) Delete(ctx context.Context, id string, confirm ConfirmFunc) error {
	if s.session == nil || !s.session.CanDelete() {
		return fmt.Errorf("session role may not delete records")
	}
	if confirm == nil || !confirm() {
		return nil
	}

	if err := s.api.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.clearSession()
			return err
		}
		s.notice = err.Error()
		return err
	}

	s.notice = ""
	return s.Refresh(ctx)
}

// SetSearch updates the filter term.
func (s *Shell) SetSearch(term string) { s.searchTerm = term }

// SetTab switches the active/released partition in view.
func (s *Shell) SetTab(tab Tab) { s.tab = tab }

// Visible returns the records in the current tab's partition matching
// the search term.
func (s *Shell) Visible() []models.InmateRecord {
	visible := make([]models.InmateRecord, 0, len(s.records))
	for _, record := range s.records {
		if record.Active() != (s.tab == TabActive) {
			continue
		}
		if !record.Matches(s.searchTerm) {
			continue
		}
		visible = append(visible, record)
	}
	return visible
}

// clearSession drops local session state after a 401. Idempotent, and
// never re-issues the failed call.
func (s *Shell) clearSession() {
	if s.session == nil {
		return
	}
	s.session = nil
	s.records = nil
	s.draft = nil
	s.mode = ModeNone
	s.notice = "session expired, sign in again"
}
