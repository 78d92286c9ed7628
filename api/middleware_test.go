package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shakerpd/jail-roster-api/models"
)

func issueCookie(t *testing.T, user models.SessionUser) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	if err := IssueSessionCookie(rr, user); err != nil {
		t.Fatal(err)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func TestSessionCookieRoundTrip(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret")
	defer os.Unsetenv("SESSION_SECRET")

	user := models.SessionUser{Username: "officer", Name: "Demo Officer", Role: models.RoleOfficer}

	req := httptest.NewRequest("GET", "/api/roster", nil)
	req.AddCookie(issueCookie(t, user))

	got, err := SessionFromRequest(req)
	assert.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestSessionFromRequestNoCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/roster", nil)
	_, err := SessionFromRequest(req)
	assert.Error(t, err)
}

func TestSessionFromRequestGarbageToken(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret")
	defer os.Unsetenv("SESSION_SECRET")

	req := httptest.NewRequest("GET", "/api/roster", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "asdfasdf"})

	_, err := SessionFromRequest(req)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestSessionFromRequestWrongSecret(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret")
	cookie := issueCookie(t, models.SessionUser{Username: "officer", Role: models.RoleOfficer})

	os.Setenv("SESSION_SECRET", "different-secret")
	defer os.Unsetenv("SESSION_SECRET")

	req := httptest.NewRequest("GET", "/api/roster", nil)
	req.AddCookie(cookie)

	_, err := SessionFromRequest(req)
	assert.Error(t, err)
}

func TestRequireSessionPutsUserOnContext(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret")
	defer os.Unsetenv("SESSION_SECRET")

	var got models.SessionUser
	handler := RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/roster", nil)
	req.AddCookie(issueCookie(t, models.SessionUser{Username: "officer", Role: models.RoleOfficer}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "officer", got.Username)
}

func TestRequireSessionRejectsMissingCookie(t *testing.T) {
	handler := RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/roster", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error": "unauthorized"}`, rr.Body.String())
}

func TestRequireRole(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret")
	defer os.Unsetenv("SESSION_SECRET")

	tests := []struct {
		name     string
		role     string
		required string
		want     int
	}{
		{"officer forbidden from admin route", models.RoleOfficer, models.RoleAdmin, http.StatusForbidden},
		{"supervisor passes supervisor route", models.RoleSupervisor, models.RoleSupervisor, http.StatusOK},
		{"admin passes every route", models.RoleAdmin, models.RoleSupervisor, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(tt.required, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("DELETE", "/api/roster/abc123", nil)
			req.AddCookie(issueCookie(t, models.SessionUser{Username: "u", Role: tt.role}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
