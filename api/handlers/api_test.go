package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shakerpd/jail-roster-api/api"
	"github.com/shakerpd/jail-roster-api/api/handlers"
	"github.com/shakerpd/jail-roster-api/models"
)

var a handlers.App

func executeRequest(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, user models.SessionUser) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	if err := api.IssueSessionCookie(rr, user); err != nil {
		t.Fatal(err)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func TestUnknownRoute(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/asdf", nil)
	response := executeRequest(req)

	assert.Equal(t, http.StatusNotFound, response.Code)
}

func TestHealthCheckRoute(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/health", nil)
	response := executeRequest(req)

	assert.Equal(t, http.StatusOK, response.Code)
	if !strings.Contains(response.Body.String(), "alive") {
		t.Errorf("Expected 'alive' in the reponse. Got '%s'", response.Body.String())
	}
}

func TestApp_RosterUnauthorized(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/api/roster", nil)
	response := executeRequest(req)

	assert.Equal(t, http.StatusUnauthorized, response.Code)
	assert.JSONEq(t, `{"error": "unauthorized"}`, response.Body.String())
}

func TestApp_RosterInvalidCookie(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret")
	defer os.Unsetenv("SESSION_SECRET")

	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/api/roster", nil)
	req.AddCookie(&http.Cookie{Name: api.SessionCookieName, Value: "asdfasdf"})
	response := executeRequest(req)

	assert.Equal(t, http.StatusUnauthorized, response.Code)
}

func TestApp_DeleteForbiddenForOfficer(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret")
	defer os.Unsetenv("SESSION_SECRET")

	a.Router = a.New()
	req, _ := http.NewRequest("DELETE", "/api/roster/abc123", nil)
	req.AddCookie(sessionCookie(t, models.SessionUser{Username: "officer", Role: models.RoleOfficer}))
	response := executeRequest(req)

	assert.Equal(t, http.StatusForbidden, response.Code)
	assert.JSONEq(t, `{"error": "forbidden"}`, response.Body.String())
}

func TestApp_ImportExcelForbiddenForOfficer(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret")
	defer os.Unsetenv("SESSION_SECRET")

	a.Router = a.New()
	req, _ := http.NewRequest("POST", "/api/roster/import/xlsx", nil)
	req.AddCookie(sessionCookie(t, models.SessionUser{Username: "officer", Role: models.RoleOfficer}))
	response := executeRequest(req)

	assert.Equal(t, http.StatusForbidden, response.Code)
}

func TestApp_ImportExcelAllowedForSupervisorBadBody(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret")
	defer os.Unsetenv("SESSION_SECRET")

	a.Router = a.New()
	req, _ := http.NewRequest("POST", "/api/roster/import/xlsx", nil)
	req.AddCookie(sessionCookie(t, models.SessionUser{Username: "supervisor", Role: models.RoleSupervisor}))
	response := executeRequest(req)

	// role check passes; the empty body fails multipart parsing instead
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestApp_LogoutWithoutSession(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("POST", "/api/auth/logout", nil)
	response := executeRequest(req)

	assert.Equal(t, http.StatusOK, response.Code)
}
