package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/shakerpd/jail-roster-api/api"
	"github.com/shakerpd/jail-roster-api/api/handlers"
	"github.com/shakerpd/jail-roster-api/databases"
	"github.com/shakerpd/jail-roster-api/databases/mocks"
	"github.com/shakerpd/jail-roster-api/models"
)

func userDatabaseWith(t *testing.T, user *models.User, findErr error) databases.UserDatabase {
	t.Helper()

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	singleResultHelper = &mocks.SingleResultHelper{}

	singleResultHelper.(*mocks.SingleResultHelper).On("Decode", mock.Anything).Return(findErr).Run(func(args mock.Arguments) {
		if findErr != nil || user == nil {
			return
		}
		arg := args.Get(0).(*models.User)
		*arg = *user
	})
	conn.(*mocks.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.(*mocks.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	db.(*MockDatabaseHelper).On("Collection", "users").Return(conn)

	return databases.NewUserDatabase(db)
}

func TestAuth_LoginHandlerBadBody(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/auth/login", strings.NewReader("not json"))
	if err != nil {
		t.Fatal(err)
	}

	h := handlers.Auth{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuth_LoginHandlerUnknownUser(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"username": "ghost", "password": "whatever"}`))
	if err != nil {
		t.Fatal(err)
	}

	h := handlers.Auth{DB: userDatabaseWith(t, nil, errors.New("mongo: no documents in result"))}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid username or password")
}

func TestAuth_LoginHandlerWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	user := &models.User{Username: "officer", Name: "Demo Officer", Role: models.RoleOfficer, Password: string(hash)}

	req, err := http.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"username": "officer", "password": "wrong"}`))
	if err != nil {
		t.Fatal(err)
	}

	h := handlers.Auth{DB: userDatabaseWith(t, user, nil)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid username or password")
}

func TestAuth_LoginHandlerSuccessSetsCookie(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret")
	defer os.Unsetenv("SESSION_SECRET")

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	user := &models.User{Username: "officer", Name: "Demo Officer", Role: models.RoleOfficer, Password: string(hash)}

	req, err := http.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"username": "officer", "password": "correct"}`))
	if err != nil {
		t.Fatal(err)
	}

	h := handlers.Auth{DB: userDatabaseWith(t, user, nil)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.SessionUser
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "officer", got.Username)
	assert.Equal(t, models.RoleOfficer, got.Role)

	cookies := rr.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, api.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestAuth_LogoutHandlerClearsCookie(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/auth/logout", nil)
	if err != nil {
		t.Fatal(err)
	}

	h := handlers.Auth{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.LogoutHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, api.SessionCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAuth_MeHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/auth/me", nil)
	if err != nil {
		t.Fatal(err)
	}
	session := models.SessionUser{Username: "officer", Name: "Demo Officer", Role: models.RoleOfficer}
	req = req.WithContext(api.WithSession(req.Context(), session))

	h := handlers.Auth{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.MeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.SessionUser
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, session, got)
}

func TestAuth_ChangePasswordHandlerTooShort(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/auth/change-password", strings.NewReader(`{"currentPassword": "correct", "newPassword": "abc"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = req.WithContext(api.WithSession(req.Context(), models.SessionUser{Username: "officer"}))

	h := handlers.Auth{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ChangePasswordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "at least 6 characters")
}

func TestAuth_ChangePasswordHandlerWrongCurrent(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	user := &models.User{Username: "officer", Password: string(hash)}

	req, err := http.NewRequest("POST", "/api/auth/change-password", strings.NewReader(`{"currentPassword": "wrong", "newPassword": "longenough"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = req.WithContext(api.WithSession(req.Context(), models.SessionUser{Username: "officer"}))

	h := handlers.Auth{DB: userDatabaseWith(t, user, nil)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ChangePasswordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "current password is incorrect")
}

func TestAuth_ChangePasswordHandlerSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	user := &models.User{Username: "officer", Password: string(hash)}

	req, err := http.NewRequest("POST", "/api/auth/change-password", strings.NewReader(`{"currentPassword": "correct", "newPassword": "longenough"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = req.WithContext(api.WithSession(req.Context(), models.SessionUser{Username: "officer"}))

	h := handlers.Auth{DB: userDatabaseWith(t, user, nil)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ChangePasswordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "password updated")
}
