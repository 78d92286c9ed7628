package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shakerpd/jail-roster-api/api"
	"github.com/shakerpd/jail-roster-api/config"
	"github.com/shakerpd/jail-roster-api/databases"
)

// minPasswordLength is enforced on password changes, not on seeded logins.
const minPasswordLength = 6

// Auth exported for testing purposes
type Auth struct {
	DB databases.UserDatabase
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// LoginHandler verifies credentials and issues the session cookie
func (a Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req loginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		config.ErrorStatus("username and password are required", http.StatusBadRequest, w, fmt.Errorf("missing credentials"))
		return
	}

	user, err := a.DB.FindOne(context.Background(), bson.M{"username": req.Username})
	if err != nil {
		config.ErrorStatus("invalid username or password", http.StatusUnauthorized, w, fmt.Errorf("no matching username found"))
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password))
	if err != nil {
		config.ErrorStatus("invalid username or password", http.StatusUnauthorized, w, fmt.Errorf("password mismatch"))
		return
	}

	session := user.Session()
	if err := api.IssueSessionCookie(w, session); err != nil {
		config.ErrorStatus("failed to issue session", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("login", "username", session.Username, "role", session.Role)

	b, err := json.Marshal(session)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LogoutHandler clears the session cookie. Succeeds whether or not the
// request carried a valid session.
func (a Auth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	api.ClearSessionCookie(w)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "logged out"}`))
}

// MeHandler returns the session user, serving as the session probe for
// clients restoring state after a reload.
func (a Auth) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.SessionFrom(r.Context())
	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ChangePasswordHandler verifies the current password and stores a new
// bcrypt hash for the session user
func (a Auth) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	user, _ := api.SessionFrom(r.Context())

	var req changePasswordRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	if len(req.NewPassword) < minPasswordLength {
		config.ErrorStatus("new password must be at least 6 characters", http.StatusBadRequest, w, fmt.Errorf("password too short"))
		return
	}

	dbUser, err := a.DB.FindOne(context.Background(), bson.M{"username": user.Username})
	if err != nil {
		config.ErrorStatus("failed to get user", http.StatusNotFound, w, err)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(dbUser.Password), []byte(req.CurrentPassword))
	if err != nil {
		config.ErrorStatus("current password is incorrect", http.StatusUnauthorized, w, fmt.Errorf("password mismatch"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	err = a.DB.UpdateOne(context.Background(), bson.M{"_id": dbUser.ID}, bson.M{
		"$set": bson.M{
			"password":  string(hashedPassword),
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		},
	})
	if err != nil {
		config.ErrorStatus("failed to update password", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("password changed", "username", user.Username)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "password updated"}`))
}
