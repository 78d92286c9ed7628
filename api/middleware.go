package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/shakerpd/jail-roster-api/models"
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "jail_roster_session"

// SessionTTL matches the original deployment's 8 hour shift-length sessions.
const SessionTTL = 8 * time.Hour

type contextKey string

const sessionContextKey contextKey = "sessionUser"

func sessionSecret() []byte {
	return []byte(os.Getenv("SESSION_SECRET"))
}

// IssueSessionCookie signs a session token for the user and attaches it to
// the response as an HTTP-only cookie.
func IssueSessionCookie(w http.ResponseWriter, user models.SessionUser) error {
	secret := sessionSecret()
	if len(secret) == 0 {
		return fmt.Errorf("SESSION_SECRET is not set")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.Username,
		"name": user.Name,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(SessionTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	return nil
}

// ClearSessionCookie expires the session cookie on the response.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// SessionFromRequest validates the session cookie and returns the user it
// carries.
func SessionFromRequest(r *http.Request) (models.SessionUser, error) {
	var user models.SessionUser

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return user, fmt.Errorf("no session cookie")
	}

	token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return sessionSecret(), nil
	})
	if err != nil {
		return user, fmt.Errorf("failed to parse token, %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return user, fmt.Errorf("invalid session token")
	}

	user.Username, _ = claims["sub"].(string)
	user.Name, _ = claims["name"].(string)
	user.Role, _ = claims["role"].(string)
	if user.Username == "" {
		return user, fmt.Errorf("session token missing subject")
	}
	return user, nil
}

// RequireSession rejects requests without a valid session cookie and puts
// the session user on the request context.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := SessionFromRequest(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("user %s authenticated", user.Username)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), user)))
	})
}

// RequireRole layers a role check on top of RequireSession. Admin passes
// every check.
func RequireRole(role string, next http.Handler) http.Handler {
	return RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := SessionFrom(r.Context())
		if !user.HasRole(role) {
			zap.S().Warnw("forbidden",
				"url", r.URL,
				"username", user.Username,
				"role", user.Role,
				"required", role)
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": "forbidden"}`))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// WithSession stores the session user on a context.
func WithSession(ctx context.Context, user models.SessionUser) context.Context {
	return context.WithValue(ctx, sessionContextKey, user)
}

// SessionFrom returns the session user stored on the context, if any.
func SessionFrom(ctx context.Context) (models.SessionUser, bool) {
	user, ok := ctx.Value(sessionContextKey).(models.SessionUser)
	return user, ok
}
