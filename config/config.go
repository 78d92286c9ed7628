package config

import (
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/shakerpd/jail-roster-api/models"
)

// Config holds the project config values
type Config struct {
	URL           string
	DatabaseName  string
	BaseURL       string
	Port          string
	SessionSecret string
}

// New sets up all config related services
func New() *Config {
	logger, err := setLogger(os.Getenv("ENVIRONMENT"))
	if err == nil {
		defer logger.Sync()
		_ = zap.ReplaceGlobals(logger)
	}

	return &Config{
		URL:           os.Getenv("DB_URI"),
		DatabaseName:  os.Getenv("DB_NAME"),
		BaseURL:       os.Getenv("BASE_URL"),
		Port:          os.Getenv("PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
	}
}

// setLogger picks a zap logger for the given environment name
func setLogger(environment string) (*zap.Logger, error) {
	switch environment {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}

// ErrorStatus logs and writes the JSON error body for a given message,
// status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	b, _ := json.Marshal(models.MessageError{Message: message, Error: detail})
	w.Write(b)
}
