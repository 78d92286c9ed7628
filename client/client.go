// Package client is the Go consumer of the jail roster API: a credentialed
// JSON client plus the record lifecycle shell the front desk UI drives.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shakerpd/jail-roster-api/models"
)

// ErrUnauthorized is returned on any 401 response. Callers clear their
// local session and force re-login; no call is retried.
var ErrUnauthorized = errors.New("unauthorized")

// Client talks to the roster API. Session cookies live in the underlying
// cookie jar, so one Client is one login session.
type Client struct {
	rest *resty.Client
}

// New creates a roster API client rooted at baseURL.
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	rest := resty.New().
		SetBaseURL(baseURL).
		SetCookieJar(jar).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{rest: rest}
}

// apiError normalizes a non-success response into an error. The message
// comes from the server's error field, then its message field, then the
// HTTP status text.
func apiError(resp *resty.Response) error {
	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if body := resp.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Error != "" {
				return errors.New(payload.Error)
			}
			if payload.Message != "" {
				return errors.New(payload.Message)
			}
		}
	}
	return errors.New(http.StatusText(resp.StatusCode()))
}

// Login verifies credentials and stores the session cookie on the client.
func (c *Client) Login(ctx context.Context, username, password string) (models.SessionUser, error) {
	var user models.SessionUser
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&user).
		Post("/api/auth/login")
	if err != nil {
		return user, fmt.Errorf("login request failed: %w", err)
	}
	if resp.IsError() {
		return user, apiError(resp)
	}
	return user, nil
}

// Logout ends the session server-side. Best effort: the caller drops its
// local session regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.rest.R().SetContext(ctx).Post("/api/auth/logout")
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

// Me probes the current session.
func (c *Client) Me(ctx context.Context) (models.SessionUser, error) {
	var user models.SessionUser
	resp, err := c.rest.R().SetContext(ctx).SetResult(&user).Get("/api/auth/me")
	if err != nil {
		return user, fmt.Errorf("session probe failed: %w", err)
	}
	if resp.IsError() {
		return user, apiError(resp)
	}
	return user, nil
}

// ChangePassword swaps the session user's password.
func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"currentPassword": current, "newPassword": updated}).
		Post("/api/auth/change-password")
	if err != nil {
		return fmt.Errorf("change password request failed: %w", err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

// Roster fetches the full collection. Both a bare array and an
// {"items": [...]} wrapper decode, covering older server variants.
func (c *Client) Roster(ctx context.Context) ([]models.InmateRecord, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/api/roster")
	if err != nil {
		return nil, fmt.Errorf("roster fetch failed: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return decodeRoster(resp.Body())
}

func decodeRoster(body []byte) ([]models.InmateRecord, error) {
	var records []models.InmateRecord
	if err := json.Unmarshal(body, &records); err == nil {
		if records == nil {
			records = []models.InmateRecord{}
		}
		return records, nil
	}
	var wrapped struct {
		Items []models.InmateRecord `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode roster: %w", err)
	}
	if wrapped.Items == nil {
		wrapped.Items = []models.InmateRecord{}
	}
	return wrapped.Items, nil
}

// Record fetches a single record by id.
func (c *Client) Record(ctx context.Context, id string) (models.InmateRecord, error) {
	var record models.InmateRecord
	resp, err := c.rest.R().SetContext(ctx).SetResult(&record).Get("/api/roster/" + id)
	if err != nil {
		return record, fmt.Errorf("record fetch failed: %w", err)
	}
	if resp.IsError() {
		return record, apiError(resp)
	}
	return record, nil
}

// Create persists a draft. The server assigns the permanent id; the
// returned record carries it.
func (c *Client) Create(ctx context.Context, record models.InmateRecord) (models.InmateRecord, error) {
	var created models.InmateRecord
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(record).
		SetResult(&created).
		Post("/api/roster")
	if err != nil {
		return created, fmt.Errorf("create failed: %w", err)
	}
	if resp.IsError() {
		return created, apiError(resp)
	}
	return created, nil
}

// Update replaces a record wholesale, keyed by its id.
func (c *Client) Update(ctx context.Context, record models.InmateRecord) (models.InmateRecord, error) {
	var updated models.InmateRecord
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(record).
		SetResult(&updated).
		Put("/api/roster/" + record.ID)
	if err != nil {
		return updated, fmt.Errorf("update failed: %w", err)
	}
	if resp.IsError() {
		return updated, apiError(resp)
	}
	return updated, nil
}

// Delete removes a record by id. Admin sessions only.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.rest.R().SetContext(ctx).Delete("/api/roster/" + id)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

// UploadPhoto attaches a mugshot to a record via the multipart endpoint.
func (c *Client) UploadPhoto(ctx context.Context, recordID, filename string, photo io.Reader) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetFileReader("file", filename, photo).
		Post("/api/roster/" + recordID + "/photo")
	if err != nil {
		return fmt.Errorf("photo upload failed: %w", err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

// Photo fetches the stored mugshot bytes and their content type.
func (c *Client) Photo(ctx context.Context, recordID string) ([]byte, string, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/api/roster/" + recordID + "/photo")
	if err != nil {
		return nil, "", fmt.Errorf("photo fetch failed: %w", err)
	}
	if resp.IsError() {
		return nil, "", apiError(resp)
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// ExportPDF downloads the rendered roster report.
func (c *Client) ExportPDF(ctx context.Context) ([]byte, error) {
	resp, err := c.rest.R().SetContext(ctx).Get("/api/roster/export/pdf")
	if err != nil {
		return nil, fmt.Errorf("report download failed: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return resp.Body(), nil
}

// EmailReport asks the server to send the report PDF to an address.
func (c *Client) EmailReport(ctx context.Context, email string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email}).
		Post("/api/roster/export/pdf/email")
	if err != nil {
		return fmt.Errorf("report email failed: %w", err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}
