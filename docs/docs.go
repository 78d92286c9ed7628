// Package docs Shaker PD Jail Roster API.
//
// Documentation of the Shaker PD jail roster records API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://jail-roster-api.shakerpd.com
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// swagger:meta
package docs

import (
	"github.com/shakerpd/jail-roster-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/auth/login auth loginEndpointID
// Verifies credentials and sets the session cookie.
// responses:
//   200: sessionUserResponse

// The authenticated session user.
// swagger:response sessionUserResponse
type sessionUserResponseWrapper struct {
	// in:body
	Body models.SessionUser
}

// swagger:route GET /api/roster roster rosterListEndpointID
// Lists every record on the roster.
// responses:
//   200: rosterListResponse

// The full roster collection.
// swagger:response rosterListResponse
type rosterListResponseWrapper struct {
	// in:body
	Body []models.InmateRecord
}

// swagger:route GET /api/roster/{record_id} roster rosterByIDEndpointID
// Gets a single roster record by ID.
// responses:
//   200: rosterRecordResponse

// A single roster record.
// swagger:response rosterRecordResponse
type rosterRecordResponseWrapper struct {
	// in:body
	Body models.InmateRecord
}

// swagger:route DELETE /api/roster/{record_id} roster rosterDeleteEndpointID
// Removes a roster record and its mugshot. Admin only.
// responses:
//   200: messageResponse

// A plain confirmation message.
// swagger:response messageResponse
type messageResponseWrapper struct {
	// in:body
	Body models.MessageResponse
}
