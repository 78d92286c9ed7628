package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shakerpd/jail-roster-api/api"
	"github.com/shakerpd/jail-roster-api/config"
	"github.com/shakerpd/jail-roster-api/databases"
	"github.com/shakerpd/jail-roster-api/models"
	"github.com/shakerpd/jail-roster-api/mugshots"
)

// Roster exported for testing purposes
type Roster struct {
	DB     databases.RosterDatabase
	Photos mugshots.Store
}

// RosterHandler returns the full roster collection. The `search` query
// matches name, cell, OCA number and charges; `active` narrows to in
// custody (true) or released (false).
func (h Roster) RosterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := h.DB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get roster", http.StatusInternalServerError, w, err)
		return
	}

	search := r.URL.Query().Get("search")
	activeParam := r.URL.Query().Get("active")
	var active bool
	if activeParam != "" {
		active, err = strconv.ParseBool(activeParam)
		if err != nil {
			config.ErrorStatus("invalid active filter", http.StatusBadRequest, w, err)
			return
		}
	}

	records := make([]models.InmateRecord, 0, len(dbResp))
	for _, record := range dbResp {
		if !record.Matches(search) {
			continue
		}
		if activeParam != "" && record.Active() != active {
			continue
		}
		records = append(records, record)
	}

	b, err := json.Marshal(records)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RosterByIDHandler returns a single record given its id
func (h Roster) RosterByIDHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	recordID := mux.Vars(r)["record_id"]

	zap.S().Debugf("record_id: %v", recordID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := h.DB.FindOne(ctx, bson.M{"_id": recordID})
	if err != nil {
		config.ErrorStatus("failed to get record by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateRosterHandler inserts a new record. The server assigns the id,
// discarding any client draft placeholder, and photos only attach through
// the upload endpoint.
func (h Roster) CreateRosterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var record models.InmateRecord
	err := json.NewDecoder(r.Body).Decode(&record)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	if record.Name == "" {
		config.ErrorStatus("name is required", http.StatusBadRequest, w, fmt.Errorf("missing name"))
		return
	}

	record.ID = primitive.NewObjectID().Hex()
	record.HasPhoto = false
	record.Normalize()
	now := primitive.NewDateTimeFromTime(time.Now())
	record.CreatedAt = now
	record.UpdatedAt = now

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err = h.DB.InsertOne(ctx, record)
	if err != nil {
		config.ErrorStatus("failed to insert record", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(record)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateRosterHandler replaces a record wholesale. The stored creation
// timestamp and photo flag survive the replace; everything else comes
// from the request body.
func (h Roster) UpdateRosterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	recordID := mux.Vars(r)["record_id"]

	var record models.InmateRecord
	err := json.NewDecoder(r.Body).Decode(&record)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existing, err := h.DB.FindOne(ctx, bson.M{"_id": recordID})
	if err != nil {
		config.ErrorStatus("failed to get record by ID", http.StatusNotFound, w, err)
		return
	}

	record.ID = recordID
	record.HasPhoto = existing.HasPhoto
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
	record.Normalize()

	matched, err := h.DB.ReplaceOne(ctx, bson.M{"_id": recordID}, record)
	if err != nil {
		config.ErrorStatus("failed to update record", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("record not found", http.StatusNotFound, w, fmt.Errorf("no record matched id %s", recordID))
		return
	}

	b, err := json.Marshal(record)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteRosterHandler removes a record and its mugshot
func (h Roster) DeleteRosterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	recordID := mux.Vars(r)["record_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := h.DB.DeleteOne(ctx, bson.M{"_id": recordID})
	if err != nil {
		config.ErrorStatus("failed to delete record", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("record not found", http.StatusNotFound, w, fmt.Errorf("no record matched id %s", recordID))
		return
	}

	if h.Photos != nil {
		if err := h.Photos.Delete(ctx, recordID); err != nil && err != mugshots.ErrNotFound {
			zap.S().Warnw("failed to delete mugshot", "recordId", recordID, "error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "record deleted"}`))
}

// ClearRosterHandler drops every record from the roster
func (h Roster) ClearRosterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := h.DB.DeleteMany(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to clear roster", http.StatusInternalServerError, w, err)
		return
	}

	user, _ := api.SessionFrom(r.Context())
	zap.S().Infow("roster cleared", "deleted", deleted, "username", user.Username)

	b, _ := json.Marshal(map[string]interface{}{"message": "roster cleared", "deleted": deleted})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
