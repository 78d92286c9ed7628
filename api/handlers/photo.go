package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shakerpd/jail-roster-api/api"
	"github.com/shakerpd/jail-roster-api/config"
	"github.com/shakerpd/jail-roster-api/databases"
	"github.com/shakerpd/jail-roster-api/mugshots"
)

// maxPhotoBytes caps mugshot uploads at 10MB.
const maxPhotoBytes = 10 << 20

// Photo exported for testing purposes
type Photo struct {
	DB    databases.RosterDatabase
	Store mugshots.Store
}

// UploadPhotoHandler stores a mugshot for a record. The image travels in
// the multipart field "file" and must be png or jpeg; the record's photo
// flag flips on once the bytes are stored.
func (h Photo) UploadPhotoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	recordID := mux.Vars(r)["record_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := h.DB.FindOne(ctx, bson.M{"_id": recordID})
	if err != nil {
		config.ErrorStatus("failed to get record by ID", http.StatusNotFound, w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		config.ErrorStatus("failed to parse upload", http.StatusBadRequest, w, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("missing file field", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		config.ErrorStatus("failed to read upload", http.StatusBadRequest, w, err)
		return
	}

	contentType := http.DetectContentType(data)
	if !mugshots.AllowedTypes[contentType] {
		config.ErrorStatus("only png and jpeg images are accepted", http.StatusUnsupportedMediaType, w, fmt.Errorf("rejected content type %s", contentType))
		return
	}

	if err := h.Store.Put(ctx, recordID, contentType, data); err != nil {
		config.ErrorStatus("failed to store mugshot", http.StatusInternalServerError, w, err)
		return
	}

	err = h.DB.UpdateOne(ctx, bson.M{"_id": recordID}, bson.M{
		"$set": bson.M{
			"hasPhoto":  true,
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		},
	})
	if err != nil {
		config.ErrorStatus("failed to flag record photo", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("mugshot stored", "recordId", recordID, "bytes", len(data))

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "photo uploaded"}`))
}

// PhotoHandler streams the stored mugshot bytes for a record
func (h Photo) PhotoHandler(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["record_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	data, contentType, err := h.Store.Get(ctx, recordID)
	if err == mugshots.ErrNotFound {
		config.ErrorStatus("no photo on file", http.StatusNotFound, w, err)
		return
	}
	if err != nil {
		config.ErrorStatus("failed to load mugshot", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
