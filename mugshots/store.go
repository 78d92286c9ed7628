// Package mugshots stores roster photos keyed by record id. Photos are
// referenced by identifier only and fetched on demand; no inline encoding
// travels with the roster records.
package mugshots

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shakerpd/jail-roster-api/databases"
)

// ErrNotFound is returned when a record has no stored photo.
var ErrNotFound = errors.New("mugshot not found")

// AllowedTypes lists the accepted upload content types.
var AllowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Store is the photo backend. Put replaces any existing photo for the
// record.
type Store interface {
	Put(ctx context.Context, recordID, contentType string, data []byte) error
	Get(ctx context.Context, recordID string) (data []byte, contentType string, err error)
	Delete(ctx context.Context, recordID string) error
}

type mongoStore struct {
	db databases.MugshotDatabase
}

// NewMongoStore keeps photos in the mugshots collection alongside the
// roster data.
func NewMongoStore(db databases.MugshotDatabase) Store {
	return &mongoStore{db: db}
}

func (s *mongoStore) Put(ctx context.Context, recordID, contentType string, data []byte) error {
	doc := databases.Mugshot{
		RecordID:    recordID,
		ContentType: contentType,
		Data:        data,
	}
	upsert := true
	_, err := s.db.ReplaceOne(ctx, bson.M{"_id": recordID}, doc, &options.ReplaceOptions{Upsert: &upsert})
	return err
}

func (s *mongoStore) Get(ctx context.Context, recordID string) ([]byte, string, error) {
	doc, err := s.db.FindOne(ctx, bson.M{"_id": recordID})
	if err != nil {
		return nil, "", ErrNotFound
	}
	return doc.Data, doc.ContentType, nil
}

func (s *mongoStore) Delete(ctx context.Context, recordID string) error {
	_, err := s.db.DeleteOne(ctx, bson.M{"_id": recordID})
	return err
}
