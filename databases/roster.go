package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shakerpd/jail-roster-api/models"
)

const rosterName = "roster"

// RosterDatabase contains the methods to use with the roster collection
type RosterDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.InmateRecord, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.InmateRecord, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (interface{}, error)
	ReplaceOne(context.Context, interface{}, interface{}, ...*options.ReplaceOptions) (int64, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
	DeleteMany(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
}

type rosterDatabase struct {
	db DatabaseHelper
}

// NewRosterDatabase initializes a new instance of roster database with the provided db connection
func NewRosterDatabase(db DatabaseHelper) RosterDatabase {
	return &rosterDatabase{
		db: db,
	}
}

func (r *rosterDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.InmateRecord, error) {
	record := &models.InmateRecord{}
	err := r.db.Collection(rosterName).FindOne(ctx, filter, opts...).Decode(record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *rosterDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.InmateRecord, error) {
	var records []models.InmateRecord
	cur, err := r.db.Collection(rosterName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *rosterDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (interface{}, error) {
	return r.db.Collection(rosterName).InsertOne(ctx, document, opts...)
}

func (r *rosterDatabase) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (int64, error) {
	return r.db.Collection(rosterName).ReplaceOne(ctx, filter, replacement, opts...)
}

func (r *rosterDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	return r.db.Collection(rosterName).UpdateOne(ctx, filter, update, opts...)
}

func (r *rosterDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return r.db.Collection(rosterName).DeleteOne(ctx, filter, opts...)
}

func (r *rosterDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return r.db.Collection(rosterName).DeleteMany(ctx, filter, opts...)
}
