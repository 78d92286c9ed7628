package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"
)

const mugshotName = "mugshots"

// Mugshot is the stored photo document, keyed by the roster record id.
type Mugshot struct {
	RecordID    string `bson:"_id"`
	ContentType string `bson:"contentType"`
	Data        []byte `bson:"data"`
}

// MugshotDatabase contains the methods to use with the mugshots collection
type MugshotDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*Mugshot, error)
	ReplaceOne(context.Context, interface{}, interface{}, ...*options.ReplaceOptions) (int64, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
}

type mugshotDatabase struct {
	db DatabaseHelper
}

// NewMugshotDatabase initializes a new instance of mugshot database with the provided db connection
func NewMugshotDatabase(db DatabaseHelper) MugshotDatabase {
	return &mugshotDatabase{
		db: db,
	}
}

func (m *mugshotDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*Mugshot, error) {
	mugshot := &Mugshot{}
	err := m.db.Collection(mugshotName).FindOne(ctx, filter, opts...).Decode(mugshot)
	if err != nil {
		return nil, err
	}
	return mugshot, nil
}

func (m *mugshotDatabase) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (int64, error) {
	return m.db.Collection(mugshotName).ReplaceOne(ctx, filter, replacement, opts...)
}

func (m *mugshotDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return m.db.Collection(mugshotName).DeleteOne(ctx, filter, opts...)
}
