// Package docstore is a small document-store abstraction with interchangeable drivers.
//
// Documents are plain Go structs encoded through their bson tags on every driver, so the same
// model type round-trips through MongoDB, the Postgres JSONB table and the in-memory store. The
// "_id" field is owned by the driver: it is assigned on Insert and decoded as an opaque string.
package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/sushihentaime/bloglist/internal/common"
)

const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Collection is the set of operations every driver supports for one named collection.
//
// Lookups by a structurally invalid id fail with common.ErrMalformedID, lookups by a valid but
// unknown id with common.ErrRecordNotFound. Unique index violations fail with common.ErrDuplicateKey.
type Collection interface {
	// FindAll decodes every document, in insertion order, into dst which must point to a slice.
	FindAll(ctx context.Context, dst any) error
	FindByID(ctx context.Context, id string, dst any) error
	// Insert stores doc under a freshly generated id and returns it. Any id set on doc is ignored.
	Insert(ctx context.Context, doc any) (string, error)
	DeleteByID(ctx context.Context, id string) error
	// UpdateByID sets the given top-level fields, leaving the others untouched, and decodes the
	// merged document into dst when dst is not nil.
	UpdateByID(ctx context.Context, id string, fields map[string]any, dst any) error
	AppendToArray(ctx context.Context, id, field, value string) error
	RemoveFromArray(ctx context.Context, id, field, value string) error
}

type Store interface {
	Collection(name string) Collection
	// EnsureUnique makes field unique across the documents of collection.
	EnsureUnique(ctx context.Context, collection, field string) error
	Close() error
}

// Open connects to the store selected by driver. url and name are ignored by the memory driver;
// name is the database name for mongo.
func Open(driver, url, name string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverMongo:
		db, err := common.NewMongo(url, name)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(db), nil
	case DriverPostgres:
		db, err := common.NewDB(url, 10, 5, 15*time.Minute)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
