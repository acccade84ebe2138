// Package docstore is the document store abstraction shared by every
// repository. Backends live in the mongodb, postgres and memory subpackages.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("docstore: document not found")
	ErrDuplicate = errors.New("docstore: duplicate key")
)

// IDField is the logical name of the identifier in filters. Backends map it
// to their native key (_id for mongo, the id column for postgres).
const IDField = "id"

// Entity is implemented by pointers to stored documents
type Entity interface {
	DocID() string
	SetDocID(id string)
}

// Collection is a typed handle on one collection of documents of type T.
// Field names in filters are the stored document keys, dotted for nested
// values (e.g. "stats.favorites").
type Collection[T any] interface {
	FindAll(ctx context.Context) ([]T, error)
	Find(ctx context.Context, f Filter) ([]T, error)
	// FindOne returns ErrNotFound when nothing matches
	FindOne(ctx context.Context, f Filter) (*T, error)
	// InsertOne assigns a new id when the document has none. It returns
	// ErrDuplicate when the id or the unique key is taken.
	InsertOne(ctx context.Context, doc *T) error
	// ReplaceOne swaps the first matching document for doc, keeping the
	// stored values of preserved fields. doc is refreshed with the result.
	ReplaceOne(ctx context.Context, f Filter, doc *T) (bool, error)
	DeleteOne(ctx context.Context, f Filter) (bool, error)
	// IncrementField atomically adds delta to a numeric field of the first
	// matching document. The result never drops below zero.
	IncrementField(ctx context.Context, f Filter, field string, delta int64) (bool, error)
}

// Options tune a collection when it is opened
type Options struct {
	// UniqueKey lists fields whose combined values must be unique
	UniqueKey []string
	// Preserve lists top level fields owned by the store. ReplaceOne keeps
	// their stored values in the same write.
	Preserve []string
}

type Option func(*Options)

func UniqueKey(fields ...string) Option {
	return func(o *Options) { o.UniqueKey = append([]string(nil), fields...) }
}

func Preserve(fields ...string) Option {
	return func(o *Options) { o.Preserve = append([]string(nil), fields...) }
}

func ApplyOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewID returns a new 24 char hex object id
func NewID() string { return primitive.NewObjectID().Hex() }

// IsValidID reports whether id has the object id shape
func IsValidID(id string) bool { return primitive.IsValidObjectID(id) }

// AsEntity returns doc as an Entity or an error naming the offending type
func AsEntity(doc any) (Entity, error) {
	e, ok := doc.(Entity)
	if !ok {
		return nil, fmt.Errorf("docstore: %T does not implement docstore.Entity", doc)
	}
	return e, nil
}

// EnsureID assigns a new id to doc when it has none and returns the id
func EnsureID(doc any) (string, error) {
	e, err := AsEntity(doc)
	if err != nil {
		return "", err
	}
	if e.DocID() == "" {
		e.SetDocID(NewID())
	}
	return e.DocID(), nil
}
