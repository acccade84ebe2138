// Package mongodb is the MongoDB docstore backend. Identifiers are kept as
// hex strings in Go and stored as native ObjectIDs under _id.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a client and pings the primary
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Collection implements docstore.Collection on a mongo collection
type Collection[T any] struct {
	coll *mongo.Collection
	opts docstore.Options
}

var _ docstore.Collection[struct{}] = (*Collection[struct{}])(nil)

// Open returns a handle on the named collection, creating the unique index when configured
func Open[T any](ctx context.Context, db *mongo.Database, name string, opts ...docstore.Option) (*Collection[T], error) {
	c := &Collection[T]{coll: db.Collection(name), opts: docstore.ApplyOptions(opts)}
	if len(c.opts.UniqueKey) > 0 {
		keys := bson.D{}
		for _, f := range c.opts.UniqueKey {
			keys = append(keys, bson.E{Key: f, Value: 1})
		}
		_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return nil, fmt.Errorf("mongodb: create unique index on %s: %w", name, err)
		}
	}
	return c, nil
}

func (c *Collection[T]) FindAll(ctx context.Context) ([]T, error) {
	return c.Find(ctx, nil)
}

func (c *Collection[T]) Find(ctx context.Context, f docstore.Filter) ([]T, error) {
	cur, err := c.coll.Find(ctx, ToBSON(f), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	for cur.Next(ctx) {
		var doc T
		if err := FromRaw(cur.Current, &doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, cur.Err()
}

func (c *Collection[T]) FindOne(ctx context.Context, f docstore.Filter) (*T, error) {
	raw, err := c.coll.FindOne(ctx, ToBSON(f)).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	var doc T
	if err := FromRaw(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Collection[T]) InsertOne(ctx context.Context, doc *T) error {
	if _, err := docstore.EnsureID(doc); err != nil {
		return err
	}
	d, err := ToDocument(doc)
	if err != nil {
		return err
	}
	if _, err := c.coll.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return docstore.ErrDuplicate
		}
		return err
	}
	return nil
}

func (c *Collection[T]) ReplaceOne(ctx context.Context, f docstore.Filter, doc *T) (bool, error) {
	e, err := docstore.AsEntity(doc)
	if err != nil {
		return false, err
	}
	d, err := ToDocument(doc)
	if err != nil {
		return false, err
	}
	d = withoutID(d)

	if len(c.opts.Preserve) > 0 {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		raw, err := c.coll.FindOneAndUpdate(ctx, ToBSON(f), ReplacePipeline(d, c.opts.Preserve), opts).Raw()
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return false, nil
			}
			if mongo.IsDuplicateKeyError(err) {
				return false, docstore.ErrDuplicate
			}
			return false, err
		}
		var fresh T
		if err := FromRaw(raw, &fresh); err != nil {
			return false, err
		}
		*doc = fresh
		return true, nil
	}

	opts := options.FindOneAndReplace().
		SetProjection(bson.D{{Key: "_id", Value: 1}}).
		SetReturnDocument(options.After)
	raw, err := c.coll.FindOneAndReplace(ctx, ToBSON(f), d, opts).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return false, docstore.ErrDuplicate
		}
		return false, err
	}
	e.SetDocID(idFromRaw(raw))
	return true, nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, f docstore.Filter) (bool, error) {
	res, err := c.coll.DeleteOne(ctx, ToBSON(f))
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (c *Collection[T]) IncrementField(ctx context.Context, f docstore.Filter, field string, delta int64) (bool, error) {
	res, err := c.coll.UpdateOne(ctx, ToBSON(f), IncrementPipeline(field, delta))
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ReplacePipeline builds an update pipeline that swaps the stored document
// for d while keeping _id and the preserved fields from the stored one
func ReplacePipeline(d bson.D, preserve []string) mongo.Pipeline {
	keep := bson.D{{Key: "_id", Value: "$_id"}}
	for _, field := range preserve {
		keep = append(keep, bson.E{Key: field, Value: "$" + field})
	}
	merged := bson.D{{Key: "$mergeObjects", Value: bson.A{
		bson.D{{Key: "$literal", Value: d}},
		keep,
	}}}
	return mongo.Pipeline{{{Key: "$replaceWith", Value: merged}}}
}

// IncrementPipeline builds an update pipeline that adds delta to field and floors the result at zero
func IncrementPipeline(field string, delta int64) mongo.Pipeline {
	sum := bson.D{{Key: "$add", Value: bson.A{
		bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, 0}}},
		delta,
	}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: field, Value: bson.D{{Key: "$max", Value: bson.A{0, sum}}}}}}},
	}
}

// ToBSON translates a docstore filter into a mongo query document
func ToBSON(f docstore.Filter) bson.M {
	if len(f) == 0 {
		return bson.M{}
	}
	parts := make([]bson.M, 0, len(f))
	for _, c := range f {
		parts = append(parts, condToBSON(c))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	and := make(bson.A, len(parts))
	for i, p := range parts {
		and[i] = p
	}
	return bson.M{"$and": and}
}

func condToBSON(c docstore.Cond) bson.M {
	field := c.Field
	isID := field == docstore.IDField
	if isID {
		field = "_id"
	}
	value := func(v any) any {
		if isID {
			return toObjectID(v)
		}
		return v
	}

	switch c.Op {
	case docstore.OpContainsFold:
		s, _ := c.Value.(string)
		return bson.M{field: primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}}
	case docstore.OpIn:
		values, _ := c.Value.([]any)
		in := make(bson.A, len(values))
		for i, v := range values {
			in[i] = value(v)
		}
		return bson.M{field: bson.M{"$in": in}}
	default:
		// Has relies on mongo matching scalar equality against array elements
		return bson.M{field: value(c.Value)}
	}
}

func toObjectID(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return oid
	}
	return s
}

// ToDocument marshals doc and stores its hex id as an ObjectID
func ToDocument(doc any) (bson.D, error) {
	b, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	for i, e := range d {
		if e.Key == "_id" {
			d[i].Value = toObjectID(e.Value)
		}
	}
	return d, nil
}

// FromRaw decodes a stored document into out, rendering the ObjectID as hex
func FromRaw(raw bson.Raw, out any) error {
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return err
	}
	for i, e := range d {
		if oid, ok := e.Value.(primitive.ObjectID); ok && e.Key == "_id" {
			d[i].Value = oid.Hex()
		}
	}
	b, err := bson.Marshal(d)
	if err != nil {
		return err
	}
	return bson.Unmarshal(b, out)
}

func withoutID(d bson.D) bson.D {
	out := make(bson.D, 0, len(d))
	for _, e := range d {
		if e.Key != "_id" {
			out = append(out, e)
		}
	}
	return out
}

func idFromRaw(raw bson.Raw) string {
	v, err := raw.LookupErr("_id")
	if err != nil {
		return ""
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	s, _ := v.StringValueOK()
	return s
}
