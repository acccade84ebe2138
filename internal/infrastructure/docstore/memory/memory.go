// Package memory is an in-process docstore backend. Documents are kept as
// JSON so reads never alias caller memory.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
)

type record struct {
	id  string
	raw []byte
}

type collectionData struct {
	records []record
}

// Store holds every collection. A single mutex serializes all writes.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collectionData
}

func NewStore() *Store {
	return &Store{collections: make(map[string]*collectionData)}
}

func (s *Store) data(name string) *collectionData {
	c, ok := s.collections[name]
	if !ok {
		c = &collectionData{}
		s.collections[name] = c
	}
	return c
}

// Collection implements docstore.Collection in memory
type Collection[T any] struct {
	store *Store
	name  string
	opts  docstore.Options
}

var _ docstore.Collection[struct{}] = (*Collection[struct{}])(nil)

// Open returns a handle on the named collection
func Open[T any](s *Store, name string, opts ...docstore.Option) *Collection[T] {
	s.mu.Lock()
	s.data(name)
	s.mu.Unlock()
	return &Collection[T]{store: s, name: name, opts: docstore.ApplyOptions(opts)}
}

func decodeMap(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decode[T any](raw []byte) (T, error) {
	var out T
	err := json.Unmarshal(raw, &out)
	return out, err
}

// scan returns the indexes of records matching f, stopping after limit matches when limit > 0
func (c *Collection[T]) scan(data *collectionData, f docstore.Filter, limit int) ([]int, error) {
	var idx []int
	for i, r := range data.records {
		m, err := decodeMap(r.raw)
		if err != nil {
			return nil, err
		}
		ok, err := docstore.Match(m, f)
		if err != nil {
			return nil, err
		}
		if ok {
			idx = append(idx, i)
			if limit > 0 && len(idx) == limit {
				break
			}
		}
	}
	return idx, nil
}

func (c *Collection[T]) FindAll(ctx context.Context) ([]T, error) {
	return c.Find(ctx, nil)
}

func (c *Collection[T]) Find(ctx context.Context, f docstore.Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	data := c.store.data(c.name)
	idx, err := c.scan(data, f, 0)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(idx))
	for _, i := range idx {
		doc, err := decode[T](data.records[i].raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, f docstore.Filter) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	data := c.store.data(c.name)
	idx, err := c.scan(data, f, 1)
	if err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return nil, docstore.ErrNotFound
	}
	doc, err := decode[T](data.records[idx[0]].raw)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// conflicts reports whether m collides with a record other than skip on id or unique key
func (c *Collection[T]) conflicts(data *collectionData, id string, m map[string]any, skip int) (bool, error) {
	want, hasKey := docstore.UniqueValues(m, c.opts.UniqueKey)
	for i, r := range data.records {
		if i == skip {
			continue
		}
		if r.id == id {
			return true, nil
		}
		if !hasKey {
			continue
		}
		other, err := decodeMap(r.raw)
		if err != nil {
			return false, err
		}
		got, ok := docstore.UniqueValues(other, c.opts.UniqueKey)
		if ok && reflect.DeepEqual(got, want) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Collection[T]) InsertOne(ctx context.Context, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := docstore.EnsureID(doc)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m, err := decodeMap(raw)
	if err != nil {
		return err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	data := c.store.data(c.name)
	dup, err := c.conflicts(data, id, m, -1)
	if err != nil {
		return err
	}
	if dup {
		return docstore.ErrDuplicate
	}
	data.records = append(data.records, record{id: id, raw: raw})
	return nil
}

func (c *Collection[T]) ReplaceOne(ctx context.Context, f docstore.Filter, doc *T) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	e, err := docstore.AsEntity(doc)
	if err != nil {
		return false, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	data := c.store.data(c.name)
	idx, err := c.scan(data, f, 1)
	if err != nil || len(idx) == 0 {
		return false, err
	}
	i := idx[0]
	e.SetDocID(data.records[i].id)
	raw, err := json.Marshal(doc)
	if err != nil {
		return false, err
	}
	m, err := decodeMap(raw)
	if err != nil {
		return false, err
	}
	if len(c.opts.Preserve) > 0 {
		stored, err := decodeMap(data.records[i].raw)
		if err != nil {
			return false, err
		}
		for _, field := range c.opts.Preserve {
			if v, ok := stored[field]; ok {
				m[field] = v
			}
		}
		if raw, err = json.Marshal(m); err != nil {
			return false, err
		}
	}
	dup, err := c.conflicts(data, data.records[i].id, m, i)
	if err != nil {
		return false, err
	}
	if dup {
		return false, docstore.ErrDuplicate
	}
	data.records[i].raw = raw
	if len(c.opts.Preserve) > 0 {
		var fresh T
		if err := json.Unmarshal(raw, &fresh); err != nil {
			return false, err
		}
		*doc = fresh
	}
	return true, nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, f docstore.Filter) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	data := c.store.data(c.name)
	idx, err := c.scan(data, f, 1)
	if err != nil || len(idx) == 0 {
		return false, err
	}
	i := idx[0]
	data.records = append(data.records[:i], data.records[i+1:]...)
	return true, nil
}

func (c *Collection[T]) IncrementField(ctx context.Context, f docstore.Filter, field string, delta int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	data := c.store.data(c.name)
	idx, err := c.scan(data, f, 1)
	if err != nil || len(idx) == 0 {
		return false, err
	}
	i := idx[0]
	m, err := decodeMap(data.records[i].raw)
	if err != nil {
		return false, err
	}
	var current int64
	if v, ok := docstore.Lookup(m, field); ok && v != nil {
		n, ok := v.(float64)
		if !ok {
			return false, fmt.Errorf("memory: field %q is not numeric", field)
		}
		current = int64(n)
	}
	next := current + delta
	if next < 0 {
		next = 0
	}
	setPath(m, docstore.SplitPath(field), next)
	raw, err := json.Marshal(m)
	if err != nil {
		return false, err
	}
	data.records[i].raw = raw
	return true, nil
}

func setPath(m map[string]any, path []string, v any) {
	for _, seg := range path[:len(path)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[seg] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}
