package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
)

const pgUniqueViolation = "23505"

// Querier is the subset of pgxpool.Pool used by collections
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Collection stores documents of type T as JSONB rows of the documents table
type Collection[T any] struct {
	db   Querier
	name string
	opts docstore.Options
}

var _ docstore.Collection[struct{}] = (*Collection[struct{}])(nil)

func Open[T any](db Querier, name string, opts ...docstore.Option) *Collection[T] {
	return &Collection[T]{db: db, name: name, opts: docstore.ApplyOptions(opts)}
}

// sqlBuilder accumulates positional arguments while a statement is assembled
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// where renders the predicate for collection and f
func (b *sqlBuilder) where(collection string, f docstore.Filter) (string, error) {
	parts := []string{"collection = " + b.arg(collection)}
	for _, c := range f {
		p, err := b.cond(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " AND "), nil
}

func (b *sqlBuilder) cond(c docstore.Cond) (string, error) {
	if c.Field == docstore.IDField {
		switch c.Op {
		case docstore.OpEq:
			id, _ := c.Value.(string)
			return "id = " + b.arg(id), nil
		case docstore.OpIn:
			values, _ := c.Value.([]any)
			ids := make([]string, 0, len(values))
			for _, v := range values {
				if s, ok := v.(string); ok {
					ids = append(ids, s)
				}
			}
			return "id = ANY(" + b.arg(ids) + "::text[])", nil
		}
	}

	switch c.Op {
	case docstore.OpContainsFold:
		s, _ := c.Value.(string)
		return "body #>> " + b.arg(docstore.SplitPath(c.Field)) + "::text[] ILIKE " + b.arg("%"+escapeLike(s)+"%"), nil
	case docstore.OpHas:
		doc, err := containment(c.Field, []any{c.Value})
		if err != nil {
			return "", err
		}
		return "body @> " + b.arg(doc) + "::jsonb", nil
	case docstore.OpIn:
		values, _ := c.Value.([]any)
		if len(values) == 0 {
			return "FALSE", nil
		}
		ors := make([]string, 0, len(values))
		for _, v := range values {
			doc, err := containment(c.Field, v)
			if err != nil {
				return "", err
			}
			ors = append(ors, "body @> "+b.arg(doc)+"::jsonb")
		}
		return "(" + strings.Join(ors, " OR ") + ")", nil
	default:
		doc, err := containment(c.Field, c.Value)
		if err != nil {
			return "", err
		}
		return "body @> " + b.arg(doc) + "::jsonb", nil
	}
}

// containment builds the JSON document {"a":{"b":value}} for field a.b
func containment(field string, value any) (string, error) {
	path := docstore.SplitPath(field)
	var cur any = value
	for i := len(path) - 1; i >= 0; i-- {
		cur = map[string]any{path[i]: cur}
	}
	b, err := json.Marshal(cur)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// firstID selects the id of the first matching row in insertion order
func (b *sqlBuilder) firstID(collection string, f docstore.Filter, lock bool) (string, error) {
	w, err := b.where(collection, f)
	if err != nil {
		return "", err
	}
	q := "SELECT id FROM documents WHERE " + w + " ORDER BY seq LIMIT 1"
	if lock {
		q += " FOR UPDATE"
	}
	return q, nil
}

func (c *Collection[T]) uniqueKey(raw []byte) (*string, error) {
	if len(c.opts.UniqueKey) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	vals, ok := docstore.UniqueValues(m, c.opts.UniqueKey)
	if !ok {
		return nil, nil
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func (c *Collection[T]) FindAll(ctx context.Context) ([]T, error) {
	return c.Find(ctx, nil)
}

func (c *Collection[T]) Find(ctx context.Context, f docstore.Filter) ([]T, error) {
	b := &sqlBuilder{}
	w, err := b.where(c.name, f)
	if err != nil {
		return nil, err
	}
	rows, err := c.db.Query(ctx, "SELECT body FROM documents WHERE "+w+" ORDER BY seq", b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (c *Collection[T]) FindOne(ctx context.Context, f docstore.Filter) (*T, error) {
	b := &sqlBuilder{}
	w, err := b.where(c.name, f)
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = c.db.QueryRow(ctx, "SELECT body FROM documents WHERE "+w+" ORDER BY seq LIMIT 1", b.args...).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Collection[T]) InsertOne(ctx context.Context, doc *T) error {
	id, err := docstore.EnsureID(doc)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	key, err := c.uniqueKey(raw)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(ctx,
		`INSERT INTO documents (collection, id, unique_key, body) VALUES ($1, $2, $3, $4::jsonb)`,
		c.name, id, key, string(raw))
	return translate(err)
}

func (c *Collection[T]) ReplaceOne(ctx context.Context, f docstore.Filter, doc *T) (bool, error) {
	if _, err := docstore.AsEntity(doc); err != nil {
		return false, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return false, err
	}
	key, err := c.uniqueKey(raw)
	if err != nil {
		return false, err
	}

	b := &sqlBuilder{}
	q, err := b.replaceSQL(c.name, f, string(raw), key, c.opts.Preserve)
	if err != nil {
		return false, err
	}

	var stored []byte
	if err := c.db.QueryRow(ctx, q, b.args...).Scan(&stored); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, translate(err)
	}
	var fresh T
	if err := json.Unmarshal(stored, &fresh); err != nil {
		return false, err
	}
	*doc = fresh
	return true, nil
}

// replaceSQL renders a single row replace of body. Preserved fields are
// copied from the stored body when present.
func (b *sqlBuilder) replaceSQL(collection string, f docstore.Filter, raw string, key *string, preserve []string) (string, error) {
	sub, err := b.firstID(collection, f, true)
	if err != nil {
		return "", err
	}
	body := "jsonb_set(" + b.arg(raw) + "::jsonb, '{id}', to_jsonb(documents.id))"
	for _, field := range preserve {
		p := b.arg(field)
		body += " || CASE WHEN documents.body ? " + p + "::text THEN jsonb_build_object(" + p + "::text, documents.body -> " + p + "::text) ELSE '{}'::jsonb END"
	}
	return "UPDATE documents SET body = " + body + ", unique_key = " + b.arg(key) +
		" WHERE collection = " + b.arg(collection) + " AND id = (" + sub + ") RETURNING body", nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, f docstore.Filter) (bool, error) {
	b := &sqlBuilder{}
	sub, err := b.firstID(c.name, f, false)
	if err != nil {
		return false, err
	}
	q := "DELETE FROM documents WHERE collection = " + b.arg(c.name) + " AND id = (" + sub + ")"
	tag, err := c.db.Exec(ctx, q, b.args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (c *Collection[T]) IncrementField(ctx context.Context, f docstore.Filter, field string, delta int64) (bool, error) {
	b := &sqlBuilder{}
	q, err := b.incrementSQL(c.name, f, field, delta)
	if err != nil {
		return false, err
	}
	tag, err := c.db.Exec(ctx, q, b.args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// incrementSQL renders a single row update adding delta to field, floored at zero
func (b *sqlBuilder) incrementSQL(collection string, f docstore.Filter, field string, delta int64) (string, error) {
	sub, err := b.firstID(collection, f, true)
	if err != nil {
		return "", err
	}
	path := b.arg(docstore.SplitPath(field))
	return "UPDATE documents SET body = jsonb_set(body, " + path + "::text[], " +
		"to_jsonb(GREATEST(0, COALESCE((body #>> " + path + "::text[])::bigint, 0) + " + b.arg(delta) + ")), true) " +
		"WHERE collection = " + b.arg(collection) + " AND id = (" + sub + ")", nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return docstore.ErrDuplicate
	}
	return err
}
