package docstore

import (
	"encoding/json"
	"reflect"
	"strings"
)

type Op int

const (
	OpEq Op = iota
	// OpContainsFold is a case-insensitive substring match on a string field
	OpContainsFold
	// OpHas matches when an array field contains the value
	OpHas
	// OpIn matches when the field equals one of the values
	OpIn
)

// Cond is a single predicate on a document field
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. An empty filter matches everything.
type Filter []Cond

func Where(conds ...Cond) Filter { return Filter(conds) }

func ByID(id string) Filter { return Filter{Eq(IDField, id)} }

func Eq(field string, value any) Cond { return Cond{Field: field, Op: OpEq, Value: value} }

func ContainsFold(field, substr string) Cond {
	return Cond{Field: field, Op: OpContainsFold, Value: substr}
}

func Has(field string, value any) Cond { return Cond{Field: field, Op: OpHas, Value: value} }

func In(field string, values ...any) Cond { return Cond{Field: field, Op: OpIn, Value: values} }

// IDIn matches documents whose id is one of ids
func IDIn(ids ...string) Cond {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return In(IDField, values...)
}

// And returns a new filter with the extra conditions appended
func (f Filter) And(conds ...Cond) Filter {
	out := make(Filter, 0, len(f)+len(conds))
	out = append(out, f...)
	return append(out, conds...)
}

// SplitPath splits a dotted field name into its segments
func SplitPath(field string) []string { return strings.Split(field, ".") }

// Lookup walks a decoded JSON document along a dotted path
func Lookup(doc map[string]any, field string) (any, bool) {
	var cur any = doc
	for _, seg := range SplitPath(field) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Normalize converts v to its decoded JSON form so it can be compared with
// values read from a decoded document.
func Normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Match evaluates f against a decoded JSON document
func Match(doc map[string]any, f Filter) (bool, error) {
	for _, c := range f {
		ok, err := matchCond(doc, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchCond(doc map[string]any, c Cond) (bool, error) {
	got, present := Lookup(doc, c.Field)
	switch c.Op {
	case OpContainsFold:
		s, ok := got.(string)
		sub, _ := c.Value.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(sub)), nil
	case OpHas:
		want, err := Normalize(c.Value)
		if err != nil {
			return false, err
		}
		arr, ok := got.([]any)
		if !ok {
			return false, nil
		}
		for _, el := range arr {
			if reflect.DeepEqual(el, want) {
				return true, nil
			}
		}
		return false, nil
	case OpIn:
		values, _ := c.Value.([]any)
		for _, v := range values {
			want, err := Normalize(v)
			if err != nil {
				return false, err
			}
			if present && reflect.DeepEqual(got, want) {
				return true, nil
			}
		}
		return false, nil
	default:
		want, err := Normalize(c.Value)
		if err != nil {
			return false, err
		}
		if !present {
			return want == nil, nil
		}
		return reflect.DeepEqual(got, want), nil
	}
}

// UniqueValues extracts the values of the unique key fields from a decoded
// document. ok is false when any field is missing.
func UniqueValues(doc map[string]any, fields []string) ([]any, bool) {
	if len(fields) == 0 {
		return nil, false
	}
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		v, ok := Lookup(doc, f)
		if !ok {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}
