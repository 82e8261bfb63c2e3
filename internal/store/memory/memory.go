// Package memory is an in-process Store that evaluates typed pipelines over
// documents held in maps. It mirrors the semantics of the Mongo adapter and
// backs unit tests and local runs without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"propcatalog/internal/store"
)

// Document is a stored record. Values may be string, bool, int, int32, int64,
// float64, decimal.Decimal, time.Time, nil, Document or []Document.
type Document map[string]any

func (d Document) clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Store is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{collections: make(map[string][]Document)}
}

// Insert appends docs to collection in order.
func (s *Store) Insert(collection string, docs ...Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.collections[collection] = append(s.collections[collection], d.clone())
	}
}

// InsertUnique appends doc unless a document with the same _id exists,
// in which case it returns store.ErrDuplicate.
func (s *Store) InsertUnique(collection string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.collections[collection] {
		if equal(d["_id"], doc["_id"]) {
			return fmt.Errorf("%w: %s _id %v", store.ErrDuplicate, collection, doc["_id"])
		}
	}
	s.collections[collection] = append(s.collections[collection], doc.clone())
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return store.ContextError(ctx)
}

func (s *Store) Count(ctx context.Context, collection string, m store.Match) (int64, error) {
	if err := store.ContextError(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, d := range s.collections[collection] {
		ok, err := matchAll(d, m.Predicates)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *Store) Aggregate(ctx context.Context, collection string, p store.Pipeline) ([]store.Row, error) {
	proj, ok := p.Last()
	if !ok {
		return nil, fmt.Errorf("%w: pipeline must end with a projection", store.ErrInvalidPipeline)
	}
	if err := store.ContextError(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.collections[collection]
	docs := make([]Document, 0, len(src))
	for _, d := range src {
		docs = append(docs, d.clone())
	}

	for _, st := range p[:len(p)-1] {
		if err := store.ContextError(ctx); err != nil {
			return nil, err
		}
		var err error
		switch st := st.(type) {
		case store.Match:
			docs, err = filter(docs, st.Predicates)
		case store.Sort:
			sortDocs(docs, st.Keys)
		case store.Skip:
			if st.N >= int64(len(docs)) {
				docs = docs[:0]
			} else if st.N > 0 {
				docs = docs[st.N:]
			}
		case store.Limit:
			if st.N >= 0 && st.N < int64(len(docs)) {
				docs = docs[:st.N]
			}
		case store.LookupOne:
			err = s.lookupOne(docs, st)
		case store.LookupMany:
			err = s.lookupMany(docs, st)
		default:
			err = fmt.Errorf("%w: unsupported stage %T", store.ErrInvalidPipeline, st)
		}
		if err != nil {
			return nil, err
		}
	}

	rows := make([]store.Row, 0, len(docs))
	for _, d := range docs {
		row, err := project(d, proj)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Store) foreign(local Document, from, localField, foreignField string, where []store.Predicate) ([]Document, error) {
	key, ok := get(local, localField)
	if !ok || key == nil {
		return nil, nil
	}
	var out []Document
	for _, f := range s.collections[from] {
		v, ok := get(f, foreignField)
		if !ok || !equal(v, key) {
			continue
		}
		match, err := matchAll(f, where)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, f.clone())
		}
	}
	return out, nil
}

func (s *Store) lookupOne(docs []Document, l store.LookupOne) error {
	for _, d := range docs {
		found, err := s.foreign(d, l.From, l.LocalField, l.ForeignField, l.Where)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			continue
		}
		sortDocs(found, l.OrderBy)
		d[l.As] = found[0]
	}
	return nil
}

func (s *Store) lookupMany(docs []Document, l store.LookupMany) error {
	for _, d := range docs {
		found, err := s.foreign(d, l.From, l.LocalField, l.ForeignField, l.Where)
		if err != nil {
			return err
		}
		arr := make([]Document, 0, len(found))
		for _, f := range found {
			if len(l.Fields) > 0 {
				f = pick(f, l.Fields)
			}
			arr = append(arr, f)
		}
		d[l.As] = arr
	}
	return nil
}

func pick(d Document, fields []string) Document {
	out := Document{"_id": d["_id"]}
	for _, f := range fields {
		if v, ok := d[f]; ok {
			out[f] = v
		}
	}
	return out
}

func filter(docs []Document, preds []store.Predicate) ([]Document, error) {
	out := docs[:0]
	for _, d := range docs {
		ok, err := matchAll(d, preds)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func matchAll(d Document, preds []store.Predicate) (bool, error) {
	for _, p := range preds {
		ok, err := matches(d, p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matches(d Document, p store.Predicate) (bool, error) {
	switch p := p.(type) {
	case store.Contains:
		v, _ := get(d, p.Field)
		s, ok := v.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(p.Text)), nil
	case store.Gte:
		v, ok := get(d, p.Field)
		c, comparable := compare(v, p.Value)
		return ok && comparable && c >= 0, nil
	case store.Lte:
		v, ok := get(d, p.Field)
		c, comparable := compare(v, p.Value)
		return ok && comparable && c <= 0, nil
	case store.Eq:
		v, ok := get(d, p.Field)
		return ok && equal(v, p.Value), nil
	case store.Ne:
		v, ok := get(d, p.Field)
		return !ok || !equal(v, p.Value), nil
	default:
		return false, fmt.Errorf("%w: unsupported predicate %T", store.ErrInvalidPipeline, p)
	}
}

func get(d Document, path string) (any, bool) {
	var cur any = d
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(Document)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	default:
		return decimal.Decimal{}, false
	}
}

func compare(a, b any) (int, bool) {
	if x, ok := toDecimal(a); ok {
		if y, ok := toDecimal(b); ok {
			return x.Cmp(y), true
		}
		return 0, false
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), true
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, true
			case !x:
				return -1, true
			default:
				return 1, true
			}
		}
	}
	return 0, false
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	c, ok := compare(a, b)
	return ok && c == 0
}

// typeRank follows the document store's cross-type sort order.
func typeRank(v any, present bool) int {
	if !present || v == nil {
		return 0
	}
	if _, ok := toDecimal(v); ok {
		return 1
	}
	switch v.(type) {
	case string:
		return 2
	case Document:
		return 3
	case []Document:
		return 4
	case bool:
		return 5
	case time.Time:
		return 6
	default:
		return 7
	}
}

func sortDocs(docs []Document, keys []store.SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			a, aok := get(docs[i], k.Field)
			b, bok := get(docs[j], k.Field)
			c := typeRank(a, aok) - typeRank(b, bok)
			if c == 0 {
				c, _ = compare(a, b)
			}
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func project(d Document, proj store.Project) (store.Row, error) {
	row := make(store.Row, len(proj.Fields))
	for _, f := range proj.Fields {
		v, err := eval(d, f)
		if err != nil {
			return nil, err
		}
		if v.Presence != store.Absent {
			row[f.Name] = v
		}
	}
	return row, nil
}

func eval(d Document, f store.Field) (store.Value, error) {
	switch e := f.Expr.(type) {
	case store.Path:
		raw, ok := get(d, string(e))
		if !ok {
			return store.Value{Kind: f.Kind, Presence: store.Absent}, nil
		}
		return convert(f, raw)
	case store.Count:
		raw, _ := get(d, string(e))
		arr, _ := raw.([]Document)
		return store.Value{Kind: f.Kind, Presence: store.Present, Int: int64(len(arr))}, nil
	case store.Pluck:
		raw, ok := get(d, e.Path)
		if !ok || raw == nil {
			return store.Value{Kind: f.Kind, Presence: store.Null}, nil
		}
		arr, ok := raw.([]Document)
		if !ok {
			return store.Value{}, mismatch(f, raw)
		}
		list := make([]string, 0, len(arr))
		for _, el := range arr {
			if s, ok := el[e.Field].(string); ok {
				list = append(list, s)
			}
		}
		return store.Value{Kind: f.Kind, Presence: store.Present, List: list}, nil
	default:
		return store.Value{}, fmt.Errorf("%w: unsupported expression %T", store.ErrInvalidPipeline, e)
	}
}

func convert(f store.Field, raw any) (store.Value, error) {
	v := store.Value{Kind: f.Kind, Presence: store.Present}
	if raw == nil {
		v.Presence = store.Null
		return v, nil
	}
	switch f.Kind {
	case store.KindString:
		s, ok := raw.(string)
		if !ok {
			return v, mismatch(f, raw)
		}
		v.Str = s
	case store.KindInt:
		switch n := raw.(type) {
		case int:
			v.Int = int64(n)
		case int32:
			v.Int = int64(n)
		case int64:
			v.Int = n
		default:
			return v, mismatch(f, raw)
		}
	case store.KindDecimal:
		dec, ok := toDecimal(raw)
		if s, isString := raw.(string); isString {
			parsed, err := decimal.NewFromString(s)
			dec, ok = parsed, err == nil
		}
		if !ok {
			return v, mismatch(f, raw)
		}
		v.Dec = dec
	case store.KindTime:
		t, ok := raw.(time.Time)
		if !ok {
			return v, mismatch(f, raw)
		}
		v.Time = t
	case store.KindBool:
		b, ok := raw.(bool)
		if !ok {
			return v, mismatch(f, raw)
		}
		v.Bool = b
	default:
		return v, mismatch(f, raw)
	}
	return v, nil
}

func mismatch(f store.Field, raw any) error {
	return store.Unavailable("project", fmt.Errorf("field %s: cannot read %T as %s", f.Name, raw, f.Kind))
}
