package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage is one step of a pipeline. The set of stages is closed: Match, Sort,
// Skip, Limit, LookupOne, LookupMany and Project. Adapters render or evaluate
// each variant explicitly and reject anything else.
type Stage interface {
	stage()
}

// Pipeline is an ordered list of stages run against one collection.
// A pipeline handed to Store.Aggregate must end with a Project stage.
type Pipeline []Stage

// Match keeps documents satisfying every predicate. An empty Match keeps all documents.
type Match struct {
	Predicates []Predicate
}

// SortKey orders by one field.
type SortKey struct {
	Field string
	Desc  bool
}

// Sort orders documents by Keys in priority order.
type Sort struct {
	Keys []SortKey
}

// Skip drops the first N documents.
type Skip struct {
	N int64
}

// Limit keeps at most N documents.
type Limit struct {
	N int64
}

// LookupOne attaches at most one document from collection From whose
// ForeignField equals the local document's LocalField and which satisfies
// Where. OrderBy picks the winner when several match. When nothing matches,
// As is left absent on the local document.
type LookupOne struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Where        []Predicate
	OrderBy      []SortKey
}

// LookupMany attaches every matching document from From as an array under As,
// in store-native order. The array is empty, never absent, when nothing
// matches. A non-empty Fields keeps only those fields of each element.
type LookupMany struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Where        []Predicate
	Fields       []string
}

// Project reshapes each document into a typed Row.
type Project struct {
	Fields []Field
}

func (Match) stage()      {}
func (Sort) stage()       {}
func (Skip) stage()       {}
func (Limit) stage()      {}
func (LookupOne) stage()  {}
func (LookupMany) stage() {}
func (Project) stage()    {}

// Predicate is a single field test inside a Match or a lookup Where clause.
type Predicate interface {
	predicate()
}

// Contains is a literal, case-insensitive substring test. Text is never
// interpreted as a pattern; adapters must escape it.
type Contains struct {
	Field string
	Text  string
}

// Gte is an inclusive lower bound.
type Gte struct {
	Field string
	Value any
}

// Lte is an inclusive upper bound.
type Lte struct {
	Field string
	Value any
}

// Eq is an exact match.
type Eq struct {
	Field string
	Value any
}

// Ne matches documents whose field differs from Value or is missing.
type Ne struct {
	Field string
	Value any
}

func (Contains) predicate() {}
func (Gte) predicate()      {}
func (Lte) predicate()      {}
func (Eq) predicate()       {}
func (Ne) predicate()       {}

// Expr computes a projected value.
type Expr interface {
	expr()
}

// Path reads a (possibly dotted) field path.
type Path string

// Count is the number of elements of the array at the path; a missing array counts as zero.
type Count string

// Pluck maps the array at Path to the values of Field in each element.
type Pluck struct {
	Path  string
	Field string
}

func (Path) expr()  {}
func (Count) expr() {}
func (Pluck) expr() {}

// Kind declares the type a projected field is converted to.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDecimal
	KindTime
	KindBool
	KindStringList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindTime:
		return "time"
	case KindBool:
		return "bool"
	case KindStringList:
		return "string list"
	default:
		return "unknown"
	}
}

// Field is one projected output column.
type Field struct {
	Name string
	Expr Expr
	Kind Kind
}

// Presence distinguishes a field missing from the source record from one
// that is present but null.
type Presence int

const (
	Absent Presence = iota
	Null
	Present
)

// Value is a typed projected value. Only the member matching Kind is meaningful
// and only when Presence is Present.
type Value struct {
	Kind     Kind
	Presence Presence
	Str      string
	Int      int64
	Dec      decimal.Decimal
	Time     time.Time
	Bool     bool
	List     []string
}

// Row is one projected record.
type Row map[string]Value

// Get returns the value for name, or an Absent value when the row lacks it.
func (r Row) Get(name string) Value {
	if v, ok := r[name]; ok {
		return v
	}
	return Value{Presence: Absent}
}

// Last returns the trailing Project stage of p, if any.
func (p Pipeline) Last() (Project, bool) {
	if len(p) == 0 {
		return Project{}, false
	}
	proj, ok := p[len(p)-1].(Project)
	return proj, ok
}
