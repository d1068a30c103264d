package repo

import "errors"

var ErrMultipleOperationsProvided = errors.New("multiple operations provided")

type (
	QueryField      = string
	QueryFieldValue = string
	ComparisonOp    string
	OrderDirection  string
)

const (
	Equal       ComparisonOp = "="
	NotEqual    ComparisonOp = "!="
	GreaterThan ComparisonOp = ">"
	LessThan    ComparisonOp = "<"
)

const (
	Asc  OrderDirection = "asc"
	Desc OrderDirection = "desc"
)

// Key is one comparison against a column.
type Key struct {
	Value     any
	Operation ComparisonOp
}

func NotEq(v any) Key { return Key{Value: v, Operation: NotEqual} }

func Gt(v any) Key { return Key{Value: v, Operation: GreaterThan} }

func Lt(v any) Key { return Key{Value: v, Operation: LessThan} }

// CompositeKeyEntry carries either a Key or the error found while building it.
// The error surfaces when the query runs.
type CompositeKeyEntry struct {
	Key Key
	Err error
}

type Condition struct {
	Field QueryField
	Value CompositeKeyEntry
}

// CompositeKey is a set of conditions joined by AND when IsStrict, else by OR.
// A slice value turns an equality into IN.
type CompositeKey struct {
	IsStrict bool
	Conds    []Condition
}

func NewCompositeKey() CompositeKey {
	return CompositeKey{IsStrict: true, Conds: []Condition{}}
}

// Where adds a condition on q. Equality is the default; at most one of
// NotEq, Gt or Lt may be passed.
func (c CompositeKey) Where(q QueryField, v any, op ...func(any) Key) CompositeKey {
	entry := CompositeKeyEntry{Key: Key{Value: v, Operation: Equal}}

	switch len(op) {
	case 0:
	case 1:
		entry.Key = op[0](v)
	default:
		entry = CompositeKeyEntry{Err: ErrMultipleOperationsProvided}
	}

	c.Conds = append(c.Conds, Condition{Field: q, Value: entry})

	return c
}

// CompositeKeyGroup is one parenthesised clause of a Query. Groups after the
// first are ANDed when IsStrict, else ORed.
type CompositeKeyGroup struct {
	CompositeKey CompositeKey
	IsStrict     bool
}

func NewCompositeKeyGroup(key CompositeKey) CompositeKeyGroup {
	return CompositeKeyGroup{CompositeKey: key, IsStrict: true}
}

// Update selects the columns Patch writes. With neither All nor Fields set
// only non-zero fields of the resource are written.
type Update struct {
	Fields []QueryField
	All    bool
}

type OrderField struct {
	Field     QueryField
	Direction OrderDirection
}

// Query scopes a repository call. A zero Limit means DefaultLimit.
type Query struct {
	CompositeKeyGroup []CompositeKeyGroup
	UpdateFields      Update
	OrderFields       []OrderField
	Limit             int
	Offset            int
}

func NewQuery() *Query {
	return &Query{
		CompositeKeyGroup: []CompositeKeyGroup{},
		UpdateFields:      Update{Fields: []QueryField{}},
	}
}

func (q *Query) Where(groups ...CompositeKeyGroup) *Query {
	q.CompositeKeyGroup = append(q.CompositeKeyGroup, groups...)
	return q
}

func (q *Query) Update(fields ...QueryField) *Query {
	q.UpdateFields.Fields = append(q.UpdateFields.Fields, fields...)
	return q
}

func (q *Query) UpdateAll(all bool) *Query {
	q.UpdateFields.All = all
	return q
}

func (q *Query) Order(fields ...OrderField) *Query {
	q.OrderFields = append(q.OrderFields, fields...)
	return q
}

func (q *Query) SetLimit(limit int) *Query {
	q.Limit = limit
	return q
}

func (q *Query) SetOffset(offset int) *Query {
	q.Offset = offset
	return q
}
