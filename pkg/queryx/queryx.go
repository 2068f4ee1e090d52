// Package queryx compiles declarative "field__op=value" criteria into SQL
// predicates, ordering and pagination on top of go-sqlbuilder.
//
// Criteria are validated against a Schema: unknown fields, operators or
// malformed values are rejected rather than dropped.
package queryx

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Reserved criteria keys.
const (
	KeyOrderBy = "order_by"
	KeyOrder   = "order"
	KeyOffset  = "offset"
	KeyLimit   = "limit"
)

const opSep = "__"

// Op is a comparison operator.
type Op string

const (
	OpEq    Op = "eq"
	OpNot   Op = "not"
	OpGt    Op = "gt"
	OpGte   Op = "gte"
	OpLt    Op = "lt"
	OpLte   Op = "lte"
	OpIn    Op = "in"
	OpLike  Op = "like"
	OpILike Op = "ilike"
)

var knownOps = []Op{OpEq, OpNot, OpGt, OpGte, OpLt, OpLte, OpIn, OpLike, OpILike}

var (
	ErrInvalidFilter = errors.New("queryx: invalid filter")
	ErrLimitRequired = fmt.Errorf("%w: limit must be between 1 and the page cap", ErrInvalidFilter)
)

// FilterError names the criteria key that failed to compile.
type FilterError struct {
	Key    string
	Reason string
	Err    error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("queryx: invalid filter %q: %s", e.Key, e.Reason)
}

func (e *FilterError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidFilter
}

func filterErr(key, format string, args ...any) error {
	return &FilterError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// Criteria maps "field__op" (or a reserved key) to a raw value.
type Criteria map[string]string

// FromValues builds criteria from URL query values, using the first value
// of each key.
func FromValues(v url.Values) Criteria {
	c := make(Criteria, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			c[k] = vals[0]
		}
	}
	return c
}

// With returns a copy of c with field__op set to value.
func (c Criteria) With(field string, op Op, value string) Criteria {
	out := make(Criteria, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[field+opSep+string(op)] = value
	return out
}

// Cond is one compiled predicate.
type Cond struct {
	Field  string
	Column Column
	Op     Op
	Values []any
}

// Query is compiled criteria ready to apply to a select builder.
type Query struct {
	schema *Schema

	Where   []Cond
	OrderBy string
	Desc    bool
	Offset  int

	// Limit of zero means unbounded.
	Limit int
}

// Compile validates criteria against s. Limit is optional; use CompileList
// for calls that return rows.
func Compile(s *Schema, c Criteria) (Query, error) {
	q := Query{
		schema:  s,
		OrderBy: s.DefaultOrder,
		Desc:    true,
	}

	// Sorted keys keep the generated SQL stable.
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		raw := c[key]

		switch key {
		case KeyOrderBy:
			col, ok := s.Fields[raw]
			if !ok || !col.Sortable {
				return Query{}, filterErr(key, "cannot order by %q", raw)
			}
			q.OrderBy = raw
			continue

		case KeyOrder:
			switch strings.ToLower(raw) {
			case "asc":
				q.Desc = false
			case "desc":
				q.Desc = true
			default:
				return Query{}, filterErr(key, "order must be asc or desc")
			}
			continue

		case KeyOffset:
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return Query{}, filterErr(key, "offset must be a non-negative integer")
			}
			q.Offset = n
			continue

		case KeyLimit:
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return Query{}, filterErr(key, "limit must be a non-negative integer")
			}
			q.Limit = n
			continue
		}

		cond, err := compileCond(s, key, raw)
		if err != nil {
			return Query{}, err
		}
		q.Where = append(q.Where, cond)
	}

	return q, nil
}

// CompileList is Compile plus the requirement that limit is explicit and
// within the schema's page cap.
func CompileList(s *Schema, c Criteria) (Query, error) {
	q, err := Compile(s, c)
	if err != nil {
		return Query{}, err
	}
	if q.Limit < 1 || q.Limit > s.maxLimit() {
		return Query{}, &FilterError{
			Key:    KeyLimit,
			Reason: fmt.Sprintf("limit must be between 1 and %d", s.maxLimit()),
			Err:    ErrLimitRequired,
		}
	}
	return q, nil
}

func compileCond(s *Schema, key, raw string) (Cond, error) {
	field, opName, found := strings.Cut(key, opSep)
	op := OpEq
	if found {
		op = Op(opName)
	}

	col, ok := s.Fields[field]
	if !ok {
		return Cond{}, filterErr(key, "unknown field %q", field)
	}
	if !slices.Contains(knownOps, op) {
		return Cond{}, filterErr(key, "unknown operator %q", opName)
	}
	if col.Meta != "" && s.Meta == nil {
		return Cond{}, filterErr(key, "field %q has no meta relation", field)
	}

	if (op == OpLike || op == OpILike) && col.Kind != KindString {
		return Cond{}, filterErr(key, "%s applies to text fields only", op)
	}

	parts := []string{raw}
	if op == OpIn {
		parts = strings.Split(raw, ",")
	}

	values := make([]any, 0, len(parts))
	for _, p := range parts {
		v, err := convert(col, strings.TrimSpace(p))
		if err != nil {
			return Cond{}, filterErr(key, "%v", err)
		}
		values = append(values, v)
	}

	return Cond{Field: field, Column: col, Op: op, Values: values}, nil
}

func convert(col Column, raw string) (any, error) {
	if len(col.Enum) > 0 && !slices.Contains(col.Enum, raw) {
		return nil, fmt.Errorf("value %q is not allowed", raw)
	}

	switch col.Kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not an integer", raw)
		}
		return n, nil
	default:
		return raw, nil
	}
}
