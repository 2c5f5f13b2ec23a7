// Package filter holds the structured query filter the pipeline synthesizes,
// enforces and executes. A filter maps schema fields to clauses; a clause is
// either a literal equality value or an ordered list of operator conditions.
package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Op is a comparison operator in a filter clause.
type Op string

// Recognized operators. Anything else is dropped at parse time.
const (
	OpGte Op = "$gte"
	OpLte Op = "$lte"
	OpGt  Op = "$gt"
	OpLt  Op = "$lt"
	OpEq  Op = "$eq"
	OpNe  Op = "$ne"
	OpIn  Op = "$in"
	OpNin Op = "$nin"
)

// ParseOp maps an operator token to an Op.
func ParseOp(s string) (Op, bool) {
	switch Op(s) {
	case OpGte, OpLte, OpGt, OpLt, OpEq, OpNe, OpIn, OpNin:
		return Op(s), true
	}
	return "", false
}

// Condition is one operator/value pair inside a clause.
type Condition struct {
	Op    Op
	Value any
}

// Clause constrains a single field: either a literal equality value or an
// ordered set of operator conditions.
type Clause struct {
	literal   any
	isLiteral bool
	conds     []Condition
}

// Literal creates an equality clause.
func Literal(v any) Clause {
	return Clause{literal: v, isLiteral: true}
}

// Ops creates an operator clause.
func Ops(conds ...Condition) Clause {
	return Clause{conds: conds}
}

// IsLiteral reports whether the clause is a literal equality.
func (c Clause) IsLiteral() bool { return c.isLiteral }

// Literal returns the equality value.
func (c Clause) Literal() any { return c.literal }

// Conditions returns the operator conditions in synthesis order.
func (c Clause) Conditions() []Condition { return c.conds }

// Filter maps schema field names to clauses, preserving insertion order.
type Filter struct {
	order   []string
	clauses map[string]Clause
}

// New creates an empty filter.
func New() Filter {
	return Filter{clauses: make(map[string]Clause)}
}

// Owner creates the owner-only fallback filter for a field/identity pair.
func Owner(field, identity string) Filter {
	f := New()
	f.Set(field, Literal(identity))
	return f
}

// Set adds or replaces the clause for a field.
func (f *Filter) Set(field string, c Clause) {
	if f.clauses == nil {
		f.clauses = make(map[string]Clause)
	}
	if _, ok := f.clauses[field]; !ok {
		f.order = append(f.order, field)
	}
	f.clauses[field] = c
}

// Get returns the clause for a field.
func (f Filter) Get(field string) (Clause, bool) {
	c, ok := f.clauses[field]
	return c, ok
}

// Has reports whether the field is constrained.
func (f Filter) Has(field string) bool {
	_, ok := f.clauses[field]
	return ok
}

// Fields returns the constrained field names in insertion order.
func (f Filter) Fields() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Len returns the number of constrained fields.
func (f Filter) Len() int { return len(f.clauses) }

// IsEmpty reports whether the filter has no clauses.
func (f Filter) IsEmpty() bool { return len(f.clauses) == 0 }

// Clone returns a deep-enough copy (clause values are never mutated).
func (f Filter) Clone() Filter {
	c := New()
	for _, field := range f.order {
		c.Set(field, f.clauses[field])
	}
	return c
}

// MarshalJSON renders the filter as a JSON object in insertion order,
// operator clauses as nested objects: {"date":{"$gte":"2025-07-01"}}.
func (f Filter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		clause := f.clauses[field]
		if clause.isLiteral {
			val, err := json.Marshal(clause.literal)
			if err != nil {
				return nil, fmt.Errorf("marshal clause %q: %w", field, err)
			}
			buf.Write(val)
			continue
		}

		buf.WriteByte('{')
		for j, cond := range clause.conds {
			if j > 0 {
				buf.WriteByte(',')
			}
			opKey, err := json.Marshal(string(cond.Op))
			if err != nil {
				return nil, err
			}
			buf.Write(opKey)
			buf.WriteByte(':')
			val, err := json.Marshal(cond.Value)
			if err != nil {
				return nil, fmt.Errorf("marshal clause %q op %s: %w", field, cond.Op, err)
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the filter for logging.
func (f Filter) String() string {
	b, err := f.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("filter<%d fields>", len(f.clauses))
	}
	return string(b)
}
