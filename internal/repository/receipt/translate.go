package receipt

import (
	"fmt"
	"time"

	"github.com/raseed-cloud/raseed/internal/db"
	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
)

// translate maps filter clauses onto index predicates. Clauses that cannot
// be expressed against the index are dropped; the returned slice describes
// each drop for logging. Date range constraints run against the date_num
// NUMERIC mirror, date equality against the date TAG.
func translate(f filter.Filter) ([]db.Predicate, []string) {
	var preds []db.Predicate
	var dropped []string

	for _, field := range f.Fields() {
		clause, _ := f.Get(field)

		if !domrcpt.KnownField(field) {
			dropped = append(dropped, fmt.Sprintf("field %q: not in schema", field))
			continue
		}
		if field == domrcpt.FieldItems {
			dropped = append(dropped, fmt.Sprintf("field %q: not filterable", field))
			continue
		}

		p, d := translateClause(field, clause)
		preds = append(preds, p...)
		dropped = append(dropped, d...)
	}

	return preds, dropped
}

func translateClause(field string, clause filter.Clause) ([]db.Predicate, []string) {
	if clause.IsLiteral() {
		p, ok := literalPredicate(field, clause.Literal())
		if !ok {
			return nil, []string{fmt.Sprintf("field %q: unusable literal %v", field, clause.Literal())}
		}
		return []db.Predicate{p}, nil
	}

	var preds []db.Predicate
	var dropped []string
	for _, cond := range clause.Conditions() {
		p, ok := conditionPredicate(field, cond)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("field %q: %s %v not translatable", field, cond.Op, cond.Value))
			continue
		}
		preds = append(preds, p)
	}
	return preds, dropped
}

func literalPredicate(field string, v any) (db.Predicate, bool) {
	if field == domrcpt.FieldTotal {
		n, ok := asFloat(v)
		if !ok {
			return db.Predicate{}, false
		}
		return db.NumEq(field, n), true
	}
	s, ok := asString(v)
	if !ok {
		return db.Predicate{}, false
	}
	return db.TagEq(field, s), true
}

func conditionPredicate(field string, cond filter.Condition) (db.Predicate, bool) {
	switch field {
	case domrcpt.FieldTotal:
		return numericPredicate(field, cond)
	case domrcpt.FieldDate:
		return datePredicate(cond)
	default:
		return tagPredicate(field, cond)
	}
}

func tagPredicate(field string, cond filter.Condition) (db.Predicate, bool) {
	switch cond.Op {
	case filter.OpEq, filter.OpNe:
		s, ok := asString(cond.Value)
		if !ok {
			return db.Predicate{}, false
		}
		if cond.Op == filter.OpNe {
			return db.TagNe(field, s), true
		}
		return db.TagEq(field, s), true
	case filter.OpIn, filter.OpNin:
		vs, ok := asStringList(cond.Value)
		if !ok {
			return db.Predicate{}, false
		}
		if cond.Op == filter.OpNin {
			return db.TagNin(field, vs), true
		}
		return db.TagIn(field, vs), true
	}
	// Range operators have no meaning on tag fields.
	return db.Predicate{}, false
}

func numericPredicate(field string, cond filter.Condition) (db.Predicate, bool) {
	switch cond.Op {
	case filter.OpGte, filter.OpGt, filter.OpLte, filter.OpLt:
		n, ok := asFloat(cond.Value)
		if !ok {
			return db.Predicate{}, false
		}
		return db.NumBound(field, boundOp(cond.Op), n), true
	case filter.OpEq, filter.OpNe:
		n, ok := asFloat(cond.Value)
		if !ok {
			return db.Predicate{}, false
		}
		if cond.Op == filter.OpNe {
			return db.NumNe(field, n), true
		}
		return db.NumEq(field, n), true
	case filter.OpIn, filter.OpNin:
		ns, ok := asFloatList(cond.Value)
		if !ok {
			return db.Predicate{}, false
		}
		if cond.Op == filter.OpNin {
			return db.NumNin(field, ns), true
		}
		return db.NumIn(field, ns), true
	}
	return db.Predicate{}, false
}

func datePredicate(cond filter.Condition) (db.Predicate, bool) {
	switch cond.Op {
	case filter.OpGte, filter.OpGt, filter.OpLte, filter.OpLt:
		s, ok := asString(cond.Value)
		if !ok {
			return db.Predicate{}, false
		}
		n, ok := dateNumOf(s)
		if !ok {
			return db.Predicate{}, false
		}
		return db.NumBound(fieldDateNum, boundOp(cond.Op), float64(n)), true
	default:
		return tagPredicate(domrcpt.FieldDate, cond)
	}
}

func boundOp(op filter.Op) db.PredicateOp {
	switch op {
	case filter.OpGte:
		return db.PredGte
	case filter.OpGt:
		return db.PredGt
	case filter.OpLte:
		return db.PredLte
	default:
		return db.PredLt
	}
}

func dateNumOf(date string) (int64, bool) {
	t, err := time.Parse(domrcpt.DateLayout, date)
	if err != nil {
		return 0, false
	}
	return int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day()), true
}

// --- value coercion ---

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return formatFloat(s), true
	case bool:
		if s {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asStringList(v any) ([]string, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := asString(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func asFloatList(v any) ([]float64, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	out := make([]float64, 0, len(list))
	for _, item := range list {
		n, ok := asFloat(item)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func formatFloat(n float64) string {
	return fmt.Sprintf("%g", n)
}
