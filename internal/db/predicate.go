package db

// PredicateKind selects the FT field class a predicate targets.
type PredicateKind int

const (
	// PredicateTag targets a TAG field.
	PredicateTag PredicateKind = iota
	// PredicateNumeric targets a NUMERIC field.
	PredicateNumeric
)

// PredicateOp is a comparison operator.
type PredicateOp string

const (
	PredEq  PredicateOp = "eq"
	PredNe  PredicateOp = "ne"
	PredIn  PredicateOp = "in"
	PredNin PredicateOp = "nin"
	PredGt  PredicateOp = "gt"
	PredGte PredicateOp = "gte"
	PredLt  PredicateOp = "lt"
	PredLte PredicateOp = "lte"
)

// Predicate is one condition of a FilterQuery. Tag predicates use Values,
// numeric predicates use Num (bounds, point equality) or Nums (in/nin sets).
type Predicate struct {
	Field  string
	Kind   PredicateKind
	Op     PredicateOp
	Values []string
	Num    float64
	Nums   []float64
}

// TagEq matches a TAG field exactly.
func TagEq(field, value string) Predicate {
	return Predicate{Field: field, Kind: PredicateTag, Op: PredEq, Values: []string{value}}
}

// TagNe excludes a TAG value.
func TagNe(field, value string) Predicate {
	return Predicate{Field: field, Kind: PredicateTag, Op: PredNe, Values: []string{value}}
}

// TagIn matches any of the TAG values.
func TagIn(field string, values []string) Predicate {
	return Predicate{Field: field, Kind: PredicateTag, Op: PredIn, Values: values}
}

// TagNin excludes all of the TAG values.
func TagNin(field string, values []string) Predicate {
	return Predicate{Field: field, Kind: PredicateTag, Op: PredNin, Values: values}
}

// NumBound creates a single-bound numeric predicate (gt, gte, lt, lte).
func NumBound(field string, op PredicateOp, n float64) Predicate {
	return Predicate{Field: field, Kind: PredicateNumeric, Op: op, Num: n}
}

// NumEq matches a NUMERIC field exactly.
func NumEq(field string, n float64) Predicate {
	return Predicate{Field: field, Kind: PredicateNumeric, Op: PredEq, Num: n}
}

// NumNe excludes a NUMERIC point value.
func NumNe(field string, n float64) Predicate {
	return Predicate{Field: field, Kind: PredicateNumeric, Op: PredNe, Num: n}
}

// NumIn matches any of the NUMERIC point values.
func NumIn(field string, ns []float64) Predicate {
	return Predicate{Field: field, Kind: PredicateNumeric, Op: PredIn, Nums: ns}
}

// NumNin excludes all of the NUMERIC point values.
func NumNin(field string, ns []float64) Predicate {
	return Predicate{Field: field, Kind: PredicateNumeric, Op: PredNin, Nums: ns}
}
