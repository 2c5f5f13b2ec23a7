package query

import (
	"strings"
	"time"

	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
	"github.com/raseed-cloud/raseed/internal/domain/receipt"
)

// NormalizeDates adds a concrete date constraint when the question contains a
// recognized relative time phrase and the filter is not already date-bound.
// First matching phrase wins; unrecognized phrasing passes through unchanged.
// Pure function of its inputs.
func NormalizeDates(f filter.Filter, question string, now time.Time) filter.Filter {
	if f.Has(receipt.FieldDate) {
		return f
	}
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "last month"):
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		last := first.AddDate(0, 1, -1)
		f.Set(receipt.FieldDate, rangeClause(first, last))

	case strings.Contains(q, "this month"):
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		f.Set(receipt.FieldDate, rangeClause(first, now))

	case strings.Contains(q, "last week"):
		// Monday-based week containing now-7d.
		ref := now.AddDate(0, 0, -7)
		wd := (int(ref.Weekday()) + 6) % 7
		monday := ref.AddDate(0, 0, -wd)
		sunday := monday.AddDate(0, 0, 6)
		f.Set(receipt.FieldDate, rangeClause(monday, sunday))

	case strings.Contains(q, "today"):
		f.Set(receipt.FieldDate, filter.Literal(now.Format(receipt.DateLayout)))

	case strings.Contains(q, "yesterday"):
		f.Set(receipt.FieldDate, filter.Literal(now.AddDate(0, 0, -1).Format(receipt.DateLayout)))
	}
	return f
}

func rangeClause(start, end time.Time) filter.Clause {
	return filter.Ops(
		filter.Condition{Op: filter.OpGte, Value: start.Format(receipt.DateLayout)},
		filter.Condition{Op: filter.OpLte, Value: end.Format(receipt.DateLayout)},
	)
}
