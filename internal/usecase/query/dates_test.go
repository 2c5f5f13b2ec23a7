package query

import (
	"testing"

	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
	"github.com/raseed-cloud/raseed/internal/domain/receipt"
)

func dateRange(t *testing.T, f filter.Filter) (string, string) {
	t.Helper()
	c, ok := f.Get(receipt.FieldDate)
	if !ok {
		t.Fatal("expected date clause")
	}
	conds := c.Conditions()
	if len(conds) != 2 || conds[0].Op != filter.OpGte || conds[1].Op != filter.OpLte {
		t.Fatalf("expected [$gte, $lte] range, got %+v", conds)
	}
	return conds[0].Value.(string), conds[1].Value.(string)
}

func TestNormalizeDates_LastMonth(t *testing.T) {
	f := NormalizeDates(filter.New(), "how much did I spend last month", testNow)
	start, end := dateRange(t, f)
	if start != "2025-07-01" || end != "2025-07-31" {
		t.Errorf("got [%s, %s]", start, end)
	}
}

func TestNormalizeDates_ThisMonth(t *testing.T) {
	f := NormalizeDates(filter.New(), "spend this month so far", testNow)
	start, end := dateRange(t, f)
	if start != "2025-08-01" || end != "2025-08-25" {
		t.Errorf("got [%s, %s]", start, end)
	}
}

func TestNormalizeDates_LastWeek(t *testing.T) {
	// testNow is Monday 2025-08-25; last week is Mon 08-18 through Sun 08-24.
	f := NormalizeDates(filter.New(), "groceries LAST WEEK", testNow)
	start, end := dateRange(t, f)
	if start != "2025-08-18" || end != "2025-08-24" {
		t.Errorf("got [%s, %s]", start, end)
	}
}

func TestNormalizeDates_Today(t *testing.T) {
	f := NormalizeDates(filter.New(), "coffee expenses today", testNow)
	c, ok := f.Get(receipt.FieldDate)
	if !ok || !c.IsLiteral() || c.Literal() != "2025-08-25" {
		t.Errorf("expected literal 2025-08-25, got %+v", c)
	}
}

func TestNormalizeDates_Yesterday(t *testing.T) {
	f := NormalizeDates(filter.New(), "what did I buy yesterday", testNow)
	c, _ := f.Get(receipt.FieldDate)
	if !c.IsLiteral() || c.Literal() != "2025-08-24" {
		t.Errorf("expected literal 2025-08-24, got %+v", c)
	}
}

func TestNormalizeDates_FirstPhraseWins(t *testing.T) {
	f := NormalizeDates(filter.New(), "compare last month with today", testNow)
	start, _ := dateRange(t, f)
	if start != "2025-07-01" {
		t.Errorf("expected last-month range, got start %s", start)
	}
}

func TestNormalizeDates_ExistingDateUntouched(t *testing.T) {
	f := filter.New()
	f.Set(receipt.FieldDate, filter.Literal("2025-01-01"))

	got := NormalizeDates(f, "spend last month", testNow)
	c, _ := got.Get(receipt.FieldDate)
	if !c.IsLiteral() || c.Literal() != "2025-01-01" {
		t.Errorf("existing date clause was replaced: %+v", c)
	}
}

func TestNormalizeDates_Idempotent(t *testing.T) {
	once := NormalizeDates(filter.New(), "spend last month", testNow)
	twice := NormalizeDates(once, "spend last month", testNow)
	if once.String() != twice.String() {
		t.Errorf("second pass changed the filter: %s vs %s", once, twice)
	}
}

func TestNormalizeDates_NoPhrasePassesThrough(t *testing.T) {
	f := NormalizeDates(filter.New(), "biggest grocery bill ever", testNow)
	if f.Has(receipt.FieldDate) {
		t.Error("expected no date clause")
	}
}
