package query

import (
	"context"
	"testing"
	"time"

	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
	"github.com/raseed-cloud/raseed/internal/domain/receipt"
)

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
	calls      int
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "{}", nil
}

type mockFinder struct {
	findFn func(ctx context.Context, f filter.Filter, limit int) ([]receipt.Receipt, []string, error)
	calls  int
}

func (m *mockFinder) Find(ctx context.Context, f filter.Filter, limit int) ([]receipt.Receipt, []string, error) {
	m.calls++
	if m.findFn != nil {
		return m.findFn(ctx, f, limit)
	}
	return nil, nil, nil
}

// testNow is a fixed Monday so week arithmetic is deterministic.
var testNow = time.Date(2025, 8, 25, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *mockGenerator, *mockFinder) {
	t.Helper()
	gen := &mockGenerator{}
	fin := &mockFinder{}
	svc := New(gen, fin).WithClock(func() time.Time { return testNow })
	return svc, gen, fin
}

func testReceipts(t *testing.T, n int) []receipt.Receipt {
	t.Helper()
	out := make([]receipt.Receipt, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, receipt.Reconstruct(
			"rcpt-"+string(rune('a'+i)), "user@example.com", "Vendor", "Food",
			nil, float64(10*(i+1)), "2025-08-20", testNow,
		))
	}
	return out
}
