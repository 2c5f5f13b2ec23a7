package batch

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/raseed-cloud/raseed/internal/domain/pass"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
	receiptuc "github.com/raseed-cloud/raseed/internal/usecase/receipt"
)

type mockIngester struct {
	ingestFn func(ctx context.Context, in receiptuc.Input) (domrcpt.Receipt, *pass.Pass, error)
	calls    int
}

func (m *mockIngester) Ingest(ctx context.Context, in receiptuc.Input) (domrcpt.Receipt, *pass.Pass, error) {
	m.calls++
	if m.ingestFn != nil {
		return m.ingestFn(ctx, in)
	}
	rec := domrcpt.Reconstruct(in.ID, in.UserID, in.Vendor, in.Category, nil, in.Total, in.Date, time.Now())
	return rec, nil, nil
}

func inputs(n int) []receiptuc.Input {
	out := make([]receiptuc.Input, n)
	for i := range out {
		out[i] = receiptuc.Input{
			ID:     "r-" + strconv.Itoa(i),
			UserID: "a@b.co",
			Vendor: "Zomato",
			Total:  float64(i + 1),
		}
	}
	return out
}

func TestIngest_AllSucceed(t *testing.T) {
	ing := &mockIngester{}
	svc := New(ing)

	results := svc.Ingest(context.Background(), inputs(3))

	if len(results) != 3 || ing.calls != 3 {
		t.Fatalf("expected 3 results and 3 calls, got %d / %d", len(results), ing.calls)
	}
	for i, r := range results {
		if !r.OK() {
			t.Errorf("item %d: unexpected error %v", i, r.Err)
		}
		if r.ID != "r-"+strconv.Itoa(i) {
			t.Errorf("item %d: got ID %q", i, r.ID)
		}
	}
}

func TestIngest_PartialFailure(t *testing.T) {
	storeErr := errors.New("store down")
	ing := &mockIngester{
		ingestFn: func(_ context.Context, in receiptuc.Input) (domrcpt.Receipt, *pass.Pass, error) {
			if in.ID == "r-1" {
				return domrcpt.Receipt{}, nil, storeErr
			}
			rec := domrcpt.Reconstruct(in.ID, in.UserID, in.Vendor, in.Category, nil, in.Total, in.Date, time.Now())
			return rec, nil, nil
		},
	}
	svc := New(ing)

	results := svc.Ingest(context.Background(), inputs(3))

	if !results[0].OK() || !results[2].OK() {
		t.Error("items 0 and 2 must succeed")
	}
	if results[1].OK() || !errors.Is(results[1].Err, storeErr) {
		t.Errorf("item 1 must carry the store error, got %v", results[1].Err)
	}
	if ing.calls != 3 {
		t.Errorf("a failed item must not stop the batch, got %d calls", ing.calls)
	}
}

func TestIngest_OversizedBatch(t *testing.T) {
	ing := &mockIngester{}
	svc := New(ing).WithMaxBatchSize(2)

	results := svc.Ingest(context.Background(), inputs(3))

	if ing.calls != 0 {
		t.Errorf("oversized batch must not touch storage, got %d calls", ing.calls)
	}
	for i, r := range results {
		if r.OK() {
			t.Errorf("item %d must fail on oversized batch", i)
		}
	}
}

func TestIngest_GeneratedIDReturned(t *testing.T) {
	ing := &mockIngester{
		ingestFn: func(_ context.Context, in receiptuc.Input) (domrcpt.Receipt, *pass.Pass, error) {
			rec := domrcpt.Reconstruct("generated-id", in.UserID, in.Vendor, in.Category, nil, in.Total, in.Date, time.Now())
			return rec, nil, nil
		},
	}
	svc := New(ing)

	results := svc.Ingest(context.Background(), []receiptuc.Input{{UserID: "a@b.co"}})
	if results[0].ID != "generated-id" {
		t.Errorf("result must carry the stored ID, got %q", results[0].ID)
	}
}

func TestIngest_Empty(t *testing.T) {
	svc := New(&mockIngester{})
	results := svc.Ingest(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestWithMaxBatchSize_IgnoresNonPositive(t *testing.T) {
	svc := New(&mockIngester{}).WithMaxBatchSize(0)
	if svc.MaxBatchSize() != MaxBatchSize {
		t.Errorf("non-positive size must keep default, got %d", svc.MaxBatchSize())
	}
}
