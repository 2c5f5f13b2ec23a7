package receipt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/pass"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
)

type mockRepo struct {
	upsertFn func(ctx context.Context, rec *domrcpt.Receipt, embedding []float64) error
	getFn    func(ctx context.Context, id string) (domrcpt.Receipt, error)
	listFn   func(ctx context.Context, userID, cursor string, limit int) ([]domrcpt.Receipt, int, string, error)
}

func (m *mockRepo) Upsert(ctx context.Context, rec *domrcpt.Receipt, embedding []float64) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, rec, embedding)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (domrcpt.Receipt, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domrcpt.Receipt{}, domain.ErrReceiptNotFound
}

func (m *mockRepo) List(ctx context.Context, userID, cursor string, limit int) ([]domrcpt.Receipt, int, string, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, cursor, limit)
	}
	return nil, 0, "", nil
}

type mockEmbedder struct{}

func (mockEmbedder) Embed(_ string) []float64 { return []float64{0.5} }

type mockIssuer struct {
	createFn func(ctx context.Context, rec *domrcpt.Receipt) (pass.Pass, error)
}

func (m *mockIssuer) CreatePass(ctx context.Context, rec *domrcpt.Receipt) (pass.Pass, error) {
	if m.createFn != nil {
		return m.createFn(ctx, rec)
	}
	return pass.Pass{ID: "p1", ReceiptID: rec.ID()}, nil
}

var testNow = time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)

func testInput() Input {
	return Input{
		UserID:   "user@example.com",
		Vendor:   "Zomato",
		Category: "Food",
		Total:    250,
		Date:     "2025-08-10",
	}
}

func TestIngest_StoresAndIssuesPass(t *testing.T) {
	repo := &mockRepo{}
	var gotEmbedding []float64
	repo.upsertFn = func(_ context.Context, rec *domrcpt.Receipt, embedding []float64) error {
		gotEmbedding = embedding
		if rec.UserID() != "user@example.com" {
			t.Errorf("unexpected user id %q", rec.UserID())
		}
		return nil
	}

	svc := New(repo, mockEmbedder{}, &mockIssuer{}).WithClock(func() time.Time { return testNow })
	rec, p, err := svc.Ingest(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() == "" {
		t.Error("expected a generated receipt id")
	}
	if len(gotEmbedding) != 1 {
		t.Error("expected receipt to be vectorized")
	}
	if p == nil || p.ReceiptID != rec.ID() {
		t.Errorf("expected an issued pass, got %+v", p)
	}
}

func TestIngest_KeepsProvidedID(t *testing.T) {
	svc := New(&mockRepo{}, mockEmbedder{}, nil)
	in := testInput()
	in.ID = "rcpt-42"

	rec, _, err := svc.Ingest(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() != "rcpt-42" {
		t.Errorf("expected provided id, got %q", rec.ID())
	}
}

func TestIngest_InvalidIdentityRejected(t *testing.T) {
	svc := New(&mockRepo{}, mockEmbedder{}, nil)
	in := testInput()
	in.UserID = "bad-id"

	_, _, err := svc.Ingest(context.Background(), in)
	if !errors.Is(err, domain.ErrIdentityFormat) {
		t.Fatalf("expected ErrIdentityFormat, got %v", err)
	}
}

func TestIngest_PassFailureIsNotFatal(t *testing.T) {
	issuer := &mockIssuer{createFn: func(_ context.Context, _ *domrcpt.Receipt) (pass.Pass, error) {
		return pass.Pass{}, errors.New("wallet down")
	}}

	svc := New(&mockRepo{}, mockEmbedder{}, issuer)
	rec, p, err := svc.Ingest(context.Background(), testInput())
	if err != nil {
		t.Fatalf("pass failure must not fail ingestion: %v", err)
	}
	if rec.ID() == "" || p != nil {
		t.Errorf("expected stored receipt without pass, got pass %+v", p)
	}
}

func TestIngest_StoreFailure(t *testing.T) {
	repo := &mockRepo{upsertFn: func(_ context.Context, _ *domrcpt.Receipt, _ []float64) error {
		return errors.New("store down")
	}}

	svc := New(repo, mockEmbedder{}, nil)
	if _, _, err := svc.Ingest(context.Background(), testInput()); err == nil {
		t.Fatal("expected error when the store fails")
	}
}

func TestList_ClampsLimit(t *testing.T) {
	repo := &mockRepo{}
	var gotLimit int
	repo.listFn = func(_ context.Context, _, _ string, limit int) ([]domrcpt.Receipt, int, string, error) {
		gotLimit = limit
		return nil, 0, "", nil
	}

	svc := New(repo, mockEmbedder{}, nil).WithPagination(20, 100)

	if _, _, _, err := svc.List(context.Background(), "", "", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 20 {
		t.Errorf("expected default limit 20, got %d", gotLimit)
	}

	if _, _, _, err := svc.List(context.Background(), "", "", 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 100 {
		t.Errorf("expected max limit 100, got %d", gotLimit)
	}
}
