package pass

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/raseed-cloud/raseed/internal/db"
	dompass "github.com/raseed-cloud/raseed/internal/domain/pass"
)

type mockStore struct {
	jsonSetFn     func(ctx context.Context, key, path string, data []byte) error
	queryFn       func(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) Query(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func TestSave_WritesDocWithSortField(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "raseed:")

	var gotKey string
	var gotData []byte
	ms.jsonSetFn = func(_ context.Context, key, _ string, data []byte) error {
		gotKey, gotData = key, data
		return nil
	}

	p := dompass.Pass{
		ID:        "ab12cd34_rcpt-1",
		UserID:    "user@example.com",
		ReceiptID: "rcpt-1",
		SaveURL:   "https://pay.google.com/gp/v/save/xyz",
		Payload:   json.RawMessage(`{"genericObjects":[]}`),
		CreatedAt: time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.Save(context.Background(), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "raseed:passes:ab12cd34_rcpt-1" {
		t.Errorf("unexpected key %q", gotKey)
	}
	var doc map[string]any
	if err := json.Unmarshal(gotData, &doc); err != nil {
		t.Fatalf("stored data is not JSON: %v", err)
	}
	if doc["created_at_unix"] != float64(p.CreatedAt.Unix()) {
		t.Errorf("expected created_at_unix %d, got %v", p.CreatedAt.Unix(), doc["created_at_unix"])
	}
}

func TestListByUser_ScopedAndSorted(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "raseed:")

	ms.queryFn = func(_ context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
		if len(q.Predicates) != 1 || q.Predicates[0].Values[0] != "user@example.com" {
			t.Errorf("expected user_id predicate, got %+v", q.Predicates)
		}
		if q.SortBy != "created_at_unix" || !q.SortDesc {
			t.Errorf("expected created_at_unix DESC sort")
		}
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{Key: "raseed:passes:p1", Fields: map[string]string{
					"$": `{"id":"p1","user_id":"user@example.com","receipt_id":"r1","save_url":"https://pay.google.com/gp/v/save/abc","created_at":"2025-08-25T12:00:00Z","created_at_unix":1756123200}`,
				}},
			},
		}, nil
	}

	passes, err := repo.ListByUser(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(passes) != 1 || passes[0].ID != "p1" || passes[0].ReceiptID != "r1" {
		t.Errorf("unexpected passes: %+v", passes)
	}
}
