package receipt

import (
	"context"
	"testing"
	"time"

	"github.com/raseed-cloud/raseed/internal/db"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn     func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn     func(ctx context.Context, key string, paths ...string) ([]byte, error)
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

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
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

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "raseed:")
	return repo, ms
}

func testReceipt(t *testing.T) domrcpt.Receipt {
	t.Helper()
	items := []domrcpt.Item{{Name: "Milk", Quantity: 2, Price: 30}}
	return domrcpt.Reconstruct(
		"rcpt-1", "user@example.com", "BigBasket", "Grocery",
		items, 60, "2025-08-01",
		time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
	)
}
