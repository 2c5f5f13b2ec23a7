package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/raseed-cloud/raseed/internal/db"
	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
)

func TestUpsert_WritesJSONDoc(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotKey, gotPath string
	var gotData []byte
	ms.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		gotKey, gotPath, gotData = key, path, data
		return nil
	}

	rec := testReceipt(t)
	if err := repo.Upsert(context.Background(), &rec, []float64{0.1, 0.2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "raseed:receipts:rcpt-1" {
		t.Errorf("unexpected key %q", gotKey)
	}
	if gotPath != "$" {
		t.Errorf("unexpected path %q", gotPath)
	}

	var doc map[string]any
	if err := json.Unmarshal(gotData, &doc); err != nil {
		t.Fatalf("stored data is not JSON: %v", err)
	}
	if doc["user_id"] != "user@example.com" {
		t.Errorf("unexpected user_id %v", doc["user_id"])
	}
	if doc["date_num"] != float64(20250801) {
		t.Errorf("expected date_num 20250801, got %v", doc["date_num"])
	}
	if _, ok := doc["embedding"]; !ok {
		t.Error("expected embedding to be stored")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Fatalf("expected ErrReceiptNotFound, got %v", err)
	}
}

func TestGet_UnwrapsJSONPathArray(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(_ context.Context, key string, _ ...string) ([]byte, error) {
		if key != "raseed:receipts:rcpt-1" {
			return nil, fmt.Errorf("unexpected key %q", key)
		}
		return []byte(`[{"id":"rcpt-1","user_id":"user@example.com","vendor_name":"Zomato","bill_category":"Food","total_amount":250,"date":"2025-08-10","created_at":1754820000}]`), nil
	}

	rec, err := repo.Get(context.Background(), "rcpt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Vendor() != "Zomato" || rec.Total() != 250 {
		t.Errorf("unexpected receipt: %s %g", rec.Vendor(), rec.Total())
	}
}

func TestFind_BuildsScopedQuery(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotQuery *db.FilterQuery
	ms.queryFn = func(_ context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
		gotQuery = q
		return &db.SearchResult{Total: 0}, nil
	}

	f := filter.New()
	f.Set("user_id", filter.Literal("user@example.com"))
	f.Set("date", filter.Ops(
		filter.Condition{Op: filter.OpGte, Value: "2025-07-01"},
		filter.Condition{Op: filter.OpLte, Value: "2025-07-31"},
	))

	_, dropped, err := repo.Find(context.Background(), f, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dropped) != 0 {
		t.Errorf("unexpected drops: %v", dropped)
	}

	if gotQuery.IndexName != "raseed:receipts:idx" {
		t.Errorf("unexpected index %q", gotQuery.IndexName)
	}
	if gotQuery.Limit != 100 {
		t.Errorf("unexpected limit %d", gotQuery.Limit)
	}
	if len(gotQuery.Predicates) != 3 {
		t.Fatalf("expected 3 predicates, got %d", len(gotQuery.Predicates))
	}
	if gotQuery.Predicates[0].Field != "user_id" || gotQuery.Predicates[0].Values[0] != "user@example.com" {
		t.Errorf("expected owner predicate first, got %+v", gotQuery.Predicates[0])
	}
	if gotQuery.Predicates[1].Field != "date_num" || gotQuery.Predicates[1].Num != 20250701 {
		t.Errorf("expected date_num gte predicate, got %+v", gotQuery.Predicates[1])
	}
}

func TestFind_StoreErrorPropagates(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.queryFn = func(_ context.Context, _ *db.FilterQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("connection refused")}
	}

	f := filter.Owner("user_id", "user@example.com")
	_, _, err := repo.Find(context.Background(), f, 10)
	if err == nil {
		t.Fatal("expected error from store")
	}
}

func TestFind_ParsesHits(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.queryFn = func(_ context.Context, _ *db.FilterQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{Key: "raseed:receipts:a", Fields: map[string]string{
					"$": `{"id":"a","user_id":"u@e.com","vendor_name":"V1","bill_category":"Food","total_amount":10,"created_at":1}`,
				}},
				{Key: "raseed:receipts:b", Fields: map[string]string{
					"$": `{"id":"b","user_id":"u@e.com","vendor_name":"V2","bill_category":"Fuel","total_amount":20,"created_at":2}`,
				}},
			},
		}, nil
	}

	recs, _, err := repo.Find(context.Background(), filter.Owner("user_id", "u@e.com"), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(recs))
	}
	if recs[0].ID() != "a" || recs[1].Vendor() != "V2" {
		t.Errorf("unexpected receipts: %+v", recs)
	}
}

func TestList_CursorPagination(t *testing.T) {
	repo, ms := newTestRepo(t)

	entry := func(id string) db.SearchEntry {
		return db.SearchEntry{
			Key: "raseed:receipts:" + id,
			Fields: map[string]string{
				"$": fmt.Sprintf(`{"id":%q,"user_id":"u@e.com","vendor_name":"V","bill_category":"Food","total_amount":1,"created_at":1}`, id),
			},
		}
	}

	ms.queryFn = func(_ context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
		if q.Offset != 2 {
			t.Errorf("expected offset 2, got %d", q.Offset)
		}
		if q.Limit != 3 {
			t.Errorf("expected limit+1=3, got %d", q.Limit)
		}
		if q.SortBy != "created_at" || !q.SortDesc {
			t.Errorf("expected created_at DESC sort, got %s desc=%v", q.SortBy, q.SortDesc)
		}
		// limit+1 entries -> there is a next page
		return &db.SearchResult{Total: 10, Entries: []db.SearchEntry{entry("c"), entry("d"), entry("e")}}, nil
	}

	recs, total, next, err := repo.List(context.Background(), "", "2", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("expected 2 receipts, got %d", len(recs))
	}
	if total != 10 {
		t.Errorf("expected total 10, got %d", total)
	}
	if next != "4" {
		t.Errorf("expected next cursor '4', got %q", next)
	}
}

func TestList_InvalidCursor(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, _, _, err := repo.List(context.Background(), "", "abc", 10)
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
}

func TestEnsureIndex_SkipsWhenPresent(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		if name != "raseed:receipts:idx" {
			t.Errorf("unexpected index name %q", name)
		}
		return true, nil
	}
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Error("CreateIndex must not be called when index exists")
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_ToleratesRace(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return db.ErrIndexExists
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
