package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/raseed-cloud/raseed/internal/db"
	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
)

// store is the consumer interface for receipts (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Query(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements receipt persistence and filter execution over the store.
type Repo struct {
	store  store
	prefix string
}

// New creates a receipt repository. keyPrefix namespaces all keys
// (e.g. "raseed:").
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

func (r *Repo) key(id string) string {
	return r.prefix + "receipts:" + id
}

func (r *Repo) indexName() string {
	return r.prefix + "receipts:idx"
}

// EnsureIndex creates the receipts FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("probe index %s: %w", r.indexName(), err)
	}
	if exists {
		return nil
	}

	def := db.NewIndex(r.indexName()).
		OnJSON().
		Prefix(r.prefix + "receipts:").
		Tag("$.user_id").Alias(domrcpt.FieldUserID).
		Tag("$.vendor_name").Alias(domrcpt.FieldVendor).
		Tag("$.bill_category").Alias(domrcpt.FieldCategory).
		Tag("$.date").Alias(domrcpt.FieldDate).
		Numeric("$.total_amount").Alias(domrcpt.FieldTotal).
		Numeric("$.date_num").Alias(fieldDateNum).
		NumericSortable("$.created_at").Alias(fieldCreatedAt).
		MustBuild()

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.indexName(), err)
	}
	return nil
}

// Upsert stores a receipt together with its embedding.
func (r *Repo) Upsert(ctx context.Context, rec *domrcpt.Receipt, embedding []float64) error {
	doc := buildDoc(rec, embedding)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	key := r.key(rec.ID())
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Get returns a receipt by ID.
func (r *Repo) Get(ctx context.Context, id string) (domrcpt.Receipt, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrcpt.Receipt{}, domain.ErrReceiptNotFound
		}
		return domrcpt.Receipt{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	// JSON.GET with path "$" wraps the document in an array.
	var docs []receiptDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domrcpt.Receipt{}, fmt.Errorf("unmarshal receipt %s: %w", id, err)
	}
	if len(docs) == 0 {
		return domrcpt.Receipt{}, domain.ErrReceiptNotFound
	}
	return docs[0].toDomain(), nil
}

// List returns receipts newest-first with cursor-based pagination.
// userID, when non-empty, scopes the listing to one identity.
func (r *Repo) List(ctx context.Context, userID, cursor string, limit int) (
	[]domrcpt.Receipt, int, string, error,
) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, 0, "", fmt.Errorf("invalid cursor %q", cursor)
		}
		offset = parsed
	}

	var preds []db.Predicate
	if userID != "" {
		preds = append(preds, db.TagEq(domrcpt.FieldUserID, userID))
	}

	result, err := r.store.Query(ctx, &db.FilterQuery{
		IndexName:  r.indexName(),
		Predicates: preds,
		Offset:     offset,
		Limit:      limit + 1,
		SortBy:     fieldCreatedAt,
		SortDesc:   true,
	})
	if err != nil {
		return nil, 0, "", fmt.Errorf("list receipts: %w", err)
	}
	if result == nil || result.Total == 0 {
		return nil, 0, "", nil
	}

	receipts := parseEntries(result.Entries, limit)

	var nextCursor string
	if len(result.Entries) > limit {
		nextCursor = strconv.Itoa(offset + limit)
	}
	return receipts, result.Total, nextCursor, nil
}

// Find executes a synthesized filter against the receipts index. The
// second return value lists clauses that could not be translated and
// were dropped.
func (r *Repo) Find(ctx context.Context, f filter.Filter, limit int) ([]domrcpt.Receipt, []string, error) {
	if limit <= 0 {
		limit = 1000
	}

	preds, dropped := translate(f)

	result, err := r.store.Query(ctx, &db.FilterQuery{
		IndexName:  r.indexName(),
		Predicates: preds,
		Limit:      limit,
		SortBy:     fieldCreatedAt,
		SortDesc:   true,
	})
	if err != nil {
		return nil, dropped, fmt.Errorf("execute filter: %w", err)
	}
	if result == nil {
		return nil, dropped, nil
	}
	return parseEntries(result.Entries, limit), dropped, nil
}

func parseEntries(entries []db.SearchEntry, limit int) []domrcpt.Receipt {
	receipts := make([]domrcpt.Receipt, 0, min(len(entries), limit))
	for i, entry := range entries {
		if i >= limit {
			break
		}
		doc, ok := entry.Document()
		if !ok {
			continue
		}
		var d receiptDoc
		if err := json.Unmarshal(doc, &d); err != nil {
			continue
		}
		receipts = append(receipts, d.toDomain())
	}
	return receipts
}
