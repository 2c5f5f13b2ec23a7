package pass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raseed-cloud/raseed/internal/db"
	dompass "github.com/raseed-cloud/raseed/internal/domain/pass"
)

// maxPassesPerUser caps a per-user pass listing.
const maxPassesPerUser = 100

// store is the consumer interface for wallet passes (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	Query(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo persists wallet passes.
type Repo struct {
	store  store
	prefix string
}

// New creates a pass repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

func (r *Repo) key(id string) string {
	return r.prefix + "passes:" + id
}

func (r *Repo) indexName() string {
	return r.prefix + "passes:idx"
}

// EnsureIndex creates the passes FT index if it does not exist yet.
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
		Prefix(r.prefix + "passes:").
		Tag("$.user_id").Alias("user_id").
		NumericSortable("$.created_at_unix").Alias("created_at_unix").
		MustBuild()

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.indexName(), err)
	}
	return nil
}

// passDoc is the stored JSON shape of a pass. created_at_unix exists for
// index sorting alongside the RFC3339 created_at.
type passDoc struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	ReceiptID     string          `json:"receipt_id"`
	SaveURL       string          `json:"save_url"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	CreatedAt     string          `json:"created_at"`
	CreatedAtUnix int64           `json:"created_at_unix"`
}

// Save stores a wallet pass.
func (r *Repo) Save(ctx context.Context, p *dompass.Pass) error {
	doc := passDoc{
		ID:            p.ID,
		UserID:        p.UserID,
		ReceiptID:     p.ReceiptID,
		SaveURL:       p.SaveURL,
		Payload:       p.Payload,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		CreatedAtUnix: p.CreatedAt.Unix(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal pass: %w", err)
	}

	key := r.key(p.ID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// ListByUser returns a user's wallet passes, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]dompass.Pass, error) {
	result, err := r.store.Query(ctx, &db.FilterQuery{
		IndexName:  r.indexName(),
		Predicates: []db.Predicate{db.TagEq("user_id", userID)},
		Limit:      maxPassesPerUser,
		SortBy:     "created_at_unix",
		SortDesc:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("list passes for %s: %w", userID, err)
	}
	if result == nil {
		return nil, nil
	}

	passes := make([]dompass.Pass, 0, len(result.Entries))
	for _, entry := range result.Entries {
		raw, ok := entry.Document()
		if !ok {
			continue
		}
		var doc passDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		passes = append(passes, doc.toDomain())
	}
	return passes, nil
}

func (d passDoc) toDomain() dompass.Pass {
	p := dompass.Pass{
		ID:        d.ID,
		UserID:    d.UserID,
		ReceiptID: d.ReceiptID,
		SaveURL:   d.SaveURL,
		Payload:   d.Payload,
	}
	if t, err := time.Parse(time.RFC3339, d.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	return p
}
