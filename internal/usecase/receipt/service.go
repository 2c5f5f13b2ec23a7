package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raseed-cloud/raseed/internal/domain/pass"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
	"github.com/raseed-cloud/raseed/internal/logger"
)

// Input carries one receipt to ingest. ID is optional; a uuid is generated
// when absent.
type Input struct {
	ID       string
	UserID   string
	Vendor   string
	Category string
	Items    []domrcpt.Item
	Total    float64
	Date     string
}

// Service handles receipt ingestion with automatic vectorization and wallet
// pass issuing.
type Service struct {
	repo            Repository
	embedder        Embedder
	passes          PassIssuer
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// New creates a receipt service. passes can be nil to disable pass issuing.
func New(repo Repository, embedder Embedder, passes PassIssuer) *Service {
	return &Service{
		repo:            repo,
		embedder:        embedder,
		passes:          passes,
		defaultPageSize: 20,
		maxPageSize:     100,
		now:             time.Now,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Ingest validates, vectorizes and stores a receipt, then issues a wallet
// pass. Pass issuing is best-effort: a failure is logged and the stored
// receipt is still returned.
func (s *Service) Ingest(ctx context.Context, in Input) (domrcpt.Receipt, *pass.Pass, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	rec, err := domrcpt.New(id, in.UserID, in.Vendor, in.Category, in.Items, in.Total, in.Date, s.now())
	if err != nil {
		return domrcpt.Receipt{}, nil, err
	}

	if err := s.repo.Upsert(ctx, &rec, s.embedder.Embed(rec.Text())); err != nil {
		return domrcpt.Receipt{}, nil, fmt.Errorf("store receipt: %w", err)
	}

	var issued *pass.Pass
	if s.passes != nil {
		p, err := s.passes.CreatePass(ctx, &rec)
		if err != nil {
			logger.FromContext(ctx).Warn("wallet pass issuing failed",
				zap.String("receipt_id", rec.ID()), zap.Error(err))
		} else {
			issued = &p
		}
	}
	return rec, issued, nil
}

// Get returns one receipt by id.
func (s *Service) Get(ctx context.Context, id string) (domrcpt.Receipt, error) {
	return s.repo.Get(ctx, id)
}

// List returns receipts newest-first with cursor pagination. userID, when
// non-empty, scopes the listing.
func (s *Service) List(ctx context.Context, userID, cursor string, limit int) (
	[]domrcpt.Receipt, int, string, error,
) {
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	return s.repo.List(ctx, userID, cursor, limit)
}
