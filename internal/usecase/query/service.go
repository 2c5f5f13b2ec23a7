package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/notice"
	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
	"github.com/raseed-cloud/raseed/internal/domain/receipt"
	"github.com/raseed-cloud/raseed/internal/logger"
	"github.com/raseed-cloud/raseed/internal/metrics"
)

const (
	defaultExecLimit         = 1000
	defaultMaxResultReceipts = 10
)

// Result is the outcome of one answered question.
type Result struct {
	Answer   string
	Filter   filter.Filter
	Count    int
	Receipts []receipt.Receipt
}

// Service drives the question pipeline: synthesis, normalization, owner
// enforcement, execution and answer synthesis.
type Service struct {
	gen               Generator
	receipts          Finder
	execLimit         int
	maxResultReceipts int
	now               func() time.Time
}

// New creates a query service.
func New(gen Generator, receipts Finder) *Service {
	return &Service{
		gen:               gen,
		receipts:          receipts,
		execLimit:         defaultExecLimit,
		maxResultReceipts: defaultMaxResultReceipts,
		now:               time.Now,
	}
}

// WithExecLimit caps how many receipts one filter execution materializes.
func (s *Service) WithExecLimit(n int) *Service {
	if n > 0 {
		s.execLimit = n
	}
	return s
}

// WithMaxResultReceipts caps how many receipts a result notice carries.
func (s *Service) WithMaxResultReceipts(n int) *Service {
	if n > 0 {
		s.maxResultReceipts = n
	}
	return s
}

// WithClock overrides the time source. Used by tests and date normalization.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// MaxResultReceipts returns the per-result receipt cap.
func (s *Service) MaxResultReceipts() int { return s.maxResultReceipts }

// Ask answers one natural-language question for the given identity. Progress
// notices are delivered through emit (may be nil). Only identity-format and
// execution failures return an error; synthesis failures degrade internally.
func (s *Service) Ask(ctx context.Context, identity, question string, emit func(notice.Notice)) (*Result, error) {
	if emit == nil {
		emit = func(notice.Notice) {}
	}
	if err := domain.ValidateIdentity(identity); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)

	emit(notice.Status("Analyzing your question..."))
	f := s.synthesizeFilter(ctx, identity, question)
	f = NormalizeDates(f, question, s.now())

	// Final enforcement checkpoint: last mutation before execution. No path
	// from request to executor skips this overwrite.
	f.Set(receipt.FieldUserID, filter.Literal(identity))
	emit(notice.FilterGenerated(f))

	emit(notice.Status("Fetching matching receipts..."))
	s.assertOwner(ctx, &f, identity)
	recs, dropped, err := s.receipts.Find(ctx, f, s.execLimit)
	if err != nil {
		log.Error("filter execution failed", zap.String("filter", f.String()), zap.Error(err))
		return nil, domain.NewExecutionError(err)
	}
	if len(dropped) > 0 {
		log.Warn("dropped untranslatable filter clauses", zap.Strings("dropped", dropped))
		metrics.QueryDroppedClausesTotal.WithLabelValues("execute").Add(float64(len(dropped)))
	}
	emit(notice.DataFetched(len(recs)))

	emit(notice.Status("Composing the answer..."))
	answer := s.synthesizeAnswer(ctx, question, recs)

	return &Result{
		Answer:   answer,
		Filter:   f,
		Count:    len(recs),
		Receipts: recs,
	}, nil
}

// assertOwner verifies the owner clause survived to the execution boundary.
// A violation here is a bug in the enforcement above, not a caller error; it
// is logged, counted and repaired.
func (s *Service) assertOwner(ctx context.Context, f *filter.Filter, identity string) {
	c, ok := f.Get(receipt.FieldUserID)
	if ok && c.IsLiteral() && c.Literal() == identity {
		return
	}
	logger.FromContext(ctx).Error("owner clause missing or spoofed at execution boundary",
		zap.Error(domain.ErrSecurityInvariant),
		zap.String("identity", identity),
		zap.String("filter", f.String()))
	metrics.SecurityInvariantViolationsTotal.Inc()
	f.Set(receipt.FieldUserID, filter.Literal(identity))
}
