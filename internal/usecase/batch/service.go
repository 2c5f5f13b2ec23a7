// Package batch ingests many receipts in one call with per-item error
// reporting: one bad receipt never fails the rest of the batch.
package batch

import (
	"context"
	"fmt"

	receiptuc "github.com/raseed-cloud/raseed/internal/usecase/receipt"
)

// MaxBatchSize is the maximum number of receipts per batch request.
const MaxBatchSize = 100

// Result is the outcome for a single receipt in a batch.
type Result struct {
	ID  string
	Err error
}

// OK reports whether the item was stored.
func (r Result) OK() bool { return r.Err == nil }

// Service handles batch receipt ingestion.
type Service struct {
	receipts     Ingester
	maxBatchSize int
}

// New creates a batch service.
func New(receipts Ingester) *Service {
	return &Service{receipts: receipts, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// MaxBatchSize returns the configured batch size cap.
func (s *Service) MaxBatchSize() int { return s.maxBatchSize }

// Ingest stores receipts one by one. Results are positional: results[i]
// corresponds to items[i]. An oversized batch fails every item without
// touching storage.
func (s *Service) Ingest(ctx context.Context, items []receiptuc.Input) []Result {
	results := make([]Result, len(items))

	if len(items) > s.maxBatchSize {
		err := fmt.Errorf("batch size %d exceeds %d", len(items), s.maxBatchSize)
		for i, item := range items {
			results[i] = Result{ID: item.ID, Err: err}
		}
		return results
	}

	for i, item := range items {
		rec, _, err := s.receipts.Ingest(ctx, item)
		if err != nil {
			results[i] = Result{ID: item.ID, Err: fmt.Errorf("ingest: %w", err)}
			continue
		}
		results[i] = Result{ID: rec.ID()}
	}
	return results
}
