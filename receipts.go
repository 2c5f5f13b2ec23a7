package raseed

import (
	"context"
	"fmt"
	"time"

	receiptuc "github.com/raseed-cloud/raseed/internal/usecase/receipt"
)

// ReceiptService manages receipts.
type ReceiptService struct {
	svc      receiptUseCase
	batchSvc batchUseCase
	obs      *observer
}

// Ingest validates and stores a receipt, computes its embedding, and
// issues a wallet pass. The pass is nil when issuance failed; the receipt
// is stored regardless.
func (s *ReceiptService) Ingest(ctx context.Context, r Receipt) (rec Receipt, p *Pass, err error) {
	start := time.Now()
	defer func() { s.obs.observe("receipts.ingest", start, err) }()

	stored, issued, err := s.svc.Ingest(ctx, toInput(r))
	if err != nil {
		return Receipt{}, nil, fmt.Errorf("ingest receipt: %w", err)
	}
	rec = fromDomain(stored)
	if issued != nil {
		v := fromDomainPass(*issued)
		p = &v
	}
	return rec, p, nil
}

// Get retrieves a receipt by ID.
func (s *ReceiptService) Get(ctx context.Context, id string) (rec Receipt, err error) {
	start := time.Now()
	defer func() { s.obs.observe("receipts.get", start, err) }()

	stored, err := s.svc.Get(ctx, id)
	if err != nil {
		return Receipt{}, fmt.Errorf("get receipt: %w", err)
	}
	return fromDomain(stored), nil
}

// List returns receipts newest-first with cursor-based pagination.
// userID, when non-empty, scopes the listing to one identity. limit 0
// uses the server default page size.
func (s *ReceiptService) List(ctx context.Context, userID, cursor string, limit int) (res ListResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("receipts.list", start, err) }()

	recs, total, next, err := s.svc.List(ctx, userID, cursor, limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("list receipts: %w", err)
	}
	out := make([]Receipt, len(recs))
	for i, r := range recs {
		out[i] = fromDomain(r)
	}
	return ListResult{Receipts: out, Total: total, NextCursor: next}, nil
}

// BatchIngest stores receipts in bulk. Results are positional; one bad
// receipt never fails the rest.
func (s *ReceiptService) BatchIngest(ctx context.Context, receipts []Receipt) []BatchResult {
	start := time.Now()
	defer func() { s.obs.observe("receipts.batch_ingest", start, nil) }()

	items := make([]receiptuc.Input, len(receipts))
	for i, r := range receipts {
		items[i] = toInput(r)
	}
	return fromBatchResults(s.batchSvc.Ingest(ctx, items))
}
