// Package receipt handles receipt ingestion and retrieval.
package receipt

import (
	"context"

	"github.com/raseed-cloud/raseed/internal/domain/pass"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
)

// Repository defines the storage contract for receipts.
type Repository interface {
	Upsert(ctx context.Context, rec *domrcpt.Receipt, embedding []float64) error
	Get(ctx context.Context, id string) (domrcpt.Receipt, error)
	List(ctx context.Context, userID, cursor string, limit int) (
		receipts []domrcpt.Receipt, total int, nextCursor string, err error,
	)
}

// Embedder derives a vector from receipt text. Local and infallible.
type Embedder interface {
	Embed(text string) []float64
}

// PassIssuer creates a wallet pass for a stored receipt.
type PassIssuer interface {
	CreatePass(ctx context.Context, rec *domrcpt.Receipt) (pass.Pass, error)
}
