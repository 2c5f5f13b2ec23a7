package batch

import (
	"context"

	"github.com/raseed-cloud/raseed/internal/domain/pass"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
	receiptuc "github.com/raseed-cloud/raseed/internal/usecase/receipt"
)

// Ingester stores a single receipt and issues its wallet pass.
type Ingester interface {
	Ingest(ctx context.Context, in receiptuc.Input) (domrcpt.Receipt, *pass.Pass, error)
}
