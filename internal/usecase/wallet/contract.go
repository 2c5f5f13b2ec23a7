// Package wallet assembles Google Wallet save passes for receipts.
package wallet

import (
	"context"

	"github.com/raseed-cloud/raseed/internal/domain/pass"
)

// Repository defines the storage contract for wallet passes.
type Repository interface {
	Save(ctx context.Context, p *pass.Pass) error
	ListByUser(ctx context.Context, userID string) ([]pass.Pass, error)
}
