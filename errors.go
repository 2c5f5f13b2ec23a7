package raseed

import "github.com/raseed-cloud/raseed/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrIdentityFormat  = domain.ErrIdentityFormat
	ErrReceiptNotFound = domain.ErrReceiptNotFound
	ErrPassNotFound    = domain.ErrPassNotFound
	ErrQueryExecution  = domain.ErrQueryExecution
	ErrLLMProvider     = domain.ErrLLMProvider
)
