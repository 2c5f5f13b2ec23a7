// Package query implements the natural-language-to-filter pipeline: filter
// synthesis via an LLM, date normalization, owner enforcement, execution
// against the receipt store and answer synthesis.
package query

import (
	"context"

	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
	"github.com/raseed-cloud/raseed/internal/domain/receipt"
)

// Generator produces free text from a prompt. Implementations wrap a model
// provider; no structured-output guarantee is assumed.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Finder executes a structured filter against the receipt store. The second
// return value lists clauses that could not be translated and were dropped.
type Finder interface {
	Find(ctx context.Context, f filter.Filter, limit int) ([]receipt.Receipt, []string, error)
}
