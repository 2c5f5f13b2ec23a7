package raseed

import (
	"context"
	"fmt"
	"time"
)

// Ask answers a natural-language question about the user's receipts.
// userID must be email-shaped; results are always scoped to that identity
// regardless of what the question asks for.
func (c *Client) Ask(ctx context.Context, userID, question string) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query.ask", start, err) }()

	res, err := c.querySvc.Ask(ctx, userID, question, nil)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}

	receipts := make([]Receipt, len(res.Receipts))
	for i, r := range res.Receipts {
		receipts[i] = fromDomain(r)
	}
	return Answer{
		Text:     res.Answer,
		Count:    res.Count,
		Receipts: receipts,
	}, nil
}
