// Package pass holds the Google Wallet pass record attached to a receipt.
package pass

import (
	"encoding/json"
	"time"
)

// Pass is a stored wallet pass. Payload is the unsigned Google Wallet
// generic-object JSON; SaveURL is the "Add to Google Wallet" link built
// from it.
type Pass struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ReceiptID string          `json:"receipt_id"`
	SaveURL   string          `json:"save_url"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
