// Package notice defines the progress notifications a query session emits.
package notice

import (
	"time"

	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
	"github.com/raseed-cloud/raseed/internal/domain/receipt"
)

// Kind discriminates notice payloads on the wire.
type Kind string

const (
	KindConnection      Kind = "connection"
	KindStatus          Kind = "status"
	KindFilterGenerated Kind = "filter_generated"
	KindDataFetched     Kind = "data_fetched"
	KindResult          Kind = "result"
	KindError           Kind = "error"
	KindPong            Kind = "pong"
)

// Error codes attached to error notices.
const (
	CodeIdentityFormat = "identity_format"
	CodeInvalidMessage = "invalid_message"
	CodeExecution      = "execution_error"
	CodeInternal       = "internal_error"
)

// ReceiptView is the caller-facing JSON shape of a receipt. Embeddings are
// never included.
type ReceiptView struct {
	ID       string         `json:"id"`
	UserID   string         `json:"user_id"`
	Vendor   string         `json:"vendor_name"`
	Category string         `json:"bill_category"`
	Items    []receipt.Item `json:"items,omitempty"`
	Total    float64        `json:"total_amount"`
	Date     string         `json:"date,omitempty"`
}

// ViewOf converts a domain receipt to its wire view.
func ViewOf(r receipt.Receipt) ReceiptView {
	return ReceiptView{
		ID:       r.ID(),
		UserID:   r.UserID(),
		Vendor:   r.Vendor(),
		Category: r.Category(),
		Items:    r.Items(),
		Total:    r.Total(),
		Date:     r.Date(),
	}
}

// ViewsOf converts a slice of domain receipts, capped at limit (0 = all).
func ViewsOf(rs []receipt.Receipt, limit int) []ReceiptView {
	if limit > 0 && len(rs) > limit {
		rs = rs[:limit]
	}
	out := make([]ReceiptView, len(rs))
	for i, r := range rs {
		out[i] = ViewOf(r)
	}
	return out
}

// Notice is one progress notification. Fields are omitted when not set for
// the kind in question.
type Notice struct {
	Type      Kind           `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Message   string         `json:"message,omitempty"`
	Code      string         `json:"code,omitempty"`
	Query     string         `json:"query,omitempty"`
	Filter    *filter.Filter `json:"filter,omitempty"`
	Count     *int           `json:"receipts_count,omitempty"`
	Success   bool           `json:"success,omitempty"`
	Answer    string         `json:"answer,omitempty"`
	Receipts  []ReceiptView  `json:"receipts,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Connection announces an accepted session.
func Connection(sessionID, userID, message string) Notice {
	return Notice{Type: KindConnection, SessionID: sessionID, UserID: userID, Message: message}
}

// Status reports a pipeline stage.
func Status(message string) Notice {
	return Notice{Type: KindStatus, Message: message}
}

// FilterGenerated reports the enforced filter.
func FilterGenerated(f filter.Filter) Notice {
	return Notice{Type: KindFilterGenerated, Filter: &f}
}

// DataFetched reports the match count.
func DataFetched(count int) Notice {
	return Notice{Type: KindDataFetched, Count: &count}
}

// Result reports a completed question.
func Result(userID, query, answer string, f filter.Filter, count int, receipts []ReceiptView, at time.Time) Notice {
	return Notice{
		Type:      KindResult,
		Success:   true,
		UserID:    userID,
		Query:     query,
		Answer:    answer,
		Filter:    &f,
		Count:     &count,
		Receipts:  receipts,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}

// Error reports a failed question; the session stays open.
func Error(code, message string) Notice {
	return Notice{Type: KindError, Code: code, Message: message}
}

// Pong answers a ping.
func Pong(at time.Time) Notice {
	return Notice{Type: KindPong, Timestamp: at.UTC().Format(time.RFC3339)}
}
