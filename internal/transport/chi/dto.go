package chi

import (
	"encoding/json"
	"time"

	"github.com/raseed-cloud/raseed/internal/domain/notice"
	"github.com/raseed-cloud/raseed/internal/domain/pass"
	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
)

// Wire error codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeIdentityFormat   = "identity_format"
	codeReceiptNotFound  = "receipt_not_found"
	codePassNotFound     = "pass_not_found"
	codeExecutionError   = "execution_error"
	codeLLMProvider      = "llm_provider_error"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ingestRequest struct {
	ID       string         `json:"id,omitempty"`
	UserID   string         `json:"user_id"`
	Vendor   string         `json:"vendor_name"`
	Category string         `json:"bill_category"`
	Items    []domrcpt.Item `json:"items,omitempty"`
	Total    float64        `json:"total_amount"`
	Date     string         `json:"date,omitempty"`
}

type ingestResponse struct {
	Receipt notice.ReceiptView `json:"receipt"`
	Pass    *passView          `json:"pass,omitempty"`
}

type batchIngestRequest struct {
	Receipts []ingestRequest `json:"receipts"`
}

type batchItemResult struct {
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type batchIngestResponse struct {
	Results []batchItemResult `json:"results"`
}

type receiptListResponse struct {
	Receipts   []notice.ReceiptView `json:"receipts"`
	Total      int                  `json:"total"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

type queryRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

type queryResponse struct {
	Success  bool                 `json:"success"`
	UserID   string               `json:"user_id"`
	Query    string               `json:"query"`
	Answer   string               `json:"answer"`
	Filter   filter.Filter        `json:"filter"`
	Count    int                  `json:"receipts_count"`
	Receipts []notice.ReceiptView `json:"receipts"`
}

type passView struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ReceiptID string          `json:"receipt_id"`
	SaveURL   string          `json:"save_url"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt string          `json:"created_at"`
}

type passListResponse struct {
	Passes []passView `json:"passes"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func passToView(p pass.Pass, includePayload bool) passView {
	v := passView{
		ID:        p.ID,
		UserID:    p.UserID,
		ReceiptID: p.ReceiptID,
		SaveURL:   p.SaveURL,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if includePayload {
		v.Payload = p.Payload
	}
	return v
}
