package raseed

import (
	"time"

	"github.com/raseed-cloud/raseed/internal/domain/pass"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
	batchuc "github.com/raseed-cloud/raseed/internal/usecase/batch"
	receiptuc "github.com/raseed-cloud/raseed/internal/usecase/receipt"
)

// Item is a single line item on a receipt.
type Item struct {
	Name     string
	Quantity float64
	Price    float64
}

// Receipt is the public receipt shape. ID may be left empty on ingest;
// a UUID is assigned. Date, when set, must be YYYY-MM-DD.
type Receipt struct {
	ID       string
	UserID   string
	Vendor   string
	Category string
	Items    []Item
	Total    float64
	Date     string
}

// Pass is a Google Wallet pass attached to a stored receipt.
type Pass struct {
	ID        string
	ReceiptID string
	SaveURL   string
	CreatedAt time.Time
}

// ListResult is a page of receipts.
type ListResult struct {
	Receipts   []Receipt
	Total      int
	NextCursor string
}

// BatchResult is the outcome for one receipt in a batch ingest.
type BatchResult struct {
	ID  string
	OK  bool
	Err error
}

// Answer is the outcome of a natural-language query.
type Answer struct {
	Text     string
	Count    int
	Receipts []Receipt
}

func toInput(r Receipt) receiptuc.Input {
	items := make([]domrcpt.Item, len(r.Items))
	for i, it := range r.Items {
		items[i] = domrcpt.Item{Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	return receiptuc.Input{
		ID:       r.ID,
		UserID:   r.UserID,
		Vendor:   r.Vendor,
		Category: r.Category,
		Items:    items,
		Total:    r.Total,
		Date:     r.Date,
	}
}

func fromDomain(r domrcpt.Receipt) Receipt {
	src := r.Items()
	items := make([]Item, len(src))
	for i, it := range src {
		items[i] = Item{Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	return Receipt{
		ID:       r.ID(),
		UserID:   r.UserID(),
		Vendor:   r.Vendor(),
		Category: r.Category(),
		Items:    items,
		Total:    r.Total(),
		Date:     r.Date(),
	}
}

func fromDomainPass(p pass.Pass) Pass {
	return Pass{
		ID:        p.ID,
		ReceiptID: p.ReceiptID,
		SaveURL:   p.SaveURL,
		CreatedAt: p.CreatedAt,
	}
}

func fromBatchResults(results []batchuc.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{ID: r.ID, OK: r.OK(), Err: r.Err}
	}
	return out
}
