package receipt

import (
	"time"

	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
)

// Index-only field names (not part of the filter schema).
const (
	fieldDateNum   = "date_num"
	fieldCreatedAt = "created_at"
)

// receiptDoc is the stored JSON shape of a receipt. date_num mirrors date
// as yyyymmdd so range constraints can run against a NUMERIC field.
type receiptDoc struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Vendor    string    `json:"vendor_name"`
	Category  string    `json:"bill_category"`
	Items     []itemDoc `json:"items,omitempty"`
	Total     float64   `json:"total_amount"`
	Date      string    `json:"date,omitempty"`
	DateNum   int64     `json:"date_num,omitempty"`
	CreatedAt int64     `json:"created_at"`
	Embedding []float64 `json:"embedding,omitempty"`
}

type itemDoc struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

func buildDoc(r *domrcpt.Receipt, embedding []float64) receiptDoc {
	items := make([]itemDoc, 0, len(r.Items()))
	for _, it := range r.Items() {
		items = append(items, itemDoc{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return receiptDoc{
		ID:        r.ID(),
		UserID:    r.UserID(),
		Vendor:    r.Vendor(),
		Category:  r.Category(),
		Items:     items,
		Total:     r.Total(),
		Date:      r.Date(),
		DateNum:   dateNum(r.Date()),
		CreatedAt: r.CreatedAt().Unix(),
		Embedding: embedding,
	}
}

func (d receiptDoc) toDomain() domrcpt.Receipt {
	var items []domrcpt.Item
	if len(d.Items) > 0 {
		items = make([]domrcpt.Item, 0, len(d.Items))
		for _, it := range d.Items {
			items = append(items, domrcpt.Item{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
		}
	}
	return domrcpt.Reconstruct(
		d.ID, d.UserID, d.Vendor, d.Category, items, d.Total, d.Date,
		time.Unix(d.CreatedAt, 0).UTC(),
	)
}

// dateNum maps YYYY-MM-DD to yyyymmdd; 0 for empty or malformed dates.
func dateNum(date string) int64 {
	if date == "" {
		return 0
	}
	t, err := time.Parse(domrcpt.DateLayout, date)
	if err != nil {
		return 0
	}
	return int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())
}
