package receipt

import (
	"fmt"
	"time"

	"github.com/raseed-cloud/raseed/internal/domain"
)

// Schema field names as the filter model sees them.
const (
	FieldUserID   = "user_id"
	FieldVendor   = "vendor_name"
	FieldCategory = "bill_category"
	FieldItems    = "items"
	FieldTotal    = "total_amount"
	FieldDate     = "date"
)

// DateLayout is the wire format for receipt dates.
const DateLayout = "2006-01-02"

// KnownField reports whether a filter may constrain the given field.
func KnownField(name string) bool {
	switch name {
	case FieldUserID, FieldVendor, FieldCategory, FieldItems, FieldTotal, FieldDate:
		return true
	}
	return false
}

// Item is a single line item on a receipt.
type Item struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// Receipt is the receipt aggregate (immutable value object).
type Receipt struct {
	id        string
	userID    string
	vendor    string
	category  string
	items     []Item
	total     float64
	date      string
	createdAt time.Time
}

// New validates and creates a Receipt.
// UserID must be email-shaped; date, when present, must be YYYY-MM-DD.
func New(id, userID, vendor, category string, items []Item, total float64, date string, createdAt time.Time) (Receipt, error) {
	if id == "" {
		return Receipt{}, fmt.Errorf("receipt ID is required")
	}
	if err := domain.ValidateIdentity(userID); err != nil {
		return Receipt{}, fmt.Errorf("user_id %q: %w", userID, err)
	}
	if total < 0 {
		return Receipt{}, fmt.Errorf("total_amount must not be negative, got %g", total)
	}
	if date != "" {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return Receipt{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", date)
		}
	}

	return Receipt{
		id:        id,
		userID:    userID,
		vendor:    vendor,
		category:  NormalizeCategory(category),
		items:     cloneItems(items),
		total:     total,
		date:      date,
		createdAt: createdAt,
	}, nil
}

// Reconstruct creates a Receipt without validation (storage hydration).
func Reconstruct(
	id, userID, vendor, category string, items []Item, total float64, date string, createdAt time.Time,
) Receipt {
	return Receipt{
		id: id, userID: userID, vendor: vendor, category: category,
		items: items, total: total, date: date, createdAt: createdAt,
	}
}

// ID returns the receipt identifier.
func (r *Receipt) ID() string { return r.id }

// UserID returns the owning identity.
func (r *Receipt) UserID() string { return r.userID }

// Vendor returns the vendor name.
func (r *Receipt) Vendor() string { return r.vendor }

// Category returns the bill category.
func (r *Receipt) Category() string { return r.category }

// Items returns the line items.
func (r *Receipt) Items() []Item { return r.items }

// Total returns the total amount.
func (r *Receipt) Total() float64 { return r.total }

// Date returns the purchase date (YYYY-MM-DD, possibly empty).
func (r *Receipt) Date() string { return r.date }

// CreatedAt returns the ingestion time.
func (r *Receipt) CreatedAt() time.Time { return r.createdAt }

// Text renders the receipt as a single line for embedding.
func (r *Receipt) Text() string {
	return fmt.Sprintf("%s %s %.2f %s", r.vendor, r.category, r.total, r.date)
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	c := make([]Item, len(items))
	copy(c, items)
	return c
}
