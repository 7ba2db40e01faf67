package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 10

// ExpiringSoonDays is the window used by the expiring-soon filter and row flag.
const ExpiringSoonDays = 30

// PaymentModeAll disables the payment mode filter.
const PaymentModeAll = "All"

// Product is a stocked item.
type Product struct {
	ID                int64
	Name              string
	Category          string
	QuantityRemaining int
	QuantityToExpire  int // Informational only, never reconciled against sales.
	Price             decimal.Decimal
	ExpiryDate        string // YYYY-MM-DD as persisted
	ModeOfPayment     string
}

// Expiry parses the stored expiry date.
func (p *Product) Expiry() (time.Time, error) {
	return time.Parse(time.DateOnly, p.ExpiryDate)
}

// IsLowStock reports whether the remaining quantity is under the threshold.
func (p *Product) IsLowStock() bool {
	return p.QuantityRemaining < LowStockThreshold
}

// IsExpiringSoon reports whether the product expires within ExpiringSoonDays of today.
// Products that already expired count as expiring soon. An unparseable expiry date
// yields false.
func (p *Product) IsExpiringSoon(today time.Time) bool {
	expiry, err := p.Expiry()
	if err != nil {
		return false
	}

	return daysUntil(today, expiry) <= ExpiringSoonDays
}

// Sale records units of a product leaving stock.
type Sale struct {
	ID           int64
	ProductID    int64
	QuantitySold int
	SaleDate     string // YYYY-MM-DD
}

// ProductInput carries the raw, unvalidated fields of a product form.
type ProductInput struct {
	Name              string
	Category          string
	QuantityRemaining string
	QuantityToExpire  string
	Price             string
	ExpiryDate        string
	ModeOfPayment     string
}

// ProductRow is a product together with its derived highlight flags.
type ProductRow struct {
	Product        *Product
	IsLowStock     bool
	IsExpiringSoon bool
}

// ListFilter composes product list restrictions. All set restrictions apply together.
type ListFilter struct {
	PaymentMode  string // exact match, empty or PaymentModeAll for no restriction
	ExpiringSoon bool
	LowStock     bool
	SearchText   string
}

// SaleFilter restricts the sales history. Dates are inclusive.
type SaleFilter struct {
	ProductID *int64
	StartDate *time.Time
	EndDate   *time.Time
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysUntil(today, date time.Time) int {
	return int(truncateDay(date).Sub(truncateDay(today)).Hours() / 24)
}
