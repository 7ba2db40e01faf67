package inventory

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// parseProduct applies the product validation rules in order: presence, integers,
// price, then expiry date. The first failure is returned.
func parseProduct(in ProductInput) (*Product, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"name", in.Name},
		{"category", in.Category},
		{"quantity_remaining", in.QuantityRemaining},
		{"quantity_to_expire", in.QuantityToExpire},
		{"price", in.Price},
		{"expiry_date", in.ExpiryDate},
		{"mode_of_payment", in.ModeOfPayment},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return nil, &ValidationError{Field: f.name, Reason: ReasonMissingField}
		}
	}

	remaining, err := strconv.Atoi(strings.TrimSpace(in.QuantityRemaining))
	if err != nil || remaining < 0 {
		return nil, &ValidationError{Field: "quantity_remaining", Reason: ReasonInvalidInteger}
	}

	toExpire, err := strconv.Atoi(strings.TrimSpace(in.QuantityToExpire))
	if err != nil {
		return nil, &ValidationError{Field: "quantity_to_expire", Reason: ReasonInvalidInteger}
	}

	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	expiry, err := parseDate("expiry_date", in.ExpiryDate)
	if err != nil {
		return nil, err
	}

	return &Product{
		Name:              strings.TrimSpace(in.Name),
		Category:          strings.TrimSpace(in.Category),
		QuantityRemaining: remaining,
		QuantityToExpire:  toExpire,
		Price:             price,
		ExpiryDate:        expiry.Format(time.DateOnly),
		ModeOfPayment:     strings.TrimSpace(in.ModeOfPayment),
	}, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "price", Reason: ReasonInvalidPrice}
	}

	return d, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: ReasonInvalidDate}
	}

	return t, nil
}

func parseSaleQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "quantity", Reason: ReasonMissingField}
	}

	q, err := strconv.Atoi(s)
	if err != nil || q <= 0 {
		return 0, &ValidationError{Field: "quantity", Reason: ReasonInvalidInteger}
	}

	return q, nil
}
