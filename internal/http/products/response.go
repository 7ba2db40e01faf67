package products

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

type productResponse struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	QuantityRemaining int             `json:"quantity_remaining"`
	QuantityToExpire  int             `json:"quantity_to_expire"`
	Price             decimal.Decimal `json:"price"`
	ExpiryDate        string          `json:"expiry_date"`
	ModeOfPayment     string          `json:"mode_of_payment"`
	IsLowStock        *bool           `json:"is_low_stock,omitempty"`
	IsExpiringSoon    *bool           `json:"is_expiring_soon,omitempty"`
}

func toResponse(p *inventory.Product) productResponse {
	return productResponse{
		ID:                p.ID,
		Name:              p.Name,
		Category:          p.Category,
		QuantityRemaining: p.QuantityRemaining,
		QuantityToExpire:  p.QuantityToExpire,
		Price:             p.Price,
		ExpiryDate:        p.ExpiryDate,
		ModeOfPayment:     p.ModeOfPayment,
	}
}

func toRowResponse(r inventory.ProductRow) productResponse {
	resp := toResponse(r.Product)
	resp.IsLowStock = new(r.IsLowStock)
	resp.IsExpiringSoon = new(r.IsExpiringSoon)

	return resp
}

func toResponseList(ps []*inventory.Product) []productResponse {
	resp := make([]productResponse, len(ps))
	for i, p := range ps {
		resp[i] = toResponse(p)
	}

	return resp
}

func toRowResponseList(rows []inventory.ProductRow) []productResponse {
	resp := make([]productResponse, len(rows))
	for i, r := range rows {
		resp[i] = toRowResponse(r)
	}

	return resp
}
