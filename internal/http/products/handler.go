package products

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pillbox/internal/http/respond"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

type Handler struct {
	svc *inventory.Service
}

func NewHandler(svc *inventory.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/expiring", h.expiring)
	r.Get("/low-stock", h.lowStock)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
}

// productRequest accepts numbers either as JSON numbers or numeric strings.
// Range and format checks are left to the ledger.
type productRequest struct {
	Name              string      `json:"name"`
	Category          string      `json:"category"`
	QuantityRemaining json.Number `json:"quantity_remaining"`
	QuantityToExpire  json.Number `json:"quantity_to_expire"`
	Price             json.Number `json:"price"`
	ExpiryDate        string      `json:"expiry_date"`
	ModeOfPayment     string      `json:"mode_of_payment"`
}

func (req productRequest) input() inventory.ProductInput {
	return inventory.ProductInput{
		Name:              req.Name,
		Category:          req.Category,
		QuantityRemaining: req.QuantityRemaining.String(),
		QuantityToExpire:  req.QuantityToExpire.String(),
		Price:             req.Price.String(),
		ExpiryDate:        req.ExpiryDate,
		ModeOfPayment:     req.ModeOfPayment,
	}
}

type createResponse struct {
	ID int64 `json:"id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	id, err := h.svc.AddProduct(r.Context(), req.input())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, createResponse{ID: id})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := inventory.ListFilter{
		PaymentMode: q.Get("payment_mode"),
		SearchText:  q.Get("q"),
	}

	var err error

	if filter.ExpiringSoon, err = boolParam(q.Get("expiring_soon")); err != nil {
		respond.BadRequest(w, "invalid expiring_soon")
		return
	}

	if filter.LowStock, err = boolParam(q.Get("low_stock")); err != nil {
		respond.BadRequest(w, "invalid low_stock")
		return
	}

	rows, err := h.svc.ListProducts(r.Context(), filter)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toRowResponseList(rows))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.UpdateProduct(r.Context(), id, req.input()); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) expiring(w http.ResponseWriter, r *http.Request) {
	days := inventory.ExpiringSoonDays

	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respond.BadRequest(w, "invalid days")
			return
		}

		days = n
	}

	ps, err := h.svc.ExpiringWithin(r.Context(), days)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(ps))
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.LowStockProducts(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toRowResponseList(rows))
}

func boolParam(s string) (bool, error) {
	if s == "" {
		return false, nil
	}

	return strconv.ParseBool(s)
}
