package sales

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pillbox/internal/http/respond"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
	"github.com/MrJamesThe3rd/pillbox/internal/metrics"
)

type Handler struct {
	svc     *inventory.Service
	metrics *metrics.Metrics
}

// NewHandler creates the sales handler. m may be nil.
func NewHandler(svc *inventory.Service, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, metrics: m}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
}

type createSaleRequest struct {
	ProductID int64       `json:"product_id"`
	Quantity  json.Number `json:"quantity"`
	SaleDate  string      `json:"sale_date"`
}

type saleResponse struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	QuantitySold int    `json:"quantity_sold"`
	SaleDate     string `json:"sale_date"`
}

func toResponse(s *inventory.Sale) saleResponse {
	return saleResponse{
		ID:           s.ID,
		ProductID:    s.ProductID,
		QuantitySold: s.QuantitySold,
		SaleDate:     s.SaleDate,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	// Sales default to today, as in the terminal form.
	if req.SaleDate == "" {
		req.SaleDate = h.svc.Today().Format(time.DateOnly)
	}

	sale, err := h.svc.RecordSale(r.Context(), req.ProductID, req.Quantity.String(), req.SaleDate)
	if h.metrics != nil {
		h.metrics.ObserveSale(sale, err)
	}

	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(sale))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := inventory.SaleFilter{}

	if s := q.Get("product_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			respond.BadRequest(w, "invalid product_id")
			return
		}

		filter.ProductID = new(id)
	}

	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.BadRequest(w, "invalid start_date")
			return
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.BadRequest(w, "invalid end_date")
			return
		}

		filter.EndDate = new(t)
	}

	sales, err := h.svc.ListSales(r.Context(), filter)
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := make([]saleResponse, len(sales))
	for i, s := range sales {
		resp[i] = toResponse(s)
	}

	respond.JSON(w, http.StatusOK, resp)
}
