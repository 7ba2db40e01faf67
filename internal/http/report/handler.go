package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pillbox/internal/http/respond"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
	"github.com/MrJamesThe3rd/pillbox/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/sales", h.sales)
}

// reportRequest bounds the report by inclusive YYYY-MM-DD dates. Both are optional.
type reportRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

func (req reportRequest) filter() (inventory.SaleFilter, error) {
	var filter inventory.SaleFilter

	if req.StartDate != "" {
		t, err := time.Parse(time.DateOnly, req.StartDate)
		if err != nil {
			return filter, errors.New("invalid start_date")
		}

		filter.StartDate = new(t)
	}

	if req.EndDate != "" {
		t, err := time.Parse(time.DateOnly, req.EndDate)
		if err != nil {
			return filter, errors.New("invalid end_date")
		}

		filter.EndDate = new(t)
	}

	return filter, nil
}

func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	filter, err := req.filter()
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	lines, err := h.svc.Build(r.Context(), filter)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, lines); err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(filter)))

	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write report", "error", err)
	}
}
