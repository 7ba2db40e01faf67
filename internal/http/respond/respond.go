// Package respond writes JSON bodies and maps ledger errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

type errorResponse struct {
	Error string          `json:"error"`
	Field string          `json:"field,omitempty"`
	Rows  []rowErrorEntry `json:"rows,omitempty"`
}

type rowErrorEntry struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// BadRequest reports a malformed request that never reached the ledger.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// Error writes err with the status matching its kind.
func Error(w http.ResponseWriter, err error) {
	var (
		importErr *inventory.ImportError
		validErr  *inventory.ValidationError
	)

	switch {
	case errors.As(err, &importErr):
		resp := errorResponse{Error: "import rejected", Rows: make([]rowErrorEntry, 0, len(importErr.Rows))}
		for _, r := range importErr.Rows {
			resp.Rows = append(resp.Rows, rowErrorEntry{Row: r.Row, Error: r.Err.Error()})
		}

		JSON(w, http.StatusUnprocessableEntity, resp)
	case errors.As(err, &validErr):
		JSON(w, http.StatusBadRequest, errorResponse{Error: validErr.Error(), Field: validErr.Field})
	case errors.Is(err, inventory.ErrNotFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, inventory.ErrInsufficientStock):
		JSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
