package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pillbox/internal/http/respond"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

func TestError(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantStatus int
		wantField  string
		wantRows   int
	}

	tests := []testCase{
		{
			name:       "Validation",
			err:        &inventory.ValidationError{Field: "price", Reason: inventory.ReasonInvalidPrice},
			wantStatus: http.StatusBadRequest,
			wantField:  "price",
		},
		{
			name:       "NotFound",
			err:        &inventory.NotFoundError{Entity: "product", ID: 4},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "WrappedInsufficientStock",
			err:        fmt.Errorf("sale: %w", &inventory.InsufficientStockError{ProductID: 1, Requested: 3, Available: 2}),
			wantStatus: http.StatusConflict,
		},
		{
			name: "Import",
			err: &inventory.ImportError{Rows: []inventory.RowError{
				{Row: 2, Err: &inventory.ValidationError{Field: "name", Reason: inventory.ReasonMissingField}},
				{Row: 5, Err: &inventory.ValidationError{Field: "price", Reason: inventory.ReasonInvalidPrice}},
			}},
			wantStatus: http.StatusUnprocessableEntity,
			wantRows:   2,
		},
		{
			name:       "Internal",
			err:        errors.New("disk I/O error"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respond.Error(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body struct {
				Error string `json:"error"`
				Field string `json:"field"`
				Rows  []struct {
					Row int `json:"row"`
				} `json:"rows"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.wantField, body.Field)
			assert.Len(t, body.Rows, tt.wantRows)
		})
	}
}

func TestError_InternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Error(rec, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password")
}
