package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

const dbTimeout = 5 * time.Second

// minTableHeight keeps tables usable in very short terminals.
const minTableHeight = 3

// tableHeight leaves room for the title, header and help lines.
func tableHeight(windowHeight int) int {
	return max(windowHeight-10, minTableHeight)
}

// paymentModes are offered as suggestions and filter steps. Any other text is
// accepted on entry.
var paymentModes = []string{inventory.PaymentModeAll, "Cash", "Card", "Insurance"}

// FormatPrice renders a price with two decimals.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// flags renders the derived row markers of a product.
func flags(r inventory.ProductRow) string {
	var parts []string
	if r.IsLowStock {
		parts = append(parts, "LOW")
	}

	if r.IsExpiringSoon {
		parts = append(parts, "EXP")
	}

	return strings.Join(parts, " ")
}

// describeError turns ledger errors into a line fit for the status bar.
func describeError(err error) string {
	var (
		vErr   *inventory.ValidationError
		isErr  *inventory.InsufficientStockError
		nfErr  *inventory.NotFoundError
		impErr *inventory.ImportError
	)

	switch {
	case errors.As(err, &vErr):
		return fmt.Sprintf("Invalid %s: %s", strings.ReplaceAll(vErr.Field, "_", " "), vErr.Reason)
	case errors.As(err, &isErr):
		return fmt.Sprintf("Not enough stock: %d requested, %d available", isErr.Requested, isErr.Available)
	case errors.As(err, &nfErr):
		return fmt.Sprintf("%s #%d no longer exists", nfErr.Entity, nfErr.ID)
	case errors.As(err, &impErr):
		return fmt.Sprintf("%d row(s) rejected, nothing imported", len(impErr.Rows))
	}

	return fmt.Sprintf("Error: %v", err)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
