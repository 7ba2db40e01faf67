package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pillbox/internal/database"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory/store"
)

var today = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*inventory.Service, *store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.Join(t.TempDir(), "pillbox.db"))

	db, err := database.New(database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite))

	s := store.New(db)
	svc := inventory.NewService(s, inventory.WithClock(func() time.Time { return today }))

	return svc, s
}

func add(t *testing.T, svc *inventory.Service, name, category, qty, expiry, mode string) int64 {
	t.Helper()

	id, err := svc.AddProduct(context.Background(), inventory.ProductInput{
		Name:              name,
		Category:          category,
		QuantityRemaining: qty,
		QuantityToExpire:  "0",
		Price:             "2.75",
		ExpiryDate:        expiry,
		ModeOfPayment:     mode,
	})
	require.NoError(t, err)

	return id
}

func TestStore_AddThenGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, err := svc.AddProduct(ctx, inventory.ProductInput{
		Name:              "Amoxicillin",
		Category:          "Antibiotic",
		QuantityRemaining: "40",
		QuantityToExpire:  "4",
		Price:             "12.99",
		ExpiryDate:        "2025-03-15",
		ModeOfPayment:     "Card",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	p, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Amoxicillin", p.Name)
	assert.Equal(t, "Antibiotic", p.Category)
	assert.Equal(t, 40, p.QuantityRemaining)
	assert.Equal(t, 4, p.QuantityToExpire)
	assert.True(t, decimal.RequireFromString("12.99").Equal(p.Price))
	assert.Equal(t, "2025-03-15", p.ExpiryDate)
	assert.Equal(t, "Card", p.ModeOfPayment)
}

func TestStore_AddAssignsDistinctIDs(t *testing.T) {
	svc, _ := newService(t)

	a := add(t, svc, "A", "x", "1", "2030-01-01", "Cash")
	b := add(t, svc, "A", "x", "1", "2030-01-01", "Cash")

	assert.NotEqual(t, a, b)
}

func TestStore_GetMissing(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.GetProduct(context.Background(), 404)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestStore_UpdateProduct(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id := add(t, svc, "Ibuprofen", "Analgesic", "20", "2030-01-01", "Cash")

	err := svc.UpdateProduct(ctx, id, inventory.ProductInput{
		Name:              "Ibuprofen 400",
		Category:          "Analgesic",
		QuantityRemaining: "25",
		QuantityToExpire:  "2",
		Price:             "4.10",
		ExpiryDate:        "2031-01-01",
		ModeOfPayment:     "Card",
	})
	require.NoError(t, err)

	p, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen 400", p.Name)
	assert.Equal(t, 25, p.QuantityRemaining)
	assert.Equal(t, "2031-01-01", p.ExpiryDate)
	assert.Equal(t, "Card", p.ModeOfPayment)

	err = svc.UpdateProduct(ctx, id+100, inventory.ProductInput{
		Name: "x", Category: "x", QuantityRemaining: "1", QuantityToExpire: "0",
		Price: "1", ExpiryDate: "2030-01-01", ModeOfPayment: "Cash",
	})
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestStore_RecordSaleScenario(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()

	id := add(t, svc, "Paracetamol", "Analgesic", "5", "2030-01-01", "Cash")

	sale, err := svc.RecordSale(ctx, id, "3", "2024-06-01")
	require.NoError(t, err)
	assert.Positive(t, sale.ID)
	assert.Equal(t, 3, sale.QuantitySold)

	p, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, p.QuantityRemaining)

	_, err = svc.RecordSale(ctx, id, "3", "2024-06-01")

	var isErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, 2, isErr.Available)

	p, err = svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, p.QuantityRemaining)

	sales, err := svc.ListSales(ctx, inventory.SaleFilter{ProductID: &id})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ID)

	// Selling the exact remainder empties the product.
	_, err = svc.RecordSale(ctx, id, "2", "2024-06-02")
	require.NoError(t, err)

	p, err = s.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, p.QuantityRemaining)
}

func TestStore_RecordSaleFailuresWriteNothing(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id := add(t, svc, "Cetirizine", "Antihistamine", "8", "2030-01-01", "Cash")

	tests := []struct {
		name      string
		productID int64
		quantity  string
		date      string
		wantErrIs error
	}{
		{"UnknownProduct", id + 1, "1", "2024-06-01", inventory.ErrNotFound},
		{"ZeroQuantity", id, "0", "2024-06-01", inventory.ErrValidation},
		{"NegativeQuantity", id, "-2", "2024-06-01", inventory.ErrValidation},
		{"BadDate", id, "1", "01/06/2024", inventory.ErrValidation},
		{"TooMany", id, "9", "2024-06-01", inventory.ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordSale(ctx, tt.productID, tt.quantity, tt.date)
			assert.ErrorIs(t, err, tt.wantErrIs)
		})
	}

	p, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 8, p.QuantityRemaining)

	sales, err := svc.ListSales(ctx, inventory.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestStore_ListProducts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	para := add(t, svc, "Paracetamol", "Analgesic", "50", "2030-01-01", "Cash")
	ibu := add(t, svc, "Ibuprofen", "Anti-inflammatory", "9", "2024-06-20", "Card")
	vit := add(t, svc, "Vitamin C", "Supplement", "10", "2024-06-04", "Cash")

	ids := func(rows []inventory.ProductRow) []int64 {
		out := make([]int64, len(rows))
		for i, r := range rows {
			out[i] = r.Product.ID
		}

		return out
	}

	tests := []struct {
		name   string
		filter inventory.ListFilter
		want   []int64
	}{
		{"All", inventory.ListFilter{PaymentMode: inventory.PaymentModeAll}, []int64{para, ibu, vit}},
		{"Cash", inventory.ListFilter{PaymentMode: "Cash"}, []int64{para, vit}},
		{"SearchName", inventory.ListFilter{SearchText: "para"}, []int64{para}},
		{"SearchCategoryCaseInsensitive", inventory.ListFilter{SearchText: "SUPPLE"}, []int64{vit}},
		{"SearchWildcardIsLiteral", inventory.ListFilter{SearchText: "%"}, []int64{}},
		{"LowStock", inventory.ListFilter{LowStock: true}, []int64{ibu}},
		{"ExpiringSoon", inventory.ListFilter{ExpiringSoon: true}, []int64{ibu, vit}},
		{"CashExpiringSoon", inventory.ListFilter{PaymentMode: "Cash", ExpiringSoon: true}, []int64{vit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := svc.ListProducts(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(rows))
		})
	}

	rows, err := svc.ListProducts(ctx, inventory.ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.False(t, rows[0].IsLowStock)
	assert.False(t, rows[0].IsExpiringSoon)
	assert.True(t, rows[1].IsLowStock)
	assert.True(t, rows[1].IsExpiringSoon)
	assert.False(t, rows[2].IsLowStock)
}

func TestStore_SearchFoldsAccentedCase(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	eph := add(t, svc, "ÉPHÉDRINE", "Décongestionnant", "20", "2030-01-01", "Cash")
	para := add(t, svc, "Paracétamol", "Analgésique", "20", "2030-01-01", "Cash")

	tests := []struct {
		search string
		want   []int64
	}{
		{"éphé", []int64{eph}},
		{"ÉPHÉDRINE", []int64{eph}},
		{"DÉCONG", []int64{eph}},
		{"PARACÉT", []int64{para}},
		{"analgésique", []int64{para}},
		{"é", []int64{eph, para}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			rows, err := svc.ListProducts(ctx, inventory.ListFilter{SearchText: tt.search})
			require.NoError(t, err)
			require.Len(t, rows, len(tt.want))

			for i, r := range rows {
				assert.Equal(t, tt.want[i], r.Product.ID)
			}
		})
	}
}

func TestStore_PriceKeepsEveryDecimal(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, err := svc.AddProduct(ctx, inventory.ProductInput{
		Name:              "Lozenge",
		Category:          "Throat",
		QuantityRemaining: "12",
		QuantityToExpire:  "0",
		Price:             "3.505",
		ExpiryDate:        "2030-01-01",
		ModeOfPayment:     "Cash",
	})
	require.NoError(t, err)

	p, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "3.505", p.Price.String())
}

func TestStore_ExpiringWithin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	soon := add(t, svc, "Soon", "x", "50", "2024-06-06", "Cash")
	add(t, svc, "Later", "x", "50", "2024-06-11", "Cash")
	edge := add(t, svc, "Edge", "x", "50", "2024-06-08", "Cash")
	add(t, svc, "Expired", "x", "50", "2024-05-30", "Cash")

	got, err := svc.ExpiringWithin(ctx, 7)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, soon, got[0].ID)
	assert.Equal(t, edge, got[1].ID)
}

func TestStore_LowStockProducts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	add(t, svc, "Ten", "x", "10", "2030-01-01", "Cash")
	nine := add(t, svc, "Nine", "x", "9", "2030-01-01", "Cash")
	zero := add(t, svc, "Zero", "x", "0", "2030-01-01", "Cash")

	rows, err := svc.LowStockProducts(ctx)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, nine, rows[0].Product.ID)
	assert.Equal(t, zero, rows[1].Product.ID)

	for _, r := range rows {
		assert.True(t, r.IsLowStock)
	}
}

func TestStore_ListSalesDateRange(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id := add(t, svc, "Aspirin", "Analgesic", "100", "2030-01-01", "Cash")

	for _, d := range []string{"2024-05-31", "2024-06-01", "2024-06-15", "2024-07-01"} {
		_, err := svc.RecordSale(ctx, id, "1", d)
		require.NoError(t, err)
	}

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	sales, err := svc.ListSales(ctx, inventory.SaleFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "2024-06-01", sales[0].SaleDate)
	assert.Equal(t, "2024-06-15", sales[1].SaleDate)
}

func TestStore_ImportProductsIsAtomic(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	ok := inventory.ProductInput{
		Name: "A", Category: "x", QuantityRemaining: "1", QuantityToExpire: "0",
		Price: "1.00", ExpiryDate: "2030-01-01", ModeOfPayment: "Cash",
	}
	bad := ok
	bad.Price = "one"

	_, err := svc.ImportProducts(ctx, []inventory.ProductInput{ok, bad})
	assert.ErrorIs(t, err, inventory.ErrValidation)

	rows, err := svc.ListProducts(ctx, inventory.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	ids, err := svc.ImportProducts(ctx, []inventory.ProductInput{ok, ok})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
