package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

type fakeLedger struct {
	sales    []*inventory.Sale
	products []*inventory.Product
	salesErr error
	filter   inventory.SaleFilter
}

func (f *fakeLedger) ListSales(_ context.Context, filter inventory.SaleFilter) ([]*inventory.Sale, error) {
	f.filter = filter
	return f.sales, f.salesErr
}

func (f *fakeLedger) ListProducts(_ context.Context, _ inventory.ListFilter) ([]inventory.ProductRow, error) {
	rows := make([]inventory.ProductRow, len(f.products))
	for i, p := range f.products {
		rows[i] = inventory.ProductRow{Product: p}
	}

	return rows, nil
}

func newLedger() *fakeLedger {
	return &fakeLedger{
		products: []*inventory.Product{
			{ID: 1, Name: "Paracetamol", Price: decimal.RequireFromString("3.50")},
			{ID: 2, Name: "Ibuprofen", Price: decimal.RequireFromString("4.20")},
		},
		sales: []*inventory.Sale{
			{ID: 10, ProductID: 1, QuantitySold: 2, SaleDate: "2024-06-01"},
			{ID: 11, ProductID: 2, QuantitySold: 5, SaleDate: "2024-06-02"},
			{ID: 12, ProductID: 1, QuantitySold: 1, SaleDate: "2024-06-03"},
		},
	}
}

func TestService_Build(t *testing.T) {
	svc := NewService(newLedger())

	lines, err := svc.Build(context.Background(), inventory.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, Line{
		SaleID:      10,
		SaleDate:    "2024-06-01",
		ProductID:   1,
		ProductName: "Paracetamol",
		Quantity:    2,
		UnitPrice:   "3.50",
		Total:       "7.00",
	}, lines[0])
	assert.Equal(t, "21.00", lines[1].Total)
}

func TestService_Build_SalesError(t *testing.T) {
	ledger := newLedger()
	ledger.salesErr = errors.New("db down")

	_, err := NewService(ledger).Build(context.Background(), inventory.SaleFilter{})
	assert.Error(t, err)
}

func TestService_Export(t *testing.T) {
	ledger := newLedger()
	svc := NewService(ledger)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	filter := inventory.SaleFilter{StartDate: &start, EndDate: &end}

	dir := t.TempDir()

	path, lines, err := svc.Export(context.Background(), filter, dir)
	require.NoError(t, err)
	assert.Len(t, lines, 3)
	assert.Equal(t, filepath.Join(dir, "sales_20240601_20240630.csv"), path)
	assert.Equal(t, filter, ledger.filter)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	got := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, got, 4)
	assert.Equal(t, "sale_id,sale_date,product_id,product_name,quantity_sold,unit_price,total", got[0])
	assert.Equal(t, "10,2024-06-01,1,Paracetamol,2,3.50,7.00", got[1])
}

func TestSummary(t *testing.T) {
	lines := []Line{
		{ProductID: 1, ProductName: "Paracetamol", Quantity: 2, Total: "7.00"},
		{ProductID: 2, ProductName: "Ibuprofen", Quantity: 5, Total: "21.00"},
		{ProductID: 1, ProductName: "Paracetamol", Quantity: 1, Total: "3.50"},
	}

	body := Summary(lines)

	assert.Equal(t,
		"* Ibuprofen | 5 units | 21.00\n"+
			"* Paracetamol | 3 units | 10.50\n"+
			"Total: 3 sales | 31.50\n",
		body)
}

func TestFilename_OpenRange(t *testing.T) {
	assert.Equal(t, "sales_start_today.csv", Filename(inventory.SaleFilter{}))
}
