package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

// Line is one sale joined with the product it was taken from.
type Line struct {
	SaleID      int64  `csv:"sale_id"`
	SaleDate    string `csv:"sale_date"`
	ProductID   int64  `csv:"product_id"`
	ProductName string `csv:"product_name"`
	Quantity    int    `csv:"quantity_sold"`
	UnitPrice   string `csv:"unit_price"`
	Total       string `csv:"total"`
}

// Ledger is the part of the inventory service the report reads from.
type Ledger interface {
	ListSales(ctx context.Context, filter inventory.SaleFilter) ([]*inventory.Sale, error)
	ListProducts(ctx context.Context, filter inventory.ListFilter) ([]inventory.ProductRow, error)
}

// Service builds sales reports.
type Service struct {
	ledger Ledger
}

// NewService creates a new report Service.
func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// Build returns one line per sale matching the filter, priced at the product's
// current price.
func (s *Service) Build(ctx context.Context, filter inventory.SaleFilter) ([]Line, error) {
	sales, err := s.ledger.ListSales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}

	rows, err := s.ledger.ListProducts(ctx, inventory.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products := make(map[int64]*inventory.Product, len(rows))
	for _, r := range rows {
		products[r.Product.ID] = r.Product
	}

	lines := make([]Line, 0, len(sales))

	for _, sale := range sales {
		line := Line{
			SaleID:    sale.ID,
			SaleDate:  sale.SaleDate,
			ProductID: sale.ProductID,
			Quantity:  sale.QuantitySold,
		}

		if p, ok := products[sale.ProductID]; ok {
			line.ProductName = p.Name
			line.UnitPrice = p.Price.StringFixed(2)
			line.Total = p.Price.Mul(decimal.NewFromInt(int64(sale.QuantitySold))).StringFixed(2)
		}

		lines = append(lines, line)
	}

	return lines, nil
}

// WriteCSV writes lines with a header row.
func WriteCSV(w io.Writer, lines []Line) error {
	if err := gocsv.Marshal(lines, w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	return nil
}

// Export builds the report and writes it to a CSV file in outputDir.
// It returns the file path along with the lines written.
func (s *Service) Export(ctx context.Context, filter inventory.SaleFilter, outputDir string) (string, []Line, error) {
	lines, err := s.Build(ctx, filter)
	if err != nil {
		return "", nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, Filename(filter))

	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, lines); err != nil {
		return "", nil, err
	}

	return path, lines, nil
}

// Filename names a report after its date range, e.g. sales_20240601_20240630.csv.
func Filename(filter inventory.SaleFilter) string {
	from, to := "start", "today"
	if filter.StartDate != nil {
		from = filter.StartDate.Format("20060102")
	}

	if filter.EndDate != nil {
		to = filter.EndDate.Format("20060102")
	}

	return fmt.Sprintf("sales_%s_%s.csv", from, to)
}

// Summary totals units and revenue per product, largest revenue first.
func Summary(lines []Line) string {
	type total struct {
		name    string
		units   int
		revenue decimal.Decimal
	}

	byProduct := make(map[int64]*total)

	var order []int64

	grand := decimal.Zero

	for _, l := range lines {
		t, ok := byProduct[l.ProductID]
		if !ok {
			t = &total{name: l.ProductName}
			byProduct[l.ProductID] = t
			order = append(order, l.ProductID)
		}

		t.units += l.Quantity

		if rev, err := decimal.NewFromString(l.Total); err == nil {
			t.revenue = t.revenue.Add(rev)
			grand = grand.Add(rev)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return byProduct[order[i]].revenue.GreaterThan(byProduct[order[j]].revenue)
	})

	var sb strings.Builder

	for _, id := range order {
		t := byProduct[id]
		name := t.name
		if name == "" {
			name = fmt.Sprintf("product #%d", id)
		}

		fmt.Fprintf(&sb, "* %s | %d units | %s\n", name, t.units, t.revenue.StringFixed(2))
	}

	fmt.Fprintf(&sb, "Total: %d sales | %s\n", len(lines), grand.StringFixed(2))

	return sb.String()
}

// DefaultRange is the current month up to today.
func DefaultRange(today time.Time) (time.Time, time.Time) {
	return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), today
}
