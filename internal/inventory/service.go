package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory/query"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=inventory
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id int64) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	ListProducts(ctx context.Context, pred query.Predicate) ([]*Product, error)

	ListSales(ctx context.Context, pred query.Predicate) ([]*Sale, error)

	CreateProducts(ctx context.Context, ps []*Product) error
	BeginSale(ctx context.Context) (SaleTx, error)
}

// SaleTx scopes the reads and writes of a single sale to one database transaction.
type SaleTx interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CreateSale(ctx context.Context, sale *Sale) error
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the source of "today" used by expiry classification.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Today returns the current calendar day.
func (s *Service) Today() time.Time {
	return truncateDay(s.now())
}

func (s *Service) AddProduct(ctx context.Context, in ProductInput) (int64, error) {
	p, err := parseProduct(in)
	if err != nil {
		return 0, err
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return 0, err
	}

	return p.ID, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) error {
	p, err := parseProduct(in)
	if err != nil {
		return err
	}

	p.ID = id
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Entity: "product", ID: id}
		}

		return err
	}

	return nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", ID: id}
		}

		return nil, err
	}

	return p, nil
}

// RecordSale inserts a sale and deducts its quantity from the product in one
// transaction. Nothing is written when any check fails.
func (s *Service) RecordSale(ctx context.Context, productID int64, quantityText, dateText string) (*Sale, error) {
	stx, err := s.repo.BeginSale(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin sale: %w", err)
	}
	defer stx.Rollback()

	product, err := stx.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Entity: "product", ID: productID}
		}

		return nil, fmt.Errorf("get product: %w", err)
	}

	quantity, err := parseSaleQuantity(quantityText)
	if err != nil {
		return nil, err
	}

	date, err := parseDate("sale_date", dateText)
	if err != nil {
		return nil, err
	}

	insufficient := &InsufficientStockError{
		ProductID: productID,
		Requested: quantity,
		Available: product.QuantityRemaining,
	}

	if quantity > product.QuantityRemaining {
		return nil, insufficient
	}

	sale := &Sale{
		ProductID:    productID,
		QuantitySold: quantity,
		SaleDate:     date.Format(time.DateOnly),
	}
	if err := stx.CreateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}

	if err := stx.DecrementStock(ctx, productID, quantity); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, insufficient
		}

		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	if err := stx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}

	return sale, nil
}

func (s *Service) ListProducts(ctx context.Context, filter ListFilter) ([]ProductRow, error) {
	pred := query.Products(query.Criteria{
		PaymentMode:   filter.PaymentMode,
		ExpiringSoon:  filter.ExpiringSoon,
		ExpiryWindow:  ExpiringSoonDays,
		LowStock:      filter.LowStock,
		LowStockBelow: LowStockThreshold,
		SearchText:    filter.SearchText,
	}, s.Today())

	products, err := s.repo.ListProducts(ctx, pred)
	if err != nil {
		return nil, err
	}

	return s.rows(products), nil
}

// ExpiringWithin returns products whose expiry date falls in [today, today+days].
func (s *Service) ExpiringWithin(ctx context.Context, days int) ([]*Product, error) {
	if days < 0 {
		return nil, &ValidationError{Field: "days", Reason: ReasonInvalidInteger}
	}

	pred := query.Products(query.Criteria{
		ExpiringSoon: true,
		ExpiryWindow: days,
	}, s.Today())

	return s.repo.ListProducts(ctx, pred)
}

// LowStockProducts returns every product under the low stock threshold. Each row
// is flagged critical by the same predicate.
func (s *Service) LowStockProducts(ctx context.Context) ([]ProductRow, error) {
	pred := query.Products(query.Criteria{
		LowStock:      true,
		LowStockBelow: LowStockThreshold,
	}, s.Today())

	products, err := s.repo.ListProducts(ctx, pred)
	if err != nil {
		return nil, err
	}

	return s.rows(products), nil
}

func (s *Service) ListSales(ctx context.Context, filter SaleFilter) ([]*Sale, error) {
	return s.repo.ListSales(ctx, query.Sales(query.SaleCriteria{
		ProductID: filter.ProductID,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	}))
}

// ImportProducts validates every input and creates them all in one batch. When
// any row is invalid nothing is written and an *ImportError lists the failures.
func (s *Service) ImportProducts(ctx context.Context, inputs []ProductInput) ([]int64, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	products := make([]*Product, 0, len(inputs))

	var rowErrs []RowError

	for i, in := range inputs {
		p, err := parseProduct(in)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Err: err})
			continue
		}

		products = append(products, p)
	}

	if len(rowErrs) > 0 {
		return nil, &ImportError{Rows: rowErrs}
	}

	if err := s.repo.CreateProducts(ctx, products); err != nil {
		return nil, fmt.Errorf("create products: %w", err)
	}

	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	return ids, nil
}

func (s *Service) rows(products []*Product) []ProductRow {
	today := s.Today()

	rows := make([]ProductRow, len(products))
	for i, p := range products {
		rows[i] = ProductRow{
			Product:        p,
			IsLowStock:     p.IsLowStock(),
			IsExpiringSoon: p.IsExpiringSoon(today),
		}
	}

	return rows
}
