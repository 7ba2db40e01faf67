package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory/query"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanProduct reads a product row in selectProductColumns order.
func scanProduct(s scanner) (*inventory.Product, error) {
	var p inventory.Product

	var category sql.NullString

	if err := s.Scan(
		&p.ID, &p.Name, &category, &p.QuantityRemaining, &p.QuantityToExpire,
		&p.Price, &p.ExpiryDate, &p.ModeOfPayment,
	); err != nil {
		return nil, err
	}

	p.Category = category.String

	return &p, nil
}

const selectProductColumns = `
	id, name, category, quantity_remaining, quantity_to_expire,
	price, expiry_date, mode_of_payment
`

const insertProduct = `
	INSERT INTO products (name, category, quantity_remaining, quantity_to_expire, price, expiry_date, mode_of_payment)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id
`

func createProduct(ctx context.Context, q querier, p *inventory.Product) error {
	err := q.QueryRowContext(ctx, insertProduct,
		p.Name,
		p.Category,
		p.QuantityRemaining,
		p.QuantityToExpire,
		p.Price.String(),
		p.ExpiryDate,
		p.ModeOfPayment,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}

	return nil
}

func getProduct(ctx context.Context, q querier, id int64) (*inventory.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *inventory.Product) error {
	return createProduct(ctx, s.db, p)
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*inventory.Product, error) {
	return getProduct(ctx, s.db, id)
}

// UpdateProduct overwrites every field of the product in a single statement.
func (s *Store) UpdateProduct(ctx context.Context, p *inventory.Product) error {
	query := `
		UPDATE products
		SET name = $1, category = $2, quantity_remaining = $3, quantity_to_expire = $4,
			price = $5, expiry_date = $6, mode_of_payment = $7
		WHERE id = $8
	`

	res, err := s.db.ExecContext(ctx, query,
		p.Name,
		p.Category,
		p.QuantityRemaining,
		p.QuantityToExpire,
		p.Price.String(),
		p.ExpiryDate,
		p.ModeOfPayment,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	if n == 0 {
		return inventory.ErrNotFound
	}

	return nil
}

// ListProducts returns products matching the predicate in insertion order.
func (s *Store) ListProducts(ctx context.Context, pred query.Predicate) ([]*inventory.Product, error) {
	q := `SELECT ` + selectProductColumns + ` FROM products` + pred.SQL() + ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, q, pred.Args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*inventory.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

// ListSales returns sales matching the predicate in insertion order.
func (s *Store) ListSales(ctx context.Context, pred query.Predicate) ([]*inventory.Sale, error) {
	q := `SELECT id, product_id, quantity_sold, sale_date FROM sales` + pred.SQL() + ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, q, pred.Args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []*inventory.Sale

	for rows.Next() {
		var sale inventory.Sale
		if err := rows.Scan(&sale.ID, &sale.ProductID, &sale.QuantitySold, &sale.SaleDate); err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}

		sales = append(sales, &sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale rows: %w", err)
	}

	return sales, nil
}

// CreateProducts inserts all products in one transaction.
func (s *Store) CreateProducts(ctx context.Context, ps []*inventory.Product) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, p := range ps {
		if err := createProduct(ctx, dbTx, p); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

type saleTx struct {
	tx *sql.Tx
}

func (s *Store) BeginSale(ctx context.Context) (inventory.SaleTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning sale tx: %w", err)
	}

	return &saleTx{tx: dbTx}, nil
}

func (stx *saleTx) Commit() error   { return stx.tx.Commit() }
func (stx *saleTx) Rollback() error { return stx.tx.Rollback() }

func (stx *saleTx) GetProduct(ctx context.Context, id int64) (*inventory.Product, error) {
	return getProduct(ctx, stx.tx, id)
}

func (stx *saleTx) CreateSale(ctx context.Context, sale *inventory.Sale) error {
	query := `
		INSERT INTO sales (product_id, quantity_sold, sale_date)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := stx.tx.QueryRowContext(ctx, query,
		sale.ProductID,
		sale.QuantitySold,
		sale.SaleDate,
	).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	return nil
}

// DecrementStock lowers the remaining quantity only while enough stock is left,
// so the quantity can never go negative even if it changed since it was read.
func (stx *saleTx) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	query := `
		UPDATE products
		SET quantity_remaining = quantity_remaining - $1
		WHERE id = $2 AND quantity_remaining >= $3
	`

	res, err := stx.tx.ExecContext(ctx, query, quantity, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrementing stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrementing stock: %w", err)
	}

	if n == 0 {
		return inventory.ErrInsufficientStock
	}

	return nil
}
