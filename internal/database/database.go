package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// sqliteUnicode is the SQLite driver with LOWER folding every script, not just
// ASCII, so product search matches accented names regardless of case.
const sqliteUnicode = "sqlite3_unicode"

func init() {
	sql.Register(sqliteUnicode, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

// driverName maps a configured driver onto the name registered with database/sql.
func driverName(driver string) string {
	if driver == DriverSQLite {
		return sqliteUnicode
	}

	return driver
}

func New(driver, connStr string) (*sql.DB, error) {
	db, err := sql.Open(driverName(driver), connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	switch driver {
	case DriverSQLite:
		// One connection keeps every write on a single owner.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return db, nil
}

var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			quantity_remaining INTEGER NOT NULL CHECK (quantity_remaining >= 0),
			quantity_to_expire INTEGER NOT NULL DEFAULT 0,
			price TEXT NOT NULL,
			expiry_date TEXT NOT NULL,
			mode_of_payment TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER NOT NULL REFERENCES products(id),
			quantity_sold INTEGER NOT NULL CHECK (quantity_sold > 0),
			sale_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_product_id ON sales(product_id)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			quantity_remaining INTEGER NOT NULL CHECK (quantity_remaining >= 0),
			quantity_to_expire INTEGER NOT NULL DEFAULT 0,
			price NUMERIC NOT NULL,
			expiry_date TEXT NOT NULL,
			mode_of_payment TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id),
			quantity_sold INTEGER NOT NULL CHECK (quantity_sold > 0),
			sale_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_product_id ON sales(product_id)`,
	},
}

// Migrate creates the products and sales tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts, ok := schemas[driver]
	if !ok {
		return fmt.Errorf("unsupported driver: %s", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	return nil
}
