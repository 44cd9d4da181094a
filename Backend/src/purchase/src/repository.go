package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrProductNotFound = errors.New("product not found")

const (
	DefaultProductSKU = "laptop-gamer-amd"
	defaultImageURL   = "https://www.amd.com/system/files/2020-05/461767_MSI_Bravo_17_AMD_laptop_1260x709_0.png"
)

type CatalogRepository struct {
	DB *sql.DB
}

func NewCatalogRepository(dbPath string) (*CatalogRepository, error) {
	// busy_timeout evita "database is locked" con WAL
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(2 * time.Minute)
	db.SetMaxOpenConns(1)

	r := &CatalogRepository{DB: db}
	if err := r.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return r, nil
}

func (r *CatalogRepository) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS products(
  sku        TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  unit_price INTEGER NOT NULL CHECK (unit_price >= 0),
  image_url  TEXT NOT NULL DEFAULT '',
  currency   TEXT NOT NULL DEFAULT 'CLP',
  updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
);
`
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *CatalogRepository) Close() error { return r.DB.Close() }

// Seed carga el producto del desafío si todavía no existe.
func (r *CatalogRepository) Seed(ctx context.Context) error {
	return r.Upsert(ctx, Product{
		SKU:       DefaultProductSKU,
		Name:      "Laptop Gamer AMD",
		UnitPrice: 400000,
		ImageURL:  defaultImageURL,
		Currency:  "CLP",
	}, false)
}

// Upsert inserts p. With overwrite false an existing row is left untouched.
func (r *CatalogRepository) Upsert(ctx context.Context, p Product, overwrite bool) error {
	if p.UnitPrice < 0 {
		return fmt.Errorf("product %s: negative unit price %d", p.SKU, p.UnitPrice)
	}
	stmt := `
INSERT INTO products(sku,name,unit_price,image_url,currency,updated_at)
VALUES(?,?,?,?,?,strftime('%s','now'))
ON CONFLICT(sku) DO NOTHING;
`
	if overwrite {
		stmt = `
INSERT INTO products(sku,name,unit_price,image_url,currency,updated_at)
VALUES(?,?,?,?,?,strftime('%s','now'))
ON CONFLICT(sku) DO UPDATE SET
  name=excluded.name,
  unit_price=excluded.unit_price,
  image_url=excluded.image_url,
  currency=excluded.currency,
  updated_at=excluded.updated_at;
`
	}
	_, err := r.DB.ExecContext(ctx, stmt, p.SKU, p.Name, p.UnitPrice, p.ImageURL, p.Currency)
	return err
}

func (r *CatalogRepository) GetProduct(ctx context.Context, sku string) (Product, error) {
	var p Product
	err := r.DB.QueryRowContext(ctx,
		`SELECT sku,name,unit_price,image_url,currency FROM products WHERE sku=?`, sku).
		Scan(&p.SKU, &p.Name, &p.UnitPrice, &p.ImageURL, &p.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, sku)
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT sku,name,unit_price,image_url,currency FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.SKU, &p.Name, &p.UnitPrice, &p.ImageURL, &p.Currency); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
