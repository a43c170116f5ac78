package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listProducts = `
SELECT id, name, image_url, price, created_at
FROM products
ORDER BY id DESC
`

// ListProducts returns the catalog, most recently created first.
func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.ImageUrl, &p.Price, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const getProduct = `
SELECT id, name, image_url, price, created_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := q.db.QueryRow(ctx, getProduct, id).
		Scan(&p.ID, &p.Name, &p.ImageUrl, &p.Price, &p.CreatedAt)
	return p, err
}

const createProduct = `
INSERT INTO products (name, image_url, price)
VALUES ($1, $2, $3)
RETURNING id, name, image_url, price, created_at
`

type CreateProductParams struct {
	Name     string
	ImageUrl pgtype.Text
	Price    int64
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	var p Product
	err := q.db.QueryRow(ctx, createProduct, arg.Name, arg.ImageUrl, arg.Price).
		Scan(&p.ID, &p.Name, &p.ImageUrl, &p.Price, &p.CreatedAt)
	return p, err
}

const updateProduct = `
UPDATE products
SET name      = COALESCE($1, name),
    image_url = COALESCE($2, image_url),
    price     = COALESCE($3, price)
WHERE id = $4
`

type UpdateProductParams struct {
	Name     pgtype.Text
	ImageUrl pgtype.Text
	Price    pgtype.Int8
	ID       int64
}

// UpdateProduct applies the fields that are set and leaves the rest alone.
// Returns the number of rows touched (0 when the id does not exist).
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateProduct, arg.Name, arg.ImageUrl, arg.Price, arg.ID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteProduct = `
DELETE FROM products
WHERE id = $1
`

// DeleteProduct removes a product from the catalog. Order item snapshots are
// untouched; they have no FK to products.
func (q *Queries) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
