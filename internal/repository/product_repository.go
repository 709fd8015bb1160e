package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = "id,name,description,price_cents,stock,brand_id,image,created_at"

// List returns all products, newest first, with their categories attached.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	index := map[string]int{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	// Second query instead of a row-multiplying join keeps scanning simple.
	catRows, err := r.DB.QueryContext(ctx,
		`SELECT pc.product_id, c.id, c.name
		   FROM product_categories pc JOIN categories c ON c.id = pc.category_id`)
	if err != nil {
		return nil, err
	}
	defer catRows.Close()
	for catRows.Next() {
		var productID string
		var cat model.Category
		if err := catRows.Scan(&productID, &cat.ID, &cat.Name); err != nil {
			return nil, err
		}
		if i, ok := index[productID]; ok {
			products[i].Categories = append(products[i].Categories, cat)
		}
	}
	return products, catRows.Err()
}

// GetByID fetches one product with its categories.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}

	catRows, err := r.DB.QueryContext(ctx,
		`SELECT c.id, c.name FROM product_categories pc
		   JOIN categories c ON c.id = pc.category_id WHERE pc.product_id=?`, id)
	if err != nil {
		return model.Product{}, err
	}
	defer catRows.Close()
	for catRows.Next() {
		var cat model.Category
		if err := catRows.Scan(&cat.ID, &cat.Name); err != nil {
			return model.Product{}, err
		}
		p.Categories = append(p.Categories, cat)
	}
	return p, catRows.Err()
}

// Create inserts a product and its category links.
func (r *ProductRepo) Create(ctx context.Context, p model.Product, categoryIDs []string) (model.Product, error) {
	p.ID = uuid.NewString()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price_cents, stock, brand_id, image)
		 VALUES (?,?,?,?,?,?,?)`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Stock, p.BrandID, p.Image); err != nil {
		return model.Product{}, err
	}
	for _, catID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO product_categories (product_id, category_id) VALUES (?,?)",
			p.ID, catID); err != nil {
			return model.Product{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, p.ID)
}

// Update replaces a product's fields and category links.
func (r *ProductRepo) Update(ctx context.Context, p model.Product, categoryIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE products SET name=?, description=?, price_cents=?, stock=?, brand_id=?, image=?
		  WHERE id=?`,
		p.Name, p.Description, p.PriceCents, p.Stock, p.BrandID, p.Image, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM products WHERE id=?", p.ID).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
	}
	if categoryIDs != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM product_categories WHERE product_id=?", p.ID); err != nil {
			return err
		}
		for _, catID := range categoryIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO product_categories (product_id, category_id) VALUES (?,?)",
				p.ID, catID); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Delete removes a product; category links cascade.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanProduct(s scanner) (model.Product, error) {
	var p model.Product
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock,
		&p.BrandID, &p.Image, &p.CreatedAt)
	return p, err
}
