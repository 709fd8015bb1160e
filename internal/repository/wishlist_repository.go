package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

type WishlistRepo struct{ DB *sql.DB }

func NewWishlistRepo(db *sql.DB) *WishlistRepo { return &WishlistRepo{DB: db} }

// List returns the products on the user's wishlist, most recently added
// first.
func (r *WishlistRepo) List(ctx context.Context, userID string) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.name, p.description, p.price_cents, p.stock, p.brand_id, p.image, p.created_at
		   FROM wishlist_items w JOIN products p ON p.id = w.product_id
		  WHERE w.user_id=? ORDER BY w.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Add puts a product on the wishlist.  Re-adding is a no-op.
func (r *WishlistRepo) Add(ctx context.Context, userID, productID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO wishlist_items (user_id, product_id) VALUES (?,?)",
		userID, productID)
	return err
}

// Remove takes a product off the wishlist.
func (r *WishlistRepo) Remove(ctx context.Context, userID, productID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM wishlist_items WHERE user_id=? AND product_id=?", userID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
