package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

// GetByUserID fetches the user's cart with its items and their products.
func (r *CartRepo) GetByUserID(ctx context.Context, userID string) (model.Cart, error) {
	var cart model.Cart
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,total_cents FROM carts WHERE user_id=? LIMIT 1", userID).
		Scan(&cart.ID, &cart.UserID, &cart.TotalCents)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Cart{}, ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.price_cents,
		        p.id, p.name, p.description, p.price_cents, p.stock, p.brand_id, p.image, p.created_at
		   FROM cart_items ci JOIN products p ON p.id = ci.product_id
		  WHERE ci.cart_id=?`, cart.ID)
	if err != nil {
		return model.Cart{}, err
	}
	defer rows.Close()

	cart.Items = []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		var p model.Product
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.PriceCents,
			&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.BrandID, &p.Image, &p.CreatedAt); err != nil {
			return model.Cart{}, err
		}
		item.Product = &p
		cart.Items = append(cart.Items, item)
	}
	return cart, rows.Err()
}

// AddItem upserts a cart item: a repeated add increments the quantity, the
// captured price stays from the first add.
func (r *CartRepo) AddItem(ctx context.Context, cartID, productID string, quantity, priceCents uint32) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO cart_items (id, cart_id, product_id, quantity, price_cents)
		 VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		uuid.NewString(), cartID, productID, quantity, priceCents)
	return err
}

// UpdateItemQuantity sets an item's quantity.
func (r *CartRepo) UpdateItemQuantity(ctx context.Context, cartID, productID string, quantity uint32) error {
	var exists int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM cart_items WHERE cart_id=? AND product_id=? LIMIT 1",
		cartID, productID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE cart_items SET quantity=? WHERE cart_id=? AND product_id=?",
		quantity, cartID, productID)
	return err
}

// RemoveItem deletes an item from the cart.
func (r *CartRepo) RemoveItem(ctx context.Context, cartID, productID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id=? AND product_id=?", cartID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecomputeTotal rewrites the cart's cached total from its items.  Called
// after every item mutation.
func (r *CartRepo) RecomputeTotal(ctx context.Context, cartID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE carts SET total_cents = (
		    SELECT COALESCE(SUM(quantity * price_cents), 0) FROM cart_items WHERE cart_id=?
		 ) WHERE id=?`, cartID, cartID)
	return err
}
