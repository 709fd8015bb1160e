package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// ListByUser returns the user's orders with items, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,user_id,address,total_cents,status,created_at
		   FROM orders WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []model.Order{}
	index := map[string]int{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Address, &o.TotalCents, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Items = []model.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.DB.QueryContext(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_cents
		   FROM order_items oi JOIN orders o ON o.id = oi.order_id
		  WHERE o.user_id=?`, userID)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var item model.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			return nil, err
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}

// CreateFromCart turns the user's cart into an order shipped to the given
// address, then empties the cart.  All inside one transaction so a failure
// leaves both cart and order untouched.
func (r *OrderRepo) CreateFromCart(ctx context.Context, userID, address string) (model.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var cartID string
	var totalCents uint32
	err = tx.QueryRowContext(ctx,
		"SELECT id,total_cents FROM carts WHERE user_id=? LIMIT 1", userID).
		Scan(&cartID, &totalCents)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}

	itemRows, err := tx.QueryContext(ctx,
		"SELECT product_id,quantity,price_cents FROM cart_items WHERE cart_id=?", cartID)
	if err != nil {
		return model.Order{}, err
	}
	items := []model.OrderItem{}
	for itemRows.Next() {
		var item model.OrderItem
		if err := itemRows.Scan(&item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			itemRows.Close()
			return model.Order{}, err
		}
		items = append(items, item)
	}
	if err := itemRows.Err(); err != nil {
		itemRows.Close()
		return model.Order{}, err
	}
	itemRows.Close()

	if len(items) == 0 {
		return model.Order{}, ErrCartEmpty
	}

	order := model.Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		Address:    address,
		TotalCents: totalCents,
		Status:     model.OrderPreparing,
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO orders (id, user_id, address, total_cents, status) VALUES (?,?,?,?,?)",
		order.ID, order.UserID, order.Address, order.TotalCents, order.Status); err != nil {
		return model.Order{}, err
	}
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].OrderID = order.ID
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (id, order_id, product_id, quantity, price_cents) VALUES (?,?,?,?,?)",
			items[i].ID, order.ID, items[i].ProductID, items[i].Quantity, items[i].PriceCents); err != nil {
			return model.Order{}, err
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id=?", cartID); err != nil {
		return model.Order{}, err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE carts SET total_cents=0 WHERE id=?", cartID); err != nil {
		return model.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	order.Items = items
	return order, nil
}

// UpdateStatus moves an order to a new status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status=? WHERE id=?", status, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM orders WHERE id=?", orderID).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
	}
	return nil
}
