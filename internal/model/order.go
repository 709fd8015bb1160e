package model

import "time"

// Order status values stored in orders.status.
const (
	OrderPreparing = "PREPARING"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
)

// ValidOrderStatus reports whether s is one of the known status values.
func ValidOrderStatus(s string) bool {
	return s == OrderPreparing || s == OrderShipped || s == OrderDelivered
}

// Order is a row in the `orders` table.  The shipping address is copied
// from the profile's default address at creation time so later address
// edits do not rewrite order history.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Address    string      `json:"address"`
	TotalCents uint32      `json:"total_cents"`
	Status     string      `json:"status"`
	Items      []OrderItem `json:"items,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OrderItem is a row in the `order_items` table.
type OrderItem struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	ProductID  string `json:"product_id"`
	Quantity   uint32 `json:"quantity"`
	PriceCents uint32 `json:"price_cents"`
}
