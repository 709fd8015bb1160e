package model

// Cart is a row in the `carts` table.  One cart per user, created together
// with the user at verification time.  TotalCents is recomputed after every
// item mutation.
type Cart struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	TotalCents uint32     `json:"total_cents"`
	Items      []CartItem `json:"items,omitempty"`
}

// CartItem is a row in the `cart_items` table.  PriceCents is the product
// price captured when the item was first added.
type CartItem struct {
	ID         string   `json:"id"`
	CartID     string   `json:"cart_id"`
	ProductID  string   `json:"product_id"`
	Quantity   uint32   `json:"quantity"`
	PriceCents uint32   `json:"price_cents"`
	Product    *Product `json:"product,omitempty"`
}
