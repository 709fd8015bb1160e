package model

import "time"

// Brand is a row in the `brands` table.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is a row in the `categories` table.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a row in the `products` table.  Prices are stored in cents to
// avoid floating point drift.  Categories is populated from the
// product_categories join table when listing.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	PriceCents  uint32     `json:"price_cents"`
	Stock       uint32     `json:"stock"`
	BrandID     string     `json:"brand_id"`
	Image       *string    `json:"image,omitempty"`
	Categories  []Category `json:"categories,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
