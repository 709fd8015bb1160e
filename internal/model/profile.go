package model

// Profile is a row in the `profiles` table.  Created empty alongside the
// user; DefaultAddressID must reference one of the profile's own addresses.
type Profile struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Phone            *string   `json:"phone,omitempty"`
	Image            *string   `json:"image,omitempty"`
	DefaultAddressID *string   `json:"default_address_id,omitempty"`
	Addresses        []Address `json:"addresses,omitempty"`
}

// Address is a row in the `addresses` table.
type Address struct {
	ID        string `json:"id"`
	ProfileID string `json:"profile_id"`
	District  string `json:"district"`
	City      string `json:"city"`
	PostCode  string `json:"post_code"`
	Details   string `json:"details"`
}
