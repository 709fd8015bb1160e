package model

import "time"

// Role values stored in users.role.  ADMIN unlocks catalog management and
// order status updates; everyone else registers as CUSTOMER.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User represents an application user record as stored in the `users`
// table.  A row only ever exists for verified signups; unverified
// registrations live in the session cache until their email is confirmed.
//
// Fields:
//
//	ID           – primary key (uuid).
//	Name         – display name supplied at registration.
//	Email        – unique, normalized (lower-case) email address.
//	PasswordHash – bcrypt hashed password.  Never the plaintext.
//	Role         – CUSTOMER or ADMIN.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
