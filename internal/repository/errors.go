// Package repository implements data access over MySQL.  Sentinel errors
// let handlers map failures onto the API error taxonomy without inspecting
// driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting a user with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrNameExists is returned when inserting a brand/category whose unique
// name is taken.
var ErrNameExists = errors.New("name already exists")

// ErrDuplicate is returned for other unique-key collisions (e.g. a second
// review for the same product by the same user).
var ErrDuplicate = errors.New("duplicate entry")

// ErrCartEmpty is returned when creating an order from a cart with no items.
var ErrCartEmpty = errors.New("cart is empty")

// isDuplicateKey reports whether err is a MySQL duplicate-key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "1062")
}
