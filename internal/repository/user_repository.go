package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,created_at,updated_at"

// CreateVerified inserts a user from a verified signup together with its
// empty cart and profile, in one transaction.  The password is expected to
// arrive already hashed.
func (r *UserRepo) CreateVerified(ctx context.Context, name, email, passwordHash string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	id := uuid.NewString()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role) VALUES (?,?,?,?,?)",
		id, name, email, passwordHash, model.RoleCustomer); err != nil {
		if isDuplicateKey(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO carts (id, user_id) VALUES (?,?)", uuid.NewString(), id); err != nil {
		return model.User{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO profiles (id, user_id) VALUES (?,?)", uuid.NewString(), id); err != nil {
		return model.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// UpdatePassword stores a new password hash for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", passwordHash, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Same-hash updates also report zero rows on MySQL, but a reset
		// always stores a fresh bcrypt salt so that case cannot occur.
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}
