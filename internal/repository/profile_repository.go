package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// GetByUserID fetches the user's profile with all addresses.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (model.Profile, error) {
	var p model.Profile
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,phone,image,default_address_id FROM profiles WHERE user_id=? LIMIT 1",
		userID).Scan(&p.ID, &p.UserID, &p.Phone, &p.Image, &p.DefaultAddressID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,profile_id,district,city,post_code,details FROM addresses WHERE profile_id=?", p.ID)
	if err != nil {
		return model.Profile{}, err
	}
	defer rows.Close()

	p.Addresses = []model.Address{}
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.District, &a.City, &a.PostCode, &a.Details); err != nil {
			return model.Profile{}, err
		}
		p.Addresses = append(p.Addresses, a)
	}
	return p, rows.Err()
}

// Update rewrites the mutable profile fields.  Nil pointers clear the
// corresponding column.
func (r *ProfileRepo) Update(ctx context.Context, profileID string, phone, image, defaultAddressID *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET phone=?, image=?, default_address_id=? WHERE id=?",
		phone, image, defaultAddressID, profileID)
	return err
}

// AddressBelongs reports whether the address exists and is attached to the
// given profile.
func (r *ProfileRepo) AddressBelongs(ctx context.Context, addressID, profileID string) (bool, error) {
	var exists int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM addresses WHERE id=? AND profile_id=? LIMIT 1",
		addressID, profileID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// GetAddress fetches one address.
func (r *ProfileRepo) GetAddress(ctx context.Context, addressID string) (model.Address, error) {
	var a model.Address
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,profile_id,district,city,post_code,details FROM addresses WHERE id=? LIMIT 1",
		addressID).Scan(&a.ID, &a.ProfileID, &a.District, &a.City, &a.PostCode, &a.Details)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Address{}, ErrNotFound
	}
	return a, err
}

// AddAddress inserts an address for the profile.
func (r *ProfileRepo) AddAddress(ctx context.Context, a model.Address) (model.Address, error) {
	a.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO addresses (id, profile_id, district, city, post_code, details) VALUES (?,?,?,?,?,?)",
		a.ID, a.ProfileID, a.District, a.City, a.PostCode, a.Details)
	return a, err
}

// UpdateAddress rewrites an address.
func (r *ProfileRepo) UpdateAddress(ctx context.Context, a model.Address) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE addresses SET district=?, city=?, post_code=?, details=? WHERE id=?",
		a.District, a.City, a.PostCode, a.Details, a.ID)
	return err
}

// DeleteAddress removes an address and clears it as default if needed.
func (r *ProfileRepo) DeleteAddress(ctx context.Context, addressID, profileID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE profiles SET default_address_id=NULL WHERE id=? AND default_address_id=?",
		profileID, addressID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM addresses WHERE id=? AND profile_id=?", addressID, profileID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
