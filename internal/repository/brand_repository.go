package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

type BrandRepo struct{ DB *sql.DB }

func NewBrandRepo(db *sql.DB) *BrandRepo { return &BrandRepo{DB: db} }

// List returns all brands ordered by name.
func (r *BrandRepo) List(ctx context.Context) ([]model.Brand, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id,name FROM brands ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := []model.Brand{}
	for rows.Next() {
		var b model.Brand
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// GetByID fetches a brand by id.
func (r *BrandRepo) GetByID(ctx context.Context, id string) (model.Brand, error) {
	var b model.Brand
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name FROM brands WHERE id=? LIMIT 1", id).Scan(&b.ID, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Brand{}, ErrNotFound
	}
	return b, err
}

// Create inserts a brand and returns it.
func (r *BrandRepo) Create(ctx context.Context, name string) (model.Brand, error) {
	b := model.Brand{ID: uuid.NewString(), Name: name}
	_, err := r.DB.ExecContext(ctx, "INSERT INTO brands (id, name) VALUES (?,?)", b.ID, b.Name)
	if isDuplicateKey(err) {
		return model.Brand{}, ErrNameExists
	}
	return b, err
}

// Update renames a brand.
func (r *BrandRepo) Update(ctx context.Context, id, name string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE brands SET name=? WHERE id=?", name, id)
	if isDuplicateKey(err) {
		return ErrNameExists
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a brand.
func (r *BrandRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM brands WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
