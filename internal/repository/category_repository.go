package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id,name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// GetByID fetches a category by id.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (model.Category, error) {
	var cat model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name FROM categories WHERE id=? LIMIT 1", id).Scan(&cat.ID, &cat.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	return cat, err
}

// Create inserts a category and returns it.
func (r *CategoryRepo) Create(ctx context.Context, name string) (model.Category, error) {
	cat := model.Category{ID: uuid.NewString(), Name: name}
	_, err := r.DB.ExecContext(ctx, "INSERT INTO categories (id, name) VALUES (?,?)", cat.ID, cat.Name)
	if isDuplicateKey(err) {
		return model.Category{}, ErrNameExists
	}
	return cat, err
}

// Update renames a category.
func (r *CategoryRepo) Update(ctx context.Context, id, name string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE categories SET name=? WHERE id=?", name, id)
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

// Delete removes a category.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
