package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

const reviewColumns = "id,product_id,user_id,rating,comment,created_at"

// ListByProduct returns all reviews for a product, newest first.
func (r *ReviewRepo) ListByProduct(ctx context.Context, productID string) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE product_id=? ORDER BY created_at DESC", productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

// GetByID fetches one review.
func (r *ReviewRepo) GetByID(ctx context.Context, id string) (model.Review, error) {
	var rev model.Review
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE id=? LIMIT 1", id).
		Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Review{}, ErrNotFound
	}
	return rev, err
}

// Create inserts a review.  A second review for the same product by the
// same user violates the unique key and maps to ErrDuplicate.
func (r *ReviewRepo) Create(ctx context.Context, productID, userID string, rating uint8, comment *string) (model.Review, error) {
	rev := model.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (id, product_id, user_id, rating, comment) VALUES (?,?,?,?,?)",
		rev.ID, rev.ProductID, rev.UserID, rev.Rating, rev.Comment)
	if isDuplicateKey(err) {
		return model.Review{}, ErrDuplicate
	}
	if err != nil {
		return model.Review{}, err
	}
	return r.GetByID(ctx, rev.ID)
}

// Update rewrites a review's rating and comment.
func (r *ReviewRepo) Update(ctx context.Context, id string, rating uint8, comment *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET rating=?, comment=? WHERE id=?", rating, comment, id)
	return err
}

// Delete removes a review.
func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
