package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
)

// ReviewHandler serves product reviews.  Listing is public; writing needs
// a logged-in user, and edits are restricted to the author (admins may
// delete anything).
type ReviewHandler struct {
	Reviews  *repository.ReviewRepo
	Products *repository.ProductRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, products *repository.ProductRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Products: products}
}

type reviewReq struct {
	Rating  uint8   `json:"rating"`
	Comment *string `json:"comment"`
}

func validRating(r uint8) bool { return r >= 1 && r <= 5 }

func (h *ReviewHandler) ListByProduct(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	reviews, err := h.Reviews.ListByProduct(ctx, c.Param("productId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, reviews)
}

func (h *ReviewHandler) Create(c echo.Context) error {
	var req reviewReq
	if err := c.Bind(&req); err != nil || !validRating(req.Rating) {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	userID, _ := c.Get(middleware.CtxUserID).(string)
	productID := c.Param("productId")

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Products.GetByID(ctx, productID); errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeProductNotFound, "Product not found.")
	} else if err != nil {
		return err
	}

	review, err := h.Reviews.Create(ctx, productID, userID, req.Rating, req.Comment)
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.BadRequest(apperr.CodeBadRequest, "You have already reviewed this product.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, review)
}

func (h *ReviewHandler) Update(c echo.Context) error {
	var req reviewReq
	if err := c.Bind(&req); err != nil || !validRating(req.Rating) {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	review, err := h.ownedReview(c)
	if err != nil {
		return err
	}
	if err := h.Reviews.Update(ctx, review.ID, req.Rating, req.Comment); err != nil {
		return err
	}
	review.Rating = req.Rating
	review.Comment = req.Comment
	return respond(c, http.StatusOK, review)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	review, err := h.ownedReview(c)
	if err != nil {
		return err
	}
	if err := h.Reviews.Delete(ctx, review.ID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Review deleted.")
}

// ownedReview loads the review and checks the caller may modify it.
func (h *ReviewHandler) ownedReview(c echo.Context) (model.Review, error) {
	ctx, cancel := reqContext(c)
	defer cancel()

	review, err := h.Reviews.GetByID(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return model.Review{}, apperr.NotFound(apperr.CodeReviewNotFound, "Review not found.")
	}
	if err != nil {
		return model.Review{}, err
	}

	userID, _ := c.Get(middleware.CtxUserID).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	if review.UserID != userID && role != model.RoleAdmin {
		return model.Review{}, apperr.Forbidden("You can only modify your own reviews.")
	}
	return review, nil
}
