package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
)

// WishlistHandler serves the authenticated user's wishlist.
type WishlistHandler struct {
	Wishlist *repository.WishlistRepo
	Products *repository.ProductRepo
}

func NewWishlistHandler(wishlist *repository.WishlistRepo, products *repository.ProductRepo) *WishlistHandler {
	return &WishlistHandler{Wishlist: wishlist, Products: products}
}

func (h *WishlistHandler) List(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)

	ctx, cancel := reqContext(c)
	defer cancel()

	products, err := h.Wishlist.List(ctx, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, products)
}

func (h *WishlistHandler) Add(c echo.Context) error {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	userID, _ := c.Get(middleware.CtxUserID).(string)

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Products.GetByID(ctx, req.ProductID); errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeProductNotFound, "Product not found.")
	} else if err != nil {
		return err
	}
	if err := h.Wishlist.Add(ctx, userID, req.ProductID); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Product added to wishlist.")
}

func (h *WishlistHandler) Remove(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)

	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Wishlist.Remove(ctx, userID, c.Param("productId"))
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeWishlistNotFound, "Product is not on the wishlist.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Product removed from wishlist.")
}
