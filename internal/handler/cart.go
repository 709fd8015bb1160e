package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
)

// CartHandler serves the authenticated user's cart.  Every mutation
// recomputes the cached total afterwards.
type CartHandler struct {
	Carts    *repository.CartRepo
	Products *repository.ProductRepo
}

func NewCartHandler(carts *repository.CartRepo, products *repository.ProductRepo) *CartHandler {
	return &CartHandler{Carts: carts, Products: products}
}

type cartItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}

func (h *CartHandler) Get(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)

	ctx, cancel := reqContext(c)
	defer cancel()

	cart, err := h.Carts.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeResourceNotFound, "Cart not found.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, cart)
}

// AddItem puts a product in the cart, capturing its current price.  Adding
// a product already in the cart bumps the quantity.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req cartItemReq
	if err := c.Bind(&req); err != nil || req.ProductID == "" || req.Quantity == 0 {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	userID, _ := c.Get(middleware.CtxUserID).(string)

	ctx, cancel := reqContext(c)
	defer cancel()

	product, err := h.Products.GetByID(ctx, req.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeProductNotFound, "Product not found.")
	}
	if err != nil {
		return err
	}

	cart, err := h.Carts.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if err := h.Carts.AddItem(ctx, cart.ID, product.ID, req.Quantity, product.PriceCents); err != nil {
		return err
	}
	if err := h.Carts.RecomputeTotal(ctx, cart.ID); err != nil {
		return err
	}

	cart, err = h.Carts.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	var req struct {
		Quantity uint32 `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity == 0 {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	userID, _ := c.Get(middleware.CtxUserID).(string)
	productID := c.Param("productId")

	ctx, cancel := reqContext(c)
	defer cancel()

	cart, err := h.Carts.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	err = h.Carts.UpdateItemQuantity(ctx, cart.ID, productID, req.Quantity)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeCartItemNotFound, "Item is not in the cart.")
	}
	if err != nil {
		return err
	}
	if err := h.Carts.RecomputeTotal(ctx, cart.ID); err != nil {
		return err
	}

	cart, err = h.Carts.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	productID := c.Param("productId")

	ctx, cancel := reqContext(c)
	defer cancel()

	cart, err := h.Carts.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	err = h.Carts.RemoveItem(ctx, cart.ID, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeCartItemNotFound, "Item is not in the cart.")
	}
	if err != nil {
		return err
	}
	if err := h.Carts.RecomputeTotal(ctx, cart.ID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Item removed from cart.")
}
