package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
)

// OrderHandler serves the authenticated user's orders.  Status changes are
// admin-only, enforced in the router.
type OrderHandler struct {
	Orders   *repository.OrderRepo
	Profiles *repository.ProfileRepo
}

func NewOrderHandler(orders *repository.OrderRepo, profiles *repository.ProfileRepo) *OrderHandler {
	return &OrderHandler{Orders: orders, Profiles: profiles}
}

func (h *OrderHandler) List(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)

	ctx, cancel := reqContext(c)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, orders)
}

// Create turns the cart into an order shipped to the caller's default
// address.  The address text is snapshotted into the order row so later
// address edits do not rewrite order history.  The cart is emptied in the
// same transaction; an empty cart is rejected before anything is written.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)

	ctx, cancel := reqContext(c)
	defer cancel()

	profile, err := h.Profiles.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeResourceNotFound, "Profile not found.")
	}
	if err != nil {
		return err
	}
	if profile.DefaultAddressID == nil {
		return apperr.NotFound(apperr.CodeAddressNotFound, "No default address set.")
	}
	address, err := h.Profiles.GetAddress(ctx, *profile.DefaultAddressID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeAddressNotFound, "No default address set.")
	}
	if err != nil {
		return err
	}

	order, err := h.Orders.CreateFromCart(ctx, userID, formatAddress(address))
	if errors.Is(err, repository.ErrCartEmpty) {
		return apperr.BadRequest(apperr.CodeCartEmpty, "Cart is empty.")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeResourceNotFound, "Cart not found.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, order)
}

// UpdateStatus moves an order along PREPARING -> SHIPPED -> DELIVERED.
// Any valid status is accepted; the progression is not enforced server
// side so support staff can correct mistakes.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	if !model.ValidOrderStatus(req.Status) {
		return apperr.BadRequest(apperr.CodeOrderInvalidStatus, "Invalid order status.")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Orders.UpdateStatus(ctx, c.Param("id"), req.Status)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeOrderNotFound, "Order not found.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Order status updated.")
}

// formatAddress flattens an address into the single shipping line stored
// on the order.
func formatAddress(a model.Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Details, a.District, a.City, a.PostCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
