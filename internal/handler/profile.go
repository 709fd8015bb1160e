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

// ProfileHandler serves the authenticated user's profile and address book.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
}

func NewProfileHandler(profiles *repository.ProfileRepo) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

type profileReq struct {
	Phone            *string `json:"phone"`
	Image            *string `json:"image"`
	DefaultAddressID *string `json:"default_address_id"`
}

type addressReq struct {
	District string `json:"district"`
	City     string `json:"city"`
	PostCode string `json:"post_code"`
	Details  string `json:"details"`
}

func (h *ProfileHandler) Get(c echo.Context) error {
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
	return respond(c, http.StatusOK, profile)
}

// Update rewrites the profile fields.  A default address must belong to
// the caller's own profile.
func (h *ProfileHandler) Update(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
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

	if req.DefaultAddressID != nil {
		ok, err := h.Profiles.AddressBelongs(ctx, *req.DefaultAddressID, profile.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.BadRequest(apperr.CodeAddressDoesNotBelong, "Address does not belong to this profile.")
		}
	}

	if err := h.Profiles.Update(ctx, profile.ID, req.Phone, req.Image, req.DefaultAddressID); err != nil {
		return err
	}
	profile, err = h.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile)
}

func (h *ProfileHandler) AddAddress(c echo.Context) error {
	var req addressReq
	if err := c.Bind(&req); err != nil || req.City == "" || req.District == "" {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	userID, _ := c.Get(middleware.CtxUserID).(string)

	ctx, cancel := reqContext(c)
	defer cancel()

	profile, err := h.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	address, err := h.Profiles.AddAddress(ctx, model.Address{
		ProfileID: profile.ID,
		District:  req.District,
		City:      req.City,
		PostCode:  req.PostCode,
		Details:   req.Details,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, address)
}

func (h *ProfileHandler) UpdateAddress(c echo.Context) error {
	var req addressReq
	if err := c.Bind(&req); err != nil || req.City == "" || req.District == "" {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	userID, _ := c.Get(middleware.CtxUserID).(string)
	addressID := c.Param("id")

	ctx, cancel := reqContext(c)
	defer cancel()

	profile, err := h.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := h.Profiles.AddressBelongs(ctx, addressID, profile.ID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound(apperr.CodeAddressNotFound, "Address not found.")
	}

	address := model.Address{
		ID:        addressID,
		ProfileID: profile.ID,
		District:  req.District,
		City:      req.City,
		PostCode:  req.PostCode,
		Details:   req.Details,
	}
	if err := h.Profiles.UpdateAddress(ctx, address); err != nil {
		return err
	}
	return respond(c, http.StatusOK, address)
}

func (h *ProfileHandler) DeleteAddress(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)

	ctx, cancel := reqContext(c)
	defer cancel()

	profile, err := h.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	err = h.Profiles.DeleteAddress(ctx, c.Param("id"), profile.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeAddressNotFound, "Address not found.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Address deleted.")
}
