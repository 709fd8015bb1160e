package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/utils"
)

// UserHandler serves account operations for an already authenticated user.
type UserHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewUserHandler(cfg config.Config, users UserStore) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users}
}

// ChangePassword swaps the caller's password after checking the old one.
// Existing sessions stay alive; only reset tokens die, since their signing
// key is derived from the hash being replaced.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil || req.OldPassword == "" || len(req.NewPassword) < 8 {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	userID, _ := c.Get(middleware.CtxUserID).(string)

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.OldPassword) {
		return apperr.BadRequest(apperr.CodeIncorrectCredentials, "Incorrect credentials.")
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password has been changed.")
}
