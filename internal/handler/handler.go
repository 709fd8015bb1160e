// Package handler contains the HTTP controllers.  Handlers bind and
// validate input, call into repositories and return either a JSON envelope
// or an *apperr.Error for the central error handler to render.
package handler

import (
	"github.com/labstack/echo/v4"
)

// dataResp is the success envelope: the payload rides under "message",
// mirroring the error envelope's message field.
type dataResp struct {
	Success bool `json:"success"`
	Message any  `json:"message"`
}

func respond(c echo.Context, status int, payload any) error {
	return c.JSON(status, dataResp{Success: true, Message: payload})
}
