package apperr

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope is the JSON shape every error response uses.
type envelope struct {
	Success   bool   `json:"success"`
	ErrorCode Code   `json:"error_code"`
	Message   string `json:"message"`
}

// HTTPErrorHandler converts any error returned from a handler or
// middleware into the common envelope.  Domain errors keep their status
// and code; echo's own *HTTPError (route not found, method not allowed,
// bind failures) is mapped onto the general codes; anything else becomes
// a 500 with the internal code and is logged with its cause.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		writeEnvelope(c, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code := CodeBadRequest
		switch httpErr.Code {
		case http.StatusNotFound:
			code = CodeResourceNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			code = CodeUnauthorized
		}
		msg := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok {
			msg = s
		}
		writeEnvelope(c, httpErr.Code, code, msg)
		return
	}

	log.Printf("internal error on %s %s: %v", c.Request().Method, c.Path(), err)
	writeEnvelope(c, http.StatusInternalServerError, CodeInternal, "Something went wrong")
}

func writeEnvelope(c echo.Context, status int, code Code, message string) {
	if err := c.JSON(status, envelope{Success: false, ErrorCode: code, Message: message}); err != nil {
		log.Printf("write error envelope: %v", err)
	}
}
