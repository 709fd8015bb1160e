package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
)

// RequireRole returns a middleware that enforces that the authenticated
// user has one of the specified roles.  It assumes Auth has already stored
// the role claim in the context; requests with a missing or unknown role
// are rejected with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || !allowed[role] {
				return apperr.Forbidden("forbidden")
			}
			return next(c)
		}
	}
}
