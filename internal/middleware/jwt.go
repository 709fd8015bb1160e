package middleware // middleware provides shared request processing for handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/store"
	"github.com/iliyamo/ecommerce-backend/internal/token"
)

// TokenKind selects which credential a guarded route accepts.
type TokenKind string

const (
	// KindAccess guards routes with the short-lived access token.  The
	// signature alone decides: access tokens are stateless.
	KindAccess TokenKind = "ACCESS"
	// KindRefresh guards /auth/refresh and /auth/logout.  On top of the
	// signature, the presented token must be byte-equal to the session
	// cache entry for its session id; rotation and logout both break that
	// equality, which is how refresh tokens get revoked.
	KindRefresh TokenKind = "REFRESH"
)

// Context keys populated by Auth for downstream handlers.
const (
	CtxEmail     = "email"
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxSessionID = "session_id"
)

// Auth returns an Echo middleware that validates a Bearer token of the
// given kind and injects the authenticated identity into the request
// context.  It never mutates cache or persistent state.
func Auth(kind TokenKind, tokens *token.Service, sessions *store.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return apperr.Unauthorized("missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			var (
				claims *token.Claims
				err    error
			)
			if kind == KindRefresh {
				claims, err = tokens.ParseRefresh(raw)
			} else {
				claims, err = tokens.ParseAccess(raw)
			}
			if err != nil {
				// Bad signature and expiry collapse to the same answer.
				return apperr.Unauthorized("invalid token")
			}

			if kind == KindRefresh {
				stored, ok, err := sessions.GetSession(c.Request().Context(), claims.SessionID)
				if err != nil {
					return err
				}
				// The session must still hold this exact token string: an
				// older (rotated-away) token fails here even though its
				// signature is still good.
				if !ok || stored != raw {
					return apperr.Unauthorized("session revoked")
				}
			}

			c.Set(CtxEmail, claims.Email)
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxSessionID, claims.SessionID)
			return next(c)
		}
	}
}
