// Package router wires the HTTP surface: public catalog reads, the auth
// flows, and the token-guarded account routes.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/handler"
	"github.com/iliyamo/ecommerce-backend/internal/metrics"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/store"
	"github.com/iliyamo/ecommerce-backend/internal/token"
)

// Deps carries everything the routes need.
type Deps struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Orders   *handler.OrderHandler
	Reviews  *handler.ReviewHandler
	Profile  *handler.ProfileHandler
	Wishlist *handler.WishlistHandler
	Health   *handler.HealthHandler

	Tokens    *token.Service
	Sessions  *store.SessionStore
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client
}

// Register mounts all routes on the Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health.Check)
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api")

	accessGuard := middleware.Auth(middleware.KindAccess, d.Tokens, d.Sessions)
	refreshGuard := middleware.Auth(middleware.KindRefresh, d.Tokens, d.Sessions)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// Auth flows.  The whole group sits behind the rate limiter: these are
	// the endpoints worth brute-forcing.
	auth := api.Group("/auth", middleware.NewTokenBucket(d.RateLimit, d.Redis))
	auth.POST("/register", d.Auth.Register)
	auth.GET("/verify/:token", d.Auth.VerifyEmail)
	auth.POST("/resend-verification-email", d.Auth.ResendVerification)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh, refreshGuard)
	auth.POST("/logout", d.Auth.Logout, refreshGuard)
	auth.POST("/forgot-password", d.Auth.ForgotPassword)
	auth.POST("/reset-password/:userId/:token", d.Auth.ResetPassword)
	auth.GET("/me", d.Auth.Me, accessGuard)

	// Catalog reads are public and identical for every caller, so they sit
	// behind the response cache; mutations are admin territory.
	catalogCache := middleware.NewResponseCache(d.Cache, d.Redis)
	api.GET("/products", d.Catalog.ListProducts, catalogCache)
	api.GET("/products/:id", d.Catalog.GetProduct, catalogCache)
	api.POST("/products", d.Catalog.CreateProduct, accessGuard, adminOnly)
	api.PATCH("/products/:id", d.Catalog.UpdateProduct, accessGuard, adminOnly)
	api.DELETE("/products/:id", d.Catalog.DeleteProduct, accessGuard, adminOnly)

	api.GET("/brands", d.Catalog.ListBrands, catalogCache)
	api.POST("/brands", d.Catalog.CreateBrand, accessGuard, adminOnly)
	api.PATCH("/brands/:id", d.Catalog.UpdateBrand, accessGuard, adminOnly)
	api.DELETE("/brands/:id", d.Catalog.DeleteBrand, accessGuard, adminOnly)

	api.GET("/categories", d.Catalog.ListCategories, catalogCache)
	api.POST("/categories", d.Catalog.CreateCategory, accessGuard, adminOnly)
	api.PATCH("/categories/:id", d.Catalog.UpdateCategory, accessGuard, adminOnly)
	api.DELETE("/categories/:id", d.Catalog.DeleteCategory, accessGuard, adminOnly)

	// Reviews hang off their product for listing and creation.
	api.GET("/products/:productId/reviews", d.Reviews.ListByProduct)
	api.POST("/products/:productId/reviews", d.Reviews.Create, accessGuard)
	api.PATCH("/reviews/:id", d.Reviews.Update, accessGuard)
	api.DELETE("/reviews/:id", d.Reviews.Delete, accessGuard)

	api.GET("/cart", d.Cart.Get, accessGuard)
	api.POST("/cart/items", d.Cart.AddItem, accessGuard)
	api.PATCH("/cart/items/:productId", d.Cart.UpdateItem, accessGuard)
	api.DELETE("/cart/items/:productId", d.Cart.RemoveItem, accessGuard)

	api.GET("/orders", d.Orders.List, accessGuard)
	api.POST("/orders", d.Orders.Create, accessGuard)
	api.PATCH("/orders/:id/status", d.Orders.UpdateStatus, accessGuard, adminOnly)

	api.GET("/profile", d.Profile.Get, accessGuard)
	api.PATCH("/profile", d.Profile.Update, accessGuard)
	api.POST("/profile/addresses", d.Profile.AddAddress, accessGuard)
	api.PATCH("/profile/addresses/:id", d.Profile.UpdateAddress, accessGuard)
	api.DELETE("/profile/addresses/:id", d.Profile.DeleteAddress, accessGuard)

	api.GET("/wishlist", d.Wishlist.List, accessGuard)
	api.POST("/wishlist", d.Wishlist.Add, accessGuard)
	api.DELETE("/wishlist/:productId", d.Wishlist.Remove, accessGuard)

	api.POST("/users/change-password", d.Users.ChangePassword, accessGuard)
}
