// Command server runs the e-commerce HTTP API: auth flows with
// cache-backed sessions, the product catalog and the per-user account
// surface (cart, orders, reviews, profile, wishlist).
package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/database"
	"github.com/iliyamo/ecommerce-backend/internal/handler"
	"github.com/iliyamo/ecommerce-backend/internal/mailer"
	"github.com/iliyamo/ecommerce-backend/internal/metrics"
	"github.com/iliyamo/ecommerce-backend/internal/queue"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
	"github.com/iliyamo/ecommerce-backend/internal/router"
	"github.com/iliyamo/ecommerce-backend/internal/store"
	"github.com/iliyamo/ecommerce-backend/internal/token"
)

func main() {
	cfg := config.Load()

	if err := database.RunMigrations(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb, err := config.NewRedisClient()
	if err != nil {
		// Sessions and pending signups live in Redis; without it the auth
		// flows cannot work at all.
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	tokens := token.NewService(cfg)
	sessions := store.NewSessionStore(rdb)
	mail := mailer.New(cfg)

	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	brandRepo := repository.NewBrandRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	cartRepo := repository.NewCartRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	profileRepo := repository.NewProfileRepo(db)
	wishlistRepo := repository.NewWishlistRepo(db)

	// When a broker is configured the request path only publishes; this
	// consumer drains the queue and does the actual SMTP work.
	if cfg.RabbitURL != "" {
		smtp := &mailer.SMTPMailer{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort,
			User: cfg.SMTPUser, Pass: cfg.SMTPPass,
		}
		go queue.StartMailConsumer(cfg.RabbitURL, queue.DelivererFunc(
			func(ctx context.Context, to, subject, text, html string) error {
				return smtp.Send(ctx, mailer.Mail{To: to, Subject: subject, Text: text, HTML: html})
			}))
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware())

	router.Register(e, router.Deps{
		Auth:     handler.NewAuthHandler(cfg, userRepo, tokens, sessions, mail),
		Users:    handler.NewUserHandler(cfg, userRepo),
		Catalog:  handler.NewCatalogHandler(productRepo, brandRepo, categoryRepo),
		Cart:     handler.NewCartHandler(cartRepo, productRepo),
		Orders:   handler.NewOrderHandler(orderRepo, profileRepo),
		Reviews:  handler.NewReviewHandler(reviewRepo, productRepo),
		Profile:  handler.NewProfileHandler(profileRepo),
		Wishlist: handler.NewWishlistHandler(wishlistRepo, productRepo),
		Health:   handler.NewHealthHandler(db, rdb),

		Tokens:    tokens,
		Sessions:  sessions,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
	})

	log.Printf("listening on :%s (%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
