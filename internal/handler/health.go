package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness of the process and its backing stores.
type HealthHandler struct {
	DB  *sql.DB
	RDB *redis.Client
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, RDB: rdb}
}

func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	status := http.StatusOK
	report := echo.Map{"status": "ok", "database": "up", "redis": "up"}

	if err := h.DB.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		report["status"] = "degraded"
		report["database"] = "down"
	}
	if err := h.RDB.Ping(ctx).Err(); err != nil {
		status = http.StatusServiceUnavailable
		report["status"] = "degraded"
		report["redis"] = "down"
	}
	return c.JSON(status, report)
}
