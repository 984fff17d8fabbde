package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pairline/matching-system/internal/api/handler"
	"github.com/pairline/matching-system/internal/api/middleware"
	"github.com/pairline/matching-system/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc ports.MatchingService, presence ports.PresenceStore, db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("matching"))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Authenticated API ---
	matchHandler := handler.NewMatchHandler(svc, presence)

	v1 := e.Group("/v1", middleware.Auth(jwtSecret))
	v1.POST("/queue/join", matchHandler.Join)
	v1.POST("/queue/leave", matchHandler.Leave)
	v1.GET("/status", matchHandler.Status)
	v1.POST("/matches/:match_id/vote", matchHandler.Vote)
	v1.POST("/heartbeat", matchHandler.Heartbeat)

	return e
}
