package http

import (
	"dogs_webapp/internal/config"
	"dogs_webapp/internal/http/handlers"
	"dogs_webapp/internal/http/middleware"
	"dogs_webapp/internal/service"
	"dogs_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes wires every endpoint onto r. rdb may be nil; rate limits
// then fall back to in-process buckets and readiness skips the Redis check.
func RegisterRoutes(r *gin.Engine, game *service.GameService, hub *ws.Hub, rdb *redis.Client, cfg *config.Config) {
	h := handlers.NewHandler(game)
	healthHandler := handlers.NewHealthHandler(game, rdb, cfg.AppVersion)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow, middleware.ClientIPKey))
	registerAPIRoutes(v1, h, cfg)

	// Legacy /api routes, kept for clients built against the first release
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow, middleware.ClientIPKey))
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h, cfg)

	// Real-time field updates
	r.GET("/ws/dogs/:tg_id", ws.HandleWS(hub, cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	// per player, not per IP: one Telegram client may sit behind a shared NAT
	playerRL := middleware.RedisRateLimit(cfg.PlayerRateLimit, cfg.PlayerRateWindow, middleware.PlayerKey)

	// Players
	api.GET("/player-info/:tg_id/:name", h.PlayerInfo)
	api.GET("/player-info/:tg_id/:name/:referral_id", h.PlayerInfo)
	api.POST("/daily-bonus", h.DailyBonus)
	api.POST("/collecting_bonuses", h.CollectBonuses)
	api.GET("/players/:tg_id/referrals", h.Referrals)
	api.GET("/players/:tg_id/transactions", h.Transactions)
	api.GET("/players/:tg_id/rank", h.GetPlayerRank)
	api.GET("/leaderboard", h.GetLeaderboard)

	// Dogs
	api.GET("/dogs/:tg_id", h.ListDogs)
	api.POST("/dogs/:tg_id", playerRL, h.CreateDog)
	api.PUT("/dogs/:tg_id", playerRL, h.BreedDogs)
}
