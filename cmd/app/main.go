package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dogs_webapp/internal/config"
	"dogs_webapp/internal/db"
	"dogs_webapp/internal/game"
	httpServer "dogs_webapp/internal/http"
	"dogs_webapp/internal/http/middleware"
	"dogs_webapp/internal/jobs"
	"dogs_webapp/internal/logger"
	"dogs_webapp/internal/repository"
	"dogs_webapp/internal/service"
	"dogs_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	table := game.DefaultBonusTable()
	if cfg.DailyBonusesPath != "" {
		t, err := game.LoadBonusTable(cfg.DailyBonusesPath)
		if err != nil {
			logger.Fatal("failed to load daily bonuses", "path", cfg.DailyBonusesPath, "error", err)
		}
		table = t
	}

	var store repository.Store
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, state is lost on restart")
		store = repository.NewMemoryStore()
	default:
		pool := db.Connect(cfg.DatabaseURL)
		defer pool.Close()
		store = repository.NewPgStore(pool)
	}

	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}
	middleware.SetRedisClient(rdb)

	svc := service.NewGameService(store, table, service.WithDayOffset(cfg.DayOffset))
	hub := ws.NewHub(svc)
	svc.Subscribe(hub)

	if logger.Get().Enabled(context.Background(), slog.LevelDebug) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(cfg.AllowedOrigin))
	httpServer.RegisterRoutes(r, svc, hub, rdb, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server started", "port", cfg.AppPort, "storage", cfg.Storage, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.DailyResetEnabled {
		job := jobs.NewDailyReset(svc, rdb, nil, cfg.DayOffset)
		g.Go(func() error { return job.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hub.Shutdown()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server stopped with error", "error", err)
	}
	logger.Info("server exited")
}
