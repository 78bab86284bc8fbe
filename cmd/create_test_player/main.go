package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"dogs_webapp/internal/config"
	"dogs_webapp/internal/db"
	"dogs_webapp/internal/domain"
	"dogs_webapp/internal/logger"
	"dogs_webapp/internal/repository"
	"dogs_webapp/internal/service"
)

// Creates (or reuses) a player in the configured database and tops up its
// coins, for poking at the API by hand.
func main() {
	tgID := flag.Int64("tg-id", 1234567890, "telegram id of the test player")
	name := flag.String("name", "Tester", "player name")
	coins := flag.Int64("coins", 10000, "coins to set on the player")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(cfg.DatabaseURL)
	defer pool.Close()

	store := repository.NewPgStore(pool)
	svc := service.NewGameService(store, nil)
	ctx := context.Background()

	snap, err := svc.GetOrCreatePlayer(ctx, *tgID, *name, 0)
	if err != nil {
		logger.Fatal("get or create player failed", "error", err)
	}
	if snap.Created {
		logger.Info("player created", "tg_id", *tgID, "id", snap.Player.ID)
	} else {
		logger.Info("player already exists", "tg_id", *tgID, "id", snap.Player.ID)
	}

	err = store.UpdatePlayer(ctx, *tgID, func(s *domain.Snapshot) (*domain.Changes, error) {
		s.Player.Coins = *coins
		return &domain.Changes{Player: true}, nil
	})
	if err != nil {
		logger.Fatal("set coins failed", "error", err)
	}

	view, err := svc.ListDogs(ctx, *tgID)
	if err != nil {
		logger.Fatal("list dogs failed", "error", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{"tg_id": *tgID, "coins": *coins, "field": view})
}
