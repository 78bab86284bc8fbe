package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dogs_webapp/internal/domain"
	"dogs_webapp/internal/game"
	"dogs_webapp/internal/logger"
	"dogs_webapp/internal/repository"
)

// DogsListener is told about a player's field after it changed.
type DogsListener interface {
	DogsChanged(tgID int64, view *DogsView)
}

// GameService is the single entry point for every player operation. HTTP
// handlers and the websocket hub both call it.
type GameService struct {
	store     repository.Store
	table     *game.BonusTable
	clock     game.Clock
	dayOffset time.Duration
	locks     *keyedMutex
	log       *slog.Logger
	listeners []DogsListener
}

type Option func(*GameService)

func WithClock(c game.Clock) Option {
	return func(s *GameService) { s.clock = c }
}

// WithDayOffset overrides the regional day boundary used for login streaks.
func WithDayOffset(d time.Duration) Option {
	return func(s *GameService) { s.dayOffset = d }
}

// NewGameService creates a new game service
func NewGameService(store repository.Store, table *game.BonusTable, opts ...Option) *GameService {
	if table == nil {
		table = game.DefaultBonusTable()
	}
	s := &GameService{
		store:     store,
		table:     table,
		clock:     game.RealClock{},
		dayOffset: game.RegionalDayOffset,
		locks:     newKeyedMutex(),
		log:       logger.With("component", "game_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers l for field change notifications. Not safe to call
// concurrently with operations; wire listeners at startup.
func (s *GameService) Subscribe(l DogsListener) {
	s.listeners = append(s.listeners, l)
}

func (s *GameService) BonusTable() *game.BonusTable { return s.table }

func (s *GameService) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

// mutate runs fn on a kennel built from the locked snapshot. The in-process
// lock serializes requests hitting this instance; the store's own row lock
// covers other instances.
func (s *GameService) mutate(ctx context.Context, tgID int64, fn func(k *game.Kennel) error) (*game.Kennel, error) {
	unlock := s.locks.Lock(tgID)
	defer unlock()

	var k *game.Kennel
	err := s.store.UpdatePlayer(ctx, tgID, func(snap *domain.Snapshot) (*domain.Changes, error) {
		k = game.NewKennel(snap)
		if err := fn(k); err != nil {
			var be *game.BreedError
			if errors.As(err, &be) && len(be.Committed) > 0 {
				return k.Changes(), err
			}
			return nil, err
		}
		return k.Changes(), nil
	})
	return k, err
}

func (s *GameService) notify(tgID int64, view *DogsView) {
	for _, l := range s.listeners {
		l.DogsChanged(tgID, view)
	}
}
