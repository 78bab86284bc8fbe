package repository

import (
	"context"

	"dogs_webapp/internal/domain"
)

// MutateFunc applies one state transition to a locked snapshot. Returning
// nil changes discards the work; non-nil changes are persisted even when an
// error is returned alongside them, which is how partially applied batches
// are kept.
type MutateFunc func(snap *domain.Snapshot) (*domain.Changes, error)

// Store is the persistence contract the game services run against.
type Store interface {
	LoadPlayer(ctx context.Context, tgID int64) (*domain.Snapshot, error)
	CreatePlayer(ctx context.Context, p *domain.Player) (snap *domain.Snapshot, created bool, err error)
	UpdatePlayer(ctx context.Context, tgID int64, fn MutateFunc) error
	CreateReferral(ctx context.Context, referrerTgID, newPlayerTgID int64) (*domain.Referral, error)
	ListReferrals(ctx context.Context, tgID int64) ([]domain.Friend, error)
	ListTransactions(ctx context.Context, tgID int64, limit int) ([]*domain.Transaction, error)
	ResetDailyBonuses(ctx context.Context) (int64, error)
	TopPlayers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	PlayerRank(ctx context.Context, tgID int64) (*domain.LeaderboardEntry, error)
	Ping(ctx context.Context) error
}

func storageErr(op string, err error) error {
	return &domain.StorageError{Op: op, Err: err}
}
