package repository

import (
	"context"
	"errors"

	"dogs_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore keeps players in PostgreSQL. Every mutation runs in one
// transaction holding the player row lock.
type PgStore struct {
	db           *pgxpool.Pool
	players      *PlayerRepository
	dogs         *DogRepository
	referrals    *ReferralRepository
	transactions *TransactionRepository
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{
		db:           db,
		players:      NewPlayerRepository(db),
		dogs:         NewDogRepository(db),
		referrals:    NewReferralRepository(db),
		transactions: NewTransactionRepository(db),
	}
}

func (s *PgStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

func (s *PgStore) LoadPlayer(ctx context.Context, tgID int64) (*domain.Snapshot, error) {
	p, err := s.players.GetByTgID(ctx, tgID)
	if err != nil {
		return nil, wrapPg("load player", err)
	}
	dogs, err := s.dogs.ListByPlayer(ctx, p.ID)
	if err != nil {
		return nil, storageErr("load dogs", err)
	}
	return &domain.Snapshot{Player: p, Dogs: dogs}, nil
}

func (s *PgStore) CreatePlayer(ctx context.Context, p *domain.Player) (*domain.Snapshot, bool, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, storageErr("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := s.players.CreateWithTx(ctx, tx, p)
	if err != nil {
		return nil, false, storageErr("create player", err)
	}
	if !created {
		_ = tx.Rollback(ctx)
		snap, err := s.LoadPlayer(ctx, p.TgID)
		return snap, false, err
	}

	virtual := domain.NewVirtualDog(p.ID)
	if err := s.dogs.CreateWithTx(ctx, tx, virtual); err != nil {
		return nil, false, storageErr("create virtual dog", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, storageErr("commit", err)
	}
	return &domain.Snapshot{Player: p, Dogs: []*domain.Dog{virtual}}, true, nil
}

func (s *PgStore) UpdatePlayer(ctx context.Context, tgID int64, fn MutateFunc) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storageErr("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := s.players.GetByTgIDForUpdate(ctx, tx, tgID)
	if err != nil {
		return wrapPg("lock player", err)
	}
	dogs, err := s.dogs.ListByPlayerWithTx(ctx, tx, p.ID)
	if err != nil {
		return storageErr("load dogs", err)
	}

	changes, opErr := fn(&domain.Snapshot{Player: p, Dogs: dogs})
	if changes == nil || changes.Empty() {
		return opErr
	}

	if err := s.apply(ctx, tx, p, changes); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit", err)
	}
	return opErr
}

// apply writes a diff: deletes first so freed slots can be reused by inserts.
func (s *PgStore) apply(ctx context.Context, tx pgx.Tx, p *domain.Player, ch *domain.Changes) error {
	if err := s.dogs.DeleteWithTx(ctx, tx, p.ID, ch.Deleted); err != nil {
		return storageErr("delete dogs", err)
	}
	for _, d := range ch.Updated {
		if err := s.dogs.UpdateWithTx(ctx, tx, d); err != nil {
			return storageErr("update dog", err)
		}
	}
	for _, d := range ch.Created {
		d.PlayerID = p.ID
		if err := s.dogs.CreateWithTx(ctx, tx, d); err != nil {
			return storageErr("create dog", err)
		}
	}
	if ch.Player {
		if err := s.players.UpdateWithTx(ctx, tx, p); err != nil {
			return storageErr("update player", err)
		}
	}
	for _, t := range ch.Transactions {
		t.PlayerID = p.ID
		if err := s.transactions.CreateWithTx(ctx, tx, t); err != nil {
			return storageErr("record transaction", err)
		}
	}
	return nil
}

func (s *PgStore) CreateReferral(ctx context.Context, referrerTgID, newPlayerTgID int64) (*domain.Referral, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storageErr("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	referrer, err := s.players.getByTgID(ctx, tx, referrerTgID, false)
	if err != nil {
		return nil, wrapPg("load referrer", err)
	}
	newPlayer, err := s.players.getByTgID(ctx, tx, newPlayerTgID, false)
	if err != nil {
		return nil, wrapPg("load new player", err)
	}
	if referrer.ID == newPlayer.ID {
		return nil, domain.ErrSelfReferral
	}

	ref, err := s.referrals.CreateWithTx(ctx, tx, referrer.ID, newPlayer.ID)
	if err != nil {
		return nil, wrapPg("create referral", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit", err)
	}
	return ref, nil
}

func (s *PgStore) ListReferrals(ctx context.Context, tgID int64) ([]domain.Friend, error) {
	friends, err := s.referrals.ListFriends(ctx, tgID)
	if err != nil {
		return nil, storageErr("list referrals", err)
	}
	return friends, nil
}

func (s *PgStore) ListTransactions(ctx context.Context, tgID int64, limit int) ([]*domain.Transaction, error) {
	txs, err := s.transactions.GetByTgID(ctx, tgID, limit)
	if err != nil {
		return nil, storageErr("list transactions", err)
	}
	return txs, nil
}

func (s *PgStore) ResetDailyBonuses(ctx context.Context) (int64, error) {
	n, err := s.players.ResetDailyFlags(ctx)
	if err != nil {
		return 0, storageErr("reset daily bonuses", err)
	}
	return n, nil
}

func (s *PgStore) TopPlayers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	top, err := s.players.TopByCoins(ctx, limit)
	if err != nil {
		return nil, storageErr("top players", err)
	}
	return top, nil
}

func (s *PgStore) PlayerRank(ctx context.Context, tgID int64) (*domain.LeaderboardEntry, error) {
	e, err := s.players.RankByCoins(ctx, tgID)
	if err != nil {
		return nil, wrapPg("player rank", err)
	}
	return e, nil
}

// wrapPg passes domain errors through and marks everything else as a
// storage failure.
func wrapPg(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound),
		errors.Is(err, domain.ErrDuplicateReferral),
		errors.Is(err, domain.ErrSelfReferral):
		return err
	}
	return storageErr(op, err)
}
