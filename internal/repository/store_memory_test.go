package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"dogs_webapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore(), 1000)
}

func TestMemoryStoreRejectsSlotCollision(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, _, err := s.CreatePlayer(ctx, domain.NewPlayer(1, "a", time.Now(), time.Hour))
	require.NoError(t, err)

	slot := 1
	add := func() error {
		return s.UpdatePlayer(ctx, 1, func(*domain.Snapshot) (*domain.Changes, error) {
			field := slot
			return &domain.Changes{Created: []*domain.Dog{{Lvl: 1, DogField: &field, IsActive: true}}}, nil
		})
	}

	require.NoError(t, add())
	err = add()
	assert.True(t, domain.IsTransient(err))

	snap, err := s.LoadPlayer(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, snap.Dogs, 2)
}

func TestMemoryStoreSnapshotsAreCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, _, err := s.CreatePlayer(ctx, domain.NewPlayer(1, "a", time.Now(), time.Hour))
	require.NoError(t, err)

	snap, err := s.LoadPlayer(ctx, 1)
	require.NoError(t, err)
	snap.Player.Coins = 999
	snap.Dogs[0].Price = 1

	again, err := s.LoadPlayer(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, again.Player.Coins)
	assert.Equal(t, domain.DefaultDogPrice, again.Dogs[0].Price)
}

func TestMemoryStoreFailure(t *testing.T) {
	s := NewMemoryStore()
	s.SetFailure(errors.New("disk on fire"))

	_, err := s.LoadPlayer(context.Background(), 1)
	assert.True(t, domain.IsTransient(err))
	assert.Error(t, s.Ping(context.Background()))

	s.SetFailure(nil)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestMemoryStoreTransactionsNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, _, err := s.CreatePlayer(ctx, domain.NewPlayer(1, "a", time.Now(), time.Hour))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		amount := int64(i)
		require.NoError(t, s.UpdatePlayer(ctx, 1, func(*domain.Snapshot) (*domain.Changes, error) {
			return &domain.Changes{Transactions: []*domain.Transaction{{Type: domain.TxSecondBonus, Amount: amount}}}, nil
		}))
	}

	txs, err := s.ListTransactions(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(3), txs[0].Amount)
	assert.Equal(t, int64(2), txs[1].Amount)
}

func TestMemoryStoreTopPlayersSharesRanks(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for tgID, coins := range map[int64]int64{1: 300, 2: 100, 3: 100, 4: 50} {
		_, _, err := s.CreatePlayer(ctx, domain.NewPlayer(tgID, "p", time.Now(), time.Hour))
		require.NoError(t, err)
		require.NoError(t, s.UpdatePlayer(ctx, tgID, func(snap *domain.Snapshot) (*domain.Changes, error) {
			snap.Player.Coins = coins
			return &domain.Changes{Player: true}, nil
		}))
	}

	top, err := s.TopPlayers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 4)

	var ranks []int
	var ids []int64
	for _, e := range top {
		ranks = append(ranks, e.Rank)
		ids = append(ids, e.TgID)
	}
	assert.Equal(t, []int{1, 2, 2, 4}, ranks)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)

	top, err = s.TopPlayers(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	e, err := s.PlayerRank(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, e.Rank)
}
