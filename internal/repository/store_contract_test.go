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

// runStoreContract exercises behaviour every Store implementation must share.
// base offsets Telegram ids so runs against a shared database do not collide.
func runStoreContract(t *testing.T, s Store, base int64) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	newPlayer := func(tgID int64) *domain.Player {
		return domain.NewPlayer(tgID, "player", now, 3*time.Hour)
	}

	t.Run("create is idempotent", func(t *testing.T) {
		snap, created, err := s.CreatePlayer(ctx, newPlayer(base+1))
		require.NoError(t, err)
		require.True(t, created)
		require.NotZero(t, snap.Player.ID)
		require.Len(t, snap.Dogs, 1)
		assert.False(t, snap.Dogs[0].IsActive)

		again, created, err := s.CreatePlayer(ctx, newPlayer(base+1))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, snap.Player.ID, again.Player.ID)
		assert.Len(t, again.Dogs, 1)
	})

	t.Run("load missing player", func(t *testing.T) {
		_, err := s.LoadPlayer(ctx, base+999)
		assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

		err = s.UpdatePlayer(ctx, base+999, func(*domain.Snapshot) (*domain.Changes, error) {
			t.Fatal("mutation must not run for a missing player")
			return nil, nil
		})
		assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	})

	t.Run("update persists diff", func(t *testing.T) {
		_, _, err := s.CreatePlayer(ctx, newPlayer(base+2))
		require.NoError(t, err)

		slot := 1
		var created *domain.Dog
		err = s.UpdatePlayer(ctx, base+2, func(snap *domain.Snapshot) (*domain.Changes, error) {
			snap.Player.Coins = 500
			created = &domain.Dog{Lvl: 1, Price: 100, PercentUpPrice: 7, BonusSecond: 3, DogField: &slot, IsActive: true}
			return &domain.Changes{
				Player:  true,
				Created: []*domain.Dog{created},
				Transactions: []*domain.Transaction{
					{Type: domain.TxDailyBonus, Amount: 500, CreatedAt: now},
				},
			}, nil
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		snap, err := s.LoadPlayer(ctx, base+2)
		require.NoError(t, err)
		assert.Equal(t, int64(500), snap.Player.Coins)
		assert.Len(t, snap.Dogs, 2)

		txs, err := s.ListTransactions(ctx, base+2, 10)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, int64(500), txs[0].Amount)
	})

	t.Run("nil changes discard work", func(t *testing.T) {
		_, _, err := s.CreatePlayer(ctx, newPlayer(base+3))
		require.NoError(t, err)

		boom := errors.New("boom")
		err = s.UpdatePlayer(ctx, base+3, func(snap *domain.Snapshot) (*domain.Changes, error) {
			snap.Player.Coins = 1_000_000
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)

		snap, err := s.LoadPlayer(ctx, base+3)
		require.NoError(t, err)
		assert.Zero(t, snap.Player.Coins)
	})

	t.Run("changes with error are kept", func(t *testing.T) {
		_, _, err := s.CreatePlayer(ctx, newPlayer(base+4))
		require.NoError(t, err)

		boom := errors.New("stopped half way")
		err = s.UpdatePlayer(ctx, base+4, func(snap *domain.Snapshot) (*domain.Changes, error) {
			snap.Player.CoinsInSecond = 9
			return &domain.Changes{Player: true}, boom
		})
		assert.ErrorIs(t, err, boom)

		snap, err := s.LoadPlayer(ctx, base+4)
		require.NoError(t, err)
		assert.Equal(t, int64(9), snap.Player.CoinsInSecond)
	})

	t.Run("referrals", func(t *testing.T) {
		_, _, err := s.CreatePlayer(ctx, newPlayer(base+5))
		require.NoError(t, err)
		_, _, err = s.CreatePlayer(ctx, newPlayer(base+6))
		require.NoError(t, err)

		ref, err := s.CreateReferral(ctx, base+5, base+6)
		require.NoError(t, err)
		assert.True(t, ref.ReferralBonus)
		assert.True(t, ref.NewPlayerBonus)

		_, err = s.CreateReferral(ctx, base+5, base+6)
		assert.ErrorIs(t, err, domain.ErrDuplicateReferral)

		_, err = s.CreateReferral(ctx, base+5, base+5)
		assert.ErrorIs(t, err, domain.ErrSelfReferral)

		_, err = s.CreateReferral(ctx, base+998, base+6)
		assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

		friends, err := s.ListReferrals(ctx, base+5)
		require.NoError(t, err)
		require.Len(t, friends, 1)
		assert.Equal(t, base+6, friends[0].TgID)
	})

	t.Run("daily reset", func(t *testing.T) {
		_, _, err := s.CreatePlayer(ctx, newPlayer(base+7))
		require.NoError(t, err)
		require.NoError(t, s.UpdatePlayer(ctx, base+7, func(snap *domain.Snapshot) (*domain.Changes, error) {
			snap.Player.DailyBonus = false
			snap.Player.CoinsSpentToday = 250
			return &domain.Changes{Player: true}, nil
		}))

		n, err := s.ResetDailyBonuses(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))

		snap, err := s.LoadPlayer(ctx, base+7)
		require.NoError(t, err)
		assert.True(t, snap.Player.DailyBonus)
		assert.Zero(t, snap.Player.CoinsSpentToday)
	})

	t.Run("leaderboard", func(t *testing.T) {
		coins := map[int64]int64{base + 20: 9_000, base + 21: 5_000, base + 22: 5_000}
		for tgID, c := range coins {
			_, _, err := s.CreatePlayer(ctx, newPlayer(tgID))
			require.NoError(t, err)
			require.NoError(t, s.UpdatePlayer(ctx, tgID, func(snap *domain.Snapshot) (*domain.Changes, error) {
				snap.Player.Coins = c
				return &domain.Changes{Player: true}, nil
			}))
		}

		rich, err := s.PlayerRank(ctx, base+20)
		require.NoError(t, err)
		tiedA, err := s.PlayerRank(ctx, base+21)
		require.NoError(t, err)
		tiedB, err := s.PlayerRank(ctx, base+22)
		require.NoError(t, err)

		assert.Less(t, rich.Rank, tiedA.Rank)
		assert.Equal(t, tiedA.Rank, tiedB.Rank)
		assert.Equal(t, int64(5_000), tiedA.Coins)

		_, err = s.PlayerRank(ctx, base+999)
		assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

		top, err := s.TopPlayers(ctx, 3)
		require.NoError(t, err)
		require.LessOrEqual(t, len(top), 3)
		for i := 1; i < len(top); i++ {
			assert.GreaterOrEqual(t, top[i-1].Coins, top[i].Coins)
			assert.LessOrEqual(t, top[i-1].Rank, top[i].Rank)
		}
	})
}
