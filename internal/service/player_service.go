package service

import (
	"context"
	"errors"
	"fmt"

	"dogs_webapp/internal/domain"
	"dogs_webapp/internal/game"
)

// GetOrCreatePlayer returns the player with tgID, registering it first when
// needed. A referrer is only linked for a freshly created player. The new
// player stays registered even if linking fails; the link error is returned
// together with the snapshot.
func (s *GameService) GetOrCreatePlayer(ctx context.Context, tgID int64, name string, referrerID int64) (*PlayerSnapshot, error) {
	now := s.clock.Now()

	unlock := s.locks.Lock(tgID)
	snap, created, err := s.store.CreatePlayer(ctx, domain.NewPlayer(tgID, name, now, game.OfflineWindow))
	if err == nil && !created && snap.Player.Instruction {
		// tutorial is shown only on the first visit
		err = s.store.UpdatePlayer(ctx, tgID, func(locked *domain.Snapshot) (*domain.Changes, error) {
			if !locked.Player.Instruction {
				return nil, nil
			}
			locked.Player.Instruction = false
			snap = locked
			return &domain.Changes{Player: true}, nil
		})
	}
	unlock()
	if err != nil {
		return nil, fmt.Errorf("get or create player %d: %w", tgID, err)
	}

	out := &PlayerSnapshot{Player: snap.Player, BonusInfo: s.table.Days(), Created: created}
	if !created {
		return out, nil
	}

	PlayersCreated.Inc()
	s.log.Info("player registered", "tg_id", tgID)

	if referrerID == 0 {
		return out, nil
	}
	if referrerID == tgID {
		return out, domain.ErrSelfReferral
	}
	if _, err := s.store.CreateReferral(ctx, referrerID, tgID); err != nil {
		return out, fmt.Errorf("link referrer %d: %w", referrerID, err)
	}
	s.log.Info("referral linked", "tg_id", tgID, "referrer", referrerID)
	return out, nil
}

// ClaimDailyLogin pays the streak reward (if still available today) and
// marks today's bonus as taken in the same write.
func (s *GameService) ClaimDailyLogin(ctx context.Context, tgID int64) (*DailyLoginResult, error) {
	now := s.clock.Now()
	var res game.StreakResult

	k, err := s.mutate(ctx, tgID, func(k *game.Kennel) error {
		res = game.ApplyLoginStreak(k, s.table, now, s.dayOffset)
		if k.Player().DailyBonus {
			k.Player().DailyBonus = false
			k.MarkPlayerDirty()
		}
		return nil
	})
	BonusClaims.WithLabelValues("daily", outcome(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("claim daily login %d: %w", tgID, err)
	}
	if res.Awarded > 0 {
		CoinsAwarded.WithLabelValues(domain.TxDailyBonus).Add(float64(res.Awarded))
	}

	return &DailyLoginResult{
		Applied:         res.Applied,
		Awarded:         res.Awarded,
		ConsecutiveDays: k.Player().ConsecutiveDays,
		Coins:           k.Player().Coins,
	}, nil
}

// ClaimBonus collects the selected accruals. Nothing is written when any
// selected bonus is rejected.
func (s *GameService) ClaimBonus(ctx context.Context, tgID int64, req BonusRequest) (*BonusResult, error) {
	if !req.Offline && !req.PerSecond {
		BonusClaims.WithLabelValues("none", outcome(domain.ErrNoBonusSelected)).Inc()
		return nil, domain.ErrNoBonusSelected
	}

	now := s.clock.Now()
	var out game.BonusOutcome
	k, err := s.mutate(ctx, tgID, func(k *game.Kennel) error {
		var err error
		out, err = game.CollectBonuses(k, game.BonusSelection{Offline: req.Offline, PerSecond: req.PerSecond}, now)
		return err
	})
	if req.Offline {
		BonusClaims.WithLabelValues("offline", outcome(err)).Inc()
	}
	if req.PerSecond {
		BonusClaims.WithLabelValues("per_second", outcome(err)).Inc()
	}
	if err != nil {
		if errors.Is(err, domain.ErrBonusNotReady) {
			return nil, err
		}
		return nil, fmt.Errorf("claim bonus %d: %w", tgID, err)
	}

	CoinsAwarded.WithLabelValues(domain.TxOfflineBonus).Add(float64(out.Offline))
	CoinsAwarded.WithLabelValues(domain.TxSecondBonus).Add(float64(out.PerSecond))

	return &BonusResult{
		TgID:      tgID,
		Offline:   out.Offline,
		PerSecond: out.PerSecond,
		Coins:     k.Player().Coins,
	}, nil
}

// ListReferrals returns the friends a player brought in.
func (s *GameService) ListReferrals(ctx context.Context, tgID int64) ([]domain.Friend, error) {
	if _, err := s.store.LoadPlayer(ctx, tgID); err != nil {
		return nil, err
	}
	return s.store.ListReferrals(ctx, tgID)
}

// ListTransactions returns the most recent coin movements of a player.
func (s *GameService) ListTransactions(ctx context.Context, tgID int64, limit int) ([]*domain.Transaction, error) {
	if _, err := s.store.LoadPlayer(ctx, tgID); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, tgID, limit)
}

// ResetDailyBonuses re-arms the daily login bonus for every player.
func (s *GameService) ResetDailyBonuses(ctx context.Context) (int64, error) {
	n, err := s.store.ResetDailyBonuses(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset daily bonuses: %w", err)
	}
	return n, nil
}

// Leaderboard returns the richest players.
func (s *GameService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	top, err := s.store.TopPlayers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return top, nil
}

// PlayerRank returns where a player stands on the leaderboard.
func (s *GameService) PlayerRank(ctx context.Context, tgID int64) (*domain.LeaderboardEntry, error) {
	e, err := s.store.PlayerRank(ctx, tgID)
	if err != nil {
		return nil, fmt.Errorf("player rank %d: %w", tgID, err)
	}
	return e, nil
}
