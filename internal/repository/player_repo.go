package repository

import (
	"context"
	"errors"

	"dogs_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const playerColumns = `id, tg_id, name, registration_date, coins, coins_spent_today,
	daily_bonus_friends, consecutive_days, last_login_date, offline_coins,
	start_offline_coins, finish_offline_coins, coins_in_second, finish_second_coins,
	lvl, daily_bonus, instruction`

type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	if err := row.Scan(
		&p.ID,
		&p.TgID,
		&p.Name,
		&p.RegistrationDate,
		&p.Coins,
		&p.CoinsSpentToday,
		&p.DailyBonusFriends,
		&p.ConsecutiveDays,
		&p.LastLoginDate,
		&p.OfflineCoins,
		&p.StartOfflineCoins,
		&p.FinishOfflineCoins,
		&p.CoinsInSecond,
		&p.FinishSecondCoins,
		&p.Lvl,
		&p.DailyBonus,
		&p.Instruction,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByTgID reads a player without locking.
func (r *PlayerRepository) GetByTgID(ctx context.Context, tgID int64) (*domain.Player, error) {
	return r.getByTgID(ctx, r.db, tgID, false)
}

// GetByTgIDForUpdate reads and row-locks a player inside tx.
func (r *PlayerRepository) GetByTgIDForUpdate(ctx context.Context, tx pgx.Tx, tgID int64) (*domain.Player, error) {
	return r.getByTgID(ctx, tx, tgID, true)
}

func (r *PlayerRepository) getByTgID(ctx context.Context, q querier, tgID int64, lock bool) (*domain.Player, error) {
	sql := `SELECT ` + playerColumns + ` FROM players WHERE tg_id = $1`
	if lock {
		sql += ` FOR UPDATE`
	}
	return scanPlayer(q.QueryRow(ctx, sql, tgID))
}

// CreateWithTx inserts p unless a player with the same tg_id exists.
// It reports whether a row was inserted and fills p.ID when it was.
func (r *PlayerRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *domain.Player) (bool, error) {
	err := tx.QueryRow(ctx,
		`INSERT INTO players (tg_id, name, registration_date, coins, coins_spent_today,
			daily_bonus_friends, consecutive_days, last_login_date, offline_coins,
			start_offline_coins, finish_offline_coins, coins_in_second, finish_second_coins,
			lvl, daily_bonus, instruction)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (tg_id) DO NOTHING
		 RETURNING id`,
		p.TgID, p.Name, p.RegistrationDate, p.Coins, p.CoinsSpentToday,
		p.DailyBonusFriends, p.ConsecutiveDays, p.LastLoginDate, p.OfflineCoins,
		p.StartOfflineCoins, p.FinishOfflineCoins, p.CoinsInSecond, p.FinishSecondCoins,
		p.Lvl, p.DailyBonus, p.Instruction,
	).Scan(&p.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateWithTx writes every mutable column of p.
func (r *PlayerRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, p *domain.Player) error {
	_, err := tx.Exec(ctx,
		`UPDATE players SET
			name = $2, coins = $3, coins_spent_today = $4, daily_bonus_friends = $5,
			consecutive_days = $6, last_login_date = $7, offline_coins = $8,
			start_offline_coins = $9, finish_offline_coins = $10, coins_in_second = $11,
			finish_second_coins = $12, lvl = $13, daily_bonus = $14, instruction = $15
		 WHERE id = $1`,
		p.ID, p.Name, p.Coins, p.CoinsSpentToday, p.DailyBonusFriends,
		p.ConsecutiveDays, p.LastLoginDate, p.OfflineCoins,
		p.StartOfflineCoins, p.FinishOfflineCoins, p.CoinsInSecond,
		p.FinishSecondCoins, p.Lvl, p.DailyBonus, p.Instruction,
	)
	return err
}

// ResetDailyFlags re-arms the daily login bonus and clears the spent-today
// counter for every player.
func (r *PlayerRepository) ResetDailyFlags(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE players SET daily_bonus = TRUE, coins_spent_today = 0
		 WHERE daily_bonus = FALSE OR coins_spent_today <> 0`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// TopByCoins returns the richest players, ties broken by tg_id.
func (r *PlayerRepository) TopByCoins(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT RANK() OVER (ORDER BY coins DESC) AS rank, tg_id, name, coins, lvl
		FROM players
		ORDER BY coins DESC, tg_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := []domain.LeaderboardEntry{}
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Rank, &e.TgID, &e.Name, &e.Coins, &e.Lvl); err != nil {
			return nil, err
		}
		top = append(top, e)
	}
	return top, rows.Err()
}

// RankByCoins returns the standing of one player on the coins leaderboard.
func (r *PlayerRepository) RankByCoins(ctx context.Context, tgID int64) (*domain.LeaderboardEntry, error) {
	var e domain.LeaderboardEntry
	err := r.db.QueryRow(ctx, `
		SELECT 1 + (SELECT COUNT(*) FROM players o WHERE o.coins > p.coins), tg_id, name, coins, lvl
		FROM players p
		WHERE tg_id = $1`, tgID).Scan(&e.Rank, &e.TgID, &e.Name, &e.Coins, &e.Lvl)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
