package repository

import (
	"context"
	"errors"

	"dogs_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// CreateWithTx records that referrerID brought newPlayerID into the game.
func (r *ReferralRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, referrerID, newPlayerID int64) (*domain.Referral, error) {
	ref := &domain.Referral{
		ReferrerID:     referrerID,
		NewPlayerID:    newPlayerID,
		ReferralBonus:  true,
		NewPlayerBonus: true,
	}
	err := tx.QueryRow(ctx,
		`INSERT INTO referrals (referral_id, new_player_id, referral_bonus, new_player_bonus)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		referrerID, newPlayerID, ref.ReferralBonus, ref.NewPlayerBonus,
	).Scan(&ref.ID, &ref.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, domain.ErrDuplicateReferral
		}
		return nil, err
	}
	return ref, nil
}

// ListFriends returns the players referred by the player with tgID, newest first.
func (r *ReferralRepository) ListFriends(ctx context.Context, tgID int64) ([]domain.Friend, error) {
	rows, err := r.db.Query(ctx,
		`SELECT np.tg_id, np.name, np.coins, ref.created_at
		 FROM referrals ref
		 JOIN players rp ON rp.id = ref.referral_id
		 JOIN players np ON np.id = ref.new_player_id
		 WHERE rp.tg_id = $1
		 ORDER BY ref.created_at DESC, ref.id DESC`,
		tgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	friends := []domain.Friend{}
	for rows.Next() {
		var f domain.Friend
		if err := rows.Scan(&f.TgID, &f.Name, &f.Coins, &f.JoinedAt); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}
