package repository

import (
	"context"

	"dogs_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DogRepository struct {
	db *pgxpool.Pool
}

func NewDogRepository(db *pgxpool.Pool) *DogRepository {
	return &DogRepository{db: db}
}

// ListByPlayerWithTx returns all dogs of a player, the virtual one included.
func (r *DogRepository) ListByPlayerWithTx(ctx context.Context, tx pgx.Tx, playerID int64) ([]*domain.Dog, error) {
	return r.listByPlayer(ctx, tx, playerID)
}

func (r *DogRepository) ListByPlayer(ctx context.Context, playerID int64) ([]*domain.Dog, error) {
	return r.listByPlayer(ctx, r.db, playerID)
}

func (r *DogRepository) listByPlayer(ctx context.Context, q querier, playerID int64) ([]*domain.Dog, error) {
	rows, err := q.Query(ctx,
		`SELECT id, player_id, name, lvl, price, percent_up_price, bonus_second,
			bonus_connection, dog_field, is_active
		 FROM dogs
		 WHERE player_id = $1
		 ORDER BY id`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dogs []*domain.Dog
	for rows.Next() {
		var d domain.Dog
		if err := rows.Scan(
			&d.ID,
			&d.PlayerID,
			&d.Name,
			&d.Lvl,
			&d.Price,
			&d.PercentUpPrice,
			&d.BonusSecond,
			&d.BonusConnection,
			&d.DogField,
			&d.IsActive,
		); err != nil {
			return nil, err
		}
		dogs = append(dogs, &d)
	}
	return dogs, rows.Err()
}

// CreateWithTx inserts d and fills d.ID.
func (r *DogRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, d *domain.Dog) error {
	return tx.QueryRow(ctx,
		`INSERT INTO dogs (player_id, name, lvl, price, percent_up_price, bonus_second,
			bonus_connection, dog_field, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		d.PlayerID, d.Name, d.Lvl, d.Price, d.PercentUpPrice, d.BonusSecond,
		d.BonusConnection, d.DogField, d.IsActive,
	).Scan(&d.ID)
}

func (r *DogRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, d *domain.Dog) error {
	_, err := tx.Exec(ctx,
		`UPDATE dogs SET
			name = $2, lvl = $3, price = $4, percent_up_price = $5, bonus_second = $6,
			bonus_connection = $7, dog_field = $8, is_active = $9
		 WHERE id = $1`,
		d.ID, d.Name, d.Lvl, d.Price, d.PercentUpPrice, d.BonusSecond,
		d.BonusConnection, d.DogField, d.IsActive,
	)
	return err
}

func (r *DogRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, playerID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `DELETE FROM dogs WHERE player_id = $1 AND id = ANY($2)`, playerID, ids)
	return err
}
