package repository

import (
	"context"
	"encoding/json"

	"dogs_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetByTgID returns the most recent ledger entries of a player
func (r *TransactionRepository) GetByTgID(ctx context.Context, tgID int64, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.player_id, t.type, t.amount, t.meta, t.created_at
		 FROM transactions t
		 JOIN players p ON p.id = t.player_id
		 WHERE p.tg_id = $1
		 ORDER BY t.created_at DESC, t.id DESC
		 LIMIT $2`,
		tgID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// CreateWithTx inserts a transaction using an existing database transaction
func (r *TransactionRepository) CreateWithTx(ctx context.Context, dbTx pgx.Tx, tx *domain.Transaction) error {
	metaJSON, err := json.Marshal(tx.Meta)
	if err != nil || tx.Meta == nil {
		metaJSON = []byte("{}")
	}

	return dbTx.QueryRow(ctx,
		`INSERT INTO transactions (player_id, type, amount, meta, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		tx.PlayerID, tx.Type, tx.Amount, metaJSON, tx.CreatedAt,
	).Scan(&tx.ID)
}

func (r *TransactionRepository) scanRows(rows pgx.Rows) ([]*domain.Transaction, error) {
	result := []*domain.Transaction{}

	for rows.Next() {
		var (
			tx       domain.Transaction
			metaJSON []byte
		)

		if err := rows.Scan(&tx.ID, &tx.PlayerID, &tx.Type, &tx.Amount, &metaJSON, &tx.CreatedAt); err != nil {
			return nil, err
		}

		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &tx.Meta)
		}

		result = append(result, &tx)
	}

	return result, rows.Err()
}
