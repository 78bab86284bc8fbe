package domain

import "time"

// Transaction types
const (
	TxDailyBonus   = "daily_bonus"
	TxOfflineBonus = "offline_bonus"
	TxSecondBonus  = "second_bonus"
	TxDogPurchase  = "dog_purchase"
)

type Transaction struct {
	ID        int64                  `db:"id" json:"id"`
	PlayerID  int64                  `db:"player_id" json:"player_id"`
	Type      string                 `db:"type" json:"type"`
	Amount    int64                  `db:"amount" json:"amount"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}
