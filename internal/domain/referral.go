package domain

import "time"

// Referral links the player who shared the invite to the player who joined
// through it. Both bonus flags are recorded as earned; nothing redeems them yet.
type Referral struct {
	ID             int64     `db:"id" json:"id"`
	ReferrerID     int64     `db:"referral_id" json:"referral_id"`
	NewPlayerID    int64     `db:"new_player_id" json:"new_player_id"`
	ReferralBonus  bool      `db:"referral_bonus" json:"referral_bonus"`
	NewPlayerBonus bool      `db:"new_player_bonus" json:"new_player_bonus"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Friend is a referred player as shown to the referrer.
type Friend struct {
	TgID     int64     `json:"tg_id"`
	Name     string    `json:"name"`
	Coins    int64     `json:"coins"`
	JoinedAt time.Time `json:"joined_at"`
}
