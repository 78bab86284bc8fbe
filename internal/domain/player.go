package domain

import "time"

// Player is the persisted account of one Telegram user.
type Player struct {
	ID                 int64      `db:"id" json:"id"`
	TgID               int64      `db:"tg_id" json:"tg_id"`
	Name               string     `db:"name" json:"name"`
	RegistrationDate   time.Time  `db:"registration_date" json:"registration_date"`
	Coins              int64      `db:"coins" json:"coins"`
	CoinsSpentToday    int64      `db:"coins_spent_today" json:"coins_spent_today"`
	DailyBonusFriends  int64      `db:"daily_bonus_friends" json:"daily_bonus_friends"`
	ConsecutiveDays    int        `db:"consecutive_days" json:"consecutive_days"`
	LastLoginDate      *time.Time `db:"last_login_date" json:"last_login_date"`
	OfflineCoins       int64      `db:"offline_coins" json:"offline_coins"`
	StartOfflineCoins  *time.Time `db:"start_offline_coins" json:"start_offline_coins"`
	FinishOfflineCoins *time.Time `db:"finish_offline_coins" json:"finish_offline_coins"`
	CoinsInSecond      int64      `db:"coins_in_second" json:"coins_in_second"`
	FinishSecondCoins  *time.Time `db:"finish_second_coins" json:"finish_second_coins"`
	Lvl                int        `db:"lvl" json:"lvl"`
	DailyBonus         bool       `db:"daily_bonus" json:"daily_bonus"`
	Instruction        bool       `db:"instruction" json:"instruction"`
}

// MaxNameLength mirrors the players.name column width.
const MaxNameLength = 50

// NewPlayer returns a player with registration defaults. The offline window
// and the per-second accrual start at now.
func NewPlayer(tgID int64, name string, now time.Time, offlineWindow time.Duration) *Player {
	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	start := now
	finish := now.Add(offlineWindow)
	second := now
	return &Player{
		TgID:               tgID,
		Name:               name,
		RegistrationDate:   now,
		StartOfflineCoins:  &start,
		FinishOfflineCoins: &finish,
		FinishSecondCoins:  &second,
		Lvl:                1,
		DailyBonus:         true,
		Instruction:        true,
	}
}

// Clone returns a deep copy, so that callers can mutate it freely.
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	cp := *p
	cp.LastLoginDate = cloneTime(p.LastLoginDate)
	cp.StartOfflineCoins = cloneTime(p.StartOfflineCoins)
	cp.FinishOfflineCoins = cloneTime(p.FinishOfflineCoins)
	cp.FinishSecondCoins = cloneTime(p.FinishSecondCoins)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
