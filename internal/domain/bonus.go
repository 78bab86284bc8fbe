package domain

// DailyBonus is one row of the login reward schedule.
type DailyBonus struct {
	Day   int   `json:"day"`
	Coins int64 `json:"coins"`
}
