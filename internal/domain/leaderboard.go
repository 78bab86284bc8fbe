package domain

// LeaderboardEntry is one player's standing by coins. Players with equal
// coins share a rank.
type LeaderboardEntry struct {
	Rank  int    `db:"rank" json:"rank"`
	TgID  int64  `db:"tg_id" json:"tg_id"`
	Name  string `db:"name" json:"name"`
	Coins int64  `db:"coins" json:"coins"`
	Lvl   int    `db:"lvl" json:"lvl"`
}
