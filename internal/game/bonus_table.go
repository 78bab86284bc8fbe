package game

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"dogs_webapp/internal/domain"
)

//go:embed daily_bonuses.json
var defaultBonuses []byte

// BonusTable maps a login streak day to its coin reward. It is read-only
// after loading and safe for concurrent use.
type BonusTable struct {
	rewards map[int]int64
	days    []domain.DailyBonus
}

type bonusFile struct {
	Bonuses []domain.DailyBonus `json:"bonuses"`
}

// DefaultBonusTable returns the schedule compiled into the binary.
func DefaultBonusTable() *BonusTable {
	t, err := ParseBonusTable(defaultBonuses)
	if err != nil {
		panic(fmt.Sprintf("embedded daily bonuses: %v", err))
	}
	return t
}

// LoadBonusTable reads the schedule from path, or returns the default one
// when path is empty.
func LoadBonusTable(path string) (*BonusTable, error) {
	if path == "" {
		return DefaultBonusTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bonus table: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read bonus table: %w", err)
	}
	return ParseBonusTable(data)
}

// ParseBonusTable decodes {"bonuses":[{"day":1,"coins":N},...]}.
func ParseBonusTable(data []byte) (*BonusTable, error) {
	var bf bonusFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("decode bonus table: %w", err)
	}

	t := &BonusTable{rewards: make(map[int]int64, len(bf.Bonuses))}
	for _, b := range bf.Bonuses {
		if b.Day <= 0 {
			return nil, fmt.Errorf("bonus table: invalid day %d", b.Day)
		}
		if b.Coins < 0 {
			return nil, fmt.Errorf("bonus table: negative reward for day %d", b.Day)
		}
		if _, dup := t.rewards[b.Day]; dup {
			return nil, fmt.Errorf("bonus table: duplicate day %d", b.Day)
		}
		t.rewards[b.Day] = b.Coins
		t.days = append(t.days, b)
	}
	sort.Slice(t.days, func(i, j int) bool { return t.days[i].Day < t.days[j].Day })
	return t, nil
}

// RewardFor returns the reward for the given streak day, 0 when the day is
// not in the table.
func (t *BonusTable) RewardFor(day int) int64 {
	if t == nil {
		return 0
	}
	return t.rewards[day]
}

// Days returns a copy of the schedule ordered by day.
func (t *BonusTable) Days() []domain.DailyBonus {
	if t == nil {
		return nil
	}
	out := make([]domain.DailyBonus, len(t.days))
	copy(out, t.days)
	return out
}
