package game

import (
	"time"

	"dogs_webapp/internal/domain"
)

const (
	// RegionalDayOffset shifts UTC to the game's regional calendar day.
	// It is a fixed offset and ignores daylight saving.
	RegionalDayOffset = 4 * time.Hour

	// OfflineWindow is how long offline coins take to become collectable.
	OfflineWindow = 3 * time.Hour
)

// RegionalDate returns the calendar date of now in the regional day, as a
// UTC midnight.
func RegionalDate(now time.Time, offset time.Duration) time.Time {
	t := now.UTC().Add(offset)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StreakResult describes what ApplyLoginStreak did.
type StreakResult struct {
	Applied bool
	Day     int
	Awarded int64
}

// ApplyLoginStreak advances the consecutive-day counter and pays the reward
// for the resulting day. It does nothing once today's bonus was taken
// (daily_bonus is false). It never clears daily_bonus itself.
func ApplyLoginStreak(k *Kennel, table *BonusTable, now time.Time, offset time.Duration) StreakResult {
	p := k.player
	if !p.DailyBonus {
		return StreakResult{Day: p.ConsecutiveDays}
	}

	today := RegionalDate(now, offset)
	if p.LastLoginDate != nil {
		diff := int(today.Sub(dateOf(*p.LastLoginDate)).Hours() / 24)
		if diff == 1 {
			p.ConsecutiveDays++
		} else {
			p.ConsecutiveDays = 1
		}
	} else {
		p.ConsecutiveDays = 1
	}

	reward := table.RewardFor(p.ConsecutiveDays)
	p.Coins += reward
	p.LastLoginDate = &today
	k.MarkPlayerDirty()
	k.record(now, domain.TxDailyBonus, reward, map[string]interface{}{"day": p.ConsecutiveDays})

	return StreakResult{Applied: true, Day: p.ConsecutiveDays, Awarded: reward}
}

// CollectOfflineBonus pays offline_coins once the current window has
// finished and opens a new window starting at now.
func CollectOfflineBonus(k *Kennel, now time.Time) (int64, error) {
	p := k.player
	if p.FinishOfflineCoins == nil || now.Before(*p.FinishOfflineCoins) {
		return 0, domain.ErrBonusNotReady
	}

	award := p.OfflineCoins
	if award < 0 {
		award = 0
	}
	start := now
	finish := now.Add(OfflineWindow)
	p.Coins += award
	p.StartOfflineCoins = &start
	p.FinishOfflineCoins = &finish
	k.MarkPlayerDirty()
	k.record(now, domain.TxOfflineBonus, award, nil)
	return award, nil
}

// CollectPerSecondBonus pays coins_in_second for every whole second elapsed
// since the last collection and restarts the accrual at now.
func CollectPerSecondBonus(k *Kennel, now time.Time) int64 {
	p := k.player
	var award int64
	var elapsed int64
	if p.FinishSecondCoins != nil {
		elapsed = int64(now.Sub(*p.FinishSecondCoins) / time.Second)
		if elapsed < 0 {
			elapsed = 0
		}
		award = elapsed * p.CoinsInSecond
		if award < 0 {
			award = 0
		}
	}

	at := now
	p.Coins += award
	p.FinishSecondCoins = &at
	k.MarkPlayerDirty()
	k.record(now, domain.TxSecondBonus, award, map[string]interface{}{"seconds": elapsed})
	return award
}

// BonusSelection picks which accruals CollectBonuses should pay.
type BonusSelection struct {
	Offline   bool
	PerSecond bool
}

type BonusOutcome struct {
	Offline   int64
	PerSecond int64
}

func (o BonusOutcome) Total() int64 { return o.Offline + o.PerSecond }

// CollectBonuses runs the selected accruals, offline first. If the offline
// bonus is not ready the per-second bonus is not applied either, and the
// caller must discard the kennel.
func CollectBonuses(k *Kennel, sel BonusSelection, now time.Time) (BonusOutcome, error) {
	var out BonusOutcome
	if !sel.Offline && !sel.PerSecond {
		return out, domain.ErrNoBonusSelected
	}
	if sel.Offline {
		award, err := CollectOfflineBonus(k, now)
		if err != nil {
			return out, err
		}
		out.Offline = award
	}
	if sel.PerSecond {
		out.PerSecond = CollectPerSecondBonus(k, now)
	}
	return out, nil
}
