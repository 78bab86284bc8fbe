package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dogs_webapp/internal/game"
	"dogs_webapp/internal/logger"

	"github.com/redis/go-redis/v9"
)

// guardTTL outlives the day so a late instance cannot take the same date.
const guardTTL = 25 * time.Hour

// Resetter re-arms the daily login bonus of every player.
type Resetter interface {
	ResetDailyBonuses(ctx context.Context) (int64, error)
}

// DailyReset runs the reset at every regional midnight. With Redis the
// first instance to claim the date does the work and the others skip it.
type DailyReset struct {
	svc    Resetter
	rdb    *redis.Client
	clock  game.Clock
	offset time.Duration
	log    *slog.Logger
}

func NewDailyReset(svc Resetter, rdb *redis.Client, clock game.Clock, offset time.Duration) *DailyReset {
	if clock == nil {
		clock = game.RealClock{}
	}
	return &DailyReset{
		svc:    svc,
		rdb:    rdb,
		clock:  clock,
		offset: offset,
		log:    logger.With("component", "daily_reset"),
	}
}

// NextReset returns the first regional midnight strictly after now, in UTC.
func NextReset(now time.Time, offset time.Duration) time.Time {
	return game.RegionalDate(now, offset).AddDate(0, 0, 1).Add(-offset)
}

func guardKey(day time.Time) string {
	return "daily_reset:" + day.Format(time.DateOnly)
}

// RunOnce resets the bonuses for the regional day containing now. It
// reports false when another instance already handled that day.
func (j *DailyReset) RunOnce(ctx context.Context) (bool, error) {
	day := game.RegionalDate(j.clock.Now(), j.offset)

	if j.rdb != nil {
		ok, err := j.rdb.SetNX(ctx, guardKey(day), 1, guardTTL).Result()
		if err != nil {
			return false, fmt.Errorf("claim reset %s: %w", day.Format(time.DateOnly), err)
		}
		if !ok {
			j.log.Info("daily reset already done", "date", day.Format(time.DateOnly))
			return false, nil
		}
	}

	n, err := j.svc.ResetDailyBonuses(ctx)
	if err != nil {
		if j.rdb != nil {
			// release the claim so another instance can retry today
			_ = j.rdb.Del(ctx, guardKey(day)).Err()
		}
		return false, err
	}

	j.log.Info("daily bonuses reset", "date", day.Format(time.DateOnly), "players", n)
	return true, nil
}

// Run blocks until ctx is done, firing RunOnce at each regional midnight.
func (j *DailyReset) Run(ctx context.Context) error {
	for {
		wait := NextReset(j.clock.Now(), j.offset).Sub(j.clock.Now())
		j.log.Debug("next daily reset scheduled", "in", wait.String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if _, err := j.RunOnce(ctx); err != nil {
			j.log.Error("daily reset failed", "error", err)
		}
	}
}
