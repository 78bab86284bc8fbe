package game

import (
	"fmt"

	"dogs_webapp/internal/domain"
)

// BreedError reports a batch that stopped at pair index Pair. Pairs before
// it were merged and are listed in Committed.
type BreedError struct {
	Pair      int
	Committed []*domain.Dog
	Err       error
}

func (e *BreedError) Error() string {
	return fmt.Sprintf("breed pair %d: %v", e.Pair, e.Err)
}

func (e *BreedError) Unwrap() error { return e.Err }

// Breed merges each pair in order: the first dog of the pair gains a level,
// the second is removed and coins_in_second grows by the survivor's new
// level minus one. The virtual dog is recomputed once after the whole batch
// succeeds.
func Breed(k *Kennel, pairs [][]int64) ([]*domain.Dog, error) {
	if len(pairs) == 0 {
		return nil, domain.ErrNoPairs
	}

	upgraded := make([]*domain.Dog, 0, len(pairs))
	for i, pair := range pairs {
		survivor, donor, err := k.resolvePair(pair)
		if err != nil {
			return upgraded, &BreedError{Pair: i, Committed: upgraded, Err: err}
		}

		survivor.Lvl++
		k.touch(survivor)
		k.remove(donor)

		k.player.CoinsInSecond += int64(survivor.Lvl - 1)
		k.MarkPlayerDirty()
		upgraded = append(upgraded, survivor)
	}

	k.RecomputeVirtual(false)
	return upgraded, nil
}

func (k *Kennel) resolvePair(pair []int64) (*domain.Dog, *domain.Dog, error) {
	if len(pair) != 2 || pair[0] == pair[1] {
		return nil, nil, domain.ErrInvalidPair
	}
	a := k.FindActive(pair[0])
	b := k.FindActive(pair[1])
	if a == nil || b == nil {
		return nil, nil, domain.ErrInvalidPair
	}
	if a.Lvl != b.Lvl {
		return nil, nil, domain.ErrLevelMismatch
	}
	return a, b, nil
}
