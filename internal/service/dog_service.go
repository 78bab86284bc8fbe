package service

import (
	"context"
	"errors"
	"fmt"

	"dogs_webapp/internal/domain"
	"dogs_webapp/internal/game"
)

// ListDogs returns the active dogs ordered by slot and the virtual dog,
// creating the latter when the player has none.
func (s *GameService) ListDogs(ctx context.Context, tgID int64) (*DogsView, error) {
	k, err := s.mutate(ctx, tgID, func(k *game.Kennel) error {
		k.Virtual()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list dogs %d: %w", tgID, err)
	}
	return dogsView(k), nil
}

// PurchaseDog buys the virtual dog onto the lowest free slot.
func (s *GameService) PurchaseDog(ctx context.Context, tgID int64) (*PurchaseResult, error) {
	now := s.clock.Now()
	var dog *domain.Dog

	k, err := s.mutate(ctx, tgID, func(k *game.Kennel) error {
		var err error
		dog, err = k.Purchase(now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("purchase dog %d: %w", tgID, err)
	}
	DogsPurchased.Inc()

	view := dogsView(k)
	s.notify(tgID, view)
	return &PurchaseResult{Dog: dog.Clone(), VirtualDog: view.VirtualDog, Coins: k.Player().Coins}, nil
}

// BreedDogs merges the given pairs in order. When a pair fails after
// earlier pairs were merged, the result describes the committed survivors
// and the error is a *game.BreedError.
func (s *GameService) BreedDogs(ctx context.Context, tgID int64, pairs [][]int64) (*BreedResult, error) {
	if len(pairs) == 0 {
		return nil, domain.ErrNoPairs
	}

	var upgraded []*domain.Dog
	k, err := s.mutate(ctx, tgID, func(k *game.Kennel) error {
		var err error
		upgraded, err = game.Breed(k, pairs)
		return err
	})

	if err != nil {
		var be *game.BreedError
		if !errors.As(err, &be) || len(be.Committed) == 0 {
			return nil, fmt.Errorf("breed dogs %d: %w", tgID, err)
		}
	}

	DogsBred.Add(float64(len(upgraded)))
	view := dogsView(k)
	s.notify(tgID, view)
	return &BreedResult{Upgraded: cloneDogs(upgraded), VirtualDog: view.VirtualDog}, err
}
