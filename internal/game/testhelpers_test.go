package game

import (
	"time"

	"dogs_webapp/internal/domain"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestPlayer(coins int64) *domain.Player {
	p := domain.NewPlayer(42, "rex", t0, OfflineWindow)
	p.ID = 1
	p.Coins = coins
	return p
}

func activeDog(id int64, lvl, slot int) *domain.Dog {
	s := slot
	return &domain.Dog{
		ID:             id,
		PlayerID:       1,
		Lvl:            lvl,
		Price:          domain.DefaultDogPrice,
		PercentUpPrice: domain.DefaultPercentUp,
		BonusSecond:    domain.DefaultBonusSecond,
		DogField:       &s,
		IsActive:       true,
	}
}

func virtualDog(id int64) *domain.Dog {
	v := domain.NewVirtualDog(1)
	v.ID = id
	return v
}

func newTestKennel(coins int64, dogs ...*domain.Dog) *Kennel {
	return NewKennel(&domain.Snapshot{Player: newTestPlayer(coins), Dogs: dogs})
}
