package service

import (
	"dogs_webapp/internal/domain"
	"dogs_webapp/internal/game"
)

// PlayerSnapshot is what a client receives on entering the game.
type PlayerSnapshot struct {
	Player    *domain.Player      `json:"player_info"`
	BonusInfo []domain.DailyBonus `json:"bonus_info"`
	Created   bool                `json:"created"`
}

type DogsView struct {
	Dogs       []*domain.Dog `json:"dogs"`
	VirtualDog *domain.Dog   `json:"virtual_dog"`
}

type DailyLoginResult struct {
	Applied         bool  `json:"applied"`
	Awarded         int64 `json:"awarded"`
	ConsecutiveDays int   `json:"consecutive_days"`
	Coins           int64 `json:"player_coins"`
}

type BonusRequest struct {
	Offline   bool
	PerSecond bool
}

type BonusResult struct {
	TgID      int64 `json:"tg_id"`
	Offline   int64 `json:"offline"`
	PerSecond int64 `json:"per_second"`
	Coins     int64 `json:"player_coins"`
}

type PurchaseResult struct {
	Dog        *domain.Dog `json:"dog"`
	VirtualDog *domain.Dog `json:"virtual_dog"`
	Coins      int64       `json:"player_coins"`
}

type BreedResult struct {
	Upgraded   []*domain.Dog `json:"upgraded_dogs"`
	VirtualDog *domain.Dog   `json:"virtual_dog"`
}

func dogsView(k *game.Kennel) *DogsView {
	active := k.ActiveDogs()
	view := &DogsView{Dogs: make([]*domain.Dog, 0, len(active)), VirtualDog: k.Virtual().Clone()}
	for _, d := range active {
		view.Dogs = append(view.Dogs, d.Clone())
	}
	return view
}

func cloneDogs(dogs []*domain.Dog) []*domain.Dog {
	out := make([]*domain.Dog, 0, len(dogs))
	for _, d := range dogs {
		out = append(out, d.Clone())
	}
	return out
}
