package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PlayersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dogs_players_created_total",
			Help: "Players registered",
		},
	)
	DogsPurchased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dogs_purchased_total",
			Help: "Dogs bought from the virtual slot",
		},
	)
	DogsBred = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dogs_bred_pairs_total",
			Help: "Dog pairs merged",
		},
	)
	BonusClaims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dogs_bonus_claims_total",
			Help: "Bonus claims by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	CoinsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dogs_coins_awarded_total",
			Help: "Coins credited to players by source",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(PlayersCreated)
	prometheus.MustRegister(DogsPurchased)
	prometheus.MustRegister(DogsBred)
	prometheus.MustRegister(BonusClaims)
	prometheus.MustRegister(CoinsAwarded)
}

func outcome(err error) string {
	if err != nil {
		return "rejected"
	}
	return "ok"
}
