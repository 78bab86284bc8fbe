package game

import (
	"sort"
	"time"

	"dogs_webapp/internal/domain"

	"github.com/shopspring/decimal"
)

// Kennel is the in-memory view of one player's account and dogs during a
// single operation. Every mutation goes through it so the resulting diff can
// be handed to the store as domain.Changes.
type Kennel struct {
	player *domain.Player
	dogs   []*domain.Dog

	playerDirty bool
	created     []*domain.Dog
	updated     []*domain.Dog
	deleted     []int64
	txs         []*domain.Transaction
}

// NewKennel wraps a snapshot. The kennel takes ownership of the snapshot's
// pointers.
func NewKennel(snap *domain.Snapshot) *Kennel {
	return &Kennel{player: snap.Player, dogs: snap.Dogs}
}

func (k *Kennel) Player() *domain.Player { return k.player }

// ActiveDogs returns the dogs on the field ordered by slot.
func (k *Kennel) ActiveDogs() []*domain.Dog {
	out := make([]*domain.Dog, 0, domain.FieldSize)
	for _, d := range k.dogs {
		if d.IsActive {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Slot() < out[j].Slot() })
	return out
}

func (k *Kennel) activeCount() int {
	n := 0
	for _, d := range k.dogs {
		if d.IsActive {
			n++
		}
	}
	return n
}

// FindActive returns the active dog with the given id.
func (k *Kennel) FindActive(id int64) *domain.Dog {
	for _, d := range k.dogs {
		if d.IsActive && d.ID == id {
			return d
		}
	}
	return nil
}

// Virtual returns the player's inactive template dog, creating one with
// defaults if the player has none.
func (k *Kennel) Virtual() *domain.Dog {
	var v *domain.Dog
	for _, d := range k.dogs {
		if d.IsActive {
			continue
		}
		if v == nil || (d.ID != 0 && d.ID < v.ID) {
			v = d
		}
	}
	if v != nil {
		return v
	}
	v = domain.NewVirtualDog(k.player.ID)
	k.dogs = append(k.dogs, v)
	k.created = append(k.created, v)
	return v
}

// FindFreeSlot returns the lowest field slot in 1..FieldSize not taken by
// an active dog.
func FindFreeSlot(dogs []*domain.Dog) (int, bool) {
	var taken [domain.FieldSize + 1]bool
	for _, d := range dogs {
		if !d.IsActive {
			continue
		}
		if s := d.Slot(); s >= 1 && s <= domain.FieldSize {
			taken[s] = true
		}
	}
	for slot := 1; slot <= domain.FieldSize; slot++ {
		if !taken[slot] {
			return slot, true
		}
	}
	return 0, false
}

// RecomputeVirtual refreshes the virtual dog after the field changed.
// With withPrice the purchase variant also grows the price; without it only
// the level-derived attributes move.
func (k *Kennel) RecomputeVirtual(withPrice bool) {
	v := k.Virtual()

	maxLvl := 0
	for _, d := range k.dogs {
		if d.IsActive && d.Lvl > maxLvl {
			maxLvl = d.Lvl
		}
	}
	if maxLvl == 0 {
		maxLvl = 1
	}

	changed := false
	if maxLvl >= v.Lvl {
		v.Lvl = VirtualLevel(maxLvl)
		v.BonusSecond *= int64(v.Lvl)
		v.BonusConnection = int64(v.Lvl - 1)
		changed = true
		if !withPrice && v.Lvl == 2 {
			v.PercentUpPrice = domain.LevelTwoPercentUp
		}
	}

	if withPrice {
		v.Price = GrowPrice(v.Price, v.PercentUpPrice)
		if v.Lvl == 2 {
			v.PercentUpPrice = domain.LevelTwoPercentUp
		}
		changed = true
	}

	if changed {
		k.touch(v)
	}
}

// VirtualLevel is the level offered for purchase given the highest active
// level: one extra level per five levels reached, starting at 1.
func VirtualLevel(maxActive int) int {
	if maxActive >= 5 {
		return maxActive/5 + 1
	}
	return 1
}

// GrowPrice returns floor(price * (1 + percent/100)) computed exactly.
func GrowPrice(price int64, percent float64) int64 {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)))
	return decimal.NewFromInt(price).Mul(factor).Floor().IntPart()
}

// Purchase buys the virtual dog: it is copied onto the lowest free slot and
// the virtual dog is recomputed with price growth.
func (k *Kennel) Purchase(now time.Time) (*domain.Dog, error) {
	if k.activeCount() >= domain.FieldSize {
		return nil, domain.ErrUnitLimitReached
	}
	slot, ok := FindFreeSlot(k.dogs)
	if !ok {
		return nil, domain.ErrUnitLimitReached
	}

	v := k.Virtual()
	if k.player.Coins < v.Price {
		return nil, domain.ErrInsufficientFunds
	}

	k.player.Coins -= v.Price
	k.player.CoinsSpentToday += v.Price
	k.player.CoinsInSecond += v.BonusSecond
	k.playerDirty = true

	dog := &domain.Dog{
		PlayerID:        k.player.ID,
		Lvl:             v.Lvl,
		Price:           v.Price,
		PercentUpPrice:  v.PercentUpPrice,
		BonusSecond:     v.BonusSecond,
		BonusConnection: v.BonusConnection,
		DogField:        &slot,
		IsActive:        true,
	}
	k.dogs = append(k.dogs, dog)
	k.created = append(k.created, dog)
	k.record(now, domain.TxDogPurchase, -v.Price, map[string]interface{}{
		"lvl":  dog.Lvl,
		"slot": slot,
	})

	k.RecomputeVirtual(true)
	return dog, nil
}

// MarkPlayerDirty records that the player row must be written.
func (k *Kennel) MarkPlayerDirty() { k.playerDirty = true }

func (k *Kennel) touch(d *domain.Dog) {
	for _, c := range k.created {
		if c == d {
			return
		}
	}
	for _, u := range k.updated {
		if u == d {
			return
		}
	}
	k.updated = append(k.updated, d)
}

func (k *Kennel) remove(d *domain.Dog) {
	for i, x := range k.dogs {
		if x == d {
			k.dogs = append(k.dogs[:i], k.dogs[i+1:]...)
			break
		}
	}
	for i, u := range k.updated {
		if u == d {
			k.updated = append(k.updated[:i], k.updated[i+1:]...)
			break
		}
	}
	k.deleted = append(k.deleted, d.ID)
}

func (k *Kennel) record(now time.Time, typ string, amount int64, meta map[string]interface{}) {
	if amount == 0 {
		return
	}
	k.txs = append(k.txs, &domain.Transaction{
		PlayerID:  k.player.ID,
		Type:      typ,
		Amount:    amount,
		Meta:      meta,
		CreatedAt: now,
	})
}

// Changes returns the diff accumulated so far.
func (k *Kennel) Changes() *domain.Changes {
	return &domain.Changes{
		Player:       k.playerDirty,
		Created:      append([]*domain.Dog(nil), k.created...),
		Updated:      append([]*domain.Dog(nil), k.updated...),
		Deleted:      append([]int64(nil), k.deleted...),
		Transactions: append([]*domain.Transaction(nil), k.txs...),
	}
}
