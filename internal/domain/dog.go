package domain

// Field geometry and defaults for newly created dogs.
const (
	FieldSize = 12

	DefaultDogLevel          = 1
	DefaultDogPrice    int64 = 100
	DefaultPercentUp         = 7.0
	DefaultBonusSecond int64 = 3
	LevelTwoPercentUp        = 17.5
)

// Dog is a collectible unit. Active dogs occupy one slot of the player's
// field; the single inactive dog is the "virtual" template for the next
// purchase.
type Dog struct {
	ID              int64   `db:"id" json:"id"`
	PlayerID        int64   `db:"player_id" json:"player_id"`
	Name            string  `db:"name" json:"name"`
	Lvl             int     `db:"lvl" json:"lvl"`
	Price           int64   `db:"price" json:"price"`
	PercentUpPrice  float64 `db:"percent_up_price" json:"percent_up_price"`
	BonusSecond     int64   `db:"bonus_second" json:"bonus_second"`
	BonusConnection int64   `db:"bonus_connection" json:"bonus_connection"`
	DogField        *int    `db:"dog_field" json:"dog_field"`
	IsActive        bool    `db:"is_active" json:"is_active"`
}

// NewVirtualDog returns the default inactive dog for a player.
func NewVirtualDog(playerID int64) *Dog {
	return &Dog{
		PlayerID:       playerID,
		Lvl:            DefaultDogLevel,
		Price:          DefaultDogPrice,
		PercentUpPrice: DefaultPercentUp,
		BonusSecond:    DefaultBonusSecond,
	}
}

func (d *Dog) Clone() *Dog {
	if d == nil {
		return nil
	}
	cp := *d
	if d.DogField != nil {
		f := *d.DogField
		cp.DogField = &f
	}
	return &cp
}

// Slot returns the field slot or 0 when the dog has none.
func (d *Dog) Slot() int {
	if d.DogField == nil {
		return 0
	}
	return *d.DogField
}
