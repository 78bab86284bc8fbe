package ws

import "dogs_webapp/internal/domain"

const (
	// client - server
	ActionGetDogs    = "get_dogs"
	ActionCreateDog  = "create_dog"
	ActionUpdateDogs = "update_dogs"
)

// ClientMessage is what a player sends over the socket.
type ClientMessage struct {
	Action   string    `json:"action"`
	DogPairs [][]int64 `json:"dog_pairs,omitempty"`
}

// DogsMessage carries the player's field. It is the reply to every action
// and is pushed whenever the field changes elsewhere.
type DogsMessage struct {
	Action     string        `json:"action"`
	Dogs       []*domain.Dog `json:"dogs"`
	VirtualDog *domain.Dog   `json:"virtual_dog"`
}

// ErrorMessage reports a failed action. FailedPair and Committed are only
// set when a breeding batch stopped part way.
type ErrorMessage struct {
	Error      string        `json:"error"`
	FailedPair *int          `json:"failed_pair,omitempty"`
	Committed  []*domain.Dog `json:"committed,omitempty"`
}
