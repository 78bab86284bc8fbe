package domain

// Snapshot is the state a single operation works on: the player row and
// every dog the player owns, the virtual dog included.
type Snapshot struct {
	Player *Player
	Dogs   []*Dog
}

func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{Player: s.Player.Clone(), Dogs: make([]*Dog, 0, len(s.Dogs))}
	for _, d := range s.Dogs {
		out.Dogs = append(out.Dogs, d.Clone())
	}
	return out
}

// Changes is the diff produced by a state transition. Stores persist
// exactly this and nothing else.
type Changes struct {
	Player       bool
	Created      []*Dog
	Updated      []*Dog
	Deleted      []int64
	Transactions []*Transaction
}

func (c *Changes) Empty() bool {
	return c == nil || (!c.Player && len(c.Created) == 0 && len(c.Updated) == 0 &&
		len(c.Deleted) == 0 && len(c.Transactions) == 0)
}
