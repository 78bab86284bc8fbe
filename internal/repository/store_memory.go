package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"dogs_webapp/internal/domain"
)

var errConstraint = errors.New("constraint violation")

// MemoryStore keeps everything in process memory (dev/test use). It checks
// the same uniqueness rules the SQL schema enforces.
type MemoryStore struct {
	mu sync.Mutex

	players   map[int64]*domain.Player // by tg_id
	dogs      map[int64]*domain.Dog    // by dog id
	referrals []*domain.Referral
	txs       map[int64][]*domain.Transaction // by player id

	nextPlayerID int64
	nextDogID    int64
	nextRefID    int64
	nextTxID     int64

	failure error
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:      make(map[int64]*domain.Player),
		dogs:         make(map[int64]*domain.Dog),
		txs:          make(map[int64][]*domain.Transaction),
		nextPlayerID: 1,
		nextDogID:    1,
		nextRefID:    1,
		nextTxID:     1,
		now:          time.Now,
	}
}

// SetFailure makes every following call fail with a storage error wrapping
// err. Pass nil to recover.
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	s.failure = err
	s.mu.Unlock()
}

func (s *MemoryStore) failed(op string) error {
	if s.failure != nil {
		return storageErr(op, s.failure)
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed("ping")
}

func (s *MemoryStore) snapshotLocked(p *domain.Player) *domain.Snapshot {
	snap := &domain.Snapshot{Player: p.Clone()}
	for _, d := range s.dogs {
		if d.PlayerID == p.ID {
			snap.Dogs = append(snap.Dogs, d.Clone())
		}
	}
	sort.Slice(snap.Dogs, func(i, j int) bool { return snap.Dogs[i].ID < snap.Dogs[j].ID })
	return snap
}

func (s *MemoryStore) LoadPlayer(ctx context.Context, tgID int64) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("load player"); err != nil {
		return nil, err
	}

	p, ok := s.players[tgID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return s.snapshotLocked(p), nil
}

func (s *MemoryStore) CreatePlayer(ctx context.Context, p *domain.Player) (*domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("create player"); err != nil {
		return nil, false, err
	}

	if existing, ok := s.players[p.TgID]; ok {
		return s.snapshotLocked(existing), false, nil
	}

	p.ID = s.nextPlayerID
	s.nextPlayerID++
	s.players[p.TgID] = p.Clone()

	virtual := domain.NewVirtualDog(p.ID)
	virtual.ID = s.nextDogID
	s.nextDogID++
	s.dogs[virtual.ID] = virtual.Clone()

	return &domain.Snapshot{Player: p, Dogs: []*domain.Dog{virtual}}, true, nil
}

// UpdatePlayer holds the store lock for the whole transition, which gives
// the same per-player exclusion as a row lock.
func (s *MemoryStore) UpdatePlayer(ctx context.Context, tgID int64, fn MutateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("update player"); err != nil {
		return err
	}

	stored, ok := s.players[tgID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	snap := s.snapshotLocked(stored)

	changes, opErr := fn(snap)
	if changes == nil || changes.Empty() {
		return opErr
	}
	if err := s.checkLocked(snap.Player.ID, changes); err != nil {
		return storageErr("apply changes", err)
	}
	s.applyLocked(snap.Player, changes)
	return opErr
}

// checkLocked validates the post-change dog set before anything is written,
// so a rejected diff leaves the store untouched.
func (s *MemoryStore) checkLocked(playerID int64, ch *domain.Changes) error {
	after := make(map[int64]*domain.Dog)
	for id, d := range s.dogs {
		if d.PlayerID == playerID {
			after[id] = d
		}
	}
	for _, id := range ch.Deleted {
		delete(after, id)
	}
	for _, d := range ch.Updated {
		if _, ok := after[d.ID]; !ok {
			return fmt.Errorf("%w: dog %d does not exist", errConstraint, d.ID)
		}
		after[d.ID] = d
	}

	slots := make(map[int]bool)
	virtual := 0
	check := func(d *domain.Dog) error {
		if !d.IsActive {
			virtual++
			if virtual > 1 {
				return fmt.Errorf("%w: second virtual dog", errConstraint)
			}
			return nil
		}
		slot := d.Slot()
		if slot < 1 || slot > domain.FieldSize {
			return fmt.Errorf("%w: slot %d out of range", errConstraint, slot)
		}
		if slots[slot] {
			return fmt.Errorf("%w: slot %d taken", errConstraint, slot)
		}
		slots[slot] = true
		return nil
	}
	for _, d := range after {
		if err := check(d); err != nil {
			return err
		}
	}
	for _, d := range ch.Created {
		if err := check(d); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) applyLocked(p *domain.Player, ch *domain.Changes) {
	for _, id := range ch.Deleted {
		delete(s.dogs, id)
	}
	for _, d := range ch.Updated {
		s.dogs[d.ID] = d.Clone()
	}
	for _, d := range ch.Created {
		d.ID = s.nextDogID
		d.PlayerID = p.ID
		s.nextDogID++
		s.dogs[d.ID] = d.Clone()
	}
	if ch.Player {
		s.players[p.TgID] = p.Clone()
	}
	for _, t := range ch.Transactions {
		t.ID = s.nextTxID
		t.PlayerID = p.ID
		s.nextTxID++
		cp := *t
		s.txs[p.ID] = append(s.txs[p.ID], &cp)
	}
}

func (s *MemoryStore) CreateReferral(ctx context.Context, referrerTgID, newPlayerTgID int64) (*domain.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("create referral"); err != nil {
		return nil, err
	}

	referrer, ok := s.players[referrerTgID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	newPlayer, ok := s.players[newPlayerTgID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	if referrer.ID == newPlayer.ID {
		return nil, domain.ErrSelfReferral
	}
	for _, r := range s.referrals {
		if r.ReferrerID == referrer.ID && r.NewPlayerID == newPlayer.ID {
			return nil, domain.ErrDuplicateReferral
		}
	}

	ref := &domain.Referral{
		ID:             s.nextRefID,
		ReferrerID:     referrer.ID,
		NewPlayerID:    newPlayer.ID,
		ReferralBonus:  true,
		NewPlayerBonus: true,
		CreatedAt:      s.now(),
	}
	s.nextRefID++
	s.referrals = append(s.referrals, ref)
	cp := *ref
	return &cp, nil
}

func (s *MemoryStore) ListReferrals(ctx context.Context, tgID int64) ([]domain.Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("list referrals"); err != nil {
		return nil, err
	}

	friends := []domain.Friend{}
	referrer, ok := s.players[tgID]
	if !ok {
		return friends, nil
	}
	byID := make(map[int64]*domain.Player, len(s.players))
	for _, p := range s.players {
		byID[p.ID] = p
	}
	for i := len(s.referrals) - 1; i >= 0; i-- {
		r := s.referrals[i]
		if r.ReferrerID != referrer.ID {
			continue
		}
		if np, ok := byID[r.NewPlayerID]; ok {
			friends = append(friends, domain.Friend{TgID: np.TgID, Name: np.Name, Coins: np.Coins, JoinedAt: r.CreatedAt})
		}
	}
	return friends, nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, tgID int64, limit int) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("list transactions"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	out := []*domain.Transaction{}
	p, ok := s.players[tgID]
	if !ok {
		return out, nil
	}
	txs := s.txs[p.ID]
	for i := len(txs) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *txs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) ResetDailyBonuses(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("reset daily bonuses"); err != nil {
		return 0, err
	}

	var n int64
	for _, p := range s.players {
		if !p.DailyBonus || p.CoinsSpentToday != 0 {
			p.DailyBonus = true
			p.CoinsSpentToday = 0
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) TopPlayers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("top players"); err != nil {
		return nil, err
	}

	players := make([]*domain.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Coins != players[j].Coins {
			return players[i].Coins > players[j].Coins
		}
		return players[i].TgID < players[j].TgID
	})

	top := []domain.LeaderboardEntry{}
	for i, p := range players {
		if i == limit {
			break
		}
		rank := i + 1
		if i > 0 && p.Coins == players[i-1].Coins {
			rank = top[i-1].Rank
		}
		top = append(top, leaderboardEntry(p, rank))
	}
	return top, nil
}

func (s *MemoryStore) PlayerRank(ctx context.Context, tgID int64) (*domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("player rank"); err != nil {
		return nil, err
	}

	p, ok := s.players[tgID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	rank := 1
	for _, o := range s.players {
		if o.Coins > p.Coins {
			rank++
		}
	}
	e := leaderboardEntry(p, rank)
	return &e, nil
}

func leaderboardEntry(p *domain.Player, rank int) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{Rank: rank, TgID: p.TgID, Name: p.Name, Coins: p.Coins, Lvl: p.Lvl}
}
