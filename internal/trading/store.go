// Package trading implements the position lifecycle coordinator: the entry
// and exit paths, the in-memory position store, the bounded buy-retry queue,
// and the per-position monitoring loops that evaluate stop-loss and
// take-profit rules.
package trading

import (
	"sort"
	"sync"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

// slot wraps one position with its own mutex so that mutations are serialized
// per mint rather than under a single global lock. Unrelated positions stay
// fully concurrent.
type slot struct {
	mu  sync.Mutex
	pos domain.Position
}

// Store is the in-memory single source of truth for open exposure. It also
// owns the "ever purchased" set and the in-flight buy gate: a successful
// purchase permanently blocks re-entry for that mint, and no mint is ever
// bought twice concurrently.
type Store struct {
	mu        sync.RWMutex
	positions map[string]*slot
	purchased map[string]struct{}
	inflight  map[string]struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		positions: make(map[string]*slot),
		purchased: make(map[string]struct{}),
		inflight:  make(map[string]struct{}),
	}
}

// BeginBuy registers a buy attempt for mint. It fails with
// domain.ErrAlreadyPurchased if the mint was ever bought successfully, and
// with domain.ErrBuyInFlight if another attempt for the same mint is still
// running. Callers must follow up with FinishBuy.
func (s *Store) BeginBuy(mint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.purchased[mint]; ok {
		return domain.ErrAlreadyPurchased
	}
	if _, ok := s.inflight[mint]; ok {
		return domain.ErrBuyInFlight
	}
	s.inflight[mint] = struct{}{}
	return nil
}

// FinishBuy releases the in-flight gate for mint. On success the mint is
// added to the purchased set, permanently blocking re-entry.
func (s *Store) FinishBuy(mint string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, mint)
	if success {
		s.purchased[mint] = struct{}{}
	}
}

// Purchased reports whether mint has ever been bought successfully.
func (s *Store) Purchased(mint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.purchased[mint]
	return ok
}

// Create inserts a freshly opened position. At most one position per mint may
// exist; inserting over an existing one is a programming error and reports
// domain.ErrAlreadyPurchased.
func (s *Store) Create(pos domain.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.positions[pos.Mint]; ok {
		return domain.ErrAlreadyPurchased
	}
	s.positions[pos.Mint] = &slot{pos: pos}
	return nil
}

// Get returns a snapshot of the position for mint, if present.
func (s *Store) Get(mint string) (domain.Position, bool) {
	s.mu.RLock()
	sl, ok := s.positions[mint]
	s.mu.RUnlock()
	if !ok {
		return domain.Position{}, false
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.pos, true
}

// List returns snapshots of all open positions, ordered by mint for stable
// output.
func (s *Store) List() []domain.Position {
	s.mu.RLock()
	slots := make([]*slot, 0, len(s.positions))
	for _, sl := range s.positions {
		slots = append(slots, sl)
	}
	s.mu.RUnlock()

	out := make([]domain.Position, 0, len(slots))
	for _, sl := range slots {
		sl.mu.Lock()
		out = append(out, sl.pos)
		sl.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mint < out[j].Mint })
	return out
}

// Count returns the number of open positions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.positions)
}

// AdvanceTakeProfit moves the position's ladder index forward by exactly one.
// The index never decreases and the caller guarantees it is within the ladder.
func (s *Store) AdvanceTakeProfit(mint string) {
	s.mu.RLock()
	sl, ok := s.positions[mint]
	s.mu.RUnlock()
	if !ok {
		return
	}

	sl.mu.Lock()
	sl.pos.TakeProfitIndex++
	sl.mu.Unlock()
}

// ApplySell records a filled sell against the position: CurrentAmount drops
// by amount and RealizedProfitSOL grows by proceedsSOL. When the remaining
// holding falls under the dust threshold the position is removed from the
// store, its terminal transition, and closed is true. The returned snapshot
// reflects the state after the fill.
func (s *Store) ApplySell(mint string, amount uint64, proceedsSOL float64) (pos domain.Position, closed bool, err error) {
	s.mu.RLock()
	sl, ok := s.positions[mint]
	s.mu.RUnlock()
	if !ok {
		return domain.Position{}, false, domain.ErrNotFound
	}

	sl.mu.Lock()
	if amount > sl.pos.CurrentAmount {
		amount = sl.pos.CurrentAmount
	}
	sl.pos.CurrentAmount -= amount
	sl.pos.RealizedProfitSOL += proceedsSOL
	pos = sl.pos
	closed = sl.pos.Closed()
	sl.mu.Unlock()

	if closed {
		s.mu.Lock()
		delete(s.positions, mint)
		s.mu.Unlock()
	}

	return pos, closed, nil
}
