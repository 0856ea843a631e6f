// Package memory provides an in-process store.Store for tests and demos.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity"
	"github.com/xraph/scarcity/settings"
	"github.com/xraph/scarcity/store"
	"github.com/xraph/scarcity/summoner"
)

var _ store.Store = (*Store)(nil)

type operatorKey struct {
	owner    common.Address
	operator common.Address
}

type Store struct {
	mu sync.RWMutex

	// Summoner storage, indexed by id
	summoners []*summoner.Summoner

	// Operator approvals
	operators map[operatorKey]bool

	// Settings record, nil until first save
	settings *settings.Settings

	closed bool
}

func New() *Store {
	return &Store{
		summoners: make([]*summoner.Summoner, 0),
		operators: make(map[operatorKey]bool),
	}
}

// Summoner Store implementation

func (s *Store) NextSummonerID(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.summoners)), nil
}

func (s *Store) CreateSummoner(_ context.Context, sm *summoner.Summoner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return scarcity.ErrStoreClosed
	}
	if sm.ID < uint64(len(s.summoners)) {
		return scarcity.ErrAlreadyExists
	}
	if sm.ID != uint64(len(s.summoners)) {
		return scarcity.ErrConflict
	}
	s.summoners = append(s.summoners, sm.Clone())
	return nil
}

func (s *Store) GetSummoner(_ context.Context, summonerID uint64) (*summoner.Summoner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if summonerID >= uint64(len(s.summoners)) {
		return nil, scarcity.ErrSummonerNotFound
	}
	return s.summoners[summonerID].Clone(), nil
}

func (s *Store) ListSummoners(_ context.Context, opts summoner.ListOpts) ([]*summoner.Summoner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*summoner.Summoner, 0)
	for _, sm := range s.summoners {
		if opts.Matches(sm) {
			result = append(result, sm.Clone())
		}
	}

	// Apply limit/offset. Non-positive values mean unset.
	start := max(opts.Offset, 0)
	if start > len(result) {
		start = len(result)
	}
	end := len(result)
	if opts.Limit > 0 && opts.Limit < end-start {
		end = start + opts.Limit
	}

	return result[start:end], nil
}

func (s *Store) CountByOwner(_ context.Context, owner common.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n uint64
	for _, sm := range s.summoners {
		if sm.Owner == owner {
			n++
		}
	}
	return n, nil
}

func (s *Store) TransferSummoner(_ context.Context, summonerID uint64, from, to common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return scarcity.ErrStoreClosed
	}

	if summonerID >= uint64(len(s.summoners)) {
		return scarcity.ErrSummonerNotFound
	}
	sm := s.summoners[summonerID]
	if sm.Owner != from {
		return scarcity.ErrConflict
	}

	next := sm.Clone()
	next.Owner = to
	next.Approved = common.Address{}
	next.Touch()
	s.summoners[summonerID] = next
	return nil
}

func (s *Store) SetApproved(_ context.Context, summonerID uint64, owner, approved common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return scarcity.ErrStoreClosed
	}

	if summonerID >= uint64(len(s.summoners)) {
		return scarcity.ErrSummonerNotFound
	}
	sm := s.summoners[summonerID]
	if sm.Owner != owner {
		return scarcity.ErrConflict
	}

	next := sm.Clone()
	next.Approved = approved
	next.Touch()
	s.summoners[summonerID] = next
	return nil
}

func (s *Store) SetOperator(_ context.Context, owner, operator common.Address, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return scarcity.ErrStoreClosed
	}

	key := operatorKey{owner: owner, operator: operator}
	if approved {
		s.operators[key] = true
	} else {
		delete(s.operators, key)
	}
	return nil
}

func (s *Store) IsOperator(_ context.Context, owner, operator common.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.operators[operatorKey{owner: owner, operator: operator}], nil
}

// Operators returns the operators currently approved by owner, sorted by
// address. It is a test helper and not part of store.Store.
func (s *Store) Operators(owner common.Address) []common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []common.Address
	for k := range s.operators {
		if k.owner == owner {
			out = append(out, k.operator)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// Settings Store implementation

func (s *Store) GetSettings(_ context.Context) (*settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, scarcity.ErrSettingsNotFound
	}
	c := *s.settings
	return &c, nil
}

func (s *Store) SaveSettings(_ context.Context, st *settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return scarcity.ErrStoreClosed
	}

	c := *st
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	s.settings = &c
	return nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return scarcity.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
