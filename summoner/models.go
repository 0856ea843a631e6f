// Package summoner defines the non-fungible asset record held by the ledger.
package summoner

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity/progression"
	"github.com/xraph/scarcity/types"
)

// Summoner is a single non-fungible asset.
//
// Owner changes on transfer. Minter is written once at summon time and is
// never modified afterwards, whoever holds the summoner.
type Summoner struct {
	types.Entity

	ID       uint64         `json:"id"`
	Kind     uint64         `json:"kind"`
	XP       types.XP       `json:"xp"`
	Owner    common.Address `json:"owner"`
	Minter   common.Address `json:"minter"`
	Approved common.Address `json:"approved"`
}

// Clone returns an independent copy.
func (s *Summoner) Clone() *Summoner {
	c := *s
	return &c
}

// Level returns the level reached with the summoner's current XP.
func (s *Summoner) Level() (uint64, error) {
	return progression.LevelFor(s.XP)
}

// HasApproval reports whether a single-summoner delegate is set.
func (s *Summoner) HasApproval() bool {
	return s.Approved != (common.Address{})
}

// ListOpts filters ListSummoners. Zero-valued filters are ignored.
type ListOpts struct {
	Owner  common.Address
	Minter common.Address
	Kind   *uint64
	Limit  int
	Offset int
}

// Matches reports whether s passes the filters in opts.
func (o ListOpts) Matches(s *Summoner) bool {
	if o.Owner != (common.Address{}) && s.Owner != o.Owner {
		return false
	}
	if o.Minter != (common.Address{}) && s.Minter != o.Minter {
		return false
	}
	if o.Kind != nil && s.Kind != *o.Kind {
		return false
	}
	return true
}
