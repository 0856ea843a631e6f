package store

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity/settings"
	"github.com/xraph/scarcity/summoner"
)

// Store is the unified storage interface for all Scarcity records.
// The methods of summoner.Store and settings.Store are declared explicitly
// so every backend is checked against one list.
type Store interface {
	// Summoner methods
	NextSummonerID(ctx context.Context) (uint64, error)
	CreateSummoner(ctx context.Context, s *summoner.Summoner) error
	GetSummoner(ctx context.Context, summonerID uint64) (*summoner.Summoner, error)
	ListSummoners(ctx context.Context, opts summoner.ListOpts) ([]*summoner.Summoner, error)
	CountByOwner(ctx context.Context, owner common.Address) (uint64, error)
	TransferSummoner(ctx context.Context, summonerID uint64, from, to common.Address) error
	SetApproved(ctx context.Context, summonerID uint64, owner, approved common.Address) error
	SetOperator(ctx context.Context, owner, operator common.Address, approved bool) error
	IsOperator(ctx context.Context, owner, operator common.Address) (bool, error)

	// Settings methods
	GetSettings(ctx context.Context) (*settings.Settings, error)
	SaveSettings(ctx context.Context, s *settings.Settings) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// compile-time checks that the sub-interfaces stay in sync.
var (
	_ summoner.Store = (Store)(nil)
	_ settings.Store = (Store)(nil)
)
