package summoner

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Store persists summoners and their approvals.
//
// TransferSummoner and SetApproved are compare-and-set on the current owner:
// when the stored owner differs from the expected one the store returns
// scarcity.ErrConflict and changes nothing.
type Store interface {
	NextSummonerID(ctx context.Context) (uint64, error)
	CreateSummoner(ctx context.Context, s *Summoner) error
	GetSummoner(ctx context.Context, summonerID uint64) (*Summoner, error)
	ListSummoners(ctx context.Context, opts ListOpts) ([]*Summoner, error)
	CountByOwner(ctx context.Context, owner common.Address) (uint64, error)
	TransferSummoner(ctx context.Context, summonerID uint64, from, to common.Address) error
	SetApproved(ctx context.Context, summonerID uint64, owner, approved common.Address) error
	SetOperator(ctx context.Context, owner, operator common.Address, approved bool) error
	IsOperator(ctx context.Context, owner, operator common.Address) (bool, error)
}
