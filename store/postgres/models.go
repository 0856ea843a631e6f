package postgres

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/grove"

	"github.com/xraph/scarcity/settings"
	"github.com/xraph/scarcity/summoner"
	"github.com/xraph/scarcity/types"
)

// settingsRow is the primary key of the single settings record.
const settingsRow = "ledger"

// ==================== Summoner models ====================

// Ids and kinds are uint64 in Go and BIGINT in Postgres; values above
// MaxInt64 are stored bit-cast, which keeps equality filters exact.
type summonerModel struct {
	grove.BaseModel `grove:"table:scarcity_summoners"`

	ID        int64     `grove:"id,pk"`
	Kind      int64     `grove:"kind"`
	XP        string    `grove:"xp"`
	Owner     string    `grove:"owner"`
	Minter    string    `grove:"minter"`
	Approved  string    `grove:"approved"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toSummonerModel(s *summoner.Summoner) *summonerModel {
	return &summonerModel{
		ID:        int64(s.ID),   //nolint:gosec // bit-cast, see summonerModel
		Kind:      int64(s.Kind), //nolint:gosec // bit-cast, see summonerModel
		XP:        s.XP.WeiString(),
		Owner:     addrString(s.Owner),
		Minter:    addrString(s.Minter),
		Approved:  addrString(s.Approved),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func fromSummonerModel(m *summonerModel) (*summoner.Summoner, error) {
	xp, err := types.ParseWei(m.XP)
	if err != nil {
		return nil, err
	}

	return &summoner.Summoner{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       uint64(m.ID),   //nolint:gosec // bit-cast, see summonerModel
		Kind:     uint64(m.Kind), //nolint:gosec // bit-cast, see summonerModel
		XP:       xp,
		Owner:    common.HexToAddress(m.Owner),
		Minter:   common.HexToAddress(m.Minter),
		Approved: common.HexToAddress(m.Approved),
	}, nil
}

// ==================== Operator models ====================

type operatorModel struct {
	grove.BaseModel `grove:"table:scarcity_operators"`

	Owner     string    `grove:"owner,pk"`
	Operator  string    `grove:"operator,pk"`
	CreatedAt time.Time `grove:"created_at"`
}

// ==================== Settings models ====================

type settingsModel struct {
	grove.BaseModel `grove:"table:scarcity_settings"`

	Name      string    `grove:"name,pk"`
	Admin     string    `grove:"admin"`
	BaseURI   string    `grove:"base_uri"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toSettingsModel(s *settings.Settings) *settingsModel {
	return &settingsModel{
		Name:      settingsRow,
		Admin:     addrString(s.Admin),
		BaseURI:   s.BaseURI,
		UpdatedAt: s.UpdatedAt,
	}
}

func fromSettingsModel(m *settingsModel) *settings.Settings {
	return &settings.Settings{
		Admin:     common.HexToAddress(m.Admin),
		BaseURI:   m.BaseURI,
		UpdatedAt: m.UpdatedAt,
	}
}

// addrString renders an address for storage; the zero address is empty.
func addrString(a common.Address) string {
	if a == (common.Address{}) {
		return ""
	}
	return a.Hex()
}
