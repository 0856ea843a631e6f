package mongo

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/grove"

	"github.com/xraph/scarcity/settings"
	"github.com/xraph/scarcity/summoner"
	"github.com/xraph/scarcity/types"
)

// settingsDocID is the _id of the single settings document.
const settingsDocID = "ledger"

// ==================== Summoner models ====================

// Ids and kinds are stored as int64; values above MaxInt64 are bit-cast.
type summonerModel struct {
	grove.BaseModel `grove:"table:scarcity_summoners"`

	ID        int64     `grove:"id,pk"      bson:"_id"`
	Kind      int64     `grove:"kind"       bson:"kind"`
	XP        string    `grove:"xp"         bson:"xp"`
	Owner     string    `grove:"owner"      bson:"owner"`
	Minter    string    `grove:"minter"     bson:"minter"`
	Approved  string    `grove:"approved"   bson:"approved"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
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

	ID        string    `grove:"id,pk"      bson:"_id"`
	Owner     string    `grove:"owner"      bson:"owner"`
	Operator  string    `grove:"operator"   bson:"operator"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
}

func operatorDocID(owner, operator common.Address) string {
	return owner.Hex() + ":" + operator.Hex()
}

// ==================== Settings models ====================

type settingsModel struct {
	grove.BaseModel `grove:"table:scarcity_settings"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Admin     string    `grove:"admin"      bson:"admin"`
	BaseURI   string    `grove:"base_uri"   bson:"base_uri"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
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
