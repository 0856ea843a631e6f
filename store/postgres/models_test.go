package postgres

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity/settings"
	"github.com/xraph/scarcity/summoner"
	"github.com/xraph/scarcity/types"
)

func TestSummonerModelConversion(t *testing.T) {
	alice := common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	in := &summoner.Summoner{
		Entity: types.NewEntity(),
		ID:     math.MaxUint64,
		Kind:   math.MaxUint64 - 1,
		XP:     types.WholeXP(1000),
		Owner:  alice,
		Minter: alice,
	}

	m := toSummonerModel(in)
	if m.Approved != "" {
		t.Errorf("zero approval stored as %q, want empty", m.Approved)
	}
	if m.XP != "1000000000000000000000" {
		t.Errorf("XP stored as %q", m.XP)
	}

	out, err := fromSummonerModel(m)
	if err != nil {
		t.Fatal(err)
	}
	if out.ID != in.ID || out.Kind != in.Kind {
		t.Errorf("id/kind = %d/%d, want %d/%d", out.ID, out.Kind, in.ID, in.Kind)
	}
	if !out.XP.Equal(in.XP) || out.Owner != alice || out.HasApproval() {
		t.Errorf("unexpected summoner: %+v", out)
	}
}

func TestSummonerModelRejectsBadXP(t *testing.T) {
	if _, err := fromSummonerModel(&summonerModel{XP: "not-a-number"}); err == nil {
		t.Fatal("expected error for malformed xp")
	}
}

func TestSettingsModelConversion(t *testing.T) {
	admin := common.HexToAddress("0x000000000000000000000000000000000000ad01")
	m := toSettingsModel(&settings.Settings{Admin: admin, BaseURI: "test/"})
	if m.Name != settingsRow {
		t.Errorf("Name = %q, want %q", m.Name, settingsRow)
	}
	got := fromSettingsModel(m)
	if got.Admin != admin || got.BaseURI != "test/" {
		t.Errorf("unexpected settings: %+v", got)
	}
}
