package mongo

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity/summoner"
	"github.com/xraph/scarcity/types"
)

func TestSummonerModelConversion(t *testing.T) {
	bob := common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol := common.HexToAddress("0x00000000000000000000000000000000000ca201")
	in := &summoner.Summoner{
		Entity:   types.NewEntity(),
		ID:       42,
		Kind:     math.MaxUint64,
		Owner:    bob,
		Minter:   carol,
		Approved: carol,
	}

	out, err := fromSummonerModel(toSummonerModel(in))
	if err != nil {
		t.Fatal(err)
	}
	if out.ID != 42 || out.Kind != math.MaxUint64 {
		t.Errorf("id/kind = %d/%d", out.ID, out.Kind)
	}
	if out.Owner != bob || out.Minter != carol || out.Approved != carol {
		t.Errorf("unexpected addresses: %+v", out)
	}
	if !out.XP.IsZero() {
		t.Errorf("XP = %s, want 0", out.XP)
	}
}

func TestOperatorDocID(t *testing.T) {
	a := common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	b := common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	if operatorDocID(a, b) == operatorDocID(b, a) {
		t.Fatal("operator ids must be directional")
	}
}

func TestMigrationIndexes(t *testing.T) {
	idx := migrationIndexes()
	for _, col := range []string{colSummoners, colOperators} {
		if len(idx[col]) == 0 {
			t.Errorf("no indexes for %s", col)
		}
	}
}
