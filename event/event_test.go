package event_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity/event"
	"github.com/xraph/scarcity/id"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		evt    *event.Event
		typ    event.Type
		from   common.Address
		to     common.Address
		caller common.Address
		mint   bool
	}{
		{"summoned", event.NewSummoned(0, 11, alice), event.TypeTransfer, common.Address{}, alice, alice, true},
		{"transfer", event.NewTransfer(0, alice, bob, alice), event.TypeTransfer, alice, bob, alice, false},
		{"approval", event.NewApproval(3, alice, bob, alice), event.TypeApproval, alice, bob, alice, false},
		{"approval for all", event.NewApprovalForAll(alice, bob, true), event.TypeApprovalForAll, alice, bob, alice, false},
		{"admin", event.NewAdminTransferred(alice, bob), event.TypeAdminTransferred, alice, bob, alice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.evt.Type != tt.typ {
				t.Errorf("Type: got %s, want %s", tt.evt.Type, tt.typ)
			}
			if tt.evt.From != tt.from || tt.evt.To != tt.to {
				t.Errorf("From/To: got %s/%s", tt.evt.From.Hex(), tt.evt.To.Hex())
			}
			if tt.evt.Caller != tt.caller {
				t.Errorf("Caller: got %s, want %s", tt.evt.Caller.Hex(), tt.caller.Hex())
			}
			if tt.evt.IsMint() != tt.mint {
				t.Errorf("IsMint: got %v, want %v", tt.evt.IsMint(), tt.mint)
			}
			if tt.evt.ID.Prefix() != id.PrefixEvent {
				t.Errorf("ID prefix: got %q", tt.evt.ID.Prefix())
			}
			if tt.evt.Timestamp.IsZero() {
				t.Error("Timestamp not set")
			}
		})
	}
}

func TestSummonedCarriesKind(t *testing.T) {
	e := event.NewSummoned(7, 11, alice)
	if e.TokenID != 7 || e.Kind != 11 {
		t.Errorf("got token %d kind %d", e.TokenID, e.Kind)
	}
}
