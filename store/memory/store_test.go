package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity"
	"github.com/xraph/scarcity/settings"
	"github.com/xraph/scarcity/store/memory"
	"github.com/xraph/scarcity/summoner"
	"github.com/xraph/scarcity/types"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func mint(t *testing.T, s *memory.Store, kind uint64, owner common.Address) uint64 {
	t.Helper()
	ctx := context.Background()
	next, err := s.NextSummonerID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	err = s.CreateSummoner(ctx, &summoner.Summoner{
		Entity: types.NewEntity(),
		ID:     next,
		Kind:   kind,
		Owner:  owner,
		Minter: owner,
	})
	if err != nil {
		t.Fatal(err)
	}
	return next
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if n, _ := s.NextSummonerID(ctx); n != 0 {
		t.Fatalf("NextSummonerID = %d, want 0", n)
	}

	id := mint(t, s, 7, alice)
	got, err := s.GetSummoner(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != 7 || got.Owner != alice || got.Minter != alice {
		t.Errorf("unexpected record: %+v", got)
	}

	// Returned records are copies.
	got.Owner = bob
	again, _ := s.GetSummoner(ctx, id)
	if again.Owner != alice {
		t.Error("mutating a returned record changed the store")
	}

	err = s.CreateSummoner(ctx, &summoner.Summoner{ID: id, Owner: bob, Minter: bob})
	if !errors.Is(err, scarcity.ErrAlreadyExists) {
		t.Errorf("duplicate id: got %v, want ErrAlreadyExists", err)
	}

	if _, err := s.GetSummoner(ctx, 99); !scarcity.IsNotFound(err) {
		t.Errorf("missing id: got %v, want not found", err)
	}
}

func TestTransferCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	id := mint(t, s, 1, alice)

	if err := s.SetApproved(ctx, id, alice, bob); err != nil {
		t.Fatal(err)
	}

	if err := s.TransferSummoner(ctx, id, bob, alice); !errors.Is(err, scarcity.ErrConflict) {
		t.Fatalf("stale owner: got %v, want ErrConflict", err)
	}

	if err := s.TransferSummoner(ctx, id, alice, bob); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetSummoner(ctx, id)
	if got.Owner != bob {
		t.Errorf("Owner = %s, want bob", got.Owner.Hex())
	}
	if got.Minter != alice {
		t.Errorf("Minter = %s, want alice", got.Minter.Hex())
	}
	if got.HasApproval() {
		t.Error("approval survived the transfer")
	}

	if err := s.SetApproved(ctx, id, alice, alice); !errors.Is(err, scarcity.ErrConflict) {
		t.Errorf("approve by stale owner: got %v, want ErrConflict", err)
	}
}

func TestListAndCount(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	for i := 0; i < 5; i++ {
		owner := alice
		if i%2 == 1 {
			owner = bob
		}
		mint(t, s, uint64(i%3), owner)
	}

	n, _ := s.CountByOwner(ctx, alice)
	if n != 3 {
		t.Errorf("CountByOwner(alice) = %d, want 3", n)
	}

	kind := uint64(0)
	tests := []struct {
		name string
		opts summoner.ListOpts
		want []uint64
	}{
		{"all", summoner.ListOpts{}, []uint64{0, 1, 2, 3, 4}},
		{"owner", summoner.ListOpts{Owner: bob}, []uint64{1, 3}},
		{"kind", summoner.ListOpts{Kind: &kind}, []uint64{0, 3}},
		{"page", summoner.ListOpts{Limit: 2, Offset: 1}, []uint64{1, 2}},
		{"past end", summoner.ListOpts{Offset: 10}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListSummoners(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(got), len(tt.want))
			}
			for i, sm := range got {
				if sm.ID != tt.want[i] {
					t.Errorf("result[%d].ID = %d, want %d", i, sm.ID, tt.want[i])
				}
			}
		})
	}
}

func TestOperators(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if ok, _ := s.IsOperator(ctx, alice, bob); ok {
		t.Fatal("operator set by default")
	}
	_ = s.SetOperator(ctx, alice, bob, true)
	if ok, _ := s.IsOperator(ctx, alice, bob); !ok {
		t.Fatal("operator not recorded")
	}
	if ok, _ := s.IsOperator(ctx, bob, alice); ok {
		t.Fatal("operator approval is not symmetric")
	}
	if ops := s.Operators(alice); len(ops) != 1 || ops[0] != bob {
		t.Errorf("Operators(alice) = %v", ops)
	}
	_ = s.SetOperator(ctx, alice, bob, false)
	if ok, _ := s.IsOperator(ctx, alice, bob); ok {
		t.Fatal("operator not revoked")
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, err := s.GetSettings(ctx); !errors.Is(err, scarcity.ErrSettingsNotFound) {
		t.Fatalf("got %v, want ErrSettingsNotFound", err)
	}

	cfg := &settings.Settings{Admin: alice, BaseURI: "test/"}
	if err := s.SaveSettings(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Admin != alice || got.BaseURI != "test/" {
		t.Errorf("unexpected settings: %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	id := mint(t, s, 1, alice)
	_ = s.Close()
	if err := s.Ping(ctx); !errors.Is(err, scarcity.ErrStoreClosed) {
		t.Errorf("Ping after Close = %v, want ErrStoreClosed", err)
	}

	mutations := map[string]func() error{
		"TransferSummoner": func() error { return s.TransferSummoner(ctx, id, alice, bob) },
		"SetApproved":      func() error { return s.SetApproved(ctx, id, alice, bob) },
		"SetOperator":      func() error { return s.SetOperator(ctx, alice, bob, true) },
		"SaveSettings":     func() error { return s.SaveSettings(ctx, &settings.Settings{Admin: alice}) },
	}
	for name, fn := range mutations {
		if err := fn(); !errors.Is(err, scarcity.ErrStoreClosed) {
			t.Errorf("%s after Close = %v, want ErrStoreClosed", name, err)
		}
	}
	if got, _ := s.GetSummoner(ctx, id); got.Owner != alice {
		t.Errorf("owner changed after Close: %s", got.Owner.Hex())
	}
}

func TestListIgnoresNegativePaging(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	for range 3 {
		mint(t, s, 1, alice)
	}

	tests := []struct {
		name string
		opts summoner.ListOpts
		want int
	}{
		{"negative offset", summoner.ListOpts{Offset: -1}, 3},
		{"negative limit", summoner.ListOpts{Offset: 1, Limit: -5}, 2},
		{"both negative", summoner.ListOpts{Offset: -4, Limit: -1}, 3},
		{"offset past end", summoner.ListOpts{Offset: 10, Limit: 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListSummoners(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}
