package bolt

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.etcd.io/bbolt"

	"github.com/xraph/scarcity"
	"github.com/xraph/scarcity/settings"
	"github.com/xraph/scarcity/summoner"
	"github.com/xraph/scarcity/types"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func openTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scarcity.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func mint(t *testing.T, s *Store, kind uint64, owner common.Address) uint64 {
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
		XP:     types.WholeXP(5),
		Owner:  owner,
		Minter: owner,
	})
	if err != nil {
		t.Fatal(err)
	}
	return next
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSummonerRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := openTempStore(t)

	if n, _ := s.NextSummonerID(ctx); n != 0 {
		t.Fatalf("NextSummonerID = %d, want 0", n)
	}

	id := mint(t, s, 3, alice)
	if id != 0 {
		t.Fatalf("first id = %d, want 0", id)
	}
	if n, _ := s.NextSummonerID(ctx); n != 1 {
		t.Fatalf("NextSummonerID = %d, want 1", n)
	}

	got, err := s.GetSummoner(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != 3 || got.Owner != alice || got.Minter != alice {
		t.Errorf("unexpected record: %+v", got)
	}
	if !got.XP.Equal(types.WholeXP(5)) {
		t.Errorf("XP = %s, want 5", got.XP)
	}

	err = s.CreateSummoner(ctx, &summoner.Summoner{ID: 0, Owner: bob, Minter: bob})
	if !errors.Is(err, scarcity.ErrAlreadyExists) {
		t.Errorf("duplicate id: got %v, want ErrAlreadyExists", err)
	}
	err = s.CreateSummoner(ctx, &summoner.Summoner{ID: 5, Owner: bob, Minter: bob})
	if !errors.Is(err, scarcity.ErrConflict) {
		t.Errorf("gap id: got %v, want ErrConflict", err)
	}

	if _, err := s.GetSummoner(ctx, 42); !errors.Is(err, scarcity.ErrSummonerNotFound) {
		t.Errorf("missing id: got %v, want ErrSummonerNotFound", err)
	}
}

func TestTransferClearsApproval(t *testing.T) {
	ctx := context.Background()
	s, _ := openTempStore(t)
	id := mint(t, s, 1, alice)

	if err := s.SetApproved(ctx, id, alice, bob); err != nil {
		t.Fatal(err)
	}
	if err := s.TransferSummoner(ctx, id, bob, bob); !errors.Is(err, scarcity.ErrConflict) {
		t.Fatalf("stale owner: got %v, want ErrConflict", err)
	}
	if err := s.TransferSummoner(ctx, id, alice, bob); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetSummoner(ctx, id)
	if got.Owner != bob || got.Minter != alice {
		t.Errorf("owner/minter = %s/%s", got.Owner.Hex(), got.Minter.Hex())
	}
	if got.HasApproval() {
		t.Error("approval survived the transfer")
	}
}

func TestListAndCount(t *testing.T) {
	ctx := context.Background()
	s, _ := openTempStore(t)
	for i := 0; i < 300; i++ {
		owner := alice
		if i%3 == 0 {
			owner = bob
		}
		mint(t, s, uint64(i%2), owner)
	}

	n, err := s.CountByOwner(ctx, bob)
	if err != nil {
		t.Fatal(err)
	}
	if n != 100 {
		t.Errorf("CountByOwner(bob) = %d, want 100", n)
	}

	// Ids past 255 must still sort after smaller ones.
	page, err := s.ListSummoners(ctx, summoner.ListOpts{Owner: bob, Offset: 80, Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{240, 243, 246, 249, 252}
	if len(page) != len(want) {
		t.Fatalf("got %d results, want %d", len(page), len(want))
	}
	for i, sm := range page {
		if sm.ID != want[i] {
			t.Errorf("page[%d].ID = %d, want %d", i, sm.ID, want[i])
		}
	}
}

func TestOperators(t *testing.T) {
	ctx := context.Background()
	s, _ := openTempStore(t)

	if err := s.SetOperator(ctx, alice, bob, true); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.IsOperator(ctx, alice, bob); !ok {
		t.Fatal("operator not recorded")
	}
	if ok, _ := s.IsOperator(ctx, bob, alice); ok {
		t.Fatal("operator approval is not symmetric")
	}
	ops, err := s.Operators(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0] != bob {
		t.Errorf("Operators(alice) = %v", ops)
	}
	if err := s.SetOperator(ctx, alice, bob, false); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.IsOperator(ctx, alice, bob); ok {
		t.Fatal("operator not revoked")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scarcity.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	mint(t, s, 9, alice)
	if err := s.SaveSettings(ctx, &settings.Settings{Admin: alice, BaseURI: "ipfs://x/"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, err := s.GetSummoner(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != 9 || got.Minter != alice {
		t.Errorf("unexpected record after reopen: %+v", got)
	}
	cfg, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Admin != alice || cfg.BaseURI != "ipfs://x/" {
		t.Errorf("unexpected settings after reopen: %+v", cfg)
	}
}

func TestSettingsNotFound(t *testing.T) {
	s, _ := openTempStore(t)
	if _, err := s.GetSettings(context.Background()); !errors.Is(err, scarcity.ErrSettingsNotFound) {
		t.Fatalf("got %v, want ErrSettingsNotFound", err)
	}
}

func TestCanceledContext(t *testing.T) {
	s, _ := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.NextSummonerID(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestIDCounterOverflow(t *testing.T) {
	s, _ := openTempStore(t)
	ctx := context.Background()

	err := s.DB().Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(summonerBucket)).Put(summonerKey(math.MaxUint64), []byte("{}"))
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.NextSummonerID(ctx); !errors.Is(err, scarcity.ErrOverflow) {
		t.Errorf("NextSummonerID = %v, want ErrOverflow", err)
	}
	err = s.CreateSummoner(ctx, &summoner.Summoner{ID: 0, Owner: alice, Minter: alice})
	if !errors.Is(err, scarcity.ErrOverflow) {
		t.Errorf("CreateSummoner = %v, want ErrOverflow", err)
	}
}
