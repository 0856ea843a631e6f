package progression_test

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/xraph/scarcity/progression"
	"github.com/xraph/scarcity/types"
)

func mustParseXP(t *testing.T, s string) types.XP {
	t.Helper()
	xp, err := types.ParseXP(s)
	if err != nil {
		t.Fatalf("ParseXP(%q): %v", s, err)
	}
	return xp
}

func TestXPRequired(t *testing.T) {
	tests := []struct {
		level uint64
		want  string
	}{
		{0, "0"},
		{1, "1000"},
		{2, "4000"},
		{10, "100000"},
		{999, "998001000"},
		{99999, "9999800001000"},
	}

	for _, tt := range tests {
		t.Run(uint256.NewInt(tt.level).Dec(), func(t *testing.T) {
			got := progression.XPRequired(tt.level)
			want := mustParseXP(t, tt.want)
			if !got.Equal(want) {
				t.Errorf("XPRequired(%d): got %s, want %s", tt.level, got, want)
			}
		})
	}
}

func TestXPRequiredMaxUint64(t *testing.T) {
	got := progression.XPRequired(^uint64(0))
	// (2^64-1)^2 * 1000 whole XP, computed independently.
	maxLevel := new(uint256.Int).SetUint64(^uint64(0))
	want := new(uint256.Int).Mul(maxLevel, maxLevel)
	want.Mul(want, uint256.NewInt(1000))
	want.Mul(want, types.Unit())
	if !got.Equal(types.XPFromWei(want)) {
		t.Errorf("got %s, want %s", got.WeiString(), want.Dec())
	}
}

func TestXPRequiredUint256Overflow(t *testing.T) {
	// 2^128 squared is 2^256, which no longer fits.
	level := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	if _, err := progression.XPRequiredUint256(level); !errors.Is(err, types.ErrOverflow) {
		t.Errorf("expected ErrOverflow for 2^128, got %v", err)
	}

	// 2^100 squares to 2^200 but scaling by 1000*10^18 (~2^70) overflows.
	level = new(uint256.Int).Lsh(uint256.NewInt(1), 100)
	if _, err := progression.XPRequiredUint256(level); !errors.Is(err, types.ErrOverflow) {
		t.Errorf("expected ErrOverflow for 2^100, got %v", err)
	}

	level = uint256.NewInt(99999)
	got, err := progression.XPRequiredUint256(level)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(progression.XPRequired(99999)) {
		t.Errorf("uint256 and uint64 paths disagree: %s", got)
	}
}

func TestXPRequiredMonotonic(t *testing.T) {
	prev := progression.XPRequired(0)
	for level := uint64(1); level <= 500; level++ {
		cur := progression.XPRequired(level)
		if cur.LessThan(prev) {
			t.Fatalf("curve decreased at level %d", level)
		}
		diff, err := cur.Sub(prev)
		if err != nil {
			t.Fatal(err)
		}
		if !diff.Equal(progression.StepCost(level - 1)) {
			t.Fatalf("step %d: got %s, want %s", level-1, diff, progression.StepCost(level-1))
		}
		prev = cur
	}
}

func TestStepCost(t *testing.T) {
	tests := []struct {
		level uint64
		want  uint64
	}{
		{0, 1000},
		{1, 3000},
		{9, 19000},
	}
	for _, tt := range tests {
		if got := progression.StepCost(tt.level); !got.Equal(types.WholeXP(tt.want)) {
			t.Errorf("StepCost(%d): got %s, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelFor(t *testing.T) {
	for _, level := range []uint64{0, 1, 2, 10, 999, 99999} {
		threshold := progression.XPRequired(level)
		got, err := progression.LevelFor(threshold)
		if err != nil {
			t.Fatalf("LevelFor(%s): %v", threshold, err)
		}
		if got != level {
			t.Errorf("LevelFor(XPRequired(%d)) = %d", level, got)
		}

		if level > 0 {
			below, err := threshold.Sub(types.XPFromWei(uint256.NewInt(1)))
			if err != nil {
				t.Fatal(err)
			}
			got, err = progression.LevelFor(below)
			if err != nil {
				t.Fatal(err)
			}
			if got != level-1 {
				t.Errorf("LevelFor(XPRequired(%d)-1) = %d, want %d", level, got, level-1)
			}
		}
	}

	huge := types.XPFromWei(new(uint256.Int).SetAllOne())
	if _, err := progression.LevelFor(huge); !errors.Is(err, types.ErrOverflow) {
		t.Errorf("expected ErrOverflow for max XP, got %v", err)
	}
}
