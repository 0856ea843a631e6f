// Package progression implements the summoner leveling curve.
//
// The total experience needed to reach level N from level 0 is
//
//	xp_required(N) = 1000 * N^2
//
// expressed in whole XP (each whole XP is 10^18 base units). Advancing from
// level N to N+1 therefore costs 1000 * (2N + 1) XP, so every level costs
// more than the previous one.
//
// All arithmetic is done on unsigned 256-bit integers and overflow is
// reported as types.ErrOverflow rather than wrapped.
package progression

import (
	"github.com/holiman/uint256"

	"github.com/xraph/scarcity/types"
)

// BaseCost is the whole-XP multiplier of the quadratic curve.
const BaseCost = 1000

// scale is BaseCost expressed in base units (1000 * 10^18).
var scale = new(uint256.Int).Mul(uint256.NewInt(BaseCost), types.Unit())

// XPRequired returns the total XP needed to reach level from level 0.
// A uint64 level cannot overflow: level^2 * 1000 * 10^18 < 2^198.
func XPRequired(level uint64) types.XP {
	xp, err := XPRequiredUint256(uint256.NewInt(level))
	if err != nil {
		// Unreachable for uint64 input.
		panic(err)
	}
	return xp
}

// XPRequiredUint256 is XPRequired for a full 256-bit level. Levels whose
// threshold does not fit in 256 bits return types.ErrOverflow.
func XPRequiredUint256(level *uint256.Int) (types.XP, error) {
	squared, overflow := new(uint256.Int).MulOverflow(level, level)
	if overflow {
		return types.XP{}, types.ErrOverflow
	}
	total, overflow := new(uint256.Int).MulOverflow(squared, scale)
	if overflow {
		return types.XP{}, types.ErrOverflow
	}
	return types.XPFromWei(total), nil
}

// StepCost returns the XP needed to advance from level to level+1,
// i.e. XPRequired(level+1) - XPRequired(level) = 1000 * (2*level + 1).
func StepCost(level uint64) types.XP {
	steps := new(uint256.Int).Mul(uint256.NewInt(level), uint256.NewInt(2))
	steps.AddUint64(steps, 1)
	return types.XPFromWei(steps.Mul(steps, scale))
}

// LevelFor returns the highest level whose XPRequired threshold is at most
// xp. It returns types.ErrOverflow if that level does not fit in a uint64.
func LevelFor(xp types.XP) (uint64, error) {
	quotient := new(uint256.Int).Div(xp.Wei(), scale)
	level := new(uint256.Int).Sqrt(quotient)
	if !level.IsUint64() {
		return 0, types.ErrOverflow
	}
	return level.Uint64(), nil
}
