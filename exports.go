package scarcity

import (
	"github.com/xraph/scarcity/progression"
	"github.com/xraph/scarcity/summoner"
	"github.com/xraph/scarcity/types"
)

// Re-export common types for convenience so users don't have to import the
// leaf packages.

// XP is re-exported from types package.
type XP = types.XP

// Summoner is re-exported from summoner package.
type Summoner = summoner.Summoner

// Re-export XP constructors and the leveling curve.
var (
	WholeXP    = types.WholeXP
	ParseXP    = types.ParseXP
	ZeroXP     = types.ZeroXP
	XPRequired = progression.XPRequired
	LevelFor   = progression.LevelFor
)
