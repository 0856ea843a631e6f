// Package types provides common types used across Scarcity.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional decimal digits carried by an XP amount.
const Decimals = 18

var (
	// ErrOverflow is returned when XP arithmetic leaves the 256-bit range.
	ErrOverflow = errors.New("scarcity: arithmetic overflow")

	// ErrInvalidXP is returned when an XP amount cannot be parsed.
	ErrInvalidXP = errors.New("scarcity: invalid xp amount")
)

// unit is 10^18, one whole experience point expressed in base units.
var unit = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Decimals))

// Unit returns a copy of 10^18, the base-unit size of one whole XP.
func Unit() *uint256.Int { return new(uint256.Int).Set(unit) }

// XP is a non-negative fixed-point experience amount with 18 fractional
// digits, stored as an unsigned 256-bit integer of base units.
// Arithmetic is checked: overflow and underflow are reported, never wrapped.
//
// Examples:
//   - WholeXP(1000) is 1000 XP (1000 * 10^18 base units)
//   - ParseXP("0.5") is half an XP (5 * 10^17 base units)
type XP struct {
	wei uint256.Int
}

// ZeroXP returns an XP amount of zero.
func ZeroXP() XP { return XP{} }

// WholeXP returns n whole experience points. It cannot overflow: the
// largest uint64 scaled by 10^18 stays far below 2^256.
func WholeXP(n uint64) XP {
	var x XP
	x.wei.Mul(uint256.NewInt(n), unit)
	return x
}

// XPFromWei wraps an amount already expressed in base units.
func XPFromWei(v *uint256.Int) XP {
	var x XP
	if v != nil {
		x.wei.Set(v)
	}
	return x
}

// ParseXP parses a decimal amount of whole XP such as "1000" or "12.5".
// At most 18 fractional digits are accepted.
func ParseXP(s string) (XP, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return XP{}, fmt.Errorf("%w: %q", ErrInvalidXP, s)
	}
	if d.IsNegative() {
		return XP{}, fmt.Errorf("%w: %q is negative", ErrInvalidXP, s)
	}

	scaled := d.Shift(Decimals)
	if !scaled.IsInteger() {
		return XP{}, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidXP, s, Decimals)
	}

	v, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return XP{}, fmt.Errorf("%w: %q", ErrOverflow, s)
	}
	return XPFromWei(v), nil
}

// ParseWei parses a base-10 integer count of base units. Stores use it to
// decode persisted amounts.
func ParseWei(s string) (XP, error) {
	if s == "" {
		return XP{}, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return XP{}, fmt.Errorf("%w: %q: %v", ErrInvalidXP, s, err)
	}
	return XPFromWei(v), nil
}

// Arithmetic operations

// Add returns x + other, or ErrOverflow.
func (x XP) Add(other XP) (XP, error) {
	var r XP
	if _, overflow := r.wei.AddOverflow(&x.wei, &other.wei); overflow {
		return XP{}, ErrOverflow
	}
	return r, nil
}

// Sub returns x - other, or ErrOverflow when other is larger than x.
func (x XP) Sub(other XP) (XP, error) {
	var r XP
	if _, underflow := r.wei.SubOverflow(&x.wei, &other.wei); underflow {
		return XP{}, ErrOverflow
	}
	return r, nil
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (x XP) IsZero() bool { return x.wei.IsZero() }

// Cmp compares x and other and returns -1, 0 or +1.
func (x XP) Cmp(other XP) int { return x.wei.Cmp(&other.wei) }

// Equal returns true if both amounts are equal.
func (x XP) Equal(other XP) bool { return x.wei.Eq(&other.wei) }

// LessThan returns true if x is smaller than other.
func (x XP) LessThan(other XP) bool { return x.wei.Lt(&other.wei) }

// GreaterThan returns true if x is larger than other.
func (x XP) GreaterThan(other XP) bool { return x.wei.Gt(&other.wei) }

// Conversion and formatting

// Wei returns a copy of the amount in base units.
func (x XP) Wei() *uint256.Int { return new(uint256.Int).Set(&x.wei) }

// WeiString returns the amount in base units as a base-10 string.
func (x XP) WeiString() string { return x.wei.Dec() }

// Decimal returns the amount in whole XP as an exact decimal.
func (x XP) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(x.wei.ToBig(), -Decimals)
}

// String renders the amount in whole XP, e.g. "1000" or "0.25".
func (x XP) String() string { return x.Decimal().String() }

// MarshalJSON implements json.Marshaler.
func (x XP) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Wei     string `json:"wei"`
		Display string `json:"display"`
	}{
		Wei:     x.WeiString(),
		Display: x.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. Only the wei field is read.
func (x *XP) UnmarshalJSON(data []byte) error {
	var raw struct {
		Wei string `json:"wei"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseWei(raw.Wei)
	if err != nil {
		return err
	}
	*x = parsed
	return nil
}
