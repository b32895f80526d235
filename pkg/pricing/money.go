// Package pricing provides the exact-decimal value types used everywhere
// prices are compared, multiplied, or diffed. Prices are never represented
// as binary floating point once parsed: all comparisons and arithmetic go
// through decimal values so that equality and ordering checks are exact.
package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// mtokMultiplier converts a per-token price into a per-million-token price.
var mtokMultiplier = decimal.NewFromInt(1_000_000)

// Money is an immutable arbitrary-precision price value.
//
// The zero value is an exact zero. An absent price is represented as a nil
// *Money, which is distinct from a priced value of zero: zero participates
// in comparisons while nil is skipped.
type Money struct {
	dec decimal.Decimal
}

// ParseMoney converts a raw payload value into a Money.
//
// Strings are parsed as exact decimals. Numeric values go through their
// shortest decimal representation. Nil, empty strings, numeric zero, and
// unparseable values all yield nil rather than an error, so partially
// malformed upstream feeds degrade to "no pricing" instead of aborting a
// run. Note the asymmetry inherited from the feed format: the string "0"
// is a priced value of zero, while the JSON number 0 means "not priced".
func ParseMoney(value any) *Money {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil
		}
		return &Money{dec: d}
	case json.Number:
		return ParseMoney(string(v))
	case float64:
		if v == 0 {
			return nil
		}
		return &Money{dec: decimal.NewFromFloat(v)}
	case float32:
		if v == 0 {
			return nil
		}
		return &Money{dec: decimal.NewFromFloat32(v)}
	case int:
		if v == 0 {
			return nil
		}
		return &Money{dec: decimal.NewFromInt(int64(v))}
	case int64:
		if v == 0 {
			return nil
		}
		return &Money{dec: decimal.NewFromInt(v)}
	case *Money:
		return v
	case Money:
		return &v
	default:
		return nil
	}
}

// MustMoney parses a decimal string and panics on failure.
// Intended for constants and test fixtures.
func MustMoney(s string) *Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("pricing: invalid money literal %q: %v", s, err))
	}
	return &Money{dec: d}
}

// Zero returns an exact-zero Money value.
func Zero() *Money {
	return &Money{dec: decimal.Zero}
}

// String renders the canonical form: no scientific notation, no trailing
// zeros, and bare "0" for exact zero. Downstream equality checks depend on
// this format being stable.
func (m Money) String() string {
	return m.dec.String()
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.dec
}

// Cmp compares m against other, returning -1, 0, or 1.
func (m Money) Cmp(other Money) int {
	return m.dec.Cmp(other.dec)
}

// Equal reports whether two values are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.dec.Equal(other.dec)
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.dec.LessThan(other.dec)
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.dec.GreaterThan(other.dec)
}

// IsZero reports whether m is exactly zero.
func (m Money) IsZero() bool {
	return m.dec.IsZero()
}

// Sub returns m - other as a new value.
func (m Money) Sub(other Money) Money {
	return Money{dec: m.dec.Sub(other.dec)}
}

// MulMTok returns the per-million-unit view of a per-unit price.
func (m Money) MulMTok() Money {
	return Money{dec: m.dec.Mul(mtokMultiplier)}
}

// MarshalJSON encodes the canonical string form.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON string or number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.dec = d
	return nil
}

// mulMTok is the nil-propagating multiplier used by snapshot views.
func mulMTok(m *Money) *Money {
	if m == nil {
		return nil
	}
	v := m.MulMTok()
	return &v
}

// FormatMoney renders an optional value, returning nil for absent prices.
func FormatMoney(m *Money) *string {
	if m == nil {
		return nil
	}
	s := m.String()
	return &s
}
