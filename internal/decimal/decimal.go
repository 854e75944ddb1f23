// Package decimal implements the exact-precision decimal used by the Decimal
// scalar: a 96-bit unsigned coefficient, a sign and a base-10 scale of 0..28.
package decimal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"

	shop "github.com/shopspring/decimal"
)

// MaxScale is the largest number of fractional digits a Decimal can hold.
const MaxScale = 28

var (
	ErrOverflow = errors.New("decimal: value is outside the representable range")
	ErrSyntax   = errors.New("decimal: invalid syntax")
)

const (
	scaleShift = 16
	scaleMask  = 0x00FF0000
	signMask   = 0x80000000
)

var maxCoefficient = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 96), big.NewInt(1))

// Decimal is a fixed-size exact decimal number.
//
// The value is (-1)^sign * (hi<<64 | mid<<32 | lo) / 10^scale where sign and
// scale are packed into flags. The zero value is 0.
type Decimal struct {
	flags uint32
	hi    uint32
	lo    uint32
	mid   uint32
}

// Zero is the zero decimal.
var Zero = Decimal{}

// FromInt64 returns the decimal equal to v.
func FromInt64(v int64) Decimal {
	var d Decimal
	u := uint64(v)
	if v < 0 {
		d.flags = signMask
		u = uint64(-v)
	}
	d.lo = uint32(u)
	d.mid = uint32(u >> 32)
	return d
}

// FromUint64 returns the decimal equal to v.
func FromUint64(v uint64) Decimal {
	return Decimal{lo: uint32(v), mid: uint32(v >> 32)}
}

// FromFloat64 returns the shortest decimal that round-trips to f.
func FromFloat64(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, ErrOverflow
	}
	return FromBig(shop.NewFromFloat(f))
}

// FromFloat32 returns the shortest decimal that round-trips to f.
func FromFloat32(f float32) (Decimal, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return Decimal{}, ErrOverflow
	}
	return FromBig(shop.NewFromFloat32(f))
}

// FromBig narrows an arbitrary-precision decimal.
//
// More than MaxScale fractional digits are rounded half to even. When the
// coefficient exceeds 96 bits, fractional digits are dropped (rounding half
// to even) until it fits; an integral part of 2^96 or more is ErrOverflow.
func FromBig(v shop.Decimal) (Decimal, error) {
	// Bounds are settled from the exponent alone so that text such as
	// "1e-10000000" never reaches big-number scaling.
	exp := int64(v.Exponent())
	if v.Sign() == 0 {
		return fromCoefficient(false, new(big.Int), uint8(min(max(-exp, 0), MaxScale))), nil
	}
	if exp > MaxScale {
		return Decimal{}, ErrOverflow
	}
	if exp+int64(len(v.Abs().Coefficient().Text(10))) < -(MaxScale + 1) {
		return fromCoefficient(false, new(big.Int), MaxScale), nil
	}
	if exp < -MaxScale {
		v = v.RoundBank(MaxScale)
	}
	for {
		exp := v.Exponent()
		coef := v.Coefficient()
		neg := coef.Sign() < 0
		coef.Abs(coef)
		if exp > 0 {
			coef.Mul(coef, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
			exp = 0
		}
		if coef.Cmp(maxCoefficient) <= 0 {
			return fromCoefficient(neg, coef, uint8(-exp)), nil
		}
		if exp == 0 {
			return Decimal{}, ErrOverflow
		}
		v = v.RoundBank(-exp - 1)
	}
}

// New returns value / 10^scale.
func New(value int64, scale uint8) (Decimal, error) {
	if scale > MaxScale {
		return Decimal{}, fmt.Errorf("%w: scale %d exceeds %d", ErrOverflow, scale, MaxScale)
	}
	d := FromInt64(value)
	d.flags |= uint32(scale) << scaleShift
	return d, nil
}

// Parse reads a decimal numeral: an optional sign, digits, an optional
// fraction and an optional exponent. Parsing never depends on the process
// locale; digit grouping and alternative separators are rejected.
func Parse(s string) (Decimal, error) {
	if !validNumeral(s) {
		return Decimal{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if s[0] == '+' {
		s = s[1:]
	}
	v, err := shop.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q: %v", ErrSyntax, s, err)
	}
	d, err := FromBig(v)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q", err, s)
	}
	return d, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func validNumeral(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		start = i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start = i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func fromCoefficient(neg bool, coef *big.Int, scale uint8) Decimal {
	var buf [12]byte
	coef.FillBytes(buf[:])
	d := Decimal{
		flags: uint32(scale) << scaleShift,
		hi:    binary.BigEndian.Uint32(buf[0:4]),
		mid:   binary.BigEndian.Uint32(buf[4:8]),
		lo:    binary.BigEndian.Uint32(buf[8:12]),
	}
	if neg && coef.Sign() != 0 {
		d.flags |= signMask
	}
	return d
}

func (d Decimal) coefficient() *big.Int {
	c := new(big.Int).SetUint64(uint64(d.hi))
	c.Lsh(c, 64)
	return c.Or(c, new(big.Int).SetUint64(uint64(d.mid)<<32|uint64(d.lo)))
}

// Scale returns the number of fractional digits.
func (d Decimal) Scale() uint8 { return uint8((d.flags & scaleMask) >> scaleShift) }

// IsZero reports whether d is zero at any scale.
func (d Decimal) IsZero() bool { return d.hi == 0 && d.mid == 0 && d.lo == 0 }

// Sign returns -1, 0 or +1.
func (d Decimal) Sign() int {
	switch {
	case d.IsZero():
		return 0
	case d.flags&signMask != 0:
		return -1
	default:
		return 1
	}
}

// Big widens d into an arbitrary-precision decimal.
func (d Decimal) Big() shop.Decimal {
	coef := d.coefficient()
	if d.flags&signMask != 0 {
		coef.Neg(coef)
	}
	return shop.NewFromBigInt(coef, -int32(d.Scale()))
}

// String formats d with exactly Scale fractional digits, using '.' as the
// separator regardless of locale.
func (d Decimal) String() string {
	return d.Big().StringFixed(int32(d.Scale()))
}

// Float64 returns the nearest float64.
func (d Decimal) Float64() float64 {
	f, _ := d.Big().Float64()
	return f
}

// Cmp compares numerically, ignoring scale.
func (d Decimal) Cmp(o Decimal) int { return d.Big().Cmp(o.Big()) }

// Equal reports numeric equality; 1.0 equals 1.00.
func (d Decimal) Equal(o Decimal) bool { return d.Cmp(o) == 0 }

func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
