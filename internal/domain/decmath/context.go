// Package decmath performs decimal arithmetic at a fixed number of significant
// digits. Every result is rounded half-even, so a sequence of operations gives
// the same digits as a General Decimal Arithmetic context of the same
// precision.
package decmath

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// DefaultPrecision is the number of significant digits used when none is
	// configured. Reserves up to ~1e27 with 18 sub-unit decimals need it.
	DefaultPrecision = 36
	// MinPrecision is the smallest precision accepted by NewContext.
	MinPrecision = 36
)

var (
	ErrDivisionByZero   = errors.New("division by zero")
	ErrInvalidPrecision = errors.New("invalid decimal precision")
)

var two = decimal.NewFromInt(2)

// Context holds the precision for a chain of operations. The zero value is not
// usable; construct it with NewContext or use Default.
type Context struct {
	precision int
}

// Default returns a context with DefaultPrecision significant digits.
func Default() Context {
	return Context{precision: DefaultPrecision}
}

// NewContext creates a context that rounds to precision significant digits.
func NewContext(precision int) (Context, error) {
	if precision < MinPrecision {
		return Context{}, ErrInvalidPrecision
	}
	return Context{precision: precision}, nil
}

// Precision returns the number of significant digits kept by the context.
func (c Context) Precision() int {
	return c.precision
}

// Round rounds d to the context precision.
func (c Context) Round(d decimal.Decimal) decimal.Decimal {
	digits := NumDigits(d)
	if digits <= c.precision {
		return d
	}
	places := int32(c.precision-digits) - d.Exponent()
	return d.RoundBank(places)
}

// Add returns x + y rounded to the context precision.
func (c Context) Add(x, y decimal.Decimal) decimal.Decimal {
	x, y = c.condense(x, y)
	return c.Round(x.Add(y))
}

// Sub returns x - y rounded to the context precision.
func (c Context) Sub(x, y decimal.Decimal) decimal.Decimal {
	x, y = c.condense(x, y.Neg())
	return c.Round(x.Add(y))
}

// condense replaces the operand of smaller magnitude with one that rounds the
// sum identically but has no digits far below the larger operand. Adding
// 1e21 and 1e-50000000 then aligns a handful of digits instead of fifty
// million.
func (c Context) condense(x, y decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if x.IsZero() || y.IsZero() {
		return x, y
	}
	if adjusted(x) < adjusted(y) {
		return c.shrink(y, x), y
	}
	return x, c.shrink(x, y)
}

// shrink cuts small at a limit two digits below the last digit the result can
// keep, leaving a sticky unit in place of whatever it cut. Only operands at
// least two orders of magnitude below big are touched, so the sum loses at
// most one leading digit and no rounding boundary falls inside the cut.
func (c Context) shrink(big, small decimal.Decimal) decimal.Decimal {
	top := adjusted(big)
	if adjusted(small) > top-2 {
		return small
	}
	limit := top - c.precision - 2
	if e := int(big.Exponent()); e < limit {
		limit = e
	}
	if int(small.Exponent()) >= limit {
		return small
	}

	kept := small.Shift(int32(-limit)).Truncate(0).Shift(int32(limit))
	if kept.Equal(small) {
		return kept
	}
	sticky := decimal.New(int64(small.Sign()), int32(limit-1))
	return kept.Add(sticky)
}

func (c Context) Mul(x, y decimal.Decimal) decimal.Decimal {
	return c.Round(x.Mul(y))
}

// Quo returns x / y correctly rounded to the context precision.
func (c Context) Quo(x, y decimal.Decimal) (decimal.Decimal, error) {
	if y.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	if x.IsZero() {
		return decimal.Zero, nil
	}

	// the quotient's leading digit sits at 10^adj or 10^(adj-1)
	adj := adjusted(x) - adjusted(y)
	if x.Abs().LessThan(y.Abs().Shift(int32(adj))) {
		adj--
	}
	places := int32(c.precision - 1 - adj)

	q, r := x.QuoRem(y, places)
	if r.IsZero() {
		return q, nil
	}

	ulp := decimal.New(1, -places)
	if x.Sign() != y.Sign() {
		ulp = ulp.Neg()
	}

	half := r.Abs().Mul(two).Cmp(y.Abs().Shift(-places))
	if half > 0 || (half == 0 && q.Shift(places).BigInt().Bit(0) == 1) {
		q = q.Add(ulp)
	}
	return q, nil
}

// MustQuo is Quo for divisors already known to be non-zero. It panics on a
// zero divisor.
func (c Context) MustQuo(x, y decimal.Decimal) decimal.Decimal {
	q, err := c.Quo(x, y)
	if err != nil {
		panic(err)
	}
	return q
}

// Min returns the smaller of x and y, preferring x when they are equal.
func (c Context) Min(x, y decimal.Decimal) decimal.Decimal {
	if Cmp(y, x) < 0 {
		return y
	}
	return x
}

// Cmp compares x and y like decimal.Decimal.Cmp, deciding by sign and
// magnitude first so operands with distant exponents are never rescaled.
func Cmp(x, y decimal.Decimal) int {
	sx, sy := x.Sign(), y.Sign()
	if sx != sy {
		if sx < sy {
			return -1
		}
		return 1
	}
	if sx == 0 {
		return 0
	}
	ax, ay := adjusted(x), adjusted(y)
	if ax != ay {
		if (ax > ay) == (sx > 0) {
			return 1
		}
		return -1
	}
	return x.Cmp(y)
}

// NumDigits returns the number of digits in the coefficient of d.
func NumDigits(d decimal.Decimal) int {
	coef := d.Coefficient()
	return len(coef.Abs(coef).String())
}

// adjusted is the exponent of the most significant digit of a non-zero d.
func adjusted(d decimal.Decimal) int {
	return int(d.Exponent()) + NumDigits(d) - 1
}
