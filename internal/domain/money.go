package domain

import "fmt"

// Money is an amount in whole Indonesian Rupiah.
// IDR has no minor units, so arithmetic stays on int64 — never floating point.
type Money int64

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return m + other
}

// Sub returns m - other. The result may be negative; callers that need
// the clamped-to-zero semantics of a remaining balance use SubClamped.
func (m Money) Sub(other Money) Money {
	return m - other
}

// SubClamped returns max(0, m - other).
func (m Money) SubClamped(other Money) Money {
	if other >= m {
		return 0
	}
	return m - other
}

// Compare returns -1, 0 or 1.
func (m Money) Compare(other Money) int {
	switch {
	case m < other:
		return -1
	case m > other:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m == 0
}

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m > 0
}

// DivRoundHalfUp divides the amount by n, rounding half up.
// This is the only permitted division on Money; plain integer division
// would silently drop rupiah.
func (m Money) DivRoundHalfUp(n int64) Money {
	if n == 0 {
		return 0
	}
	neg := false
	v := int64(m)
	if v < 0 {
		neg = true
		v = -v
	}
	if n < 0 {
		neg = !neg
		n = -n
	}
	q := (v + n/2) / n
	if neg {
		q = -q
	}
	return Money(q)
}

// Format renders the amount as "Rp 1.500.000" for logs and reports.
func (m Money) Format() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	out := ""
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out += "."
		}
		out += string(c)
	}
	return fmt.Sprintf("%sRp %s", sign, out)
}
