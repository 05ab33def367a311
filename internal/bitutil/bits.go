// Package bitutil holds small generic bit-twiddling helpers: sign
// extension and the 128-bit-intermediate scaled multiply-divide used
// throughout the ppctimer timebase and decrementer arithmetic.
package bitutil

import "math/bits"

// SignExtend widens the low bitCount bits of x to the full width of T,
// preserving the sign bit at position bitCount-1.
func SignExtend[T uint32 | uint64](x T, bitCount int) T {
	if ((x >> (bitCount - 1)) & 1) == 1 {
		x |= ^T(0) << bitCount
	}
	return x
}

// MulDiv64 computes (a*b)/c using a 128-bit intermediate product, truncating
// toward zero. b and c are always non-negative scale factors (frequencies);
// a may be negative, in which case the result is negated around an
// unsigned division on -a.
func MulDiv64(a int64, b, c uint64) int64 {
	if a < 0 {
		return -int64(mulDivUnsigned(uint64(-a), b, c))
	}
	return int64(mulDivUnsigned(uint64(a), b, c))
}

// MulDiv64U is the unsigned form used where a is already known non-negative
// (e.g. converting an absolute tick count into timebase units).
func MulDiv64U(a, b, c uint64) uint64 {
	return mulDivUnsigned(a, b, c)
}

func mulDivUnsigned(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, _ := bits.Div64(hi, lo, c)
	return q
}
