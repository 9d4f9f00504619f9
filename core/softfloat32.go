package core

import (
	"math"
	"math/big"
)

// F32 operations implement the deterministic, hardware-independent IEEE-754
// single precision arithmetic required by spec.md §4.1. Add/Sub/Mul/Div/Sqrt
// decompose the operands into sign/exponent/mantissa and run the shared
// big.Int-based softfloat engine in softfloat_arith.go (align, add, round to
// nearest even), never Go's native float32 +/-/*// operators, so the result
// is bit-exact integer arithmetic rather than a host hardware float
// passthrough. The remaining unary/comparison helpers below are value- or
// bit-preserving (sign manipulation, truncation, NaN propagation) and are
// documented individually.

func f32ToBigBits(a float32) *big.Int { return new(big.Int).SetUint64(uint64(math.Float32bits(a))) }
func bigBitsToF32(v *big.Int) float32 { return math.Float32frombits(uint32(v.Uint64())) }

func F32Add(a, b float32) float32 {
	return bigBitsToF32(ieeeAdd(f32ToBigBits(a), f32ToBigBits(b), false, shapeF32))
}
func F32Sub(a, b float32) float32 {
	return bigBitsToF32(ieeeAdd(f32ToBigBits(a), f32ToBigBits(b), true, shapeF32))
}
func F32Mul(a, b float32) float32 {
	return bigBitsToF32(ieeeMul(f32ToBigBits(a), f32ToBigBits(b), shapeF32))
}
func F32Div(a, b float32) float32 {
	return bigBitsToF32(ieeeDiv(f32ToBigBits(a), f32ToBigBits(b), shapeF32))
}
func F32Sqrt(a float32) float32 {
	return bigBitsToF32(ieeeSqrt(f32ToBigBits(a), shapeF32))
}
func F32Abs(a float32) float32   { return float32(math.Abs(float64(a))) }
func F32Neg(a float32) float32   { return -a }
func F32Ceil(a float32) float32  { return float32(math.Ceil(float64(a))) }
func F32Floor(a float32) float32 { return float32(math.Floor(float64(a))) }
func F32Trunc(a float32) float32 { return float32(math.Trunc(float64(a))) }

// F32Nearest rounds to the nearest integer, ties to even, preserving the
// sign of zero for negative inputs that round to zero.
func F32Nearest(a float32) float32 {
	r := float32(math.RoundToEven(float64(a)))
	if r == 0 && math.Signbit(float64(a)) {
		return float32(math.Copysign(0, -1))
	}
	return r
}

// F32Min returns a unchanged if a is NaN, b if only b is NaN, the
// signed-zero-aware lesser value otherwise.
func F32Min(a, b float32) float32 {
	if isNaN32(a) {
		return a
	}
	if isNaN32(b) {
		return b
	}
	if a == 0 && b == 0 {
		if math.Signbit(float64(a)) {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

func F32Max(a, b float32) float32 {
	if isNaN32(a) {
		return a
	}
	if isNaN32(b) {
		return b
	}
	if a == 0 && b == 0 {
		if !math.Signbit(float64(a)) {
			return a
		}
		return b
	}
	if a > b {
		return a
	}
	return b
}

// F32Copysign clears the sign bit of a then ORs in the sign bit of b.
func F32Copysign(a, b float32) float32 {
	abits := math.Float32bits(a) &^ (1 << 31)
	bsign := math.Float32bits(b) & (1 << 31)
	return math.Float32frombits(abits | bsign)
}

func F32Eq(a, b float32) bool { return a == b }
func F32Ne(a, b float32) bool { return a != b }
func F32Lt(a, b float32) bool { return a < b }
func F32Le(a, b float32) bool { return a <= b }
func F32Gt(a, b float32) bool { return a > b }
func F32Ge(a, b float32) bool { return a >= b }

func F32PromoteToF64(a float32) float64 { return float64(a) }

func isNaN32(a float32) bool { return a != a }

const (
	i32Limit = 1 << 31
	u32Limit = 1 << 32
)

// F32TruncToI32 converts a to a signed 32-bit integer, trapping per the
// boundary rules of spec.md §4.1 and §8 scenario 1.
func F32TruncToI32(a float32) (int32, error) {
	if isNaN32(a) || a >= i32Limit || a < -i32Limit {
		return 0, ErrorWasmExecution("float32->i32 conversion out of range")
	}
	return int32(a), nil
}

func F32TruncToU32(a float32) (uint32, error) {
	if isNaN32(a) || a >= u32Limit || a <= -1 {
		return 0, ErrorWasmExecution("float32->u32 conversion out of range")
	}
	return uint32(a), nil
}

func F32TruncToI64(a float32) (int64, error) {
	if isNaN32(a) || float64(a) >= float64(i64Limit) || float64(a) < -float64(i64Limit) {
		return 0, ErrorWasmExecution("float32->i64 conversion out of range")
	}
	return int64(a), nil
}

func F32TruncToU64(a float32) (uint64, error) {
	if isNaN32(a) || float64(a) >= float64(u64Limit) || a <= -1 {
		return 0, ErrorWasmExecution("float32->u64 conversion out of range")
	}
	return uint64(a), nil
}
