package core

import "math/big"

// ieeeShape describes the bit layout of an IEEE-754 binary floating point
// encoding independent of its overall width, so F32/F64's arithmetic and the
// F128 (binary128, spec.md §4.2) arithmetic share one integer-only
// implementation instead of three copies of the same algorithm. Every value
// here is carried as a *big.Int rather than a native float: decomposition,
// alignment, rounding and repacking are all integer shifts, adds, multiplies
// and divisions, per spec.md §4.1's requirement that the softfloat layer
// never touch host floating-point hardware.
type ieeeShape struct {
	expBits, mantBits uint
	bias              int64
}

var (
	shapeF32  = ieeeShape{expBits: 8, mantBits: 23, bias: 127}
	shapeF64  = ieeeShape{expBits: 11, mantBits: 52, bias: 1023}
	shapeF128 = ieeeShape{expBits: 15, mantBits: 112, bias: 16383}
)

type ieeeClass int

const (
	ieeeZero ieeeClass = iota
	ieeeFinite
	ieeeInf
	ieeeNaN
)

// ieeeValue is a decomposed float: sign, class, and for finite values the
// true (unbiased) exponent plus a normalized mantissa with the implicit
// leading bit made explicit at bit mantBits.
type ieeeValue struct {
	sign  bool
	class ieeeClass
	exp   int64
	mant  *big.Int
}

func ieeeDecompose(raw *big.Int, shape ieeeShape) ieeeValue {
	sign := raw.Bit(int(1+shape.expBits+shape.mantBits-1)) != 0
	expMax := int64(1)<<shape.expBits - 1

	mantMask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), shape.mantBits), big.NewInt(1))
	rawMant := new(big.Int).And(raw, mantMask)

	expMaskBig := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), shape.expBits), big.NewInt(1))
	rawExp := new(big.Int).And(new(big.Int).Rsh(raw, shape.mantBits), expMaskBig).Int64()

	if rawExp == expMax {
		if rawMant.Sign() != 0 {
			return ieeeValue{sign: sign, class: ieeeNaN}
		}
		return ieeeValue{sign: sign, class: ieeeInf}
	}
	if rawExp == 0 {
		if rawMant.Sign() == 0 {
			return ieeeValue{sign: sign, class: ieeeZero}
		}
		shift := int(shape.mantBits) - (rawMant.BitLen() - 1)
		mant := new(big.Int).Lsh(rawMant, uint(shift))
		return ieeeValue{sign: sign, class: ieeeFinite, exp: 1 - shape.bias - int64(shift), mant: mant}
	}
	implicit := new(big.Int).Lsh(big.NewInt(1), shape.mantBits)
	mant := new(big.Int).Or(rawMant, implicit)
	return ieeeValue{sign: sign, class: ieeeFinite, exp: rawExp - shape.bias, mant: mant}
}

func ieeePack(v ieeeValue, shape ieeeShape) *big.Int {
	expMax := int64(1)<<shape.expBits - 1
	mantMask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), shape.mantBits), big.NewInt(1))

	assemble := func(sign bool, biasedExp int64, mant *big.Int) *big.Int {
		out := new(big.Int).Lsh(big.NewInt(biasedExp), shape.mantBits)
		out.Or(out, new(big.Int).And(mant, mantMask))
		if sign {
			out.SetBit(out, int(shape.mantBits+shape.expBits), 1)
		}
		return out
	}

	switch v.class {
	case ieeeNaN:
		return assemble(v.sign, expMax, new(big.Int).Lsh(big.NewInt(1), shape.mantBits-1))
	case ieeeInf:
		return assemble(v.sign, expMax, big.NewInt(0))
	case ieeeZero:
		return assemble(v.sign, 0, big.NewInt(0))
	}

	maxExp := expMax - 1 - shape.bias
	if v.mant == nil || v.mant.Sign() == 0 {
		return assemble(v.sign, 0, big.NewInt(0))
	}
	if v.exp > maxExp {
		return assemble(v.sign, expMax, big.NewInt(0))
	}
	implicitBit := new(big.Int).Lsh(big.NewInt(1), shape.mantBits)
	if v.mant.Cmp(implicitBit) >= 0 {
		return assemble(v.sign, v.exp+shape.bias, v.mant)
	}
	return assemble(v.sign, 0, v.mant)
}

// shiftRightSticky right-shifts x by n bits, OR-ing every bit shifted out
// into the result's LSB so later rounding decisions see an accurate sticky
// bit instead of silently discarding precision.
func shiftRightSticky(x *big.Int, n uint) *big.Int {
	if n == 0 {
		return new(big.Int).Set(x)
	}
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), n), big.NewInt(1))
	lost := new(big.Int).And(x, mask)
	r := new(big.Int).Rsh(x, n)
	if lost.Sign() != 0 {
		r.Or(r, big.NewInt(1))
	}
	return r
}

// ieeeRoundAndPack normalizes and round-to-nearest-even an extended
// mantissa (extraBits of guard/round/sticky below the kept precision),
// handling the subnormal and overflow-to-infinity boundaries, then packs
// the result.
func ieeeRoundAndPack(sign bool, exp int64, mant *big.Int, extraBits uint, shape ieeeShape) *big.Int {
	if mant.Sign() == 0 {
		return ieeePack(ieeeValue{class: ieeeZero}, shape)
	}

	minNormalExp := int64(1) - shape.bias
	if exp < minNormalExp {
		mant = shiftRightSticky(mant, uint(minNormalExp-exp))
		exp = minNormalExp
	}

	discardMask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), extraBits), big.NewInt(1))
	discarded := new(big.Int).And(mant, discardMask)
	kept := new(big.Int).Rsh(mant, extraBits)
	half := new(big.Int).Lsh(big.NewInt(1), extraBits-1)
	if cmp := discarded.Cmp(half); cmp > 0 || (cmp == 0 && kept.Bit(0) == 1) {
		kept.Add(kept, big.NewInt(1))
	}

	overflow := new(big.Int).Lsh(big.NewInt(1), shape.mantBits+1)
	if kept.Cmp(overflow) >= 0 {
		kept.Rsh(kept, 1)
		exp++
	}
	if kept.Sign() == 0 {
		return ieeePack(ieeeValue{sign: sign, class: ieeeZero}, shape)
	}
	return ieeePack(ieeeValue{sign: sign, class: ieeeFinite, exp: exp, mant: kept}, shape)
}

func ieeeCombineNaN(a, b ieeeValue, shape ieeeShape) (*big.Int, bool) {
	if a.class == ieeeNaN {
		return ieeePack(ieeeValue{sign: a.sign, class: ieeeNaN}, shape), true
	}
	if b.class == ieeeNaN {
		return ieeePack(ieeeValue{sign: b.sign, class: ieeeNaN}, shape), true
	}
	return nil, false
}

// ieeeAdd implements add (subtract=false) and subtract (subtract=true)
// entirely with big.Int integer arithmetic: align mantissas by integer
// shift (folding a sticky bit), add or subtract, renormalize, then
// round-to-nearest-even.
func ieeeAdd(aBits, bBits *big.Int, subtract bool, shape ieeeShape) *big.Int {
	a := ieeeDecompose(aBits, shape)
	b := ieeeDecompose(bBits, shape)
	if r, ok := ieeeCombineNaN(a, b, shape); ok {
		return r
	}
	bSign := b.sign
	if subtract {
		bSign = !bSign
	}

	if a.class == ieeeInf || b.class == ieeeInf {
		switch {
		case a.class == ieeeInf && b.class == ieeeInf:
			if a.sign == bSign {
				return ieeePack(ieeeValue{sign: a.sign, class: ieeeInf}, shape)
			}
			return ieeePack(ieeeValue{class: ieeeNaN}, shape)
		case a.class == ieeeInf:
			return ieeePack(ieeeValue{sign: a.sign, class: ieeeInf}, shape)
		default:
			return ieeePack(ieeeValue{sign: bSign, class: ieeeInf}, shape)
		}
	}
	if a.class == ieeeZero && b.class == ieeeZero {
		if a.sign == bSign {
			return ieeePack(ieeeValue{sign: a.sign, class: ieeeZero}, shape)
		}
		return ieeePack(ieeeValue{class: ieeeZero}, shape)
	}
	if a.class == ieeeZero {
		return ieeePack(ieeeValue{sign: bSign, class: ieeeFinite, exp: b.exp, mant: b.mant}, shape)
	}
	if b.class == ieeeZero {
		return ieeePack(ieeeValue{sign: a.sign, class: ieeeFinite, exp: a.exp, mant: a.mant}, shape)
	}

	const extra = 3
	var bigSign, smallSign bool
	var bigExp, smallExp int64
	var bigMant, smallMant *big.Int
	if a.exp > b.exp || (a.exp == b.exp && a.mant.Cmp(b.mant) >= 0) {
		bigSign, bigExp, bigMant = a.sign, a.exp, a.mant
		smallSign, smallExp, smallMant = bSign, b.exp, b.mant
	} else {
		bigSign, bigExp, bigMant = bSign, b.exp, b.mant
		smallSign, smallExp, smallMant = a.sign, a.exp, a.mant
	}

	bigExt := new(big.Int).Lsh(bigMant, extra)
	smallExt := shiftRightSticky(new(big.Int).Lsh(smallMant, extra), uint(bigExp-smallExp))

	var r *big.Int
	if bigSign == smallSign {
		r = new(big.Int).Add(bigExt, smallExt)
	} else {
		r = new(big.Int).Sub(bigExt, smallExt)
	}
	if r.Sign() == 0 {
		return ieeePack(ieeeValue{class: ieeeZero}, shape)
	}

	exp := bigExp
	expectedTop := int(shape.mantBits+1) + extra
	if k := r.BitLen(); k > expectedTop {
		shift := uint(k - expectedTop)
		r = shiftRightSticky(r, shift)
		exp += int64(shift)
	} else if k < expectedTop {
		shift := uint(expectedTop - k)
		r.Lsh(r, shift)
		exp -= int64(shift)
	}
	return ieeeRoundAndPack(bigSign, exp, r, extra, shape)
}

// ieeeMul computes a*b by widening-multiplying the two normalized
// mantissas as plain integers, then renormalizing/rounding the product.
func ieeeMul(aBits, bBits *big.Int, shape ieeeShape) *big.Int {
	a := ieeeDecompose(aBits, shape)
	b := ieeeDecompose(bBits, shape)
	if r, ok := ieeeCombineNaN(a, b, shape); ok {
		return r
	}
	resultSign := a.sign != b.sign
	if a.class == ieeeInf || b.class == ieeeInf {
		if a.class == ieeeZero || b.class == ieeeZero {
			return ieeePack(ieeeValue{class: ieeeNaN}, shape)
		}
		return ieeePack(ieeeValue{sign: resultSign, class: ieeeInf}, shape)
	}
	if a.class == ieeeZero || b.class == ieeeZero {
		return ieeePack(ieeeValue{sign: resultSign, class: ieeeZero}, shape)
	}

	const extra = 3
	product := new(big.Int).Mul(a.mant, b.mant)
	target := int(shape.mantBits+1) + extra
	k := product.BitLen()

	var reduced *big.Int
	switch {
	case k > target:
		reduced = shiftRightSticky(product, uint(k-target))
	case k < target:
		reduced = new(big.Int).Lsh(product, uint(target-k))
	default:
		reduced = product
	}
	exp := a.exp + b.exp + int64(k) - int64(2*(shape.mantBits+1)) + 1
	return ieeeRoundAndPack(resultSign, exp, reduced, extra, shape)
}

// ieeeDiv computes a/b via plain integer long division (big.Int.QuoRem) on
// the numerator scaled up by enough bits to recover full precision, with
// the remainder folded into the result as a sticky bit.
func ieeeDiv(aBits, bBits *big.Int, shape ieeeShape) *big.Int {
	a := ieeeDecompose(aBits, shape)
	b := ieeeDecompose(bBits, shape)
	if r, ok := ieeeCombineNaN(a, b, shape); ok {
		return r
	}
	resultSign := a.sign != b.sign
	if a.class == ieeeInf {
		if b.class == ieeeInf {
			return ieeePack(ieeeValue{class: ieeeNaN}, shape)
		}
		return ieeePack(ieeeValue{sign: resultSign, class: ieeeInf}, shape)
	}
	if b.class == ieeeInf {
		return ieeePack(ieeeValue{sign: resultSign, class: ieeeZero}, shape)
	}
	if b.class == ieeeZero {
		if a.class == ieeeZero {
			return ieeePack(ieeeValue{class: ieeeNaN}, shape)
		}
		return ieeePack(ieeeValue{sign: resultSign, class: ieeeInf}, shape)
	}
	if a.class == ieeeZero {
		return ieeePack(ieeeValue{sign: resultSign, class: ieeeZero}, shape)
	}

	const extra = 3
	precision := int(shape.mantBits + 1)
	target := precision + extra
	numerator := new(big.Int).Lsh(a.mant, uint(target))
	q, r := new(big.Int).QuoRem(numerator, b.mant, new(big.Int))
	k := q.BitLen()

	var reduced *big.Int
	switch {
	case k > target:
		reduced = shiftRightSticky(q, uint(k-target))
	case k < target:
		reduced = new(big.Int).Lsh(q, uint(target-k))
	default:
		reduced = new(big.Int).Set(q)
	}
	if r.Sign() != 0 {
		reduced.Or(reduced, big.NewInt(1))
	}
	exp := a.exp - b.exp + int64(k) - int64(target)
	return ieeeRoundAndPack(resultSign, exp, reduced, extra, shape)
}

// ieeeSqrt computes the correctly-rounded square root using big.Int's
// integer square root (Newton's method over arbitrary-precision integers,
// never a host float sqrt instruction) on the mantissa scaled up by a
// generous even number of bits, then renormalizes/rounds the result.
func ieeeSqrt(bits *big.Int, shape ieeeShape) *big.Int {
	v := ieeeDecompose(bits, shape)
	switch v.class {
	case ieeeNaN:
		return ieeePack(ieeeValue{sign: v.sign, class: ieeeNaN}, shape)
	case ieeeZero:
		return ieeePack(ieeeValue{sign: v.sign, class: ieeeZero}, shape)
	case ieeeInf:
		if v.sign {
			return ieeePack(ieeeValue{class: ieeeNaN}, shape)
		}
		return ieeePack(ieeeValue{class: ieeeInf}, shape)
	}
	if v.sign {
		return ieeePack(ieeeValue{class: ieeeNaN}, shape)
	}

	m := new(big.Int).Set(v.mant)
	e := v.exp
	if e&1 != 0 {
		m.Lsh(m, 1)
		e--
	}

	const extra = 3
	const scale = 200
	scaled := new(big.Int).Lsh(m, scale)
	r := new(big.Int).Sqrt(scaled)
	exact := new(big.Int).Mul(r, r).Cmp(scaled) == 0

	target := int(shape.mantBits+1) + extra
	k := r.BitLen()
	var reduced *big.Int
	switch {
	case k > target:
		reduced = shiftRightSticky(r, uint(k-target))
	case k < target:
		reduced = new(big.Int).Lsh(r, uint(target-k))
	default:
		reduced = new(big.Int).Set(r)
	}
	if !exact {
		reduced.Or(reduced, big.NewInt(1))
	}
	exp := int64(k) - 1 + (e-scale)/2
	return ieeeRoundAndPack(false, exp, reduced, extra, shape)
}

// ieeeCompareMagnitude orders two same-signed, non-zero ieeeValues by
// absolute value.
func ieeeCompareMagnitude(a, b ieeeValue) int {
	if a.class == ieeeInf && b.class == ieeeInf {
		return 0
	}
	if a.class == ieeeInf {
		return 1
	}
	if b.class == ieeeInf {
		return -1
	}
	if a.exp != b.exp {
		if a.exp < b.exp {
			return -1
		}
		return 1
	}
	return a.mant.Cmp(b.mant)
}

// ieeeCompareValues implements IEEE total-order-ignoring-NaN comparison:
// callers must special-case NaN before reaching here.
func ieeeCompareValues(a, b ieeeValue) int {
	aZero, bZero := a.class == ieeeZero, b.class == ieeeZero
	if aZero && bZero {
		return 0
	}
	if aZero {
		if b.sign {
			return 1
		}
		return -1
	}
	if bZero {
		if a.sign {
			return -1
		}
		return 1
	}
	if a.sign != b.sign {
		if a.sign {
			return -1
		}
		return 1
	}
	mag := ieeeCompareMagnitude(a, b)
	if a.sign {
		return -mag
	}
	return mag
}
