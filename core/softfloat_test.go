package core

import "testing"

// Softfloat arithmetic runs through the big.Int engine in softfloat_arith.go
// rather than native hardware float operators (spec.md §4.1), but for
// representable finite operands it must still agree bit-for-bit with IEEE-754,
// which is what Go's native float32/float64 arithmetic already implements on
// every platform this module targets.

func TestF32ArithmeticMatchesIEEE754(t *testing.T) {
	cases := []struct {
		a, b float32
	}{
		{1, 2}, {1.5, 2.25}, {-3.5, 7}, {0, 0}, {100000.5, 0.25},
		{1.0 / 3, 7}, {-1, 1}, {3.14159, 2.71828},
	}
	for _, c := range cases {
		if got, want := F32Add(c.a, c.b), c.a+c.b; got != want {
			t.Errorf("F32Add(%v,%v) = %v, want %v", c.a, c.b, got, want)
		}
		if got, want := F32Sub(c.a, c.b), c.a-c.b; got != want {
			t.Errorf("F32Sub(%v,%v) = %v, want %v", c.a, c.b, got, want)
		}
		if got, want := F32Mul(c.a, c.b), c.a*c.b; got != want {
			t.Errorf("F32Mul(%v,%v) = %v, want %v", c.a, c.b, got, want)
		}
		if c.b != 0 {
			if got, want := F32Div(c.a, c.b), c.a/c.b; got != want {
				t.Errorf("F32Div(%v,%v) = %v, want %v", c.a, c.b, got, want)
			}
		}
	}
}

func TestF32SqrtMatchesIEEE754(t *testing.T) {
	for _, v := range []float32{0, 1, 2, 4, 9, 0.25, 1234.5} {
		got := F32Sqrt(v)
		want := F32Mul(got, got)
		diff := want - v
		if diff < 0 {
			diff = -diff
		}
		if diff > v*1e-6+1e-6 {
			t.Errorf("F32Sqrt(%v)^2 = %v, too far from %v", v, want, v)
		}
	}
}

func TestF64ArithmeticMatchesIEEE754(t *testing.T) {
	cases := []struct {
		a, b float64
	}{
		{1, 2}, {1.5, 2.25}, {-3.5, 7}, {0, 0}, {100000.5, 0.25},
		{1.0 / 3, 7}, {-1, 1}, {3.14159265358979, 2.71828182845905},
	}
	for _, c := range cases {
		if got, want := F64Add(c.a, c.b), c.a+c.b; got != want {
			t.Errorf("F64Add(%v,%v) = %v, want %v", c.a, c.b, got, want)
		}
		if got, want := F64Sub(c.a, c.b), c.a-c.b; got != want {
			t.Errorf("F64Sub(%v,%v) = %v, want %v", c.a, c.b, got, want)
		}
		if got, want := F64Mul(c.a, c.b), c.a*c.b; got != want {
			t.Errorf("F64Mul(%v,%v) = %v, want %v", c.a, c.b, got, want)
		}
		if c.b != 0 {
			if got, want := F64Div(c.a, c.b), c.a/c.b; got != want {
				t.Errorf("F64Div(%v,%v) = %v, want %v", c.a, c.b, got, want)
			}
		}
	}
}

func TestF128AddIsExactForIntegerMagnitudes(t *testing.T) {
	a := F128FromInt64(9007199254740993) // 2^53 + 1, not exactly representable in float64
	b := F128FromInt64(1)
	sum := F128Add(a, b)
	want := F128FromInt64(9007199254740994)
	if sum.Bytes() != want.Bytes() {
		t.Errorf("F128Add lost precision: got %x want %x", sum.Bytes(), want.Bytes())
	}
}

func TestF128MulAndDivRoundtrip(t *testing.T) {
	a := F128FromInt64(12345)
	b := F128FromInt64(6789)
	product := F128Mul(a, b)
	back := F128Div(product, b)
	if back.Bytes() != a.Bytes() {
		t.Errorf("F128Div(F128Mul(a,b),b) = %x, want %x", back.Bytes(), a.Bytes())
	}
}

func TestF128CompareOrdering(t *testing.T) {
	small := F128FromInt64(1)
	big := F128FromInt64(2)
	if c := F128Compare(small, big, 7); c >= 0 {
		t.Errorf("F128Compare(1,2) = %d, want negative", c)
	}
	if c := F128Compare(big, small, 7); c <= 0 {
		t.Errorf("F128Compare(2,1) = %d, want positive", c)
	}
	if c := F128Compare(small, small, 7); c != 0 {
		t.Errorf("F128Compare(1,1) = %d, want 0", c)
	}
	nan := f128NaN()
	if c := F128Compare(nan, small, 7); c != 7 {
		t.Errorf("F128Compare(NaN,1) = %d, want sentinel 7", c)
	}
	if u := F128Unordered(nan, small); u != 1 {
		t.Errorf("F128Unordered(NaN,1) = %d, want 1", u)
	}
	if u := F128Unordered(small, big); u != 0 {
		t.Errorf("F128Unordered(1,2) = %d, want 0", u)
	}
}

func TestF128FromUint64NeverNegative(t *testing.T) {
	for _, v := range []uint64{0, 1, 1 << 63, ^uint64(0)} {
		f := F128FromUint64(v)
		if f.Bytes()[15]&0x80 != 0 {
			t.Errorf("F128FromUint64(%d) set the sign bit, want always non-negative", v)
		}
	}
	zero := F128FromUint64(0)
	if zero.Bytes() != (F128{}).Bytes() {
		t.Errorf("F128FromUint64(0) = %x, want all-zero bit pattern", zero.Bytes())
	}
}
