package core

import "testing"

func TestInt128MulDivModRoundtrip(t *testing.T) {
	a := Int128{Hi: 0, Lo: 123456789}
	b := Int128{Hi: 0, Lo: 987}
	product := Int128Mul(a, b)
	quot, err := Int128Div(product, b)
	if err != nil {
		t.Fatalf("Int128Div: %v", err)
	}
	if quot != a {
		t.Errorf("Int128Div(Int128Mul(a,b),b) = %+v, want %+v", quot, a)
	}
	rem, err := Int128Mod(product, b)
	if err != nil {
		t.Fatalf("Int128Mod: %v", err)
	}
	if rem != (Int128{}) {
		t.Errorf("Int128Mod(Int128Mul(a,b),b) = %+v, want zero remainder", rem)
	}
}

func TestInt128DivByZero(t *testing.T) {
	a := Int128{Hi: 0, Lo: 1}
	if _, err := Int128Div(a, Int128{}); err == nil {
		t.Fatal("Int128Div by zero: want error, got nil")
	}
	if _, err := Int128Mod(a, Int128{}); err == nil {
		t.Fatal("Int128Mod by zero: want error, got nil")
	}
}

func TestInt128AshrSignExtends(t *testing.T) {
	neg := Int128{Hi: -1, Lo: 0} // -2^64
	got := Int128Ashr(neg, 64)
	want := Int128{Hi: -1, Lo: ^uint64(0)} // -1
	if got != want {
		t.Errorf("Int128Ashr(-2^64, 64) = %+v, want %+v", got, want)
	}
}

func TestInt128AshrShiftAtOrBeyond128(t *testing.T) {
	neg := Int128{Hi: -5, Lo: 0}
	if got, want := Int128Ashr(neg, 128), (Int128{Hi: -1, Lo: ^uint64(0)}); got != want {
		t.Errorf("Int128Ashr(negative, 128) = %+v, want all-ones %+v", got, want)
	}
	pos := Int128{Hi: 5, Lo: 0}
	if got := Int128Ashr(pos, 200); got != (Int128{}) {
		t.Errorf("Int128Ashr(positive, 200) = %+v, want zero", got)
	}
}

func TestUint128MulDivModRoundtrip(t *testing.T) {
	a := Uint128{Hi: 0, Lo: 1 << 40}
	b := Uint128{Hi: 0, Lo: 3}
	product := Uint128Mul(a, b)
	quot, err := Uint128Div(product, b)
	if err != nil {
		t.Fatalf("Uint128Div: %v", err)
	}
	if quot != a {
		t.Errorf("Uint128Div(Uint128Mul(a,b),b) = %+v, want %+v", quot, a)
	}
	rem, err := Uint128Mod(product, b)
	if err != nil {
		t.Fatalf("Uint128Mod: %v", err)
	}
	if rem != (Uint128{}) {
		t.Errorf("Uint128Mod(Uint128Mul(a,b),b) = %+v, want zero remainder", rem)
	}
}

func TestUint128DivByZero(t *testing.T) {
	a := Uint128{Lo: 1}
	if _, err := Uint128Div(a, Uint128{}); err == nil {
		t.Fatal("Uint128Div by zero: want error, got nil")
	}
	if _, err := Uint128Mod(a, Uint128{}); err == nil {
		t.Fatal("Uint128Mod by zero: want error, got nil")
	}
}

func TestUint128LshlLshrRoundtrip(t *testing.T) {
	v := Uint128{Hi: 0, Lo: 0xff}
	shifted := Uint128Lshl(v, 64)
	if shifted != (Uint128{Hi: 0xff, Lo: 0}) {
		t.Errorf("Uint128Lshl(v,64) = %+v, want {Hi:0xff,Lo:0}", shifted)
	}
	back := Uint128Lshr(shifted, 64)
	if back != v {
		t.Errorf("Uint128Lshr(Uint128Lshl(v,64),64) = %+v, want %+v", back, v)
	}
}

func TestUint128ShiftAtOrBeyond128IsZero(t *testing.T) {
	v := Uint128{Hi: 1, Lo: 1}
	if got := Uint128Lshl(v, 128); got != (Uint128{}) {
		t.Errorf("Uint128Lshl(v,128) = %+v, want zero", got)
	}
	if got := Uint128Lshr(v, 200); got != (Uint128{}) {
		t.Errorf("Uint128Lshr(v,200) = %+v, want zero", got)
	}
}

func TestTf2CompareFamilyOrdering(t *testing.T) {
	one := F128FromInt64(1)
	two := F128FromInt64(2)

	if Eqtf2(one, one) != 0 {
		t.Errorf("Eqtf2(1,1) != 0")
	}
	if Eqtf2(one, two) == 0 {
		t.Errorf("Eqtf2(1,2) == 0, want nonzero")
	}
	if Netf2(one, one) != 0 {
		t.Errorf("Netf2(1,1) != 0, want equal folds to 0")
	}
	if Netf2(one, two) == 0 {
		t.Errorf("Netf2(1,2) == 0, want nonzero")
	}
	if Lttf2(one, two) >= 0 {
		t.Errorf("Lttf2(1,2) = %d, want negative", Lttf2(one, two))
	}
	if Gttf2(two, one) <= 0 {
		t.Errorf("Gttf2(2,1) = %d, want positive", Gttf2(two, one))
	}
	if Letf2(one, one) != 0 {
		t.Errorf("Letf2(1,1) != 0")
	}
	if Getf2(one, one) != 0 {
		t.Errorf("Getf2(1,1) != 0")
	}
}

func TestTf2CompareFamilyNaN(t *testing.T) {
	nan := f128NaN()
	one := F128FromInt64(1)

	if Eqtf2(nan, one) == 0 {
		t.Errorf("Eqtf2(NaN,1) == 0, want nonzero (not equal)")
	}
	if Unordtf2(nan, one) != 1 {
		t.Errorf("Unordtf2(NaN,1) = %d, want 1", Unordtf2(nan, one))
	}
	if Unordtf2(one, one) != 0 {
		t.Errorf("Unordtf2(1,1) = %d, want 0", Unordtf2(one, one))
	}
}
