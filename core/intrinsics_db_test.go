package core

import (
	"encoding/binary"
	"testing"
)

func writeLE64(t *testing.T, mem *fakeMemory, ptr int32, v uint64) {
	t.Helper()
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	if err := mem.Write(ptr, buf); err != nil {
		t.Fatalf("writeLE64: %v", err)
	}
}

func readBE64(t *testing.T, mem *fakeMemory, ptr int32) uint64 {
	t.Helper()
	buf, err := mem.Read(ptr, 8)
	if err != nil {
		t.Fatalf("readBE64: %v", err)
	}
	return binary.BigEndian.Uint64(buf)
}

// TestIdx64SecondaryIndexRoundtrip exercises the full db_idx64_* surface
// (store, find_secondary, lowerbound, upperbound, end, next, previous) added
// for the idx64 kind, per spec.md §4.3.
func TestIdx64SecondaryIndexRoundtrip(t *testing.T) {
	receiver := mustAccountName("contract")
	ctx, _ := newTestApplyContext(t, receiver, receiver, 0, false)
	mem := newFakeMemory(256)

	scope, table := uint64(1), uint64(1)
	code := uint64(receiver)

	writeLE64(t, mem, 0, 500)
	if _, err := Dispatch("db_idx64_store", ctx, mem, false, []uint64{scope, table, 0, 100, 0}); err != nil {
		t.Fatalf("db_idx64_store row1: %v", err)
	}
	writeLE64(t, mem, 0, 1000)
	if _, err := Dispatch("db_idx64_store", ctx, mem, false, []uint64{scope, table, 0, 200, 0}); err != nil {
		t.Fatalf("db_idx64_store row2: %v", err)
	}

	writeLE64(t, mem, 0, 500)
	ret, err := Dispatch("db_idx64_find_secondary", ctx, mem, false, []uint64{code, scope, table, 0, 64})
	if err != nil {
		t.Fatalf("db_idx64_find_secondary: %v", err)
	}
	if int32(uint32(ret)) == -1 {
		t.Fatal("db_idx64_find_secondary: want a match, got end sentinel")
	}
	if got := readBE64(t, mem, 64); got != 100 {
		t.Errorf("find_secondary(500) primary key = %d, want 100", got)
	}

	writeLE64(t, mem, 0, 600)
	ret, err = Dispatch("db_idx64_lowerbound", ctx, mem, false, []uint64{code, scope, table, 0, 72})
	if err != nil {
		t.Fatalf("db_idx64_lowerbound: %v", err)
	}
	if int32(uint32(ret)) == -1 {
		t.Fatal("db_idx64_lowerbound(600): want a match, got end sentinel")
	}
	if got := readBE64(t, mem, 72); got != 200 {
		t.Errorf("lowerbound(600) primary key = %d, want 200", got)
	}

	writeLE64(t, mem, 0, 500)
	ret, err = Dispatch("db_idx64_upperbound", ctx, mem, false, []uint64{code, scope, table, 0, 80})
	if err != nil {
		t.Fatalf("db_idx64_upperbound: %v", err)
	}
	if int32(uint32(ret)) == -1 {
		t.Fatal("db_idx64_upperbound(500): want a match, got end sentinel")
	}
	if got := readBE64(t, mem, 80); got != 200 {
		t.Errorf("upperbound(500) primary key = %d, want 200", got)
	}

	endHandle, err := Dispatch("db_idx64_end", ctx, mem, false, []uint64{code, scope, table})
	if err != nil {
		t.Fatalf("db_idx64_end: %v", err)
	}
	ret, err = Dispatch("db_idx64_previous", ctx, mem, false, []uint64{endHandle, 88})
	if err != nil {
		t.Fatalf("db_idx64_previous: %v", err)
	}
	if int32(uint32(ret)) == -1 {
		t.Fatal("db_idx64_previous from end: want the greatest row, got end sentinel")
	}
	if got := readBE64(t, mem, 88); got != 200 {
		t.Errorf("previous-from-end primary key = %d, want 200 (greatest)", got)
	}

	ret, err = Dispatch("db_idx64_next", ctx, mem, false, []uint64{endHandle, 96})
	if err != nil {
		t.Fatalf("db_idx64_next: %v", err)
	}
	if int32(uint32(ret)) != -1 {
		t.Errorf("db_idx64_next past the greatest row = %d, want end sentinel -1", int32(uint32(ret)))
	}
}

// TestIdx128SecondaryIndexFind exercises the idx128 family's encode function
// (two little-endian 64-bit halves) and find_secondary.
func TestIdx128SecondaryIndexFind(t *testing.T) {
	receiver := mustAccountName("contract")
	ctx, _ := newTestApplyContext(t, receiver, receiver, 0, false)
	mem := newFakeMemory(256)

	scope, table := uint64(2), uint64(2)
	code := uint64(receiver)

	writeU128LE := func(ptr int32, hi, lo uint64) {
		buf := make([]byte, 16)
		binary.LittleEndian.PutUint64(buf[:8], lo)
		binary.LittleEndian.PutUint64(buf[8:], hi)
		if err := mem.Write(ptr, buf); err != nil {
			t.Fatalf("writeU128LE: %v", err)
		}
	}

	writeU128LE(0, 0, 42)
	if _, err := Dispatch("db_idx128_store", ctx, mem, false, []uint64{scope, table, 0, 10, 0}); err != nil {
		t.Fatalf("db_idx128_store: %v", err)
	}

	writeU128LE(0, 0, 42)
	ret, err := Dispatch("db_idx128_find_secondary", ctx, mem, false, []uint64{code, scope, table, 0, 32})
	if err != nil {
		t.Fatalf("db_idx128_find_secondary: %v", err)
	}
	if int32(uint32(ret)) == -1 {
		t.Fatal("db_idx128_find_secondary: want a match, got end sentinel")
	}
	if got := readBE64(t, mem, 32); got != 10 {
		t.Errorf("idx128 find_secondary primary key = %d, want 10", got)
	}
}

// TestIdxLongDoubleSecondaryIndexRejectsNaN verifies the idx_long_double
// encode path (orderPreservingF128) rejects a NaN secondary value, the same
// guard orderPreservingF64 applies for idx_double, per spec.md §9.
func TestIdxLongDoubleSecondaryIndexRejectsNaN(t *testing.T) {
	receiver := mustAccountName("contract")
	ctx, _ := newTestApplyContext(t, receiver, receiver, 0, false)
	mem := newFakeMemory(64)

	nan := f128NaN()
	b := nan.Bytes()
	if err := mem.Write(0, b[:]); err != nil {
		t.Fatalf("write NaN: %v", err)
	}

	_, err := Dispatch("db_idx_long_double_store", ctx, mem, false, []uint64{1, 1, 0, 1, 0})
	if err == nil {
		t.Fatal("db_idx_long_double_store with NaN secondary: want error, got nil")
	}
}
