package core

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestEosioAssertPassesWhenTestNonzero(t *testing.T) {
	ctx, _ := newTestApplyContext(t, mustAccount(t, "alice"), mustAccount(t, "alice"), mustAccount(t, "alice"), false)
	mem := newFakeMemory(64)

	if _, err := Dispatch("eosio_assert", ctx, mem, false, []uint64{1, 0}); err != nil {
		t.Fatalf("expected no error when test is nonzero, got %v", err)
	}
}

func TestEosioAssertFailsWithCString(t *testing.T) {
	ctx, _ := newTestApplyContext(t, mustAccount(t, "alice"), mustAccount(t, "alice"), mustAccount(t, "alice"), false)
	mem := newFakeMemory(64)
	msg := "boom"
	if err := mem.Write(0, append([]byte(msg), 0)); err != nil {
		t.Fatalf("unexpected memory write error: %v", err)
	}

	_, err := Dispatch("eosio_assert", ctx, mem, false, []uint64{0, 0})
	var ce *ChainError
	if !errors.As(err, &ce) || ce.Code() != ErrAssertMessage {
		t.Fatalf("expected assert_message error, got %v", err)
	}
	if ce.Error() != "boom" {
		t.Fatalf("expected message %q, got %q", msg, ce.Error())
	}
}

func TestEosioAssertCallableFromContextFreeCode(t *testing.T) {
	ctx, _ := newTestApplyContext(t, mustAccount(t, "alice"), mustAccount(t, "alice"), mustAccount(t, "alice"), false)
	mem := newFakeMemory(64)

	if _, err := Dispatch("eosio_assert", ctx, mem, true, []uint64{1, 0}); err != nil {
		t.Fatalf("eosio_assert must remain callable from context-free code, got %v", err)
	}
}

func TestEosioAssertMessageExplicitLength(t *testing.T) {
	ctx, _ := newTestApplyContext(t, mustAccount(t, "alice"), mustAccount(t, "alice"), mustAccount(t, "alice"), false)
	mem := newFakeMemory(64)
	payload := []byte("not null terminated but has a length")
	if err := mem.Write(0, payload); err != nil {
		t.Fatalf("unexpected memory write error: %v", err)
	}

	_, err := Dispatch("eosio_assert_message", ctx, mem, false, []uint64{0, 0, uint64(len(payload))})
	var ce *ChainError
	if !errors.As(err, &ce) || ce.Code() != ErrAssertMessage {
		t.Fatalf("expected assert_message error, got %v", err)
	}
	if ce.Error() != string(payload) {
		t.Fatalf("expected message %q, got %q", payload, ce.Error())
	}
}

func TestEosioAssertCodePassesThroughBelowThreshold(t *testing.T) {
	ctx, _ := newTestApplyContext(t, mustAccount(t, "alice"), mustAccount(t, "alice"), mustAccount(t, "alice"), false)
	mem := newFakeMemory(8)

	_, err := Dispatch("eosio_assert_code", ctx, mem, false, []uint64{0, 42})
	var ce *ChainError
	if !errors.As(err, &ce) || ce.Code() != ErrAssertCode {
		t.Fatalf("expected assert_code error, got %v", err)
	}
}

func TestEosioAssertCodeRestrictsReservedRange(t *testing.T) {
	ctx, _ := newTestApplyContext(t, mustAccount(t, "alice"), mustAccount(t, "alice"), mustAccount(t, "alice"), false)
	mem := newFakeMemory(8)

	_, err := Dispatch("eosio_assert_code", ctx, mem, false, []uint64{0, genericSystemErrorCode})
	var ce *ChainError
	if !errors.As(err, &ce) || ce.Code() != ErrRestrictedErrorCode {
		t.Fatalf("expected restricted_error_code error, got %v", err)
	}
}

func TestEosioAssertCodeArgumentCountMismatch(t *testing.T) {
	ctx, _ := newTestApplyContext(t, mustAccount(t, "alice"), mustAccount(t, "alice"), mustAccount(t, "alice"), false)
	mem := newFakeMemory(8)

	_, err := Dispatch("eosio_assert_code", ctx, mem, false, []uint64{0})
	var ce *ChainError
	if !errors.As(err, &ce) || ce.Code() != ErrWasmExecution {
		t.Fatalf("expected wasm_execution_error on argument count mismatch, got %v", err)
	}
}

// mustAccount is a small helper shared by intrinsic tests; failures here
// indicate a broken test fixture name, not the code under test.
func mustAccount(t *testing.T, name string) AccountName {
	t.Helper()
	a, err := NewAccountName(name)
	if err != nil {
		t.Fatalf("NewAccountName(%q) failed: %v", name, err)
	}
	return a
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
