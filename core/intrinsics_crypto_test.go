package core

import (
	"crypto/sha256"
	"testing"
	"time"
)

func TestSha256HashIntrinsic(t *testing.T) {
	ctx, _ := newTestApplyContext(t, mustAccountName("alice"), mustAccountName("alice"), 0, false)
	mem := newFakeMemory(256)

	msg := []byte("hello intrinsic")
	if err := mem.Write(0, msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Dispatch("sha256", ctx, mem, false, []uint64{0, uint64(len(msg)), 128})
	if err != nil {
		t.Fatalf("Dispatch sha256: %v", err)
	}

	got, err := mem.Read(128, 32)
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	want := sha256.Sum256(msg)
	if string(got) != string(want[:]) {
		t.Errorf("digest mismatch: got %x want %x", got, want)
	}
}

func TestAssertSha256RejectsMismatch(t *testing.T) {
	ctx, _ := newTestApplyContext(t, mustAccountName("alice"), mustAccountName("alice"), 0, false)
	mem := newFakeMemory(256)

	msg := []byte("payload")
	if err := mem.Write(0, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	bogus := make([]byte, 32)
	if err := mem.Write(64, bogus); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Dispatch("assert_sha256", ctx, mem, false, []uint64{0, uint64(len(msg)), 64, 32})
	ce, ok := err.(*ChainError)
	if !ok || ce.Code() != ErrCryptoAPI {
		t.Fatalf("error = %v, want ErrCryptoAPI", err)
	}
}

// TestHashYieldsToChecktime verifies that hashing a buffer larger than
// HashingChecktimeBlockSize is interrupted by a deadline set between blocks,
// per spec.md §4.6/§5, rather than running the whole Sum() uninterruptibly.
func TestHashYieldsToChecktime(t *testing.T) {
	ctx, _ := newTestApplyContext(t, mustAccountName("alice"), mustAccountName("alice"), 0, false)
	mem := newFakeMemory(3 * HashingChecktimeBlockSize)

	big := make([]byte, 2*HashingChecktimeBlockSize+1)
	for i := range big {
		big[i] = byte(i)
	}
	if err := mem.Write(0, big); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx.Begin(time.Now().Add(-time.Second))

	_, err := Dispatch("sha256", ctx, mem, false, []uint64{0, uint64(len(big)), uint64(len(big))})
	ce, ok := err.(*ChainError)
	if !ok || ce.Code() != ErrDeadline {
		t.Fatalf("error = %v, want ErrDeadline from a yielded Checktime call", err)
	}
}
