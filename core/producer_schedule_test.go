package core

import (
	"encoding/binary"
	"testing"
)

func TestDecodeProducerScheduleDiscriminator(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, scheduleDiscriminatorV0)

	disc, rest, err := DecodeProducerSchedule(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if disc != scheduleDiscriminatorV0 {
		t.Fatalf("expected discriminator 0, got %d", disc)
	}
	if len(rest) != 0 {
		t.Fatalf("expected empty rest, got %d bytes", len(rest))
	}
}

func TestDecodeProducerScheduleUnknownDiscriminator(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, 2)

	if _, _, err := DecodeProducerSchedule(buf); err == nil {
		t.Fatalf("expected wasm_execution_error on unknown discriminator")
	}
}

func TestDecodeProducerScheduleTruncated(t *testing.T) {
	if _, _, err := DecodeProducerSchedule([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error on truncated discriminator")
	}
}

func TestValidateProducerNamesUnique(t *testing.T) {
	alice, _ := NewAccountName("alice")
	bob, _ := NewAccountName("bob")

	if err := ValidateProducerNamesUnique([]AccountName{alice, bob}); err != nil {
		t.Fatalf("unexpected error for distinct names: %v", err)
	}
	if err := ValidateProducerNamesUnique([]AccountName{alice, alice}); err == nil {
		t.Fatalf("expected error for duplicate producer name")
	}
}

func TestProducerScheduleManagerSetProposedV0RejectsDuplicates(t *testing.T) {
	mgr := NewProducerScheduleManager()
	p, _ := NewAccountName("prod")

	err := mgr.SetProposedV0(0, []ProducerKey{{ProducerName: p}, {ProducerName: p}})
	if err == nil {
		t.Fatalf("expected duplicate producer name to be rejected")
	}
	if _, ok := mgr.Proposed(); ok {
		t.Fatalf("expected no schedule to be proposed after rejection")
	}
}

func TestProducerScheduleManagerSetProposedV1(t *testing.T) {
	mgr := NewProducerScheduleManager()
	p1, _ := NewAccountName("prod1")
	p2, _ := NewAccountName("prod2")

	err := mgr.SetProposedV1(1, []ProducerAuthority{
		{ProducerName: p1, Threshold: 1, Keys: []WeightedKey{{Weight: 1}}},
		{ProducerName: p2, Threshold: 1, Keys: []WeightedKey{{Weight: 1}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sched, ok := mgr.Proposed()
	if !ok {
		t.Fatalf("expected a proposed schedule")
	}
	if !sched.IsV1 || len(sched.V1) != 2 {
		t.Fatalf("expected v1 schedule with 2 producers, got %+v", sched)
	}
}
