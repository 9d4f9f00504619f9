package core

import "testing"

func TestAccountRegistryCreateAndExists(t *testing.T) {
	reg := NewAccountRegistry()
	alice, _ := NewAccountName("alice")

	if reg.Exists(alice) {
		t.Fatalf("expected alice to not exist yet")
	}
	reg.CreateAccount(alice)
	if !reg.Exists(alice) {
		t.Fatalf("expected alice to exist after CreateAccount")
	}
}

func TestAccountRegistryPrivileged(t *testing.T) {
	reg := NewAccountRegistry()
	eosio, _ := NewAccountName("eosio")
	reg.CreateAccount(eosio)

	if reg.IsPrivileged(eosio) {
		t.Fatalf("expected eosio to start unprivileged")
	}
	reg.SetPrivileged(eosio, true)
	if !reg.IsPrivileged(eosio) {
		t.Fatalf("expected eosio to be privileged after SetPrivileged(true)")
	}
	reg.SetPrivileged(eosio, false)
	if reg.IsPrivileged(eosio) {
		t.Fatalf("expected eosio to be unprivileged after SetPrivileged(false)")
	}
}

func TestAccountRegistryExistsFunc(t *testing.T) {
	reg := NewAccountRegistry()
	bob, _ := NewAccountName("bob")
	reg.CreateAccount(bob)

	fn := reg.ExistsFunc()
	if !fn(bob) {
		t.Fatalf("expected ExistsFunc closure to report bob as existing")
	}
	carol, _ := NewAccountName("carol")
	if fn(carol) {
		t.Fatalf("expected ExistsFunc closure to report carol as missing")
	}
}
