package core

import "sync"

// AccountRegistry is the minimal account-existence and privilege ledger the
// apply-context consults for is_account. The privileged-intrinsic gate in
// Dispatch reads ApplyContext.Privileged, not the registry's flags.
// A full chain keeps this behind the account/permission table of the
// underlying storage format (out of scope, spec.md §1); this registry is
// the seam the core owns.
type AccountRegistry struct {
	mu         sync.RWMutex
	accounts   map[AccountName]struct{}
	privileged map[AccountName]bool
}

func NewAccountRegistry() *AccountRegistry {
	return &AccountRegistry{
		accounts:   make(map[AccountName]struct{}),
		privileged: make(map[AccountName]bool),
	}
}

func (r *AccountRegistry) CreateAccount(name AccountName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[name] = struct{}{}
}

func (r *AccountRegistry) Exists(name AccountName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.accounts[name]
	return ok
}

// SetPrivileged flags an account as allowed to call privileged intrinsics,
// per spec.md §6's "privileged receiver" external interface.
func (r *AccountRegistry) SetPrivileged(name AccountName, privileged bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.privileged[name] = privileged
}

func (r *AccountRegistry) IsPrivileged(name AccountName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.privileged[name]
}

// ExistsFunc adapts Exists to the accountsLookup shape NewApplyContext wants.
func (r *AccountRegistry) ExistsFunc() func(AccountName) bool {
	return r.Exists
}
