package core

import (
	"crypto/sha256"
	"sync"
)

// VMType distinguishes guest bytecode formats a backend may be asked to
// instantiate; this core only ships the WASM backend of spec.md §1, but the
// field exists because get_instantiated_module's cache key is
// (code_hash, vm_type, vm_version) regardless of how many backends exist.
type VMType uint8

const VMTypeWasm VMType = 0

// ContractCode is the deployed code record for one account, set by the
// setcode host action. Grounded on the teacher's ContractManager/
// ContractRegistry split in contract_management.go, collapsed into a single
// registry since this core does not carry the teacher's separate
// ownership/pause administrative layer (out of scope per spec.md §1: no
// ABI-encoded JSON layer, no RPC surface to administer from).
type ContractCode struct {
	Account   AccountName
	CodeHash  Hash
	VMType    VMType
	VMVersion uint32
	Code      []byte
}

// ContractRegistry tracks which code is currently deployed to which
// account. One instance is shared chain-wide, alongside ChainServices.
type ContractRegistry struct {
	mu   sync.RWMutex
	code map[AccountName]ContractCode
}

func NewContractRegistry() *ContractRegistry {
	return &ContractRegistry{code: make(map[AccountName]ContractCode)}
}

// SetCode deploys code to account, computing its content hash. An empty
// code slice clears the account's deployed contract.
func (r *ContractRegistry) SetCode(account AccountName, code []byte, vmType VMType, vmVersion uint32) ContractCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(code) == 0 {
		delete(r.code, account)
		return ContractCode{Account: account}
	}
	entry := ContractCode{
		Account:   account,
		CodeHash:  sha256.Sum256(code),
		VMType:    vmType,
		VMVersion: vmVersion,
		Code:      code,
	}
	r.code[account] = entry
	return entry
}

func (r *ContractRegistry) GetCode(account AccountName) (ContractCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.code[account]
	return entry, ok
}

// moduleCacheKey is the (code_hash, vm_type, vm_version) tuple spec.md §5
// names explicitly as get_instantiated_module's cache key.
type moduleCacheKey struct {
	hash      Hash
	vmType    VMType
	vmVersion uint32
}

// ModuleCache memoizes compiled modules by (code_hash, vm_type, vm_version),
// safe against the concurrent JIT compilation spec.md §5 calls out: "the
// WASM backend may spawn helper threads for JIT compilation of code it has
// not previously seen; the core must tolerate this by making backend
// lookups ... safe against concurrent compilation." A sync.Mutex-guarded
// map with a per-entry "compiling" channel gives every concurrent caller
// for the same key the same compiled module instead of compiling it twice.
type ModuleCache struct {
	backend *WasmerBackend

	mu      sync.Mutex
	entries map[moduleCacheKey]*moduleCacheEntry
}

type moduleCacheEntry struct {
	ready    chan struct{}
	compiled *CompiledModule
	err      error
}

func NewModuleCache(backend *WasmerBackend) *ModuleCache {
	return &ModuleCache{backend: backend, entries: make(map[moduleCacheKey]*moduleCacheEntry)}
}

// GetInstantiatedModule returns the compiled module for (codeHash, vmType,
// vmVersion), compiling code on first use and memoizing the result for every
// subsequent and concurrently-racing caller.
func (c *ModuleCache) GetInstantiatedModule(codeHash Hash, vmType VMType, vmVersion uint32, code []byte) (*CompiledModule, error) {
	key := moduleCacheKey{hash: codeHash, vmType: vmType, vmVersion: vmVersion}

	c.mu.Lock()
	entry, exists := c.entries[key]
	if !exists {
		entry = &moduleCacheEntry{ready: make(chan struct{})}
		c.entries[key] = entry
		c.mu.Unlock()

		entry.compiled, entry.err = c.backend.Compile(code)
		close(entry.ready)
		return entry.compiled, entry.err
	}
	c.mu.Unlock()

	<-entry.ready
	return entry.compiled, entry.err
}
