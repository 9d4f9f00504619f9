package core

import (
	"crypto/sha256"
	"sync"
	"testing"
)

func TestContractRegistrySetAndGetCode(t *testing.T) {
	reg := NewContractRegistry()
	account := mustAccount(t, "alice")
	code := []byte("wasm bytecode goes here")

	entry := reg.SetCode(account, code, VMTypeWasm, 0)
	wantHash := sha256.Sum256(code)
	if entry.CodeHash != wantHash {
		t.Fatalf("expected code hash %x, got %x", wantHash, entry.CodeHash)
	}

	got, ok := reg.GetCode(account)
	if !ok {
		t.Fatalf("expected code to be present after SetCode")
	}
	if got.CodeHash != wantHash || got.VMType != VMTypeWasm {
		t.Fatalf("unexpected stored entry: %+v", got)
	}
}

func TestContractRegistrySetCodeEmptyClears(t *testing.T) {
	reg := NewContractRegistry()
	account := mustAccount(t, "alice")
	reg.SetCode(account, []byte("some code"), VMTypeWasm, 0)

	reg.SetCode(account, nil, VMTypeWasm, 0)
	if _, ok := reg.GetCode(account); ok {
		t.Fatalf("expected code to be cleared by an empty SetCode")
	}
}

func TestContractRegistryGetCodeMissing(t *testing.T) {
	reg := NewContractRegistry()
	if _, ok := reg.GetCode(mustAccount(t, "nobody")); ok {
		t.Fatalf("expected no code for an account that never deployed")
	}
}

// minimalWasmModule is the smallest legal WASM binary: just the magic
// header and version, with no sections.
var minimalWasmModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestModuleCacheCompilesOnce(t *testing.T) {
	backend := NewWasmerBackend()
	cache := NewModuleCache(backend)
	hash := sha256.Sum256(minimalWasmModule)

	mod1, err := cache.GetInstantiatedModule(hash, VMTypeWasm, 0, minimalWasmModule)
	if err != nil {
		t.Fatalf("unexpected error compiling minimal module: %v", err)
	}
	mod2, err := cache.GetInstantiatedModule(hash, VMTypeWasm, 0, minimalWasmModule)
	if err != nil {
		t.Fatalf("unexpected error on cached lookup: %v", err)
	}
	if mod1 != mod2 {
		t.Fatalf("expected the second lookup to return the same cached module instance")
	}
}

func TestModuleCacheConcurrentCallersShareOneCompilation(t *testing.T) {
	backend := NewWasmerBackend()
	cache := NewModuleCache(backend)
	hash := sha256.Sum256(minimalWasmModule)

	const callers = 8
	results := make([]*CompiledModule, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.GetInstantiatedModule(hash, VMTypeWasm, 0, minimalWasmModule)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, err)
		}
	}
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("expected every concurrent caller to observe the same compiled module")
		}
	}
}
