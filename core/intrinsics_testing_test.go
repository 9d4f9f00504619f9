package core

import "testing"

// fakeMemory is a fixed-size GuestMemory fixture for intrinsic unit tests,
// standing in for a wasmer-backed linear memory.
type fakeMemory struct {
	data []byte
}

func newFakeMemory(size int) *fakeMemory {
	return &fakeMemory{data: make([]byte, size)}
}

func (m *fakeMemory) Read(ptr, length int32) ([]byte, error) {
	if ptr < 0 || length < 0 || int(ptr)+int(length) > len(m.data) {
		return nil, ErrorWasmExecution("fakeMemory read out of bounds")
	}
	out := make([]byte, length)
	copy(out, m.data[ptr:int(ptr)+int(length)])
	return out, nil
}

func (m *fakeMemory) Write(ptr int32, data []byte) error {
	if ptr < 0 || int(ptr)+len(data) > len(m.data) {
		return ErrorWasmExecution("fakeMemory write out of bounds")
	}
	copy(m.data[ptr:], data)
	return nil
}

func (m *fakeMemory) Len() int32 { return int32(len(m.data)) }

// newTestApplyContext opens a pebble store under t.TempDir and returns an
// apply-context wired to a fresh ChainServices bundle, for intrinsic tests
// that need a real Tx rather than a nil store.
func newTestApplyContext(t *testing.T, receiver, sender, feePayer AccountName, privileged bool) (*ApplyContext, *ChainServices) {
	t.Helper()
	store, err := OpenStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	accounts := NewAccountRegistry()
	accounts.CreateAccount(receiver)
	accounts.CreateAccount(sender)

	chain := &ChainServices{
		Tokens:    NewStandardTokenManager(),
		Fees:      NewTransactionFeeManager(),
		Resources: NewResourceLimitsManager(),
		Producers: NewProducerScheduleManager(),
		Accounts:  accounts,
		Votes:     NewTransactionVoteAccumulator(),
		Contracts: NewContractRegistry(),
	}
	ctx := NewApplyContext(store, receiver, sender, feePayer, nil, privileged, accounts.ExistsFunc(), chain)
	return ctx, chain
}
