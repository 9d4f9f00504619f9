package core

import (
	"sort"
	"sync"
)

// FeeType enumerates the fee pricing strategies; spec.md §4.5 only defines
// fixed_per_action, but the type keeps room for the field to be validated.
type FeeType int

const FeeTypeFixedPerAction FeeType = 0

// TxFeeEntry is the record stored per spec.md §3: a (code, action) keyed
// fee with two sentinel fallback keys, (0, action) and (0, 0).
type TxFeeEntry struct {
	Code    AccountName
	Action  AccountName
	Value   int64
	FeeType FeeType
}

// DefaultTxFee is the hardcoded constant fallback when no row exists at any
// of the three lookup tiers, taken verbatim from
// transaction_fee_table_manager.cpp.
var DefaultTxFee = TxFeeEntry{Value: 10000, FeeType: FeeTypeFixedPerAction}

type feeKey struct {
	code, action AccountName
}

// TransactionFeeManager is the keyed fee table of spec.md §4.5, grounded on
// transaction_fee_table_manager.cpp's three-tier fallback chain.
type TransactionFeeManager struct {
	mu   sync.RWMutex
	fees map[feeKey]TxFeeEntry
}

func NewTransactionFeeManager() *TransactionFeeManager {
	return &TransactionFeeManager{fees: make(map[feeKey]TxFeeEntry)}
}

// SetTxFeeForAction sets the exact (code, action) entry.
func (m *TransactionFeeManager) SetTxFeeForAction(code, action AccountName, value int64, feeType FeeType) error {
	if value < 0 {
		return ErrorWasmExecution("tx fee value must be non-negative")
	}
	if feeType != FeeTypeFixedPerAction {
		return ErrorWasmExecution("unsupported fee type")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fees[feeKey{code, action}] = TxFeeEntry{Code: code, Action: action, Value: value, FeeType: feeType}
	return nil
}

// SetTxFeeForCommonAction sets the (0, action) fallback entry.
func (m *TransactionFeeManager) SetTxFeeForCommonAction(action AccountName, value int64, feeType FeeType) error {
	return m.SetTxFeeForAction(0, action, value, feeType)
}

// SetDefaultTxFee sets the (0, 0) default entry.
func (m *TransactionFeeManager) SetDefaultTxFee(value int64, feeType FeeType) error {
	return m.SetTxFeeForAction(0, 0, value, feeType)
}

// UnsetTxFeeEntryForAction requires the row to exist.
func (m *TransactionFeeManager) UnsetTxFeeEntryForAction(code, action AccountName) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := feeKey{code, action}
	if _, ok := m.fees[key]; !ok {
		return ErrorWasmExecution("unset_tx_fee_entry_for_action: no such entry")
	}
	delete(m.fees, key)
	return nil
}

// GetTxFeeForAction implements the three-tier fallback chain of
// spec.md §4.5: exact (code, action), then (0, action), then (0, 0), then
// the hardcoded default.
func (m *TransactionFeeManager) GetTxFeeForAction(code, action AccountName) TxFeeEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.fees[feeKey{code, action}]; ok {
		return e
	}
	if e, ok := m.fees[feeKey{0, action}]; ok {
		return e
	}
	if e, ok := m.fees[feeKey{0, 0}]; ok {
		return e
	}
	return DefaultTxFee
}

func (m *TransactionFeeManager) GetTxFeeForCommonAction(action AccountName) TxFeeEntry {
	return m.GetTxFeeForAction(0, action)
}

func (m *TransactionFeeManager) GetDefaultTxFee() TxFeeEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.fees[feeKey{0, 0}]; ok {
		return e
	}
	return DefaultTxFee
}

// SnapshotEntries serializes the index in lexicographic key order, per
// spec.md §6's snapshot layout.
func (m *TransactionFeeManager) SnapshotEntries() []TxFeeEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TxFeeEntry, 0, len(m.fees))
	for _, e := range m.fees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Action < out[j].Action
	})
	return out
}
