package core

import (
	"encoding/binary"
	"math"
	"sync"
)

// TokenMeta mirrors the record created by settokenmeta, per the data model
// of spec.md §3.
type TokenMeta struct {
	TokenID     TokenID
	Symbol      Symbol
	TotalSupply int64
	URL         string
	Description string
}

// MaxMetaFieldLen bounds Url and Description, per spec.md §3.
const MaxMetaFieldLen = 255

// SystemToken is one entry of the weighted fee-payment list, per spec.md §3.
type SystemToken struct {
	TokenID     TokenID
	TokenWeight int64
}

// TokenWeight1x is the baseline relative fee weight, per spec.md §4.4.
const TokenWeight1x = 10000

// MaxSystemTokens bounds the system-token list size, per spec.md §4.4.
const MaxSystemTokens = 64

// StandardTokenManager owns token metadata, balances and the system-token
// list, and drives fee collection, per spec.md §4.4. It is grounded on the
// original yosemite standard_token_manager.cpp, rewritten against the
// pebble-backed state store and the apply-context's inline action queue
// instead of EOSIO's multi-index containers and transaction_context.
type StandardTokenManager struct {
	mu sync.Mutex

	metaVersion  int64
	systemTokens []SystemToken
}

func NewStandardTokenManager() *StandardTokenManager {
	return &StandardTokenManager{}
}

var (
	tokenMetaTable    = mustAccountName("token.meta")
	tokenBalanceTable = mustAccountName("token.bal")
)

func mustAccountName(s string) AccountName {
	n, err := NewAccountName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func metaPrimaryKey(tokenID TokenID) uint64 { return uint64(tokenID) }

func balancePrimaryKey(owner AccountName) uint64 { return uint64(owner) }

func encodeMeta(m TokenMeta) []byte {
	buf := make([]byte, 1+8+8+2+len(m.Symbol.Code)+2+len(m.URL)+2+len(m.Description))
	buf[0] = m.Symbol.Precision
	binary.BigEndian.PutUint64(buf[1:], uint64(m.TotalSupply))
	off := 9
	off = putLenPrefixed(buf, off, m.Symbol.Code)
	off = putLenPrefixed(buf, off, m.URL)
	putLenPrefixed(buf, off, m.Description)
	return buf
}

func putLenPrefixed(buf []byte, off int, s string) int {
	binary.BigEndian.PutUint16(buf[off:], uint16(len(s)))
	off += 2
	copy(buf[off:], s)
	return off + len(s)
}

func decodeMeta(tokenID TokenID, b []byte) TokenMeta {
	precision := b[0]
	total := int64(binary.BigEndian.Uint64(b[1:]))
	off := 9
	code, off := getLenPrefixed(b, off)
	url, off := getLenPrefixed(b, off)
	desc, _ := getLenPrefixed(b, off)
	return TokenMeta{
		TokenID:     tokenID,
		Symbol:      Symbol{Precision: precision, Code: code},
		TotalSupply: total,
		URL:         url,
		Description: desc,
	}
}

func getLenPrefixed(b []byte, off int) (string, int) {
	n := int(binary.BigEndian.Uint16(b[off:]))
	off += 2
	return string(b[off : off+n]), off + n
}

// SetTokenMetaInfo creates the record on first call (charging RAM to
// token_id), or updates it, rejecting a symbol change and rejecting a
// no-op update where both url and description are unchanged, per
// spec.md §4.4 and §8 scenario 6.
func (m *StandardTokenManager) SetTokenMetaInfo(c *ApplyContext, meta TokenMeta) error {
	if len(meta.URL) > MaxMetaFieldLen || len(meta.Description) > MaxMetaFieldLen {
		return ErrorWasmExecution("token meta url/description exceeds max length")
	}
	existing, ok := c.Tx().GetRow(meta.TokenID, 0, tokenMetaTable, metaPrimaryKey(meta.TokenID))
	if !ok {
		val := encodeMeta(meta)
		delta, err := c.Tx().StoreRow(meta.TokenID, 0, tokenMetaTable, metaPrimaryKey(meta.TokenID), TableRow{Payer: meta.TokenID, Blob: val})
		if err != nil {
			return err
		}
		c.AddRAMUsage(meta.TokenID, delta)
		return nil
	}
	old := decodeMeta(meta.TokenID, existing.Blob)
	if old.Symbol.Code != meta.Symbol.Code || old.Symbol.Precision != meta.Symbol.Precision {
		return ErrorWasmExecution("token_meta_validate_exception: symbol is immutable once set")
	}
	if old.URL == meta.URL && old.Description == meta.Description {
		return ErrorWasmExecution("token_meta_validate_exception: no-op meta update")
	}
	meta.TotalSupply = old.TotalSupply
	val := encodeMeta(meta)
	delta, err := c.Tx().UpdateRow(meta.TokenID, 0, tokenMetaTable, metaPrimaryKey(meta.TokenID), TableRow{Payer: existing.Payer, Blob: val})
	if err != nil {
		return err
	}
	c.AddRAMUsage(existing.Payer, delta)
	return nil
}

func (m *StandardTokenManager) GetTokenMeta(c *ApplyContext, tokenID TokenID) (TokenMeta, bool) {
	row, ok := c.Tx().GetRow(tokenID, 0, tokenMetaTable, metaPrimaryKey(tokenID))
	if !ok {
		return TokenMeta{}, false
	}
	return decodeMeta(tokenID, row.Blob), true
}

// UpdateTokenTotalSupply applies a signed delta; the caller (issue/retire)
// is responsible for sign discipline, per spec.md §4.4.
func (m *StandardTokenManager) UpdateTokenTotalSupply(c *ApplyContext, tokenID TokenID, delta int64) error {
	row, ok := c.Tx().GetRow(tokenID, 0, tokenMetaTable, metaPrimaryKey(tokenID))
	if !ok {
		return ErrorWasmExecution("update_token_total_supply: unknown token")
	}
	meta := decodeMeta(tokenID, row.Blob)
	meta.TotalSupply += delta
	val := encodeMeta(meta)
	d, err := c.Tx().UpdateRow(tokenID, 0, tokenMetaTable, metaPrimaryKey(tokenID), TableRow{Payer: row.Payer, Blob: val})
	if err != nil {
		return err
	}
	c.AddRAMUsage(row.Payer, d)
	return nil
}

func balanceKey(tokenID TokenID, owner AccountName) uint64 { return balancePrimaryKey(owner) }

// balanceScope is 0 rather than owner: balance rows must be enumerable by
// scanning the per-token tokenBalanceTable in primary-key order for the
// token_balance snapshot section of spec.md §6, which requires a single
// fixed (code, scope, table) prefix to iterate under, not one scope per
// owner.
const balanceScope = AccountName(0)

// AddTokenBalance requires ctx.Receiver == token_id: a contract cannot
// touch another contract's balances directly, per spec.md §4.4.
func (m *StandardTokenManager) AddTokenBalance(c *ApplyContext, tokenID TokenID, owner AccountName, value int64) error {
	if c.Receiver != tokenID {
		return ErrorUnaccessibleAPI("add_token_balance: receiver is not the token contract")
	}
	pk := balanceKey(tokenID, owner)
	row, ok := c.Tx().GetRow(tokenID, balanceScope, tokenBalanceTable, pk)
	if !ok {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(value))
		delta, err := c.Tx().StoreRow(tokenID, balanceScope, tokenBalanceTable, pk, TableRow{Payer: owner, Blob: buf})
		if err != nil {
			return err
		}
		c.AddRAMUsage(owner, delta)
		return nil
	}
	bal := int64(binary.BigEndian.Uint64(row.Blob))
	bal += value
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(bal))
	delta, err := c.Tx().UpdateRow(tokenID, balanceScope, tokenBalanceTable, pk, TableRow{Payer: row.Payer, Blob: buf})
	if err != nil {
		return err
	}
	c.AddRAMUsage(row.Payer, delta)
	return nil
}

// SubtractTokenBalance fails with insufficient_token_balance when the row
// is missing or undersized, and removes the row (releasing its RAM) when
// the resulting balance is exactly zero, per spec.md §4.4.
func (m *StandardTokenManager) SubtractTokenBalance(c *ApplyContext, tokenID TokenID, owner AccountName, value int64) error {
	if c.Receiver != tokenID {
		return ErrorUnaccessibleAPI("subtract_token_balance: receiver is not the token contract")
	}
	pk := balanceKey(tokenID, owner)
	row, ok := c.Tx().GetRow(tokenID, balanceScope, tokenBalanceTable, pk)
	if !ok {
		return ErrorInsufficientTokenBalance(owner, tokenID)
	}
	bal := int64(binary.BigEndian.Uint64(row.Blob))
	if bal < value {
		return ErrorInsufficientTokenBalance(owner, tokenID)
	}
	bal -= value
	if bal == 0 {
		delta, err := c.Tx().RemoveRow(tokenID, balanceScope, tokenBalanceTable, pk)
		if err != nil {
			return err
		}
		c.AddRAMUsage(row.Payer, delta)
		return nil
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(bal))
	delta, err := c.Tx().UpdateRow(tokenID, balanceScope, tokenBalanceTable, pk, TableRow{Payer: row.Payer, Blob: buf})
	if err != nil {
		return err
	}
	c.AddRAMUsage(row.Payer, delta)
	return nil
}

func (m *StandardTokenManager) BalanceOf(c *ApplyContext, tokenID TokenID, owner AccountName) int64 {
	row, ok := c.Tx().GetRow(tokenID, balanceScope, tokenBalanceTable, balanceKey(tokenID, owner))
	if !ok {
		return 0
	}
	return int64(binary.BigEndian.Uint64(row.Blob))
}

// SetSystemTokenList requires a privileged context; it makes no separate
// system-account authorization check. The list is bounded, weights must be
// positive, token ids must exist and be unique.
// Returns the new monotonically increasing version, or -1 on rejection,
// per spec.md §4.4.
func (m *StandardTokenManager) SetSystemTokenList(c *ApplyContext, list []SystemToken, accountExists func(AccountName) bool) int64 {
	if !c.Privileged {
		return -1
	}
	if len(list) > MaxSystemTokens {
		return -1
	}
	seen := make(map[TokenID]struct{}, len(list))
	for _, t := range list {
		if t.TokenWeight <= 0 {
			return -1
		}
		if accountExists != nil && !accountExists(t.TokenID) {
			return -1
		}
		if _, dup := seen[t.TokenID]; dup {
			return -1
		}
		seen[t.TokenID] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.systemTokens = append([]SystemToken(nil), list...)
	m.metaVersion++
	return m.metaVersion
}

func (m *StandardTokenManager) GetSystemTokenList() []SystemToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SystemToken(nil), m.systemTokens...)
}

// SystemTokenListVersion returns the version last returned by
// SetSystemTokenList, for the system_token_list_version snapshot section
// of spec.md §6.
func (m *StandardTokenManager) SystemTokenListVersion() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metaVersion
}

// txFeeActionName is the inline action name dispatched to debit a system token
// for fee payment, per spec.md §4.4 and the original
// standard_token_manager.cpp.
var txFeeActionName = mustAccountName("txfee")

// PayTransactionFee implements the exact algorithm of spec.md §4.4 and the
// original yosemite standard_token_manager.cpp: walk the system-token list
// in declared order, scale each token's charge by its weight relative to
// TokenWeight1x with ceiling rounding, dispatch an inline txfee action per
// token touched, and fail with yosemite_transaction_fee_exception if the
// walk exhausts every token before the full fee is covered.
func (m *StandardTokenManager) PayTransactionFee(c *ApplyContext, feePayer AccountName, feeAmount int64) error {
	list := m.GetSystemTokenList()
	remaining := feeAmount
	for _, st := range list {
		if remaining <= 0 {
			break
		}
		balance := m.BalanceOf(c, st.TokenID, feePayer)
		if balance <= 0 {
			continue
		}
		var charge int64
		if st.TokenWeight == TokenWeight1x {
			charge = remaining
		} else {
			charge = ceilDiv(remaining*TokenWeight1x, st.TokenWeight)
		}
		if balance >= charge {
			if err := m.dispatchTxFee(c, st.TokenID, feePayer, charge); err != nil {
				return err
			}
			remaining = 0
			break
		}
		if err := m.dispatchTxFee(c, st.TokenID, feePayer, balance); err != nil {
			return err
		}
		covered := balance * st.TokenWeight / TokenWeight1x
		remaining -= covered
	}
	if remaining > 0 {
		return ErrorYosemiteTransactionFee("does not have enough system token")
	}
	return nil
}

// dispatchTxFee debits payer's tokenID balance and queues the txfee inline
// action. SubtractTokenBalance requires ctx.Receiver == tokenID (a contract
// may only touch its own balances), but fee collection runs against
// whichever contract the failing/succeeding action happened to be, so the
// receiver is held as the token contract for the duration of the call and
// restored after, the same elevation the original transaction_context gives
// itself when collecting fees outside of any one contract's apply context.
func (m *StandardTokenManager) dispatchTxFee(c *ApplyContext, tokenID TokenID, payer AccountName, amount int64) error {
	savedReceiver := c.Receiver
	c.Receiver = tokenID
	err := m.SubtractTokenBalance(c, tokenID, payer, amount)
	c.Receiver = savedReceiver
	if err != nil {
		return err
	}
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(amount))
	return c.SendInline(PackedAction{
		Account: tokenID,
		Name:    txFeeActionName,
		Data:    data,
	})
}

func ceilDiv(a, b int64) int64 {
	if b == 0 {
		return math.MaxInt64
	}
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}
