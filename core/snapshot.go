package core

import "encoding/binary"

// Snapshot serialization, per spec.md §6: "each manager writes a sequence
// of sections, one per index, each holding the rows in index order. The
// core components contribute sections token_meta, token_balance,
// transaction_fee, system_token_list_version." Grounded on the teacher's
// memState.Snapshot copy/restore pattern in virtual_machine.go, replaced
// here with a serialize-to-sections writer since this core's snapshot is an
// export format for external block-production/sync tooling, not an
// in-process rollback mechanism (rollback is already handled by Tx.Rollback).

// TokenMetaEntry is one row of the token_meta snapshot section.
type TokenMetaEntry struct {
	TokenID TokenID
	Meta    TokenMeta
}

// TokenBalanceEntry is one row of the token_balance snapshot section.
type TokenBalanceEntry struct {
	TokenID TokenID
	Owner   AccountName
	Balance int64
}

// Snapshot is the decoded form of a full state export: one section per
// index, each already in the lexicographic key order of spec.md §6.
type Snapshot struct {
	TokenMeta              []TokenMetaEntry
	TokenBalance           []TokenBalanceEntry
	TransactionFee         []TxFeeEntry
	SystemTokenListVersion int64
}

// BuildSnapshot walks every section in index order. Token meta/balance rows
// are scoped to the accounts named by the current system-token list: those
// are the only token codes the runtime has any standing reason to know
// about, since a token's code is also the contract account that owns its
// rows.
func BuildSnapshot(tx *Tx, tokens *StandardTokenManager, fees *TransactionFeeManager) (*Snapshot, error) {
	snap := &Snapshot{
		TransactionFee:         fees.SnapshotEntries(),
		SystemTokenListVersion: tokens.SystemTokenListVersion(),
	}

	for _, st := range tokens.GetSystemTokenList() {
		metaEntries, err := snapshotTokenMeta(tx, st.TokenID)
		if err != nil {
			return nil, err
		}
		snap.TokenMeta = append(snap.TokenMeta, metaEntries...)

		balanceEntries, err := snapshotTokenBalances(tx, st.TokenID)
		if err != nil {
			return nil, err
		}
		snap.TokenBalance = append(snap.TokenBalance, balanceEntries...)
	}
	return snap, nil
}

func snapshotTokenMeta(tx *Tx, tokenID TokenID) ([]TokenMetaEntry, error) {
	it, err := tx.NewRowIterator(tokenID, 0, tokenMetaTable)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []TokenMetaEntry
	row, _, ok := it.LowerBound(0)
	for ok {
		out = append(out, TokenMetaEntry{TokenID: tokenID, Meta: decodeMeta(tokenID, row.Blob)})
		row, _, ok = it.Next()
	}
	return out, nil
}

func snapshotTokenBalances(tx *Tx, tokenID TokenID) ([]TokenBalanceEntry, error) {
	it, err := tx.NewRowIterator(tokenID, 0, tokenBalanceTable)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []TokenBalanceEntry
	row, pk, ok := it.LowerBound(0)
	for ok {
		out = append(out, TokenBalanceEntry{
			TokenID: tokenID,
			Owner:   AccountName(pk),
			Balance: int64(binary.BigEndian.Uint64(row.Blob)),
		})
		row, pk, ok = it.Next()
	}
	return out, nil
}
