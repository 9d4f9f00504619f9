package core

import "sort"

// VoteReceipt is one producer-vote receiver's decayed weighted vote amount,
// per spec.md §4.7.
type VoteReceipt struct {
	Receiver AccountName
	Weight   int64
}

// TransactionVoteAccumulator is the read side of the InfraBlockchain
// transaction-vote system: get_top_transaction_vote_receivers_packed and
// get_total_weighted_transaction_votes read from it, but the decay/accrual
// logic that produces these numbers lives outside this core (spec.md §4.7:
// "the underlying accumulator lives outside this core"). This type is the
// seam: whatever external component computes decayed weighted votes calls
// SetReceipts/SetTotal; the intrinsics only ever read.
type TransactionVoteAccumulator struct {
	receipts []VoteReceipt
	total    int64
}

func NewTransactionVoteAccumulator() *TransactionVoteAccumulator {
	return &TransactionVoteAccumulator{}
}

// SetReceipts replaces the snapshot, sorted descending by weight to match
// the "sorted snapshot of vote receivers by decayed weighted vote amount"
// contract of spec.md §4.7.
func (v *TransactionVoteAccumulator) SetReceipts(receipts []VoteReceipt) {
	sorted := append([]VoteReceipt(nil), receipts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })
	v.receipts = sorted
}

func (v *TransactionVoteAccumulator) SetTotal(total int64) { v.total = total }

func (v *TransactionVoteAccumulator) Total() int64 { return v.total }

// Top returns a pagination window [offsetRank, offsetRank+limit) of the
// sorted receipt snapshot, per spec.md §4.7's offset/limit pagination.
func (v *TransactionVoteAccumulator) Top(offsetRank, limit int) []VoteReceipt {
	if offsetRank < 0 || offsetRank >= len(v.receipts) {
		return nil
	}
	end := offsetRank + limit
	if end > len(v.receipts) {
		end = len(v.receipts)
	}
	return append([]VoteReceipt(nil), v.receipts[offsetRank:end]...)
}
