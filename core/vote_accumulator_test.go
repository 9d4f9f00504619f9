package core

import "testing"

func TestTransactionVoteAccumulatorSetReceiptsSortsDescending(t *testing.T) {
	v := NewTransactionVoteAccumulator()
	a, _ := NewAccountName("a")
	b, _ := NewAccountName("b")
	c, _ := NewAccountName("c")

	v.SetReceipts([]VoteReceipt{
		{Receiver: a, Weight: 10},
		{Receiver: b, Weight: 30},
		{Receiver: c, Weight: 20},
	})

	top := v.Top(0, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 receipts, got %d", len(top))
	}
	if top[0].Receiver != b || top[1].Receiver != c || top[2].Receiver != a {
		t.Fatalf("expected receipts sorted descending by weight, got %+v", top)
	}
}

func TestTransactionVoteAccumulatorTopPagination(t *testing.T) {
	v := NewTransactionVoteAccumulator()
	a, _ := NewAccountName("a")
	b, _ := NewAccountName("b")
	v.SetReceipts([]VoteReceipt{{Receiver: a, Weight: 2}, {Receiver: b, Weight: 1}})

	if got := v.Top(0, 1); len(got) != 1 || got[0].Receiver != a {
		t.Fatalf("expected first page [a], got %+v", got)
	}
	if got := v.Top(1, 1); len(got) != 1 || got[0].Receiver != b {
		t.Fatalf("expected second page [b], got %+v", got)
	}
	if got := v.Top(2, 1); got != nil {
		t.Fatalf("expected nil past the end, got %+v", got)
	}
	if got := v.Top(-1, 1); got != nil {
		t.Fatalf("expected nil for negative offset, got %+v", got)
	}
}

func TestTransactionVoteAccumulatorTotal(t *testing.T) {
	v := NewTransactionVoteAccumulator()
	if v.Total() != 0 {
		t.Fatalf("expected zero total before SetTotal")
	}
	v.SetTotal(500)
	if v.Total() != 500 {
		t.Fatalf("expected total 500, got %d", v.Total())
	}
}
