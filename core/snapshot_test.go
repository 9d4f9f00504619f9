package core

import "testing"

func TestBuildSnapshotEmpty(t *testing.T) {
	ctx, chain := newTestApplyContext(t, mustAccount(t, "alice"), mustAccount(t, "alice"), mustAccount(t, "alice"), true)

	snap, err := BuildSnapshot(ctx.Tx(), chain.Tokens, chain.Fees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.TokenMeta) != 0 || len(snap.TokenBalance) != 0 || len(snap.TransactionFee) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
	if snap.SystemTokenListVersion != 0 {
		t.Fatalf("expected version 0 before any system-token-list update, got %d", snap.SystemTokenListVersion)
	}
}

func TestBuildSnapshotIncludesMetaAndBalances(t *testing.T) {
	ctx, chain := newTestApplyContext(t, mustAccount(t, "token1"), mustAccount(t, "token1"), mustAccount(t, "token1"), true)
	token := mustAccount(t, "token1")
	alice := mustAccount(t, "alice")
	bob := mustAccount(t, "bob")

	if err := chain.Tokens.SetTokenMetaInfo(ctx, TokenMeta{
		TokenID: token, Symbol: Symbol{Precision: 4, Code: "TOK"}, URL: "https://example.test",
	}); err != nil {
		t.Fatalf("unexpected error setting token meta: %v", err)
	}
	if err := chain.Tokens.AddTokenBalance(ctx, token, alice, 100); err != nil {
		t.Fatalf("unexpected error adding alice balance: %v", err)
	}
	if err := chain.Tokens.AddTokenBalance(ctx, token, bob, 50); err != nil {
		t.Fatalf("unexpected error adding bob balance: %v", err)
	}

	version := chain.Tokens.SetSystemTokenList(ctx, []SystemToken{{TokenID: token, TokenWeight: TokenWeight1x}}, nil)
	if version <= 0 {
		t.Fatalf("expected a positive version, got %d", version)
	}

	snap, err := BuildSnapshot(ctx.Tx(), chain.Tokens, chain.Fees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.TokenMeta) != 1 || snap.TokenMeta[0].Meta.Symbol.Code != "TOK" {
		t.Fatalf("expected one token_meta entry for TOK, got %+v", snap.TokenMeta)
	}
	if len(snap.TokenBalance) != 2 {
		t.Fatalf("expected two token_balance entries, got %+v", snap.TokenBalance)
	}
	var sawAlice, sawBob bool
	for _, b := range snap.TokenBalance {
		switch b.Owner {
		case alice:
			sawAlice = b.Balance == 100
		case bob:
			sawBob = b.Balance == 50
		}
	}
	if !sawAlice || !sawBob {
		t.Fatalf("expected both balances present with correct amounts, got %+v", snap.TokenBalance)
	}
	if snap.SystemTokenListVersion != version {
		t.Fatalf("expected snapshot version %d, got %d", version, snap.SystemTokenListVersion)
	}
}

func TestBuildSnapshotIncludesTransactionFees(t *testing.T) {
	ctx, chain := newTestApplyContext(t, mustAccount(t, "alice"), mustAccount(t, "alice"), mustAccount(t, "alice"), true)
	code := mustAccount(t, "code")
	action := mustAccount(t, "action")

	if err := chain.Fees.SetTxFeeForAction(code, action, 999, FeeTypeFixedPerAction); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := BuildSnapshot(ctx.Tx(), chain.Tokens, chain.Fees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, e := range snap.TransactionFee {
		if e.Code == code && e.Action == action && e.Value == 999 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the configured fee entry in the snapshot, got %+v", snap.TransactionFee)
	}
}
