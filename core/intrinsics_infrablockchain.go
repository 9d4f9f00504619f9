package core

import "encoding/binary"

// InfraBlockchain-specific intrinsics: the fee-payer accessor and the two
// transaction-vote readers of spec.md §4.7. The vote numbers themselves are
// produced by an external decay/accrual component; these intrinsics only
// ever read the latest snapshot held in ctx.Chain.Votes.

func registerInfraBlockchainIntrinsics() {
	Register(Intrinsic{
		Name: "trx_fee_payer", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return uint64(ctx.FeePayer), nil
		},
	})

	Register(Intrinsic{
		Name: "get_total_weighted_transaction_votes", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.Chain == nil || ctx.Chain.Votes == nil {
				return 0, nil
			}
			return uint64(ctx.Chain.Votes.Total()), nil
		},
	})

	// get_top_transaction_vote_receivers_packed(offset_rank, limit, packed_ptr, packed_len)
	// writes min(limit, available) receipts as 16-byte (receiver, weight)
	// little-endian pairs into the guest buffer, and returns the number of
	// bytes written, truncating rather than overflowing packed_len.
	Register(Intrinsic{
		Name: "get_top_transaction_vote_receivers_packed", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.Chain == nil || ctx.Chain.Votes == nil {
				return 0, nil
			}
			offset := int(args[0])
			limit := int(args[1])
			packedPtr := int32(args[2])
			packedLen := int32(args[3])

			receipts := ctx.Chain.Votes.Top(offset, limit)
			buf := make([]byte, 0, len(receipts)*16)
			for _, r := range receipts {
				entry := make([]byte, 16)
				binary.LittleEndian.PutUint64(entry, uint64(r.Receiver))
				binary.LittleEndian.PutUint64(entry[8:], uint64(r.Weight))
				buf = append(buf, entry...)
			}
			if int32(len(buf)) > packedLen {
				buf = buf[:packedLen]
			}
			if err := writePointer(mem, packedPtr, buf); err != nil {
				return 0, err
			}
			return uint64(len(buf)), nil
		},
	})
}

func init() { registerInfraBlockchainIntrinsics() }
