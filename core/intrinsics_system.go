package core

import "encoding/binary"

// Privileged system intrinsics: resource limits, producer schedule,
// system-token list, and per-action fee setters. Every privileged handler here first
// relies on Dispatch's privileged-category gate (Category: CategoryPrivileged)
// to reject non-privileged receivers with unaccessible_api before the
// handler body even runs, per spec.md §4.6.

func registerSystemIntrinsics() {
	Register(Intrinsic{
		Name: "set_resource_limits", Category: CategoryPrivileged,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.Chain == nil || ctx.Chain.Resources == nil {
				return 0, ErrorUnaccessibleAPI("set_resource_limits: resource limits manager unavailable")
			}
			ctx.Chain.Resources.SetAccountLimits(AccountName(args[0]), ResourceWeights{
				CPUWeight: int64(args[1]),
				NetWeight: int64(args[2]),
			})
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "get_resource_limits", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI32, TypeI32}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.Chain == nil || ctx.Chain.Resources == nil {
				return 0, ErrorUnaccessibleAPI("get_resource_limits: resource limits manager unavailable")
			}
			w := ctx.Chain.Resources.GetAccountLimits(AccountName(args[0]))
			buf := make([]byte, 16)
			binary.LittleEndian.PutUint64(buf, uint64(w.CPUWeight))
			binary.LittleEndian.PutUint64(buf[8:], uint64(w.NetWeight))
			if err := writePointer(mem, int32(args[1]), buf[:8]); err != nil {
				return 0, err
			}
			return 0, writePointer(mem, int32(args[2]), buf[8:])
		},
	})

	Register(Intrinsic{
		Name: "set_proposed_producers", Category: CategoryPrivileged,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.Chain == nil || ctx.Chain.Producers == nil {
				return 0, ErrorUnaccessibleAPI("set_proposed_producers: producer schedule manager unavailable")
			}
			data, err := readPointer(mem, int32(args[0]), int32(args[1]))
			if err != nil {
				return 0, err
			}
			discriminator, rest, err := DecodeProducerSchedule(data)
			if err != nil {
				return 0, err
			}
			if discriminator == scheduleDiscriminatorV0 {
				producers, err := decodeProducerKeysV0(rest)
				if err != nil {
					return 0, err
				}
				if err := ctx.Chain.Producers.SetProposedV0(0, producers); err != nil {
					return 0, err
				}
			} else {
				producers, err := decodeProducerAuthoritiesV1(rest)
				if err != nil {
					return 0, err
				}
				if err := ctx.Chain.Producers.SetProposedV1(1, producers); err != nil {
					return 0, err
				}
			}
			return 0, nil
		},
	})

	Register(Intrinsic{
		Name: "set_system_token_list", Category: CategoryPrivileged,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.Chain == nil || ctx.Chain.Tokens == nil {
				return 0, ErrorUnaccessibleAPI("set_system_token_list: token manager unavailable")
			}
			data, err := readPointer(mem, int32(args[0]), int32(args[1]))
			if err != nil {
				return 0, err
			}
			list, err := decodeSystemTokenList(data)
			if err != nil {
				return 0, err
			}
			exists := func(AccountName) bool { return true }
			if ctx.Chain.Accounts != nil {
				exists = ctx.Chain.Accounts.Exists
			}
			version := ctx.Chain.Tokens.SetSystemTokenList(ctx, list, exists)
			return uint64(version), nil
		},
	})

	Register(Intrinsic{
		Name: "settxfee", Category: CategoryPrivileged,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.Chain == nil || ctx.Chain.Fees == nil {
				return 0, ErrorUnaccessibleAPI("settxfee: fee manager unavailable")
			}
			return 0, ctx.Chain.Fees.SetTxFeeForAction(AccountName(args[0]), AccountName(args[1]), int64(args[2]), FeeTypeFixedPerAction)
		},
	})
	Register(Intrinsic{
		Name: "unsettxfee", Category: CategoryPrivileged,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.Chain == nil || ctx.Chain.Fees == nil {
				return 0, ErrorUnaccessibleAPI("unsettxfee: fee manager unavailable")
			}
			return 0, ctx.Chain.Fees.UnsetTxFeeEntryForAction(AccountName(args[0]), AccountName(args[1]))
		},
	})
	Register(Intrinsic{
		Name: "gettxfee", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.Chain == nil || ctx.Chain.Fees == nil {
				return uint64(DefaultTxFee.Value), nil
			}
			return uint64(ctx.Chain.Fees.GetTxFeeForAction(AccountName(args[0]), AccountName(args[1])).Value), nil
		},
	})
}

func decodeProducerKeysV0(data []byte) ([]ProducerKey, error) {
	if len(data) < 4 {
		return nil, ErrorWasmExecution("producer schedule v0: truncated count")
	}
	n := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	out := make([]ProducerKey, 0, n)
	for i := 0; i < n; i++ {
		if len(data) < 28 {
			return nil, ErrorWasmExecution("producer schedule v0: truncated entry")
		}
		name := AccountName(binary.LittleEndian.Uint64(data))
		var key Address
		copy(key[:], data[8:28])
		out = append(out, ProducerKey{ProducerName: name, BlockSigning: key})
		data = data[28:]
	}
	return out, nil
}

func decodeProducerAuthoritiesV1(data []byte) ([]ProducerAuthority, error) {
	if len(data) < 4 {
		return nil, ErrorWasmExecution("producer schedule v1: truncated count")
	}
	n := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	out := make([]ProducerAuthority, 0, n)
	for i := 0; i < n; i++ {
		if len(data) < 16 {
			return nil, ErrorWasmExecution("producer schedule v1: truncated entry header")
		}
		name := AccountName(binary.LittleEndian.Uint64(data))
		threshold := binary.LittleEndian.Uint32(data[8:])
		keyCount := int(binary.LittleEndian.Uint32(data[12:]))
		data = data[16:]
		keys := make([]WeightedKey, 0, keyCount)
		for k := 0; k < keyCount; k++ {
			if len(data) < 22 {
				return nil, ErrorWasmExecution("producer schedule v1: truncated key")
			}
			var addr Address
			copy(addr[:], data[:20])
			weight := binary.LittleEndian.Uint16(data[20:22])
			keys = append(keys, WeightedKey{Key: addr, Weight: weight})
			data = data[22:]
		}
		out = append(out, ProducerAuthority{ProducerName: name, Threshold: threshold, Keys: keys})
	}
	return out, nil
}

func decodeSystemTokenList(data []byte) ([]SystemToken, error) {
	if len(data) < 4 {
		return nil, ErrorWasmExecution("system token list: truncated count")
	}
	n := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	out := make([]SystemToken, 0, n)
	for i := 0; i < n; i++ {
		if len(data) < 16 {
			return nil, ErrorWasmExecution("system token list: truncated entry")
		}
		tokenID := AccountName(binary.LittleEndian.Uint64(data))
		weight := int64(binary.LittleEndian.Uint64(data[8:]))
		out = append(out, SystemToken{TokenID: tokenID, TokenWeight: weight})
		data = data[16:]
	}
	return out, nil
}

func init() { registerSystemIntrinsics() }
