package core

import "encoding/binary"

// Database API intrinsics implement the iterator contract of spec.md §4.3
// over the primary uint64 index; store_i64/update_i64/remove_i64 mutate,
// get_i64/next_i64/previous_i64/find_i64/lowerbound_i64/upperbound_i64/
// end_i64 read, all keyed by (code, scope, table, primary_key) and billed
// to the row's payer on mutation.

func currentCodeScopeTable(ctx *ApplyContext, code, scope, table uint64) (AccountName, AccountName, AccountName) {
	return AccountName(code), AccountName(scope), AccountName(table)
}

func registerDatabaseIntrinsics() {
	Register(Intrinsic{
		Name: "db_store_i64", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64, TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			scope, table, payer, pk := args[0], args[1], AccountName(args[2]), args[3]
			data, err := readPointer(mem, int32(args[4]), int32(args[5]))
			if err != nil {
				return 0, err
			}
			delta, err := ctx.Tx().StoreRow(ctx.Receiver, AccountName(scope), AccountName(table), pk, TableRow{Payer: payer, Blob: data})
			if err != nil {
				return 0, err
			}
			ctx.AddRAMUsage(payer, delta)
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "db_update_i64", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI64, TypeI32, TypeI32}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			it, ok := ctx.RowIteratorByHandle(int32(args[0]))
			if !ok {
				return 0, ErrorWasmExecution("db_update_i64: invalid iterator")
			}
			payer := AccountName(args[1])
			data, err := readPointer(mem, int32(args[2]), int32(args[3]))
			if err != nil {
				return 0, err
			}
			delta, err := it.UpdateCurrent(payer, data)
			if err != nil {
				return 0, err
			}
			ctx.AddRAMUsage(payer, delta)
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "db_remove_i64", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			it, ok := ctx.RowIteratorByHandle(int32(args[0]))
			if !ok {
				return 0, ErrorWasmExecution("db_remove_i64: invalid iterator")
			}
			payer, delta, err := it.RemoveCurrent()
			if err != nil {
				return 0, err
			}
			ctx.AddRAMUsage(payer, delta)
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "db_get_i64", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			it, ok := ctx.RowIteratorByHandle(int32(args[0]))
			if !ok {
				return 0, ErrorWasmExecution("db_get_i64: invalid iterator")
			}
			row, _, ok := it.GetCurrent()
			if !ok {
				return 0, ErrorWasmExecution("db_get_i64: iterator not positioned on a row")
			}
			n := len(row.Blob)
			if int32(args[2]) > 0 {
				if err := writePointer(mem, int32(args[1]), row.Blob); err != nil {
					return 0, err
				}
			}
			return uint64(uint32(n)), nil
		},
	})
	Register(Intrinsic{
		Name: "db_find_i64", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			code, scope, table := currentCodeScopeTable(ctx, args[0], args[1], args[2])
			h, err := ctx.OpenRowIterator(code, scope, table)
			if err != nil {
				return 0, err
			}
			it, _ := ctx.RowIteratorByHandle(h)
			if _, _, ok := it.Find(args[3]); !ok {
				return uint64(uint32(int32(-1))), nil
			}
			return uint64(uint32(h)), nil
		},
	})
	Register(Intrinsic{
		Name: "db_lowerbound_i64", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			code, scope, table := currentCodeScopeTable(ctx, args[0], args[1], args[2])
			h, err := ctx.OpenRowIterator(code, scope, table)
			if err != nil {
				return 0, err
			}
			it, _ := ctx.RowIteratorByHandle(h)
			if _, _, ok := it.LowerBound(args[3]); !ok {
				return uint64(uint32(int32(-1))), nil
			}
			return uint64(uint32(h)), nil
		},
	})
	Register(Intrinsic{
		Name: "db_upperbound_i64", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			code, scope, table := currentCodeScopeTable(ctx, args[0], args[1], args[2])
			h, err := ctx.OpenRowIterator(code, scope, table)
			if err != nil {
				return 0, err
			}
			it, _ := ctx.RowIteratorByHandle(h)
			if _, _, ok := it.UpperBound(args[3]); !ok {
				return uint64(uint32(int32(-1))), nil
			}
			return uint64(uint32(h)), nil
		},
	})
	Register(Intrinsic{
		Name: "db_end_i64", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			code, scope, table := currentCodeScopeTable(ctx, args[0], args[1], args[2])
			h, err := ctx.OpenRowIterator(code, scope, table)
			if err != nil {
				return 0, err
			}
			return uint64(uint32(h)), nil
		},
	})
	Register(Intrinsic{
		Name: "db_next_i64", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			it, ok := ctx.RowIteratorByHandle(int32(args[0]))
			if !ok {
				return 0, ErrorWasmExecution("db_next_i64: invalid iterator")
			}
			_, pk, ok := it.Next()
			if !ok {
				return uint64(uint32(int32(-1))), nil
			}
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, pk)
			if err := writePointer(mem, int32(args[1]), buf); err != nil {
				return 0, err
			}
			return uint64(uint32(int32(args[0]))), nil
		},
	})
	Register(Intrinsic{
		Name: "db_previous_i64", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			it, ok := ctx.RowIteratorByHandle(int32(args[0]))
			if !ok {
				return 0, ErrorWasmExecution("db_previous_i64: invalid iterator")
			}
			_, pk, ok := it.Previous()
			if !ok {
				return uint64(uint32(int32(-1))), nil
			}
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, pk)
			if err := writePointer(mem, int32(args[1]), buf); err != nil {
				return 0, err
			}
			return uint64(uint32(int32(args[0]))), nil
		},
	})

	// Secondary index operations are parameterized by IndexKind; all five
	// kinds (idx64, idx128, idx256, idx_double, idx_long_double) are wired
	// through registerSecondaryIndexFamily, which registers the full
	// store/remove/find_secondary/lowerbound/upperbound/end/next/previous
	// set for each, matching the DB_SECONDARY_INDEX_METHODS macro expansion
	// in wasm_interface.cpp and spec.md §4.3.
	registerSecondaryIndexFamily("idx64", IndexU64, func(mem GuestMemory, ptr int32) ([]byte, error) {
		raw, err := readPointer(mem, ptr, 8)
		if err != nil {
			return nil, err
		}
		return orderPreservingU64(binary.LittleEndian.Uint64(raw)), nil
	})
	registerSecondaryIndexFamily("idx128", IndexU128, func(mem GuestMemory, ptr int32) ([]byte, error) {
		raw, err := readPointer(mem, ptr, 16)
		if err != nil {
			return nil, err
		}
		lo := binary.LittleEndian.Uint64(raw[:8])
		hi := binary.LittleEndian.Uint64(raw[8:])
		return orderPreservingU128(hi, lo), nil
	})
	registerSecondaryIndexFamily("idx256", IndexU128Pair, func(mem GuestMemory, ptr int32) ([]byte, error) {
		raw, err := readPointer(mem, ptr, 32)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, 32)
		for i := 0; i < 2; i++ {
			lo := binary.LittleEndian.Uint64(raw[i*16 : i*16+8])
			hi := binary.LittleEndian.Uint64(raw[i*16+8 : i*16+16])
			out = append(out, orderPreservingU128(hi, lo)...)
		}
		return out, nil
	})
	registerSecondaryIndexFamily("idx_double", IndexF64, func(mem GuestMemory, ptr int32) ([]byte, error) {
		raw, err := readPointer(mem, ptr, 8)
		if err != nil {
			return nil, err
		}
		bits := binary.LittleEndian.Uint64(raw)
		return orderPreservingF64(bitsToF64(bits))
	})
	registerSecondaryIndexFamily("idx_long_double", IndexF128, func(mem GuestMemory, ptr int32) ([]byte, error) {
		raw, err := readPointer(mem, ptr, 16)
		if err != nil {
			return nil, err
		}
		return orderPreservingF128(F128FromBytes(raw))
	})
}

// registerSecondaryIndexFamily registers one secondary-index kind's full
// intrinsic surface. encode reads and order-transforms the kind's secondary
// value out of guest memory; it is the only part of the family that varies
// across idx64/idx128/idx256/idx_double/idx_long_double. The resolved
// secondary value itself is never written back to the guest (eosio's
// find_secondary/lowerbound/upperbound also update the caller's secondary
// buffer in place; this store only returns the primary key and iterator
// handle — see DESIGN.md).
func registerSecondaryIndexFamily(prefix string, kind IndexKind, encode func(mem GuestMemory, ptr int32) ([]byte, error)) {
	Register(Intrinsic{
		Name: "db_" + prefix + "_store", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI32, TypeI32}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			scope, table, pk := AccountName(args[0]), AccountName(args[1]), args[3]
			secondary, err := encode(mem, int32(args[4]))
			if err != nil {
				return 0, err
			}
			return 0, ctx.Tx().InsertSecondary(kind, ctx.Receiver, scope, table, secondary, pk)
		},
	})
	Register(Intrinsic{
		Name: "db_" + prefix + "_remove", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI32}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			scope, table, pk := AccountName(args[0]), AccountName(args[1]), args[2]
			secondary, err := encode(mem, int32(args[3]))
			if err != nil {
				return 0, err
			}
			return 0, ctx.Tx().RemoveSecondary(kind, ctx.Receiver, scope, table, secondary, pk)
		},
	})
	Register(Intrinsic{
		Name: "db_" + prefix + "_find_secondary", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			code, scope, table := currentCodeScopeTable(ctx, args[0], args[1], args[2])
			value, err := encode(mem, int32(args[3]))
			if err != nil {
				return 0, err
			}
			h, err := ctx.OpenSecondaryIterator(kind, code, scope, table)
			if err != nil {
				return 0, err
			}
			it, _ := ctx.SecondaryIteratorByHandle(h)
			pk, ok := it.Find(value)
			if !ok {
				return uint64(uint32(int32(-1))), nil
			}
			if err := writeSecondaryPrimary(mem, int32(args[4]), pk); err != nil {
				return 0, err
			}
			return uint64(uint32(h)), nil
		},
	})
	Register(Intrinsic{
		Name: "db_" + prefix + "_lowerbound", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			code, scope, table := currentCodeScopeTable(ctx, args[0], args[1], args[2])
			value, err := encode(mem, int32(args[3]))
			if err != nil {
				return 0, err
			}
			h, err := ctx.OpenSecondaryIterator(kind, code, scope, table)
			if err != nil {
				return 0, err
			}
			it, _ := ctx.SecondaryIteratorByHandle(h)
			pk, ok := it.LowerBound(value)
			if !ok {
				return uint64(uint32(int32(-1))), nil
			}
			if err := writeSecondaryPrimary(mem, int32(args[4]), pk); err != nil {
				return 0, err
			}
			return uint64(uint32(h)), nil
		},
	})
	Register(Intrinsic{
		Name: "db_" + prefix + "_upperbound", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			code, scope, table := currentCodeScopeTable(ctx, args[0], args[1], args[2])
			value, err := encode(mem, int32(args[3]))
			if err != nil {
				return 0, err
			}
			h, err := ctx.OpenSecondaryIterator(kind, code, scope, table)
			if err != nil {
				return 0, err
			}
			it, _ := ctx.SecondaryIteratorByHandle(h)
			pk, ok := it.UpperBound(value)
			if !ok {
				return uint64(uint32(int32(-1))), nil
			}
			if err := writeSecondaryPrimary(mem, int32(args[4]), pk); err != nil {
				return 0, err
			}
			return uint64(uint32(h)), nil
		},
	})
	Register(Intrinsic{
		Name: "db_" + prefix + "_end", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			code, scope, table := currentCodeScopeTable(ctx, args[0], args[1], args[2])
			h, err := ctx.OpenSecondaryIterator(kind, code, scope, table)
			if err != nil {
				return 0, err
			}
			return uint64(uint32(h)), nil
		},
	})
	Register(Intrinsic{
		Name: "db_" + prefix + "_next", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			it, ok := ctx.SecondaryIteratorByHandle(int32(args[0]))
			if !ok {
				return 0, ErrorWasmExecution("db_" + prefix + "_next: invalid iterator")
			}
			pk, ok := it.Next()
			if !ok {
				return uint64(uint32(int32(-1))), nil
			}
			if err := writeSecondaryPrimary(mem, int32(args[1]), pk); err != nil {
				return 0, err
			}
			return uint64(uint32(int32(args[0]))), nil
		},
	})
	Register(Intrinsic{
		Name: "db_" + prefix + "_previous", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			it, ok := ctx.SecondaryIteratorByHandle(int32(args[0]))
			if !ok {
				return 0, ErrorWasmExecution("db_" + prefix + "_previous: invalid iterator")
			}
			pk, ok := it.Previous()
			if !ok {
				return uint64(uint32(int32(-1))), nil
			}
			if err := writeSecondaryPrimary(mem, int32(args[1]), pk); err != nil {
				return 0, err
			}
			return uint64(uint32(int32(args[0]))), nil
		},
	})
}

func writeSecondaryPrimary(mem GuestMemory, ptr int32, pk uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, pk)
	return writePointer(mem, ptr, buf)
}

func init() { registerDatabaseIntrinsics() }
