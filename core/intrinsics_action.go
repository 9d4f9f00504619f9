package core

import (
	"fmt"
	"time"
)

// Action, authorization, console and transaction-dispatch intrinsics bridge
// ApplyContext's Go methods to the typed guest ABI of spec.md §4.3.

func registerActionIntrinsics() {
	Register(Intrinsic{
		Name: "read_action_data", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			size := ctx.ActionDataSize()
			bufLen := int(int32(args[1]))
			if bufLen <= 0 {
				return uint64(uint32(size)), nil
			}
			buf := make([]byte, min(size, bufLen))
			n := ctx.ReadActionData(buf)
			if err := writePointer(mem, int32(args[0]), buf[:n]); err != nil {
				return 0, err
			}
			return uint64(uint32(n)), nil
		},
	})
	Register(Intrinsic{
		Name: "action_data_size", Category: CategoryContextAware,
		Signature: Signature{Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return uint64(uint32(ctx.ActionDataSize())), nil
		},
	})
	Register(Intrinsic{
		Name: "current_receiver", Category: CategoryContextAware,
		Signature: Signature{Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return uint64(ctx.CurrentReceiver()), nil
		},
	})
	Register(Intrinsic{
		Name: "get_sender", Category: CategoryContextAware,
		Signature: Signature{Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return uint64(ctx.GetSender()), nil
		},
	})

	Register(Intrinsic{
		Name: "require_auth", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return 0, ctx.RequireAuth(AccountName(args[0]))
		},
	})
	Register(Intrinsic{
		Name: "require_auth2", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return 0, ctx.RequireAuth2(AccountName(args[0]), AccountName(args[1]))
		},
	})
	Register(Intrinsic{
		Name: "has_auth", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.HasAuth(AccountName(args[0])) {
				return 1, nil
			}
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "require_recipient", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			ctx.RequireRecipient(AccountName(args[0]))
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "is_account", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.IsAccount(AccountName(args[0])) {
				return 1, nil
			}
			return 0, nil
		},
	})

	Register(Intrinsic{
		Name: "prints", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			s, err := readCString(mem, int32(args[0]))
			if err != nil {
				return 0, err
			}
			ctx.Print(s)
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "prints_l", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			b, err := readPointer(mem, int32(args[0]), int32(args[1]))
			if err != nil {
				return 0, err
			}
			ctx.Print(string(b))
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "printi", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			ctx.Print(fmt.Sprintf("%d", int64(args[0])))
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "printui", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			ctx.Print(fmt.Sprintf("%d", args[0]))
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "printsf", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeF32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			ctx.Print(fmt.Sprintf("%.*e", digits10, float64(bitsToF32(args[0]))))
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "printdf", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeF64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			ctx.Print(fmt.Sprintf("%.*e", digits10, bitsToF64(args[0])))
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "printqf", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			f := f128FromWords(args[0], args[1])
			ctx.Print(fmt.Sprintf("%.*e", digits10, F128ToFloat64(f)))
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "printn", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			ctx.Print(AccountName(args[0]).String())
			return 0, nil
		},
	})
	Register(Intrinsic{
		Name: "printhex", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			b, err := readPointer(mem, int32(args[0]), int32(args[1]))
			if err != nil {
				return 0, err
			}
			ctx.Print(fmt.Sprintf("%x", b))
			return 0, nil
		},
	})

	Register(Intrinsic{
		Name: "send_inline", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			data, err := readPointer(mem, int32(args[0]), int32(args[1]))
			if err != nil {
				return 0, err
			}
			return 0, ctx.SendInline(PackedAction{Account: ctx.Receiver, Data: data})
		},
	})
	Register(Intrinsic{
		Name: "send_context_free_inline", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			data, err := readPointer(mem, int32(args[0]), int32(args[1]))
			if err != nil {
				return 0, err
			}
			return 0, ctx.SendContextFreeInline(PackedAction{Account: ctx.Receiver, Data: data})
		},
	})
	Register(Intrinsic{
		Name: "send_deferred", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI32, TypeI32, TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			senderID := args[2]
			data, err := readPointer(mem, int32(args[3]), int32(args[4]))
			if err != nil {
				return 0, err
			}
			replace := args[5] != 0
			return 0, ctx.SendDeferred(senderID, AccountName(args[1]), PackedAction{Account: AccountName(args[0]), Data: data}, replace, time.Time{})
		},
	})
	Register(Intrinsic{
		Name: "cancel_deferred", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if ctx.CancelDeferred(args[0]) {
				return 1, nil
			}
			return 0, nil
		},
	})

	Register(Intrinsic{
		Name: "checktime", Category: CategoryInjected,
		Signature: Signature{},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return 0, ctx.Checktime(time.Now())
		},
	})
}

// digits10 is the scientific-notation precision used by the printsf/printdf/
// printqf console intrinsics, per spec.md §4.3.
const digits10 = 6

func readCString(mem GuestMemory, ptr int32) (string, error) {
	const maxLen = 1 << 16
	b, err := readPointer(mem, ptr, maxLen)
	if err != nil {
		// Fall back to reading the whole remaining memory region up to the
		// guest's reported length; callers only use this for short strings.
		b, err = readPointer(mem, ptr, mem.Len()-ptr)
		if err != nil {
			return "", err
		}
	}
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}

func init() { registerActionIntrinsics() }
