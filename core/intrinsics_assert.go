package core

// eosio_assert and eosio_assert_code: the two assertion intrinsics of
// spec.md §4.6/§7/§8 scenario 5. Both are context-aware in the dispatcher's
// sense of "no context-free/privileged restriction" — they must remain
// callable from context-free actions too, which is a permission context-free
// code is granted, not one it is confined to. eosio_assert_code substitutes
// any guest-supplied code at or above genericSystemErrorCode with
// contractRestrictedErrorCode, so a contract can never forge a system
// error code.

func registerAssertIntrinsics() {
	Register(Intrinsic{
		Name: "eosio_assert", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if args[0] != 0 {
				return 0, nil
			}
			msg, err := readCString(mem, int32(args[1]))
			if err != nil {
				return 0, err
			}
			return 0, ErrorAssertMessage(msg)
		},
	})
	Register(Intrinsic{
		Name: "eosio_assert_message", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32, TypeI32}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if args[0] != 0 {
				return 0, nil
			}
			msg, err := readPointer(mem, int32(args[1]), int32(args[2]))
			if err != nil {
				return 0, err
			}
			return 0, ErrorAssertMessage(string(msg))
		},
	})
	Register(Intrinsic{
		Name: "eosio_assert_code", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI64}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			if args[0] != 0 {
				return 0, nil
			}
			code := args[1]
			if code >= genericSystemErrorCode {
				return 0, ErrorRestrictedErrorCode()
			}
			return 0, ErrorAssertCode(code)
		},
	})
}

func init() { registerAssertIntrinsics() }
