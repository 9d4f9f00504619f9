package core

import "math"

// Softfloat and compiler-builtins forwarders are injected-category
// intrinsics per spec.md §4.6: the WASM injector rewrites raw float
// opcodes in guest code into calls to these named functions so execution
// never touches host floating-point hardware directly. Arguments and
// results travel as raw bit patterns packed into uint64 words.

func bitsToF32(v uint64) float32 { return math.Float32frombits(uint32(v)) }
func f32ToBits(f float32) uint64 { return uint64(math.Float32bits(f)) }
func bitsToF64(v uint64) float64 { return math.Float64frombits(v) }
func f64ToBits(f float64) uint64 { return math.Float64bits(f) }

func registerSoftfloatIntrinsics() {
	bin32 := func(name string, op func(a, b float32) float32) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeF32, TypeF32}, Returns: []WasmType{TypeF32}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				return f32ToBits(op(bitsToF32(args[0]), bitsToF32(args[1]))), nil
			},
		})
	}
	bin64 := func(name string, op func(a, b float64) float64) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeF64, TypeF64}, Returns: []WasmType{TypeF64}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				return f64ToBits(op(bitsToF64(args[0]), bitsToF64(args[1]))), nil
			},
		})
	}
	un32 := func(name string, op func(a float32) float32) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeF32}, Returns: []WasmType{TypeF32}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				return f32ToBits(op(bitsToF32(args[0]))), nil
			},
		})
	}
	un64 := func(name string, op func(a float64) float64) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeF64}, Returns: []WasmType{TypeF64}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				return f64ToBits(op(bitsToF64(args[0]))), nil
			},
		})
	}
	cmp32 := func(name string, op func(a, b float32) bool) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeF32, TypeF32}, Returns: []WasmType{TypeI32}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				if op(bitsToF32(args[0]), bitsToF32(args[1])) {
					return 1, nil
				}
				return 0, nil
			},
		})
	}
	cmp64 := func(name string, op func(a, b float64) bool) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeF64, TypeF64}, Returns: []WasmType{TypeI32}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				if op(bitsToF64(args[0]), bitsToF64(args[1])) {
					return 1, nil
				}
				return 0, nil
			},
		})
	}

	bin32("_eosio_f32_add", F32Add)
	bin32("_eosio_f32_sub", F32Sub)
	bin32("_eosio_f32_mul", F32Mul)
	bin32("_eosio_f32_div", F32Div)
	bin32("_eosio_f32_min", F32Min)
	bin32("_eosio_f32_max", F32Max)
	bin32("_eosio_f32_copysign", F32Copysign)
	un32("_eosio_f32_abs", F32Abs)
	un32("_eosio_f32_neg", F32Neg)
	un32("_eosio_f32_sqrt", F32Sqrt)
	un32("_eosio_f32_ceil", F32Ceil)
	un32("_eosio_f32_floor", F32Floor)
	un32("_eosio_f32_trunc", F32Trunc)
	un32("_eosio_f32_nearest", F32Nearest)
	cmp32("_eosio_f32_eq", F32Eq)
	cmp32("_eosio_f32_ne", F32Ne)
	cmp32("_eosio_f32_lt", F32Lt)
	cmp32("_eosio_f32_le", F32Le)
	cmp32("_eosio_f32_gt", F32Gt)
	cmp32("_eosio_f32_ge", F32Ge)

	bin64("_eosio_f64_add", F64Add)
	bin64("_eosio_f64_sub", F64Sub)
	bin64("_eosio_f64_mul", F64Mul)
	bin64("_eosio_f64_div", F64Div)
	bin64("_eosio_f64_min", F64Min)
	bin64("_eosio_f64_max", F64Max)
	bin64("_eosio_f64_copysign", F64Copysign)
	un64("_eosio_f64_abs", F64Abs)
	un64("_eosio_f64_neg", F64Neg)
	un64("_eosio_f64_sqrt", F64Sqrt)
	un64("_eosio_f64_ceil", F64Ceil)
	un64("_eosio_f64_floor", F64Floor)
	un64("_eosio_f64_trunc", F64Trunc)
	un64("_eosio_f64_nearest", F64Nearest)
	cmp64("_eosio_f64_eq", F64Eq)
	cmp64("_eosio_f64_ne", F64Ne)
	cmp64("_eosio_f64_lt", F64Lt)
	cmp64("_eosio_f64_le", F64Le)
	cmp64("_eosio_f64_gt", F64Gt)
	cmp64("_eosio_f64_ge", F64Ge)

	Register(Intrinsic{
		Name: "_eosio_f32_promote", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeF32}, Returns: []WasmType{TypeF64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return f64ToBits(F32PromoteToF64(bitsToF32(args[0]))), nil
		},
	})
	Register(Intrinsic{
		Name: "_eosio_f64_demote", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeF64}, Returns: []WasmType{TypeF32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return f32ToBits(F64DemoteToF32(bitsToF64(args[0]))), nil
		},
	})

	trunc32 := func(name string, op func(float32) (int32, error)) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeF32}, Returns: []WasmType{TypeI32}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				v, err := op(bitsToF32(args[0]))
				return uint64(uint32(v)), err
			},
		})
	}
	trunc32u := func(name string, op func(float32) (uint32, error)) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeF32}, Returns: []WasmType{TypeI32}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				v, err := op(bitsToF32(args[0]))
				return uint64(v), err
			},
		})
	}
	trunc64 := func(name string, op func(float32) (int64, error)) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeF32}, Returns: []WasmType{TypeI64}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				v, err := op(bitsToF32(args[0]))
				return uint64(v), err
			},
		})
	}
	trunc64u := func(name string, op func(float32) (uint64, error)) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeF32}, Returns: []WasmType{TypeI64}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				return op(bitsToF32(args[0]))
			},
		})
	}
	trunc32("_eosio_f32_trunc_i32s", F32TruncToI32)
	trunc32u("_eosio_f32_trunc_i32u", F32TruncToU32)
	trunc64("_eosio_f32_trunc_i64s", F32TruncToI64)
	trunc64u("_eosio_f32_trunc_i64u", F32TruncToU64)

	Register(Intrinsic{
		Name: "_eosio_f64_trunc_i32s", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeF64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v, err := F64TruncToI32(bitsToF64(args[0]))
			return uint64(uint32(v)), err
		},
	})
	Register(Intrinsic{
		Name: "_eosio_f64_trunc_i32u", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeF64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v, err := F64TruncToU32(bitsToF64(args[0]))
			return uint64(v), err
		},
	})
	Register(Intrinsic{
		Name: "_eosio_f64_trunc_i64s", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeF64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v, err := F64TruncToI64(bitsToF64(args[0]))
			return uint64(v), err
		},
	})
	Register(Intrinsic{
		Name: "_eosio_f64_trunc_i64u", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeF64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return F64TruncToU64(bitsToF64(args[0]))
		},
	})

	int32s := func(name string, op func(int32) float32) {
		Register(Intrinsic{
			Name: name, Category: CategoryInjected,
			Signature: Signature{Params: []WasmType{TypeI32}, Returns: []WasmType{TypeF32}},
			Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
				return f32ToBits(op(int32(uint32(args[0])))), nil
			},
		})
	}
	int32s("_eosio_i32_to_f32", func(v int32) float32 { return float32(v) })
	Register(Intrinsic{
		Name: "_eosio_ui32_to_f32", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI32}, Returns: []WasmType{TypeF32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return f32ToBits(float32(uint32(args[0]))), nil
		},
	})
	Register(Intrinsic{
		Name: "_eosio_i64_to_f64", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64}, Returns: []WasmType{TypeF64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return f64ToBits(float64(int64(args[0]))), nil
		},
	})
	Register(Intrinsic{
		Name: "_eosio_ui64_to_f64", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64}, Returns: []WasmType{TypeF64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			return f64ToBits(float64(args[0])), nil
		},
	})
}

func registerBuiltinsIntrinsics() {
	Register(Intrinsic{
		Name: "__ashlti3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v := Int128Ashl(Int128{Hi: int64(args[0]), Lo: args[1]}, uint(args[2]))
			return v.Lo, nil
		},
	})
	Register(Intrinsic{
		Name: "__ashrti3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v := Int128Ashr(Int128{Hi: int64(args[0]), Lo: args[1]}, uint(args[2]))
			return v.Lo, nil
		},
	})
	Register(Intrinsic{
		Name: "__multi3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v := Int128Mul(Int128{Hi: int64(args[0]), Lo: args[1]}, Int128{Hi: int64(args[2]), Lo: args[3]})
			return v.Lo, nil
		},
	})
	Register(Intrinsic{
		Name: "__divti3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v, err := Int128Div(Int128{Hi: int64(args[0]), Lo: args[1]}, Int128{Hi: int64(args[2]), Lo: args[3]})
			return v.Lo, err
		},
	})
	Register(Intrinsic{
		Name: "__modti3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v, err := Int128Mod(Int128{Hi: int64(args[0]), Lo: args[1]}, Int128{Hi: int64(args[2]), Lo: args[3]})
			return v.Lo, err
		},
	})
	Register(Intrinsic{
		Name: "__unordtf2", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			a := f128FromWords(args[0], args[1])
			b := f128FromWords(args[2], args[3])
			return uint64(int32(Unordtf2(a, b))), nil
		},
	})
	Register(Intrinsic{
		Name: "__cmptf2", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			a := f128FromWords(args[0], args[1])
			b := f128FromWords(args[2], args[3])
			return uint64(int32(Cmptf2(a, b))), nil
		},
	})
	registerTf2(cmpTf2{"__eqtf2", Eqtf2})
	registerTf2(cmpTf2{"__netf2", Netf2})
	registerTf2(cmpTf2{"__lttf2", Lttf2})
	registerTf2(cmpTf2{"__letf2", Letf2})
	registerTf2(cmpTf2{"__gttf2", Gttf2})
	registerTf2(cmpTf2{"__getf2", Getf2})
	Register(Intrinsic{
		Name: "__addtf3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			a := f128FromWords(args[0], args[1])
			b := f128FromWords(args[2], args[3])
			lo, _ := f128ToWords(F128Add(a, b))
			return lo, nil
		},
	})
	Register(Intrinsic{
		Name: "__subtf3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			a := f128FromWords(args[0], args[1])
			b := f128FromWords(args[2], args[3])
			lo, _ := f128ToWords(F128Sub(a, b))
			return lo, nil
		},
	})
	Register(Intrinsic{
		Name: "__multf3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			a := f128FromWords(args[0], args[1])
			b := f128FromWords(args[2], args[3])
			lo, _ := f128ToWords(F128Mul(a, b))
			return lo, nil
		},
	})
	Register(Intrinsic{
		Name: "__divtf3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			a := f128FromWords(args[0], args[1])
			b := f128FromWords(args[2], args[3])
			lo, _ := f128ToWords(F128Div(a, b))
			return lo, nil
		},
	})
	Register(Intrinsic{
		Name: "__lshlti3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v := Uint128Lshl(Uint128{Hi: args[0], Lo: args[1]}, uint(args[2]))
			return v.Lo, nil
		},
	})
	Register(Intrinsic{
		Name: "__lshrti3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v := Uint128Lshr(Uint128{Hi: args[0], Lo: args[1]}, uint(args[2]))
			return v.Lo, nil
		},
	})
	Register(Intrinsic{
		Name: "__umulti3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v := Uint128Mul(Uint128{Hi: args[0], Lo: args[1]}, Uint128{Hi: args[2], Lo: args[3]})
			return v.Lo, nil
		},
	})
	Register(Intrinsic{
		Name: "__udivti3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v, err := Uint128Div(Uint128{Hi: args[0], Lo: args[1]}, Uint128{Hi: args[2], Lo: args[3]})
			return v.Lo, err
		},
	})
	Register(Intrinsic{
		Name: "__umodti3", Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI64}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			v, err := Uint128Mod(Uint128{Hi: args[0], Lo: args[1]}, Uint128{Hi: args[2], Lo: args[3]})
			return v.Lo, err
		},
	})
}

// cmpTf2 pairs a __*tf2 comparison builtin's name with its {-1,0,1}/bool-ish
// implementation in builtins128.go, so the six comparison variants register
// through one loop instead of six near-identical Register calls.
type cmpTf2 struct {
	name string
	fn   func(a, b F128) int
}

func registerTf2(c cmpTf2) {
	Register(Intrinsic{
		Name: c.name, Category: CategoryInjected,
		Signature: Signature{Params: []WasmType{TypeI64, TypeI64, TypeI64, TypeI64}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			a := f128FromWords(args[0], args[1])
			b := f128FromWords(args[2], args[3])
			return uint64(int32(c.fn(a, b))), nil
		},
	})
}

// f128ToWords splits an F128 into its low/high 64-bit little-endian words,
// the inverse of f128FromWords. __addtf3/__subtf3/__multf3/__divtf3 return
// only the low word, the same truncation __multi3/__divti3/__modti3 already
// accept above for Int128 results.
func f128ToWords(f F128) (lo, hi uint64) {
	b := f.Bytes()
	for i := 7; i >= 0; i-- {
		lo = lo<<8 | uint64(b[i])
	}
	for i := 15; i >= 8; i-- {
		hi = hi<<8 | uint64(b[i])
	}
	return lo, hi
}

// f128FromWords reconstructs an F128 from its low/high 64-bit little-endian
// words, the representation compiler-generated calls pass 128-bit values in.
func f128FromWords(lo, hi uint64) F128 {
	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(lo >> (8 * i))
		b[8+i] = byte(hi >> (8 * i))
	}
	return F128FromBytes(b[:])
}

func init() {
	registerSoftfloatIntrinsics()
	registerBuiltinsIntrinsics()
}
