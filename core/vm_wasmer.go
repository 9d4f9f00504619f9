package core

import (
	"fmt"
	"math"

	"github.com/wasmerio/wasmer-go/wasmer"
)

// WasmerGuestMemory adapts a wasmer instance's exported linear memory to the
// GuestMemory interface every intrinsic handler is written against, per
// spec.md §4.6. Grounded on the teacher's HeavyVM host-binding memory
// accessors in virtual_machine.go (registerHost's read/write closures over
// *wasmer.Memory), generalized into a reusable type instead of inline
// closures since this backend now bridges ~200 intrinsics, not four opcodes.
type WasmerGuestMemory struct {
	mem *wasmer.Memory
}

func (m *WasmerGuestMemory) Read(ptr, length int32) ([]byte, error) {
	data := m.mem.Data()
	if ptr < 0 || length < 0 || int(ptr)+int(length) > len(data) {
		return nil, ErrorWasmExecution("guest memory read out of bounds")
	}
	out := make([]byte, length)
	copy(out, data[ptr:int(ptr)+int(length)])
	return out, nil
}

func (m *WasmerGuestMemory) Write(ptr int32, data []byte) error {
	mem := m.mem.Data()
	if ptr < 0 || int(ptr)+len(data) > len(mem) {
		return ErrorWasmExecution("guest memory write out of bounds")
	}
	copy(mem[ptr:], data)
	return nil
}

func (m *WasmerGuestMemory) Len() int32 { return int32(len(m.mem.Data())) }

// WasmerBackend compiles and instantiates guest WASM contract modules,
// backed by wasmerio/wasmer-go, per spec.md §4.1/§4.2. One backend owns one
// compilation engine; modules compiled against it may be instantiated many
// times, mirroring get_instantiated_module(code_hash, vm_type, vm_version)'s
// cached-compilation contract of spec.md §5.
type WasmerBackend struct {
	engine *wasmer.Engine
}

func NewWasmerBackend() *WasmerBackend {
	return &WasmerBackend{engine: wasmer.NewEngine()}
}

// CompiledModule is a validated, compiled guest module ready for repeated
// instantiation without recompiling the WASM bytecode.
type CompiledModule struct {
	store *wasmer.Store
	mod   *wasmer.Module
}

func (b *WasmerBackend) Compile(code []byte) (*CompiledModule, error) {
	store := wasmer.NewStore(b.engine)
	mod, err := wasmer.NewModule(store, code)
	if err != nil {
		return nil, wrapChainError(ErrWasmExecution, "compile guest module", err)
	}
	return &CompiledModule{store: store, mod: mod}, nil
}

// WasmerInstance is one live instantiation of a compiled module against a
// single apply-context. A fresh instance is created per action invocation;
// the teacher's HeavyVM does the same (one wasmer.NewInstance per Execute
// call) rather than pooling instances, which this core keeps since guest
// contracts expect a clean linear memory per action.
type WasmerInstance struct {
	instance *wasmer.Instance
	mem      *WasmerGuestMemory
	ctx      *ApplyContext
}

// Instantiate links the fixed intrinsic catalogue into the "env" import
// namespace and instantiates code against ctx. contextFree marks whether
// this invocation is running the context-free half of a transaction,
// gating CategoryContextFree intrinsics per spec.md §4.6.
func (b *WasmerBackend) Instantiate(compiled *CompiledModule, ctx *ApplyContext, contextFree bool) (*WasmerInstance, error) {
	wi := &WasmerInstance{ctx: ctx}
	imports := registerIntrinsicImports(compiled.store, wi, contextFree)

	instance, err := wasmer.NewInstance(compiled.mod, imports)
	if err != nil {
		return nil, wrapChainError(ErrWasmExecution, "instantiate guest module", err)
	}
	wi.instance = instance

	mem, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return nil, ErrorWasmExecution("guest module does not export linear memory")
	}
	wi.mem = &WasmerGuestMemory{mem: mem}
	return wi, nil
}

// Apply calls the guest's exported apply(receiver, code, action) entrypoint,
// the fixed EOSIO/InfraBlockchain ABI boundary between the dispatcher and
// contract code (spec.md §4.1).
func (wi *WasmerInstance) Apply(receiver, code, action AccountName) error {
	fn, err := wi.instance.Exports.GetFunction("apply")
	if err != nil {
		return ErrorWasmExecution("guest module does not export apply(uint64,uint64,uint64)")
	}
	_, err = fn(int64(receiver), int64(code), int64(action))
	if err != nil {
		return wrapChainError(ErrWasmExecution, "guest apply execution", err)
	}
	return nil
}

func wasmValueKind(t WasmType) wasmer.ValueKind {
	switch t {
	case TypeI32:
		return wasmer.I32
	case TypeI64:
		return wasmer.I64
	case TypeF32:
		return wasmer.F32
	default:
		return wasmer.F64
	}
}

// toWord reinterprets a wasmer argument value as the uint64 word every
// intrinsic Handler receives, per spec.md §4.6's "floats reinterpreted by
// the caller as needed" rule: i32/i64 pass through as unsigned, f32/f64 are
// bit-reinterpreted rather than numerically converted, since contracts pack
// their own fixed-point and softfloat representations into these words.
func toWord(v wasmer.Value, t WasmType) uint64 {
	switch t {
	case TypeI32:
		return uint64(uint32(v.I32()))
	case TypeI64:
		return uint64(v.I64())
	case TypeF32:
		return uint64(math.Float32bits(v.F32()))
	default:
		return math.Float64bits(v.F64())
	}
}

func fromWord(word uint64, t WasmType) wasmer.Value {
	switch t {
	case TypeI32:
		return wasmer.NewI32(int32(uint32(word)))
	case TypeI64:
		return wasmer.NewI64(int64(word))
	case TypeF32:
		return wasmer.NewF32(math.Float32frombits(uint32(word)))
	default:
		return wasmer.NewF64(math.Float64frombits(word))
	}
}

// registerIntrinsicImports builds the wasmer import object for the entire
// fixed intrinsic catalogue under the "env" namespace, generalizing the
// teacher's registerHost (four hand-written host functions) into a loop
// driven by each Intrinsic's declared Signature, since this core's ABI
// surface is ~200 entries rather than four opcodes.
func registerIntrinsicImports(store *wasmer.Store, wi *WasmerInstance, contextFree bool) *wasmer.ImportObject {
	imports := wasmer.NewImportObject()
	env := make(map[string]wasmer.IntoExtern, len(Catalogue()))

	for _, intrinsic := range Catalogue() {
		intrinsic := intrinsic
		paramKinds := make([]wasmer.ValueKind, len(intrinsic.Signature.Params))
		for i, p := range intrinsic.Signature.Params {
			paramKinds[i] = wasmValueKind(p)
		}
		returnKinds := make([]wasmer.ValueKind, len(intrinsic.Signature.Returns))
		for i, r := range intrinsic.Signature.Returns {
			returnKinds[i] = wasmValueKind(r)
		}
		fnType := wasmer.NewFunctionType(
			wasmer.NewValueTypes(paramKinds...),
			wasmer.NewValueTypes(returnKinds...),
		)
		name := intrinsic.Name
		sig := intrinsic.Signature
		env[name] = wasmer.NewFunction(store, fnType, func(args []wasmer.Value) ([]wasmer.Value, error) {
			words := make([]uint64, len(args))
			for i, a := range args {
				words[i] = toWord(a, sig.Params[i])
			}
			result, err := Dispatch(name, wi.ctx, wi.mem, contextFree, words)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if len(sig.Returns) == 0 {
				return []wasmer.Value{}, nil
			}
			return []wasmer.Value{fromWord(result, sig.Returns[0])}, nil
		})
	}

	imports.Register("env", env)
	return imports
}
