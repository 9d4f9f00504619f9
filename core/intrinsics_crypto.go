package core

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160"
)

// Crypto intrinsics perform incremental hashing yielding to Checktime every
// HashingChecktimeBlockSize bytes, and key recovery via go-ethereum's ECDSA
// helpers, grounded on the Sign/VerifySig idiom in the teacher's
// transactions.go. assert_* variants compare the computed digest to a
// guest-supplied expected digest and raise crypto_api_exception on
// mismatch.

func registerCryptoIntrinsics() {
	sha256Sum := checktimeHasher(sha256.New)
	sha1Sum := checktimeHasher(sha1.New)
	sha512Sum := checktimeHasher(sha512.New)
	ripemdSum := checktimeHasher(ripemd160.New)

	registerHash("sha256", sha256Sum)
	registerHash("sha1", sha1Sum)
	registerHash("sha512", sha512Sum)
	registerHash("ripemd160", ripemdSum)
	registerAssertHash("assert_sha256", sha256Sum)
	registerAssertHash("assert_sha1", sha1Sum)
	registerAssertHash("assert_sha512", sha512Sum)
	registerAssertHash("assert_ripemd160", ripemdSum)

	Register(Intrinsic{
		Name: "recover_key", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32, TypeI32, TypeI32, TypeI32, TypeI32}, Returns: []WasmType{TypeI32}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			digest, err := readPointer(mem, int32(args[0]), int32(args[1]))
			if err != nil {
				return 0, err
			}
			sig, err := readPointer(mem, int32(args[2]), int32(args[3]))
			if err != nil {
				return 0, err
			}
			if len(sig) != 65 {
				return 0, ErrorUnactivatedSignatureType()
			}
			pub, err := crypto.SigToPub(digest, sig)
			if err != nil {
				return 0, ErrorCryptoAPI("recover_key: " + err.Error())
			}
			packed := crypto.FromECDSAPub(pub)
			if err := writePointer(mem, int32(args[4]), packed); err != nil {
				return 0, err
			}
			return uint64(uint32(len(packed))), nil
		},
	})

	Register(Intrinsic{
		Name: "assert_recover_key", Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32, TypeI32, TypeI32, TypeI32, TypeI32}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			digest, err := readPointer(mem, int32(args[0]), int32(args[1]))
			if err != nil {
				return 0, err
			}
			sig, err := readPointer(mem, int32(args[2]), int32(args[3]))
			if err != nil {
				return 0, err
			}
			expected, err := readPointer(mem, int32(args[4]), int32(args[5]))
			if err != nil {
				return 0, err
			}
			if len(sig) != 65 {
				return 0, ErrorUnactivatedSignatureType()
			}
			pub, err := crypto.SigToPub(digest, sig)
			if err != nil {
				return 0, ErrorCryptoAPI("assert_recover_key: " + err.Error())
			}
			packed := crypto.FromECDSAPub(pub)
			if !bytesEqual(packed, expected) {
				return 0, ErrorCryptoAPI("Error expected key different than recovered key")
			}
			return 0, nil
		},
	})
}

// checktimeHasher returns a sum function that feeds data into a fresh hash
// of the given constructor in HashingChecktimeBlockSize chunks, calling
// ctx.Checktime between chunks so a large guest-supplied buffer cannot hash
// uninterrupted past the transaction's CPU-time deadline (spec.md §4.6, §5).
func checktimeHasher(newHash func() hash.Hash) func(ctx *ApplyContext, data []byte) ([]byte, error) {
	return func(ctx *ApplyContext, data []byte) ([]byte, error) {
		h := newHash()
		for len(data) > 0 {
			n := len(data)
			if n > HashingChecktimeBlockSize {
				n = HashingChecktimeBlockSize
			}
			h.Write(data[:n])
			data = data[n:]
			if err := ctx.Checktime(time.Now()); err != nil {
				return nil, err
			}
		}
		return h.Sum(nil), nil
	}
}

func registerHash(name string, sum func(ctx *ApplyContext, data []byte) ([]byte, error)) {
	Register(Intrinsic{
		Name: name, Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32, TypeI32}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			data, err := readPointer(mem, int32(args[0]), int32(args[1]))
			if err != nil {
				return 0, err
			}
			digest, err := sum(ctx, data)
			if err != nil {
				return 0, err
			}
			return 0, writePointer(mem, int32(args[2]), digest)
		},
	})
}

func registerAssertHash(name string, sum func(ctx *ApplyContext, data []byte) ([]byte, error)) {
	Register(Intrinsic{
		Name: name, Category: CategoryContextAware,
		Signature: Signature{Params: []WasmType{TypeI32, TypeI32, TypeI32, TypeI32}, Returns: []WasmType{}},
		Handler: func(ctx *ApplyContext, mem GuestMemory, args []uint64) (uint64, error) {
			data, err := readPointer(mem, int32(args[0]), int32(args[1]))
			if err != nil {
				return 0, err
			}
			expected, err := readPointer(mem, int32(args[2]), int32(args[3]))
			if err != nil {
				return 0, err
			}
			digest, err := sum(ctx, data)
			if err != nil {
				return 0, err
			}
			if !bytesEqual(digest, expected) {
				return 0, ErrorCryptoAPI(name + ": digest mismatch")
			}
			return 0, nil
		},
	})
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func init() { registerCryptoIntrinsics() }
