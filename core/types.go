package core

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a 20-byte account identifier, compatible with go-ethereum's
// common.Address so crypto intrinsics can reuse its key-recovery helpers.
type Address [20]byte

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Common() common.Address { return common.Address(a) }

func AddressFromCommon(c common.Address) Address { return Address(c) }

func (a Address) String() string { return common.Address(a).Hex() }

// Hash is a 32-byte digest.
type Hash [32]byte

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) String() string { return fmt.Sprintf("%x", h[:]) }

// AccountName mirrors EOSIO-style base32 account names packed into a uint64,
// so the apply context and authorization checks can compare names cheaply.
type AccountName uint64

const nameCharset = ".12345abcdefghijklmnopqrstuvwxyz"

// NewAccountName packs up to 13 base32 characters into an AccountName,
// exactly as the guest ABI expects receiver/account fields to be encoded.
func NewAccountName(s string) (AccountName, error) {
	if len(s) > 13 {
		return 0, fmt.Errorf("account name %q longer than 13 characters", s)
	}
	var n uint64
	for i := 0; i < 12 && i < len(s); i++ {
		idx := strings.IndexByte(nameCharset, s[i])
		if idx < 0 {
			return 0, fmt.Errorf("account name %q contains invalid character %q", s, s[i])
		}
		n |= uint64(idx) << uint(64-5*(i+1))
	}
	if len(s) == 13 {
		idx := strings.IndexByte(nameCharset, s[12])
		if idx < 0 || idx > 15 {
			return 0, fmt.Errorf("account name %q has invalid 13th character", s)
		}
		n |= uint64(idx)
	}
	return AccountName(n), nil
}

func (n AccountName) String() string {
	var sb strings.Builder
	v := uint64(n)
	for i := 0; i < 12; i++ {
		shift := uint(64 - 5*(i+1))
		idx := (v >> shift) & 0x1f
		sb.WriteByte(nameCharset[idx])
	}
	last := v & 0xf
	s := sb.String()
	if last != 0 {
		s += string(nameCharset[last])
	}
	return strings.TrimRight(s, ".")
}

// TokenID names a system/standard token by its issuing account.
type TokenID = AccountName

// Symbol is a token symbol code, at most 7 upper-case ASCII characters
// packed with a precision byte, mirroring the guest ABI's symbol encoding.
type Symbol struct {
	Precision uint8
	Code      string
}

func (s Symbol) String() string { return fmt.Sprintf("%d,%s", s.Precision, s.Code) }

// PermissionLevel pairs an account with the permission it is acting under,
// e.g. {alice, active}.
type PermissionLevel struct {
	Actor      AccountName
	Permission AccountName
}

// PackedAction is the binary-declaration-order action format from spec.md §6:
// account, name, authorization vector, opaque data.
type PackedAction struct {
	Account       AccountName
	Name          AccountName
	Authorization []PermissionLevel
	Data          []byte
}

// Size returns the approximate packed byte length used for the
// max_inline_action_size check.
func (p PackedAction) Size() int {
	n := 8 + 8 + 4 + len(p.Data)
	n += len(p.Authorization) * 16
	return n
}
