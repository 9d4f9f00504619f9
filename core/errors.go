package core

import "fmt"

// ErrorCode identifies one kind of the error taxonomy of spec.md §7. The
// dispatcher switches on Code() rather than on Go error identity so that
// wrapped errors still route to the correct unwind behavior.
type ErrorCode int

const (
	ErrUnaccessibleAPI ErrorCode = iota
	ErrWasmExecution
	ErrArithmeticException
	ErrAssertMessage
	ErrAssertCode
	ErrRestrictedErrorCode
	ErrCryptoAPI
	ErrUnactivatedKeyType
	ErrUnactivatedSignatureType
	ErrDeadline
	ErrInsufficientTokenBalance
	ErrYosemiteTransactionFee
	ErrInlineActionTooBig
	ErrSigVariableSizeLimit
	ErrOverlappingMemory
)

// Fatal describes whether an error unwinds only the current action or the
// whole transaction (deadline_exception is the sole fatal-to-transaction kind).
func (c ErrorCode) FatalToTransaction() bool { return c == ErrDeadline }

// ChainError is the single typed exception used throughout the core: every
// fatal condition in spec.md §7 is a ChainError whose ErrorCode, read via
// Code(), names its kind, rather than an ad hoc string.
type ChainError struct {
	code ErrorCode
	msg  string
	wrap error
}

func (e *ChainError) Error() string {
	if e.wrap != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.wrap)
	}
	return e.msg
}

func (e *ChainError) Unwrap() error { return e.wrap }

func (e *ChainError) Code() ErrorCode { return e.code }

func newChainError(code ErrorCode, msg string) *ChainError {
	return &ChainError{code: code, msg: msg}
}

func wrapChainError(code ErrorCode, msg string, err error) *ChainError {
	return &ChainError{code: code, msg: msg, wrap: err}
}

func ErrorUnaccessibleAPI(api string) error {
	return newChainError(ErrUnaccessibleAPI, fmt.Sprintf("unaccessible api: %s", api))
}

func ErrorWasmExecution(msg string) error {
	return newChainError(ErrWasmExecution, msg)
}

func ErrorArithmeticException(msg string) error {
	return newChainError(ErrArithmeticException, msg)
}

func ErrorAssertMessage(msg string) error {
	return newChainError(ErrAssertMessage, msg)
}

// genericSystemErrorCode is the threshold at or above which eosio_assert_code
// values are reserved for the system; guest-supplied codes below it pass through.
const genericSystemErrorCode = uint64(1) << 32

// contractRestrictedErrorCode substitutes for any reserved code a contract
// attempts to raise via eosio_assert_code.
const contractRestrictedErrorCode = uint64(0xFFFFFFFF00000000)

func ErrorAssertCode(code uint64) error {
	return newChainError(ErrAssertCode, fmt.Sprintf("assertion failure with error code: %d", code))
}

func ErrorRestrictedErrorCode() error {
	return newChainError(ErrRestrictedErrorCode,
		fmt.Sprintf("error code value is reserved for system usage; substituted error code: %d", contractRestrictedErrorCode))
}

func ErrorCryptoAPI(msg string) error {
	return newChainError(ErrCryptoAPI, msg)
}

func ErrorUnactivatedKeyType() error {
	return newChainError(ErrUnactivatedKeyType, "unactivated key type")
}

func ErrorUnactivatedSignatureType() error {
	return newChainError(ErrUnactivatedSignatureType, "unactivated signature type")
}

func ErrorDeadline() error {
	return newChainError(ErrDeadline, "deadline exceeded")
}

func ErrorInsufficientTokenBalance(owner AccountName, tokenID TokenID) error {
	return newChainError(ErrInsufficientTokenBalance,
		fmt.Sprintf("account %s has insufficient balance of token %s", owner, tokenID))
}

func ErrorYosemiteTransactionFee(msg string) error {
	return newChainError(ErrYosemiteTransactionFee, msg)
}

func ErrorInlineActionTooBig(size, max int) error {
	return newChainError(ErrInlineActionTooBig,
		fmt.Sprintf("inline action size %d exceeds maximum %d", size, max))
}

func ErrorSigVariableSizeLimit() error {
	return newChainError(ErrSigVariableSizeLimit, "signature variable component exceeds subjective limit")
}

func ErrorOverlappingMemory() error {
	return newChainError(ErrOverlappingMemory, "memcpy with overlapping source and destination")
}
