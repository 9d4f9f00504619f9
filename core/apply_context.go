package core

import (
	"strings"
	"sync"
	"time"
)

// ActionState is the lifecycle of one apply-context, per spec.md §4.3.
type ActionState int

const (
	ActionCreated ActionState = iota
	ActionExecuting
	ActionCompleted
	ActionFailed
)

// DeferredTransaction is scheduled by send_deferred to run at a later block
// boundary; it is not atomic with the transaction that scheduled it.
// SenderID is the guest-supplied uint64 handle, scoped to the sending
// contract, per the send_deferred(uint64_t sender_id, ...) ABI.
type DeferredTransaction struct {
	SenderID uint64
	Payer    AccountName
	Action   PackedAction
	ExecAt   time.Time
}

// MaxInlineActionSize bounds packed inline/context-free-inline action size,
// per spec.md §4.3 and the inline_action_too_big error of §7.
const MaxInlineActionSize = 4096

// ApplyContext is the per-action execution scope of spec.md §4.3: current
// receiver, inline queue, authorization set, console buffer, deferred
// scheduler handle, and database iterator registry, all owned by the
// enclosing transaction context.
type ApplyContext struct {
	mu sync.Mutex

	Receiver   AccountName
	Sender     AccountName
	Privileged bool
	FeePayer   AccountName
	ActionName AccountName

	auth []PermissionLevel

	actionData []byte

	console strings.Builder

	inline            []PackedAction
	contextFreeInline []PackedAction
	notifyRecipients  []AccountName

	deferred map[uint64]*DeferredTransaction

	tx    *Tx
	store *StateStore

	rowIterators       map[int32]*RowIterator
	secondaryIterators map[int32]*SecondaryIterator
	nextIteratorHandle int32

	ramDelta map[AccountName]int

	deadline time.Time
	state    ActionState

	accounts func(AccountName) bool

	Chain *ChainServices
}

// ChainServices bundles the process-wide singletons a privileged or
// InfraBlockchain-specific intrinsic needs beyond the per-action state
// store: the token manager, fee table, resource-limits ledger, producer
// schedule, and account registry. One instance is shared by every
// apply-context in a running node, mirroring how the apply-context is a
// per-action view over chain-wide services in spec.md §4.3/§4.6.
type ChainServices struct {
	Tokens    *StandardTokenManager
	Fees      *TransactionFeeManager
	Resources *ResourceLimitsManager
	Producers *ProducerScheduleManager
	Accounts  *AccountRegistry
	Votes     *TransactionVoteAccumulator
	Contracts *ContractRegistry
	Modules   *ModuleCache
}

// NewApplyContext opens a fresh copy-on-write transaction against store and
// starts the apply-context in the created state. chain may be nil for tests
// that exercise only the database/console/authorization surface.
func NewApplyContext(store *StateStore, receiver, sender, feePayer AccountName, actionData []byte, privileged bool, accountsLookup func(AccountName) bool, chain *ChainServices) *ApplyContext {
	return &ApplyContext{
		Receiver:           receiver,
		Sender:             sender,
		FeePayer:           feePayer,
		Privileged:         privileged,
		actionData:         actionData,
		deferred:           make(map[uint64]*DeferredTransaction),
		tx:                 store.Begin(),
		store:              store,
		rowIterators:       make(map[int32]*RowIterator),
		secondaryIterators: make(map[int32]*SecondaryIterator),
		ramDelta:           make(map[AccountName]int),
		state:              ActionCreated,
		accounts:           accountsLookup,
		Chain:              chain,
	}
}

func (c *ApplyContext) State() ActionState { return c.state }

// SetActionName records the (code, action) key Complete uses to look up this
// action's fee entry via Chain.Fees.GetTxFeeForAction, per spec.md §4.5. A
// dispatcher driving a real transaction calls this right after construction;
// tests that don't touch fee payment can leave it unset.
func (c *ApplyContext) SetActionName(name AccountName) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ActionName = name
}

func (c *ApplyContext) Begin(deadline time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ActionExecuting
	c.deadline = deadline
}

// Complete commits the underlying batch; Fail rolls it back, discarding
// every write including queued-but-unexecuted inline actions, per
// spec.md §7's "all fatal-to-action errors roll back every write" rule.
//
// Fee payment runs first, outside the apply-context lock: PayTransactionFee
// dispatches an inline txfee action per token touched via SendInline, which
// takes the same lock Complete holds, so paying while holding it would
// deadlock. A fee failure returns before anything commits, satisfying the
// fee-exhaustion testable property of spec.md §8 ("fails without any
// balance mutation being committed").
func (c *ApplyContext) Complete() error {
	if c.Chain != nil && c.Chain.Fees != nil && c.Chain.Tokens != nil && c.FeePayer != 0 {
		entry := c.Chain.Fees.GetTxFeeForAction(c.Receiver, c.ActionName)
		if err := c.Chain.Tokens.PayTransactionFee(c, c.FeePayer, entry.Value); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Chain != nil && c.Chain.Resources != nil {
		if err := c.Chain.Resources.Commit(c.ramDelta); err != nil {
			return err
		}
	}
	c.state = ActionCompleted
	return c.tx.Commit()
}

func (c *ApplyContext) Fail() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ActionFailed
	c.inline = nil
	c.contextFreeInline = nil
	return c.tx.Rollback()
}

// --- Authorization -------------------------------------------------------

func (c *ApplyContext) SetAuthorization(auth []PermissionLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = auth
}

func (c *ApplyContext) HasAuth(account AccountName) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.auth {
		if a.Actor == account {
			return true
		}
	}
	return false
}

func (c *ApplyContext) RequireAuth(account AccountName) error {
	if !c.HasAuth(account) {
		return ErrorUnaccessibleAPI("require_auth: missing authority of " + account.String())
	}
	return nil
}

func (c *ApplyContext) RequireAuth2(account, permission AccountName) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.auth {
		if a.Actor == account && a.Permission == permission {
			return nil
		}
	}
	return ErrorUnaccessibleAPI("require_auth2: missing authority of " + account.String())
}

// RequireRecipient schedules a notification copy of the current action to
// account, executed as a nested apply-context with the same receiver-check
// semantics, in the order requested (spec.md §5).
func (c *ApplyContext) RequireRecipient(account AccountName) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.notifyRecipients {
		if r == account {
			return
		}
	}
	c.notifyRecipients = append(c.notifyRecipients, account)
}

func (c *ApplyContext) NotifyRecipients() []AccountName {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]AccountName(nil), c.notifyRecipients...)
}

func (c *ApplyContext) IsAccount(account AccountName) bool {
	if c.accounts == nil {
		return false
	}
	return c.accounts(account)
}

// --- Action data I/O -------------------------------------------------------

func (c *ApplyContext) ActionDataSize() int { return len(c.actionData) }

func (c *ApplyContext) ReadActionData(buf []byte) int {
	n := copy(buf, c.actionData)
	return n
}

func (c *ApplyContext) CurrentReceiver() AccountName { return c.Receiver }

func (c *ApplyContext) GetSender() AccountName { return c.Sender }

// --- Console ---------------------------------------------------------------

func (c *ApplyContext) Print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.console.WriteString(s)
}

func (c *ApplyContext) ConsoleOutput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.console.String()
}

// --- Inline dispatch --------------------------------------------------------

func (c *ApplyContext) SendInline(a PackedAction) error {
	if a.Size() >= MaxInlineActionSize {
		return ErrorInlineActionTooBig(a.Size(), MaxInlineActionSize)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inline = append(c.inline, a)
	return nil
}

func (c *ApplyContext) SendContextFreeInline(a PackedAction) error {
	if a.Size() >= MaxInlineActionSize {
		return ErrorInlineActionTooBig(a.Size(), MaxInlineActionSize)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contextFreeInline = append(c.contextFreeInline, a)
	return nil
}

// InlineActions returns the queue in insertion order; the caller executes
// them after the parent action completes, per spec.md §5.
func (c *ApplyContext) InlineActions() []PackedAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PackedAction(nil), c.inline...)
}

// --- Deferred dispatch -------------------------------------------------------

func (c *ApplyContext) SendDeferred(senderID uint64, payer AccountName, a PackedAction, replaceExisting bool, execAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.deferred[senderID]; exists && !replaceExisting {
		return ErrorWasmExecution("deferred transaction sender_id already scheduled")
	}
	c.deferred[senderID] = &DeferredTransaction{SenderID: senderID, Payer: payer, Action: a, ExecAt: execAt}
	return nil
}

func (c *ApplyContext) CancelDeferred(senderID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.deferred[senderID]; !ok {
		return false
	}
	delete(c.deferred, senderID)
	return true
}

// --- Database iterator registry ---------------------------------------------

func (c *ApplyContext) registerRowIterator(it *RowIterator) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.nextIteratorHandle
	c.nextIteratorHandle++
	c.rowIterators[h] = it
	return h
}

func (c *ApplyContext) RowIteratorByHandle(h int32) (*RowIterator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.rowIterators[h]
	return it, ok
}

func (c *ApplyContext) OpenRowIterator(code, scope, table AccountName) (int32, error) {
	it, err := c.tx.NewRowIterator(code, scope, table)
	if err != nil {
		return 0, err
	}
	return c.registerRowIterator(it), nil
}

func (c *ApplyContext) registerSecondaryIterator(it *SecondaryIterator) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.nextIteratorHandle
	c.nextIteratorHandle++
	c.secondaryIterators[h] = it
	return h
}

func (c *ApplyContext) SecondaryIteratorByHandle(h int32) (*SecondaryIterator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.secondaryIterators[h]
	return it, ok
}

func (c *ApplyContext) OpenSecondaryIterator(kind IndexKind, code, scope, table AccountName) (int32, error) {
	it, err := c.tx.NewSecondaryIterator(kind, code, scope, table)
	if err != nil {
		return 0, err
	}
	return c.registerSecondaryIterator(it), nil
}

// --- RAM billing -------------------------------------------------------------

// AddRAMUsage accumulates a signed byte delta against payer, charged at
// commit time by whichever resource-limits component owns billing.
func (c *ApplyContext) AddRAMUsage(payer AccountName, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ramDelta[payer] += delta
}

func (c *ApplyContext) RAMUsage() map[AccountName]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[AccountName]int, len(c.ramDelta))
	for k, v := range c.ramDelta {
		out[k] = v
	}
	return out
}

// --- Checktime ---------------------------------------------------------------

// HashingChecktimeBlockSize is the byte interval at which incremental
// hashing intrinsics must yield to Checktime, per spec.md §4.3 and §4.6.
const HashingChecktimeBlockSize = 10 * 1024

// Checktime is the cooperative yield to the wall-clock deadline checker. A
// deadline overrun is fatal to the whole transaction (spec.md §5, §7).
func (c *ApplyContext) Checktime(now time.Time) error {
	c.mu.Lock()
	deadline := c.deadline
	c.mu.Unlock()
	if !deadline.IsZero() && now.After(deadline) {
		return ErrorDeadline()
	}
	return nil
}

func (c *ApplyContext) Tx() *Tx { return c.tx }
