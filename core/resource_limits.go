package core

import "sync"

// ResourceWeights is the privileged-settable CPU/net weighting for one
// account, per spec.md §5's "CPU and network weights are updated through
// the privileged resource-limits API" rule.
type ResourceWeights struct {
	CPUWeight int64
	NetWeight int64
}

// ResourceLimitsManager tracks per-account RAM usage (billed by
// ApplyContext.AddRAMUsage at commit time) and the privileged-settable
// CPU/net weights. It does not itself enforce CPU/net throttling — that
// takes effect at the next resource-tick boundary, which is owned by the
// external block-production loop (spec.md §1 Out of scope).
type ResourceLimitsManager struct {
	mu      sync.Mutex
	ram     map[AccountName]int64
	weights map[AccountName]ResourceWeights
}

func NewResourceLimitsManager() *ResourceLimitsManager {
	return &ResourceLimitsManager{
		ram:     make(map[AccountName]int64),
		weights: make(map[AccountName]ResourceWeights),
	}
}

// Commit applies one apply-context's accumulated RAM deltas, rejecting the
// whole batch if any account would go negative (a corrupted billing delta,
// never a legitimate contract scenario).
func (r *ResourceLimitsManager) Commit(deltas map[AccountName]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for account, delta := range deltas {
		if r.ram[account]+int64(delta) < 0 {
			return ErrorWasmExecution("resource_limits: RAM usage would go negative for " + account.String())
		}
	}
	for account, delta := range deltas {
		r.ram[account] += int64(delta)
	}
	return nil
}

func (r *ResourceLimitsManager) RAMUsage(account AccountName) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ram[account]
}

// SetAccountLimits is the privileged setter for an account's CPU/net
// weights, per spec.md §4.6's privileged-intrinsic examples.
func (r *ResourceLimitsManager) SetAccountLimits(account AccountName, weights ResourceWeights) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weights[account] = weights
}

func (r *ResourceLimitsManager) GetAccountLimits(account AccountName) ResourceWeights {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.weights[account]
}
