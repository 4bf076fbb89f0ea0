package store

import "github.com/craftops/panelsim/kernel/model"

// StateStore owns the canonical mock universe. All reads and mutations go
// through it; mutations are serialized so readers never observe a partially
// applied patch.
type StateStore interface {
	// Snapshot returns a deep copy of the current universe. Never fails.
	Snapshot() *model.Universe
	// Replace swaps in a whole new universe (scenario application).
	Replace(u *model.Universe)
	// Patch deep-merges a typed partial into the universe and marks the
	// current scenario as custom.
	Patch(p *model.UniversePatch)
	// Update runs fn against the live universe under the write lock. The
	// façade uses it for read-modify-write instance transitions.
	Update(fn func(u *model.Universe) error) error
	// Reset restores the default scenario snapshot with zero faults.
	Reset()

	Parameter(key string) (string, error)
	SetParameter(key, value string)
	GlobalLatency() *int64
	SetGlobalLatency(ms *int64)

	FaultPolicy(op string) (model.FailurePolicy, bool)
	SetFaultPolicy(op string, p model.FailurePolicy)
	ClearFaultPolicy(op string)
	ClearAllFaults()
	// ConsumeFailNext atomically removes a fail-next policy for op and
	// returns it. At most one caller succeeds for a given policy.
	ConsumeFailNext(op string) (model.FailurePolicy, bool)
}
