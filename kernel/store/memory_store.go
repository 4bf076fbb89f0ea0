package store

import (
	"fmt"
	"sync"

	"github.com/craftops/panelsim/kernel/model"
)

// MemoryStore is the in-memory StateStore. A single instance is shared per
// test process; the mutex serializes mutations so concurrent test requests
// never interleave partial patches.
type MemoryStore struct {
	mu       sync.RWMutex
	universe *model.Universe
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{universe: model.DefaultUniverse()}
}

func (s *MemoryStore) Snapshot() *model.Universe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.universe.Copy()
}

func (s *MemoryStore) Replace(u *model.Universe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Normalize()
	s.universe = u
}

func (s *MemoryStore) Patch(p *model.UniversePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universe.Merge(p)
	s.universe.Scenario = model.ScenarioCustom
}

func (s *MemoryStore) Update(fn func(u *model.Universe) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.universe)
}

func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universe = model.DefaultUniverse()
}

func (s *MemoryStore) Parameter(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.universe.Parameters[key]
	if !ok {
		return "", fmt.Errorf("parameter [%s]: %w", key, model.ErrNotFound)
	}
	return value, nil
}

func (s *MemoryStore) SetParameter(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universe.Parameters[key] = value
}

func (s *MemoryStore) GlobalLatency() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.universe.Faults.GlobalLatencyMs == nil {
		return nil
	}
	ms := *s.universe.Faults.GlobalLatencyMs
	return &ms
}

func (s *MemoryStore) SetGlobalLatency(ms *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ms == nil {
		s.universe.Faults.GlobalLatencyMs = nil
		return
	}
	v := *ms
	s.universe.Faults.GlobalLatencyMs = &v
}

func (s *MemoryStore) FaultPolicy(op string) (model.FailurePolicy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.universe.Faults.OperationFailures[op]
	return p, ok
}

func (s *MemoryStore) SetFaultPolicy(op string, p model.FailurePolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universe.Faults.OperationFailures[op] = p
}

func (s *MemoryStore) ClearFaultPolicy(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.universe.Faults.OperationFailures, op)
}

func (s *MemoryStore) ClearAllFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universe.Faults.GlobalLatencyMs = nil
	s.universe.Faults.OperationFailures = map[string]model.FailurePolicy{}
}

// ConsumeFailNext removes and returns the fail-next policy for op. The
// check-and-delete runs under the write lock, so when two callers race only
// one of them observes the policy.
func (s *MemoryStore) ConsumeFailNext(op string) (model.FailurePolicy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.universe.Faults.OperationFailures[op]
	if !ok || p.Mode != model.FailNext {
		return model.FailurePolicy{}, false
	}
	delete(s.universe.Faults.OperationFailures, op)
	return p, true
}
