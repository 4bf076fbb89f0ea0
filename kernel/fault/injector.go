package fault

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/craftops/panelsim/kernel/model"
	"github.com/craftops/panelsim/kernel/store"
	"github.com/sirupsen/logrus"
)

// Injection describes one injectFault request. AlwaysFail wins when both
// modes are set; a request with neither mode and only a latency installs a
// latency-only policy.
type Injection struct {
	Operation    string `json:"operation"`
	LatencyMs    *int64 `json:"latencyMs,omitempty"`
	FailNext     bool   `json:"failNext,omitempty"`
	AlwaysFail   bool   `json:"alwaysFail,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Injector gates every simulated operation behind configurable latency and
// failure policies held in the state store.
type Injector struct {
	store store.StateStore
}

func NewInjector(s store.StateStore) *Injector {
	return &Injector{store: s}
}

// Inject records a policy for the named operation, overwriting any prior
// policy. The operation name must be a non-empty string; it is not checked
// against the façade's operations so tests can gate custom ones.
func (j *Injector) Inject(req Injection) error {
	if strings.TrimSpace(req.Operation) == "" {
		return fmt.Errorf("fault injection requires an operation name: %w", model.ErrInvalidOperation)
	}

	p := model.FailurePolicy{
		ErrorCode:    req.ErrorCode,
		ErrorMessage: req.ErrorMessage,
	}
	switch {
	case req.AlwaysFail:
		p.Mode = model.AlwaysFail
	case req.FailNext:
		p.Mode = model.FailNext
	}
	if req.LatencyMs != nil {
		p.LatencyMs = *req.LatencyMs
	}

	j.store.SetFaultPolicy(req.Operation, p)
	logrus.WithField("operation", req.Operation).Debugf("fault injected: mode=%s latency=%dms", p.Mode, p.LatencyMs)
	return nil
}

// Clear removes the policy for one operation. Clearing an operation without
// a policy is a no-op, not an error.
func (j *Injector) Clear(operation string) error {
	if strings.TrimSpace(operation) == "" {
		return fmt.Errorf("clear fault requires an operation name: %w", model.ErrInvalidOperation)
	}
	j.store.ClearFaultPolicy(operation)
	return nil
}

// ClearAll removes every per-operation policy and the global latency.
func (j *Injector) ClearAll() {
	j.store.ClearAllFaults()
}

func (j *Injector) SetGlobalLatency(ms *int64) {
	j.store.SetGlobalLatency(ms)
}

// Config returns the current fault configuration.
func (j *Injector) Config() model.FaultConfig {
	return j.store.Snapshot().Faults
}

// Consult is called by the façade before executing op. It applies the global
// latency, then the per-operation policy: always-fail raises every call,
// fail-next raises once and self-clears (at most one concurrent caller
// observes it), and any per-operation latency delays the call before it
// proceeds.
func (j *Injector) Consult(ctx context.Context, op string) error {
	if gl := j.store.GlobalLatency(); gl != nil && *gl > 0 {
		if err := sleep(ctx, time.Duration(*gl)*time.Millisecond); err != nil {
			return err
		}
	}

	p, ok := j.store.FaultPolicy(op)
	if !ok {
		return nil
	}

	switch p.Mode {
	case model.AlwaysFail:
		return model.NewInjectedFailure(op, p)
	case model.FailNext:
		if consumed, ok := j.store.ConsumeFailNext(op); ok {
			return model.NewInjectedFailure(op, consumed)
		}
		// Lost the race to another caller; the policy is already gone.
		return nil
	}

	if p.LatencyMs > 0 {
		if err := sleep(ctx, time.Duration(p.LatencyMs)*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
