package fault

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"

	"github.com/craftops/panelsim/kernel/model"
	"github.com/craftops/panelsim/kernel/store"
)

func newInjector() (*Injector, *store.MemoryStore) {
	s := store.NewMemoryStore()
	return NewInjector(s), s
}

func TestInject_RequiresOperation(t *testing.T) {
	j, _ := newInjector()

	for _, op := range []string{"", "   "} {
		err := j.Inject(Injection{Operation: op, FailNext: true})
		if !errors.Is(err, model.ErrInvalidOperation) {
			t.Errorf("expected ErrInvalidOperation for %q, got %v", op, err)
		}
	}
}

func TestConsult_NoPolicyNoFault(t *testing.T) {
	j, _ := newInjector()

	if err := j.Consult(context.Background(), "getCosts"); err != nil {
		t.Fatalf("expected no fault, got %v", err)
	}
}

func TestConsult_FailNextFiresOnce(t *testing.T) {
	j, _ := newInjector()

	err := j.Inject(Injection{Operation: "getCosts", FailNext: true, ErrorCode: "Throttling"})
	if err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	err = j.Consult(context.Background(), "getCosts")
	var failure *model.InjectedFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected an injected failure, got %v", err)
	}
	if failure.Code() != "Throttling" {
		t.Errorf("expected code 'Throttling', got '%s'", failure.Code())
	}

	if err := j.Consult(context.Background(), "getCosts"); err != nil {
		t.Fatalf("fail-next should self-clear, got %v", err)
	}
}

func TestConsult_FailNextConsumedByOneCallerOnly(t *testing.T) {
	j, _ := newInjector()

	if err := j.Inject(Injection{Operation: "getCosts", FailNext: true}); err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	failures := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := j.Consult(context.Background(), "getCosts"); err != nil {
				failures <- err
			}
		}()
	}
	wg.Wait()
	close(failures)

	count := 0
	for range failures {
		count++
	}
	if count != 1 {
		t.Errorf("expected exactly one failure, got %d", count)
	}
}

func TestConsult_AlwaysFailPersistsUntilCleared(t *testing.T) {
	j, _ := newInjector()

	err := j.Inject(Injection{
		Operation:    "executeCommand",
		AlwaysFail:   true,
		ErrorCode:    "X",
		ErrorMessage: "Y",
	})
	if err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		err := j.Consult(context.Background(), "executeCommand")
		var failure *model.InjectedFailure
		if !errors.As(err, &failure) {
			t.Fatalf("call %d: expected an injected failure, got %v", i, err)
		}
		if failure.Code() != "X" || failure.Message() != "Y" {
			t.Errorf("call %d: expected X/Y, got %s/%s", i, failure.Code(), failure.Message())
		}
	}

	if err := j.Clear("executeCommand"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if err := j.Consult(context.Background(), "executeCommand"); err != nil {
		t.Fatalf("expected success after clear, got %v", err)
	}
}

func TestInject_AlwaysFailWinsOverFailNext(t *testing.T) {
	j, _ := newInjector()

	err := j.Inject(Injection{Operation: "getCosts", FailNext: true, AlwaysFail: true})
	if err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	// An always-fail policy does not self-clear.
	for i := 0; i < 2; i++ {
		if err := j.Consult(context.Background(), "getCosts"); err == nil {
			t.Fatalf("call %d: expected failure", i)
		}
	}
}

func TestInject_OverwritesPriorPolicy(t *testing.T) {
	j, _ := newInjector()

	if err := j.Inject(Injection{Operation: "getCosts", AlwaysFail: true}); err != nil {
		t.Fatalf("inject failed: %v", err)
	}
	if err := j.Inject(Injection{Operation: "getCosts", LatencyMs: aws.Int64(1)}); err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	if err := j.Consult(context.Background(), "getCosts"); err != nil {
		t.Fatalf("latency-only policy must not fail, got %v", err)
	}
}

func TestClear_NoPolicyIsNoop(t *testing.T) {
	j, _ := newInjector()

	if err := j.Clear("getCosts"); err != nil {
		t.Fatalf("clearing an absent policy must not error, got %v", err)
	}
	if err := j.Clear(""); !errors.Is(err, model.ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation for empty name, got %v", err)
	}
}

func TestClearAll_DropsPoliciesAndLatency(t *testing.T) {
	j, _ := newInjector()

	j.SetGlobalLatency(aws.Int64(200))
	if err := j.Inject(Injection{Operation: "getCosts", AlwaysFail: true}); err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	j.ClearAll()

	cfg := j.Config()
	if cfg.GlobalLatencyMs != nil {
		t.Error("clearAll should drop global latency")
	}
	if len(cfg.OperationFailures) != 0 {
		t.Error("clearAll should drop all policies")
	}
}

func TestConsult_GlobalLatencyDelays(t *testing.T) {
	j, _ := newInjector()
	j.SetGlobalLatency(aws.Int64(50))

	start := time.Now()
	if err := j.Consult(context.Background(), "getCosts"); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected at least 50ms, elapsed %v", elapsed)
	}
}

func TestConsult_PerOperationLatencyDelays(t *testing.T) {
	j, _ := newInjector()

	err := j.Inject(Injection{Operation: "getCosts", LatencyMs: aws.Int64(30)})
	if err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	start := time.Now()
	if err := j.Consult(context.Background(), "getCosts"); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("expected at least 30ms, elapsed %v", elapsed)
	}

	// Other operations are not delayed or failed.
	if err := j.Consult(context.Background(), "listBackups"); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
}

func TestConsult_LatencyRespectsContext(t *testing.T) {
	j, _ := newInjector()
	j.SetGlobalLatency(aws.Int64(5000))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := j.Consult(ctx, "getCosts")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("consult did not honor cancellation promptly")
	}
}
