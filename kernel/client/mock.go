package client

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/craftops/panelsim/kernel/fault"
	"github.com/craftops/panelsim/kernel/model"
	"github.com/craftops/panelsim/kernel/store"
)

// Mock presents the same operation surface as the real cloud client, backed
// by the state store. Every method consults the fault injector under its own
// operation name before touching state; a triggered fault short-circuits
// with no state mutation.
type Mock struct {
	store  store.StateStore
	faults *fault.Injector
}

func NewMock(s store.StateStore, f *fault.Injector) *Mock {
	return &Mock{store: s, faults: f}
}

// FindInstanceID returns the id of the single simulated instance.
func (m *Mock) FindInstanceID(ctx context.Context) (string, error) {
	if err := m.faults.Consult(ctx, model.OpFindInstanceID); err != nil {
		return "", err
	}
	u := m.store.Snapshot()
	if u.Instance == nil {
		return "", fmt.Errorf("no instance configured: %w", model.ErrNotFound)
	}
	return u.Instance.ID, nil
}

// GetInstanceState returns the current lifecycle state. Transitional states
// settle on read: the stored state is returned as-is, then advanced to its
// target so the next poll observes the settled state. There are no timers;
// tests poll.
func (m *Mock) GetInstanceState(ctx context.Context, id string) (model.LifecycleState, error) {
	if err := m.faults.Consult(ctx, model.OpGetInstanceState); err != nil {
		return model.StateUnknown, err
	}

	var observed model.LifecycleState
	err := m.store.Update(func(u *model.Universe) error {
		inst, err := instanceByID(u, id)
		if err != nil {
			return err
		}
		observed = inst.State
		settle(u)
		return nil
	})
	if err != nil {
		return model.StateUnknown, err
	}
	return observed, nil
}

// StartInstance boots a stopped or hibernated instance. The instance is left
// Pending; a later GetInstanceState resolves it to Running.
func (m *Mock) StartInstance(ctx context.Context, id string) error {
	return m.transition(ctx, model.OpStartInstance, id, func(inst *model.Instance) error {
		switch inst.State {
		case model.StateStopped, model.StateHibernating:
			inst.State = model.StatePending
			inst.PendingTarget = model.StateRunning
			inst.HasVolume = true
			return nil
		default:
			return fmt.Errorf("cannot start instance in state '%s': %w", inst.State, model.ErrInvalidState)
		}
	})
}

// StopInstance shuts down a running instance, leaving it Stopping until read.
func (m *Mock) StopInstance(ctx context.Context, id string) error {
	return m.transition(ctx, model.OpStopInstance, id, func(inst *model.Instance) error {
		if inst.State != model.StateRunning {
			return fmt.Errorf("cannot stop instance in state '%s': %w", inst.State, model.ErrInvalidState)
		}
		inst.State = model.StateStopping
		inst.PendingTarget = model.StateStopped
		return nil
	})
}

// ResumeInstance reattaches the volume of a hibernated instance and boots it.
func (m *Mock) ResumeInstance(ctx context.Context, id string) error {
	return m.transition(ctx, model.OpResumeInstance, id, func(inst *model.Instance) error {
		hibernated := inst.State == model.StateHibernating ||
			(inst.State == model.StateStopped && !inst.HasVolume)
		if !hibernated {
			return fmt.Errorf("cannot resume instance in state '%s': %w", inst.State, model.ErrInvalidState)
		}
		inst.State = model.StatePending
		inst.PendingTarget = model.StateRunning
		inst.HasVolume = true
		return nil
	})
}

// HibernateInstance stops the server and detaches its volume. Legal from
// Running or from Stopped with the volume still attached.
func (m *Mock) HibernateInstance(ctx context.Context, id string) error {
	return m.transition(ctx, model.OpHibernateInstance, id, func(inst *model.Instance) error {
		ok := inst.State == model.StateRunning ||
			(inst.State == model.StateStopped && inst.HasVolume)
		if !ok {
			return fmt.Errorf("cannot hibernate instance in state '%s': %w", inst.State, model.ErrInvalidState)
		}
		inst.State = model.StateStopping
		inst.PendingTarget = model.StateHibernating
		return nil
	})
}

// TerminateInstance is terminal: no transition is accepted afterwards.
func (m *Mock) TerminateInstance(ctx context.Context, id string) error {
	return m.transition(ctx, model.OpTerminateInstance, id, func(inst *model.Instance) error {
		if inst.State == model.StateTerminated {
			return fmt.Errorf("instance already terminated: %w", model.ErrInvalidState)
		}
		inst.State = model.StateTerminated
		inst.PendingTarget = ""
		inst.HasVolume = false
		return nil
	})
}

// ExecuteCommand returns the canned output registered for the command's
// leading keyword.
func (m *Mock) ExecuteCommand(ctx context.Context, id string, commandLines []string) (string, error) {
	if err := m.faults.Consult(ctx, model.OpExecuteCommand); err != nil {
		return "", err
	}
	u := m.store.Snapshot()
	if _, err := instanceByID(u, id); err != nil {
		return "", err
	}
	return respond(u, commandLines), nil
}

// ListBackups returns the current backup catalog. It mirrors the real
// dependency on command execution: the instance must be Running.
func (m *Mock) ListBackups(ctx context.Context, id string) ([]model.BackupInfo, error) {
	if err := m.faults.Consult(ctx, model.OpListBackups); err != nil {
		return nil, err
	}
	u := m.store.Snapshot()
	inst, err := instanceByID(u, id)
	if err != nil {
		return nil, err
	}
	if inst.State != model.StateRunning {
		return nil, fmt.Errorf("cannot list backups while instance is '%s': %w", inst.State, model.ErrInvalidState)
	}
	return u.Backups, nil
}

func (m *Mock) GetParameter(ctx context.Context, key string) (string, error) {
	if err := m.faults.Consult(ctx, model.OpGetParameter); err != nil {
		return "", err
	}
	return m.store.Parameter(key)
}

func (m *Mock) SetParameter(ctx context.Context, key, value string) error {
	if err := m.faults.Consult(ctx, model.OpSetParameter); err != nil {
		return err
	}
	m.store.SetParameter(key, value)
	return nil
}

func (m *Mock) GetCosts(ctx context.Context) (model.CostSnapshot, error) {
	if err := m.faults.Consult(ctx, model.OpGetCosts); err != nil {
		return model.CostSnapshot{}, err
	}
	costs := m.store.Snapshot().Costs
	costs.FetchedAt = time.Now().UTC()
	return costs, nil
}

func (m *Mock) GetStackStatus(ctx context.Context, name string) (model.StackStatus, error) {
	if err := m.faults.Consult(ctx, model.OpGetStackStatus); err != nil {
		return model.StackStatus{}, err
	}
	stack := m.store.Snapshot().Stack
	if !stack.Exists {
		return model.StackStatus{Exists: false}, nil
	}
	return stack, nil
}

func (m *Mock) transition(ctx context.Context, op, id string, fn func(inst *model.Instance) error) error {
	if err := m.faults.Consult(ctx, op); err != nil {
		return err
	}
	return m.store.Update(func(u *model.Universe) error {
		inst, err := instanceByID(u, id)
		if err != nil {
			return err
		}
		before := inst.State
		if err := fn(inst); err != nil {
			return err
		}
		inst.UpdatedAt = time.Now().UTC()
		u.Normalize()
		logrus.WithField("instance", id).Debugf("%s: %s -> %s", op, before, inst.State)
		return nil
	})
}

func instanceByID(u *model.Universe, id string) (*model.Instance, error) {
	if u.Instance == nil || u.Instance.ID != id {
		return nil, fmt.Errorf("instance [%s] not found: %w", id, model.ErrNotFound)
	}
	return u.Instance, nil
}

// settle advances a transitional instance to its target state.
func settle(u *model.Universe) {
	inst := u.Instance
	if inst == nil || !inst.State.Transitional() {
		return
	}
	switch inst.State {
	case model.StatePending:
		inst.State = model.StateRunning
		if inst.PendingTarget != "" {
			inst.State = inst.PendingTarget
		}
	case model.StateStopping:
		inst.State = model.StateStopped
		if inst.PendingTarget != "" {
			inst.State = inst.PendingTarget
		}
	}
	inst.PendingTarget = ""
	inst.UpdatedAt = time.Now().UTC()
	u.Normalize()
}
