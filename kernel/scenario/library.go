package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/craftops/panelsim/kernel/model"
	"github.com/craftops/panelsim/kernel/store"
)

// Library applies catalog scenarios to a state store.
type Library struct {
	store store.StateStore
}

func NewLibrary(s store.StateStore) *Library {
	return &Library{store: s}
}

// List returns the available scenarios in stable order.
func (l *Library) List() []Info {
	return Catalog()
}

// Current returns the name of the last-applied scenario, or "custom" once
// the universe has been hand-patched since.
func (l *Library) Current() string {
	return l.store.Snapshot().Scenario
}

// Apply replaces the universe with the named scenario: a fresh default
// snapshot with the scenario's patch merged in. Fault configuration carries
// over unless the scenario says otherwise (default clears faults, errors
// sets always-fail on every operation).
func (l *Library) Apply(name string) error {
	sc, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("scenario '%s': %w", name, model.ErrUnknownScenario)
	}

	next := model.DefaultUniverse()
	next.Merge(sc.Patch)
	next.Scenario = sc.Name

	switch {
	case sc.ClearFaults:
		// next already has a clean fault config.
	case sc.FailAll:
		for _, op := range model.AllOperations() {
			next.Faults.OperationFailures[op] = model.FailurePolicy{
				Mode:         model.AlwaysFail,
				ErrorCode:    model.DefaultFailureCode,
				ErrorMessage: fmt.Sprintf("scenario '%s' is active", sc.Name),
			}
		}
	default:
		next.Faults = l.store.Snapshot().Faults
	}

	l.store.Replace(next)
	logrus.WithField("scenario", sc.Name).Info("scenario applied")
	return nil
}

// ResetToDefault applies the default scenario and clears all faults.
func (l *Library) ResetToDefault() {
	if err := l.Apply(model.ScenarioDefault); err != nil {
		// The default scenario is always registered.
		panic(err)
	}
	l.store.ClearAllFaults()
}
