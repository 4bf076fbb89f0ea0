package scenario

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudformation"

	"github.com/craftops/panelsim/kernel/model"
)

// Scenario is a named, typed partial universe applied on top of the default
// snapshot to establish a test precondition in one call.
type Scenario struct {
	Name        string
	Description string
	// Patch is merged into a fresh default universe when the scenario is
	// applied. A nil patch means the default snapshot itself.
	Patch *model.UniversePatch
	// ClearFaults drops all fault configuration on apply (the default
	// scenario); otherwise the current fault config is carried over.
	ClearFaults bool
	// FailAll installs an always-fail policy on every façade operation
	// (the errors scenario).
	FailAll bool
}

// Info is the catalog entry presented to tooling.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var (
	catalogMu    sync.RWMutex
	catalog      = make(map[string]Scenario)
	catalogOrder []string
)

// Register adds a scenario to the catalog. Registering a name twice is an
// error so user-supplied scenario files cannot shadow the built-ins.
func Register(sc Scenario) error {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	if sc.Name == "" {
		return fmt.Errorf("scenario requires a name: %w", model.ErrInvalidOperation)
	}
	if _, dup := catalog[sc.Name]; dup {
		return fmt.Errorf("scenario '%s' already registered", sc.Name)
	}
	catalog[sc.Name] = sc
	catalogOrder = append(catalogOrder, sc.Name)
	return nil
}

func mustRegister(sc Scenario) {
	if err := Register(sc); err != nil {
		panic(err)
	}
}

// Lookup returns the scenario registered under name.
func Lookup(name string) (Scenario, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	sc, ok := catalog[name]
	return sc, ok
}

// Catalog lists all registered scenarios in registration order, built-ins
// first.
func Catalog() []Info {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	infos := make([]Info, 0, len(catalogOrder))
	for _, name := range catalogOrder {
		sc := catalog[name]
		infos = append(infos, Info{Name: sc.Name, Description: sc.Description})
	}
	return infos
}

func state(s model.LifecycleState) *model.LifecycleState {
	return &s
}

func init() {
	mustRegister(Scenario{
		Name:        model.ScenarioDefault,
		Description: "server stopped with volume attached, no faults",
		ClearFaults: true,
	})
	mustRegister(Scenario{
		Name:        "running",
		Description: "server up with a public IP, normal costs and backups",
		Patch: &model.UniversePatch{
			Instance:    &model.InstancePatch{State: state(model.StateRunning)},
			PlayerCount: aws.Int(2),
		},
	})
	mustRegister(Scenario{
		Name:        "starting",
		Description: "instance pending, settles into running on poll",
		Patch: &model.UniversePatch{
			Instance: &model.InstancePatch{
				State:         state(model.StatePending),
				PendingTarget: state(model.StateRunning),
			},
		},
	})
	mustRegister(Scenario{
		Name:        "stopping",
		Description: "instance stopping, settles into stopped on poll",
		Patch: &model.UniversePatch{
			Instance: &model.InstancePatch{
				State:         state(model.StateStopping),
				PendingTarget: state(model.StateStopped),
			},
		},
	})
	mustRegister(Scenario{
		Name:        "hibernated",
		Description: "server stopped with its volume detached",
		Patch: &model.UniversePatch{
			Instance: &model.InstancePatch{
				State:     state(model.StateStopped),
				HasVolume: aws.Bool(false),
			},
		},
	})
	mustRegister(Scenario{
		Name:        "high-cost",
		Description: "server running with an elevated monthly bill",
		Patch: &model.UniversePatch{
			Instance:    &model.InstancePatch{State: state(model.StateRunning)},
			PlayerCount: aws.Int(2),
			Costs: &model.CostPatch{
				Total: aws.String("125.50"),
				Breakdown: &[]model.ServiceCost{
					{Service: "Amazon Elastic Compute Cloud - Compute", Cost: "98.40"},
					{Service: "Amazon Elastic Block Store", Cost: "21.10"},
					{Service: "Amazon Route 53", Cost: "0.50"},
					{Service: "AWS Cost Explorer", Cost: "5.50"},
				},
			},
		},
	})
	mustRegister(Scenario{
		Name:        "no-backups",
		Description: "server running, backup catalog empty",
		Patch: &model.UniversePatch{
			Instance: &model.InstancePatch{State: state(model.StateRunning)},
			Backups:  &[]model.BackupInfo{},
		},
	})
	mustRegister(Scenario{
		Name:        "many-players",
		Description: "server running with a full house online",
		Patch: &model.UniversePatch{
			Instance:    &model.InstancePatch{State: state(model.StateRunning)},
			PlayerCount: aws.Int(18),
		},
	})
	mustRegister(Scenario{
		Name:        "stack-creating",
		Description: "deployment stack still creating",
		Patch: &model.UniversePatch{
			Stack: &model.StackPatch{
				Exists: aws.Bool(true),
				Status: aws.String(cloudformation.StackStatusCreateInProgress),
			},
		},
	})
	mustRegister(Scenario{
		Name:        "errors",
		Description: "every operation fails until faults are cleared",
		FailAll:     true,
	})
}
