package control

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/oliveagle/jsonpath"
	"github.com/pkg/errors"

	"github.com/craftops/panelsim/kernel/fault"
	"github.com/craftops/panelsim/kernel/model"
	"github.com/craftops/panelsim/kernel/scenario"
	"github.com/craftops/panelsim/kernel/store"
)

// Surface exposes the mock universe to test code and tooling: inspect and
// patch state, apply scenarios, inject and clear faults, reset. It holds no
// state of its own; it validates input and delegates.
type Surface struct {
	store     store.StateStore
	scenarios *scenario.Library
	faults    *fault.Injector
}

func NewSurface(s store.StateStore) *Surface {
	return &Surface{
		store:     s,
		scenarios: scenario.NewLibrary(s),
		faults:    fault.NewInjector(s),
	}
}

// Injector returns the fault injector backing this surface, for wiring the
// mock client.
func (c *Surface) Injector() *fault.Injector {
	return c.faults
}

// State returns the full universe snapshot. The per-operation failure table
// serializes as a plain JSON object.
func (c *Surface) State() *model.Universe {
	return c.store.Snapshot()
}

// PatchState merges a JSON patch body into the universe. Non-object bodies
// are rejected before any state is touched.
func (c *Surface) PatchState(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("patch body must be a JSON object")
	}
	var patch model.UniversePatch
	if err := json.Unmarshal(trimmed, &patch); err != nil {
		return errors.Wrap(err, "failed to parse patch body")
	}
	c.store.Patch(&patch)
	return nil
}

// QueryState evaluates a JSONPath expression against the serialized
// universe, e.g. $.instance.state or $.costs.breakdown[0].cost.
func (c *Surface) QueryState(expr string) (interface{}, error) {
	data, err := json.Marshal(c.store.Snapshot())
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	res, err := jsonpath.JsonPathLookup(doc, expr)
	if err != nil {
		return nil, errors.Wrapf(err, "jsonpath '%s'", expr)
	}
	return res, nil
}

func (c *Surface) Scenarios() []scenario.Info {
	return c.scenarios.List()
}

func (c *Surface) CurrentScenario() string {
	return c.scenarios.Current()
}

func (c *Surface) ApplyScenario(name string) error {
	if name == "" {
		return fmt.Errorf("scenario name is required: %w", model.ErrUnknownScenario)
	}
	return c.scenarios.Apply(name)
}

func (c *Surface) InjectFault(req fault.Injection) error {
	return c.faults.Inject(req)
}

func (c *Surface) ClearFault(operation string) error {
	return c.faults.Clear(operation)
}

func (c *Surface) ClearAllFaults() {
	c.faults.ClearAll()
}

func (c *Surface) SetGlobalLatency(ms *int64) {
	c.faults.SetGlobalLatency(ms)
}

// FaultConfigDTO is the wire shape of the fault configuration: the keyed
// policy table crosses the boundary as a plain object.
type FaultConfigDTO struct {
	GlobalLatencyMs   *int64                         `json:"globalLatencyMs"`
	OperationFailures map[string]model.FailurePolicy `json:"operationFailures"`
}

func (c *Surface) FaultConfig() FaultConfigDTO {
	cfg := c.faults.Config()
	dto := FaultConfigDTO{
		GlobalLatencyMs:   cfg.GlobalLatencyMs,
		OperationFailures: make(map[string]model.FailurePolicy, len(cfg.OperationFailures)),
	}
	for op, p := range cfg.OperationFailures {
		dto.OperationFailures[op] = p
	}
	return dto
}

// Reset restores the default scenario and clears all faults.
func (c *Surface) Reset() {
	c.scenarios.ResetToDefault()
}
