package model

import (
	"time"

	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/ec2"
)

// LifecycleState is the panel-level view of the instance lifecycle. Values
// reuse the EC2 instance-state-name strings where EC2 has them; "hibernating"
// and "unknown" exist only at the panel level.
type LifecycleState string

const (
	StatePending     = LifecycleState(ec2.InstanceStateNamePending)
	StateRunning     = LifecycleState(ec2.InstanceStateNameRunning)
	StateStopping    = LifecycleState(ec2.InstanceStateNameStopping)
	StateStopped     = LifecycleState(ec2.InstanceStateNameStopped)
	StateTerminated  = LifecycleState(ec2.InstanceStateNameTerminated)
	StateHibernating LifecycleState = "hibernating"
	StateUnknown     LifecycleState = "unknown"
)

// Transitional reports whether the state settles into another state on a
// later read (no background timers, reads resolve transitions).
func (s LifecycleState) Transitional() bool {
	return s == StatePending || s == StateStopping
}

// Instance is the single simulated game server instance.
type Instance struct {
	ID        string         `json:"id"`
	State     LifecycleState `json:"state"`
	PublicIP  *string        `json:"publicIp,omitempty"`
	HasVolume bool           `json:"hasVolume"`
	// PendingTarget is the state a transitional instance settles into on the
	// next read: Running for Pending, Stopped or Hibernating for Stopping.
	PendingTarget LifecycleState `json:"pendingTarget,omitempty"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// BackupInfo describes one world backup as listed by the backup tooling.
type BackupInfo struct {
	Name string     `json:"name"`
	Date *time.Time `json:"date,omitempty"`
}

// ServiceCost is one line of the per-service cost breakdown. Costs are
// decimal strings, never floats.
type ServiceCost struct {
	Service string `json:"service"`
	Cost    string `json:"cost"`
}

type CostSnapshot struct {
	PeriodStart string        `json:"periodStart"`
	PeriodEnd   string        `json:"periodEnd"`
	Total       string        `json:"total"`
	Currency    string        `json:"currency"`
	Breakdown   []ServiceCost `json:"breakdown"`
	FetchedAt   time.Time     `json:"fetchedAt"`
}

type StackStatus struct {
	Exists  bool    `json:"exists"`
	Status  string  `json:"status,omitempty"`
	StackID *string `json:"stackId,omitempty"`
}

// FailureMode selects how a per-operation fault policy fires.
type FailureMode string

const (
	// FailNone marks a latency-only policy.
	FailNone   FailureMode = ""
	FailNext   FailureMode = "fail-next"
	AlwaysFail FailureMode = "always-fail"
)

// FailurePolicy is the configured fault for one façade operation.
type FailurePolicy struct {
	Mode         FailureMode `json:"mode,omitempty"`
	LatencyMs    int64       `json:"latencyMs,omitempty"`
	ErrorCode    string      `json:"errorCode,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

type FaultConfig struct {
	GlobalLatencyMs   *int64                   `json:"globalLatencyMs,omitempty"`
	OperationFailures map[string]FailurePolicy `json:"operationFailures"`
}

// ScenarioCustom is reported as the current scenario once the universe has
// been hand-patched after a scenario was applied.
const ScenarioCustom = "custom"

// ScenarioDefault is the baseline scenario every reset returns to.
const ScenarioDefault = "default"

// Universe is the complete simulated state: one instance, the parameter
// store, the backup catalog, cost data, the deployment stack and the fault
// configuration. A single Universe is shared per test process, owned by the
// state store.
type Universe struct {
	Scenario    string            `json:"scenario"`
	Instance    *Instance         `json:"instance,omitempty"`
	Parameters  map[string]string `json:"parameters"`
	Backups     []BackupInfo      `json:"backups"`
	Costs       CostSnapshot      `json:"costs"`
	Stack       StackStatus       `json:"stack"`
	Faults      FaultConfig       `json:"faults"`
	PlayerCount int               `json:"playerCount"`
}

// Default parameter keys seeded by the default scenario.
const (
	ParamEmailAllowlist = "/gameserver/email-allowlist"
	ParamBackupCache    = "/gameserver/backup-cache"
	ParamGDriveToken    = "/gameserver/gdrive-token"
)

// DefaultInstanceID is the id of the simulated instance in every built-in
// scenario that configures one.
const DefaultInstanceID = "i-0f3a9c2d174b8e501"

// DefaultPublicIP is assigned whenever an instance settles into Running
// without an address already present.
const DefaultPublicIP = "203.0.113.42"

const defaultStackID = "arn:aws:cloudformation:us-east-1:123456789012:stack/gameserver/1d0c9e40-77af-11ee-b11a-0a58a9feac02"

// DefaultUniverse builds the baseline snapshot: instance stopped with its
// volume attached, normal parameters, three backups, modest costs, a healthy
// stack and no faults.
func DefaultUniverse() *Universe {
	now := time.Now().UTC()
	dates := []time.Time{
		now.Add(-6 * time.Hour),
		now.Add(-30 * time.Hour),
		now.Add(-54 * time.Hour),
	}
	u := &Universe{
		Scenario: ScenarioDefault,
		Instance: &Instance{
			ID:        DefaultInstanceID,
			State:     StateStopped,
			HasVolume: true,
			UpdatedAt: now,
		},
		Parameters: map[string]string{
			ParamEmailAllowlist: "admin@example.com,player@example.com",
			ParamBackupCache:    `{"backups":["world-2024-03-18","world-2024-03-17","world-2024-03-16"]}`,
			ParamGDriveToken:    "present",
		},
		Backups: []BackupInfo{
			{Name: "world-2024-03-18", Date: &dates[0]},
			{Name: "world-2024-03-17", Date: &dates[1]},
			{Name: "world-2024-03-16", Date: &dates[2]},
		},
		Costs: CostSnapshot{
			PeriodStart: firstOfMonth(now),
			PeriodEnd:   now.Format("2006-01-02"),
			Total:       "12.34",
			Currency:    "USD",
			Breakdown: []ServiceCost{
				{Service: "Amazon Elastic Compute Cloud - Compute", Cost: "8.21"},
				{Service: "Amazon Elastic Block Store", Cost: "2.93"},
				{Service: "Amazon Route 53", Cost: "0.50"},
				{Service: "AWS Cost Explorer", Cost: "0.70"},
			},
			FetchedAt: now,
		},
		Stack: StackStatus{
			Exists:  true,
			Status:  cloudformation.StackStatusCreateComplete,
			StackID: stackID(),
		},
		Faults: FaultConfig{
			OperationFailures: map[string]FailurePolicy{},
		},
	}
	u.Normalize()
	return u
}

func stackID() *string {
	id := defaultStackID
	return &id
}

func firstOfMonth(t time.Time) string {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// Copy returns a deep copy. Snapshots handed out by the store must never
// alias the canonical universe.
func (u *Universe) Copy() *Universe {
	if u == nil {
		return nil
	}
	out := *u
	if u.Instance != nil {
		inst := *u.Instance
		if u.Instance.PublicIP != nil {
			ip := *u.Instance.PublicIP
			inst.PublicIP = &ip
		}
		out.Instance = &inst
	}
	out.Parameters = make(map[string]string, len(u.Parameters))
	for k, v := range u.Parameters {
		out.Parameters[k] = v
	}
	out.Backups = make([]BackupInfo, len(u.Backups))
	for i, b := range u.Backups {
		out.Backups[i] = b
		if b.Date != nil {
			d := *b.Date
			out.Backups[i].Date = &d
		}
	}
	out.Costs.Breakdown = append([]ServiceCost(nil), u.Costs.Breakdown...)
	if u.Stack.StackID != nil {
		id := *u.Stack.StackID
		out.Stack.StackID = &id
	}
	if u.Faults.GlobalLatencyMs != nil {
		ms := *u.Faults.GlobalLatencyMs
		out.Faults.GlobalLatencyMs = &ms
	}
	out.Faults.OperationFailures = make(map[string]FailurePolicy, len(u.Faults.OperationFailures))
	for k, v := range u.Faults.OperationFailures {
		out.Faults.OperationFailures[k] = v
	}
	return &out
}

// Normalize enforces the cross-field invariants: a public IP is present if
// and only if the instance is Running, and hibernating instances have no
// volume attached.
func (u *Universe) Normalize() {
	if u.Faults.OperationFailures == nil {
		u.Faults.OperationFailures = map[string]FailurePolicy{}
	}
	if u.Parameters == nil {
		u.Parameters = map[string]string{}
	}
	if u.Backups == nil {
		u.Backups = []BackupInfo{}
	}
	inst := u.Instance
	if inst == nil {
		return
	}
	switch {
	case inst.State == StateRunning && inst.PublicIP == nil:
		ip := DefaultPublicIP
		inst.PublicIP = &ip
	case inst.State != StateRunning:
		inst.PublicIP = nil
	}
	if inst.State == StateHibernating {
		inst.HasVolume = false
	}
	if !inst.State.Transitional() {
		inst.PendingTarget = ""
	}
}
