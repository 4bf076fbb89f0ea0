package model

import "time"

// UniversePatch is a typed partial universe. Nil fields are left untouched;
// set fields merge into the current universe. Map fields (parameters) merge
// key by key, while slice-valued fields (backups, cost breakdown) and the
// per-operation failure table replace wholesale when present, so a patch
// can shrink them.
type UniversePatch struct {
	Instance    *InstancePatch    `json:"instance,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Backups     *[]BackupInfo     `json:"backups,omitempty"`
	Costs       *CostPatch        `json:"costs,omitempty"`
	Stack       *StackPatch       `json:"stack,omitempty"`
	Faults      *FaultPatch       `json:"faults,omitempty"`
	PlayerCount *int              `json:"playerCount,omitempty"`
}

type InstancePatch struct {
	ID            *string         `json:"id,omitempty"`
	State         *LifecycleState `json:"state,omitempty"`
	PublicIP      *string         `json:"publicIp,omitempty"`
	HasVolume     *bool           `json:"hasVolume,omitempty"`
	PendingTarget *LifecycleState `json:"pendingTarget,omitempty"`
}

type CostPatch struct {
	PeriodStart *string        `json:"periodStart,omitempty"`
	PeriodEnd   *string        `json:"periodEnd,omitempty"`
	Total       *string        `json:"total,omitempty"`
	Currency    *string        `json:"currency,omitempty"`
	Breakdown   *[]ServiceCost `json:"breakdown,omitempty"`
}

type StackPatch struct {
	Exists  *bool   `json:"exists,omitempty"`
	Status  *string `json:"status,omitempty"`
	StackID *string `json:"stackId,omitempty"`
}

type FaultPatch struct {
	GlobalLatencyMs   *int64                    `json:"globalLatencyMs,omitempty"`
	OperationFailures *map[string]FailurePolicy `json:"operationFailures,omitempty"`
}

// Merge applies the patch to the universe in place and re-normalizes.
// Applying the same patch twice yields the same end state.
func (u *Universe) Merge(p *UniversePatch) {
	if p == nil {
		return
	}
	if p.Instance != nil {
		if u.Instance == nil {
			u.Instance = &Instance{}
		}
		p.Instance.merge(u.Instance)
	}
	for k, v := range p.Parameters {
		u.Parameters[k] = v
	}
	if p.Backups != nil {
		u.Backups = append([]BackupInfo(nil), (*p.Backups)...)
	}
	if p.Costs != nil {
		p.Costs.merge(&u.Costs)
	}
	if p.Stack != nil {
		p.Stack.merge(&u.Stack)
	}
	if p.Faults != nil {
		if p.Faults.GlobalLatencyMs != nil {
			ms := *p.Faults.GlobalLatencyMs
			u.Faults.GlobalLatencyMs = &ms
		}
		if p.Faults.OperationFailures != nil {
			table := make(map[string]FailurePolicy, len(*p.Faults.OperationFailures))
			for k, v := range *p.Faults.OperationFailures {
				table[k] = v
			}
			u.Faults.OperationFailures = table
		}
	}
	if p.PlayerCount != nil {
		u.PlayerCount = *p.PlayerCount
	}
	u.Normalize()
}

func (p *InstancePatch) merge(inst *Instance) {
	if p.ID != nil {
		inst.ID = *p.ID
	}
	if p.State != nil {
		inst.State = *p.State
	}
	if p.PublicIP != nil {
		ip := *p.PublicIP
		inst.PublicIP = &ip
	}
	if p.HasVolume != nil {
		inst.HasVolume = *p.HasVolume
	}
	if p.PendingTarget != nil {
		inst.PendingTarget = *p.PendingTarget
	}
	inst.UpdatedAt = time.Now().UTC()
}

func (p *CostPatch) merge(c *CostSnapshot) {
	if p.PeriodStart != nil {
		c.PeriodStart = *p.PeriodStart
	}
	if p.PeriodEnd != nil {
		c.PeriodEnd = *p.PeriodEnd
	}
	if p.Total != nil {
		c.Total = *p.Total
	}
	if p.Currency != nil {
		c.Currency = *p.Currency
	}
	if p.Breakdown != nil {
		c.Breakdown = append([]ServiceCost(nil), (*p.Breakdown)...)
	}
}

func (p *StackPatch) merge(s *StackStatus) {
	if p.Exists != nil {
		s.Exists = *p.Exists
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.StackID != nil {
		id := *p.StackID
		s.StackID = &id
	}
}
