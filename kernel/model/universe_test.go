package model

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
)

func TestDefaultUniverse_Invariants(t *testing.T) {
	u := DefaultUniverse()

	if u.Scenario != ScenarioDefault {
		t.Errorf("expected scenario '%s', got '%s'", ScenarioDefault, u.Scenario)
	}
	if u.Instance == nil {
		t.Fatal("expected an instance")
	}
	if u.Instance.State != StateStopped {
		t.Errorf("expected stopped instance, got '%s'", u.Instance.State)
	}
	if u.Instance.PublicIP != nil {
		t.Error("stopped instance must not have a public IP")
	}
	if !u.Instance.HasVolume {
		t.Error("default instance should have its volume attached")
	}
	if len(u.Faults.OperationFailures) != 0 {
		t.Errorf("expected no faults, got %d", len(u.Faults.OperationFailures))
	}
	if len(u.Backups) == 0 {
		t.Error("default universe should seed backups")
	}
	if u.Costs.Total != "12.34" {
		t.Errorf("expected total '12.34', got '%s'", u.Costs.Total)
	}
}

func TestNormalize_PublicIPOnlyWhenRunning(t *testing.T) {
	u := DefaultUniverse()

	u.Instance.State = StateRunning
	u.Normalize()
	if u.Instance.PublicIP == nil {
		t.Fatal("running instance must have a public IP")
	}

	u.Instance.State = StateStopped
	u.Normalize()
	if u.Instance.PublicIP != nil {
		t.Error("stopped instance must not keep its public IP")
	}
}

func TestNormalize_HibernatingDetachesVolume(t *testing.T) {
	u := DefaultUniverse()
	u.Instance.State = StateHibernating
	u.Instance.HasVolume = true
	u.Normalize()

	if u.Instance.HasVolume {
		t.Error("hibernating instance must not have a volume attached")
	}
}

func TestCopy_DoesNotAlias(t *testing.T) {
	u := DefaultUniverse()
	c := u.Copy()

	c.Instance.State = StateRunning
	c.Parameters["extra"] = "value"
	c.Backups[0].Name = "changed"
	c.Faults.OperationFailures["getCosts"] = FailurePolicy{Mode: FailNext}

	if u.Instance.State != StateStopped {
		t.Error("copy mutated the original instance")
	}
	if _, ok := u.Parameters["extra"]; ok {
		t.Error("copy mutated the original parameters")
	}
	if u.Backups[0].Name == "changed" {
		t.Error("copy mutated the original backups")
	}
	if len(u.Faults.OperationFailures) != 0 {
		t.Error("copy mutated the original fault table")
	}
}

func TestMerge_LeavesOtherFieldsUntouched(t *testing.T) {
	u := DefaultUniverse()
	paramCount := len(u.Parameters)
	backupCount := len(u.Backups)
	total := u.Costs.Total

	hasVolume := false
	u.Merge(&UniversePatch{Instance: &InstancePatch{HasVolume: &hasVolume}})

	if u.Instance.HasVolume {
		t.Error("patch did not apply")
	}
	if len(u.Parameters) != paramCount {
		t.Error("patch touched parameters")
	}
	if len(u.Backups) != backupCount {
		t.Error("patch touched backups")
	}
	if u.Costs.Total != total {
		t.Error("patch touched costs")
	}
	if u.Stack.Status == "" {
		t.Error("patch touched stack")
	}
}

func TestMerge_Idempotent(t *testing.T) {
	u := DefaultUniverse()
	running := StateRunning
	count := 7
	patch := &UniversePatch{
		Instance:    &InstancePatch{State: &running},
		Parameters:  map[string]string{"key": "value"},
		PlayerCount: &count,
	}

	u.Merge(patch)
	first := u.Copy()
	u.Merge(patch)

	if u.Instance.State != first.Instance.State {
		t.Error("second merge changed instance state")
	}
	if u.PlayerCount != first.PlayerCount {
		t.Error("second merge changed player count")
	}
	if *u.Instance.PublicIP != *first.Instance.PublicIP {
		t.Error("second merge changed public IP")
	}
}

func TestMerge_FaultTableReplacesWholesale(t *testing.T) {
	u := DefaultUniverse()
	u.Faults.OperationFailures["getCosts"] = FailurePolicy{Mode: AlwaysFail}

	table := map[string]FailurePolicy{"listBackups": {Mode: FailNext}}
	u.Merge(&UniversePatch{Faults: &FaultPatch{OperationFailures: &table}})

	if _, ok := u.Faults.OperationFailures["getCosts"]; ok {
		t.Error("stale fault entry survived a wholesale replace")
	}
	if _, ok := u.Faults.OperationFailures["listBackups"]; !ok {
		t.Error("new fault entry missing")
	}
}

func TestInjectedFailure_AWSErrorShape(t *testing.T) {
	var err error = NewInjectedFailure("getCosts", FailurePolicy{
		Mode:         AlwaysFail,
		ErrorCode:    "Throttling",
		ErrorMessage: "rate exceeded",
	})

	var awsErr awserr.Error
	if !errors.As(err, &awsErr) {
		t.Fatal("injected failure should satisfy awserr.Error")
	}
	if awsErr.Code() != "Throttling" {
		t.Errorf("expected code 'Throttling', got '%s'", awsErr.Code())
	}
	if awsErr.Message() != "rate exceeded" {
		t.Errorf("expected message 'rate exceeded', got '%s'", awsErr.Message())
	}
}

func TestInjectedFailure_Defaults(t *testing.T) {
	f := NewInjectedFailure("getCosts", FailurePolicy{Mode: FailNext})
	if f.Code() != DefaultFailureCode {
		t.Errorf("expected default code, got '%s'", f.Code())
	}
	if f.Message() != DefaultFailureMessage {
		t.Errorf("expected default message, got '%s'", f.Message())
	}
}
