package loader

import (
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/craftops/panelsim/kernel/model"
	"github.com/craftops/panelsim/kernel/scenario"
)

// ScenariosYaml is the on-disk shape of a user-supplied scenario file. Test
// suites register their own presets alongside the built-in catalog.
type ScenariosYaml struct {
	Scenarios []ScenarioYaml `yaml:"scenarios"`
}

type ScenarioYaml struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Instance    *InstanceYaml     `yaml:"instance"`
	Parameters  map[string]string `yaml:"parameters"`
	Backups     *[]BackupYaml     `yaml:"backups"`
	Costs       *CostsYaml        `yaml:"costs"`
	Stack       *StackYaml        `yaml:"stack"`
	PlayerCount *int              `yaml:"playerCount"`
}

type InstanceYaml struct {
	State         *string `yaml:"state"`
	HasVolume     *bool   `yaml:"hasVolume"`
	PublicIP      *string `yaml:"publicIp"`
	PendingTarget *string `yaml:"pendingTarget"`
}

type BackupYaml struct {
	Name string `yaml:"name"`
}

type CostsYaml struct {
	Total    *string `yaml:"total"`
	Currency *string `yaml:"currency"`
}

type StackYaml struct {
	Exists *bool   `yaml:"exists"`
	Status *string `yaml:"status"`
}

// LoadScenarios parses a scenario YAML file and registers every entry in
// the catalog.
func LoadScenarios(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read scenario file")
	}

	var file ScenariosYaml
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, errors.Wrap(err, "failed to parse scenario file")
	}

	for _, sy := range file.Scenarios {
		if err := scenario.Register(sy.toScenario()); err != nil {
			return 0, errors.Wrapf(err, "failed to register scenario '%s'", sy.Name)
		}
	}
	return len(file.Scenarios), nil
}

func (sy ScenarioYaml) toScenario() scenario.Scenario {
	patch := &model.UniversePatch{Parameters: sy.Parameters}
	if sy.Instance != nil {
		ip := &model.InstancePatch{
			PublicIP:  sy.Instance.PublicIP,
			HasVolume: sy.Instance.HasVolume,
		}
		if sy.Instance.State != nil {
			s := model.LifecycleState(*sy.Instance.State)
			ip.State = &s
		}
		if sy.Instance.PendingTarget != nil {
			s := model.LifecycleState(*sy.Instance.PendingTarget)
			ip.PendingTarget = &s
		}
		patch.Instance = ip
	}
	if sy.Backups != nil {
		backups := make([]model.BackupInfo, 0, len(*sy.Backups))
		for _, b := range *sy.Backups {
			backups = append(backups, model.BackupInfo{Name: b.Name})
		}
		patch.Backups = &backups
	}
	if sy.Costs != nil {
		patch.Costs = &model.CostPatch{Total: sy.Costs.Total, Currency: sy.Costs.Currency}
	}
	if sy.Stack != nil {
		patch.Stack = &model.StackPatch{Exists: sy.Stack.Exists, Status: sy.Stack.Status}
	}
	if sy.PlayerCount != nil {
		patch.PlayerCount = aws.Int(*sy.PlayerCount)
	}
	return scenario.Scenario{
		Name:        sy.Name,
		Description: sy.Description,
		Patch:       patch,
	}
}
