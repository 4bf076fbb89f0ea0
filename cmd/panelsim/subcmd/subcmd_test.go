package subcmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStateCommand_DefaultScenario(t *testing.T) {
	cmd := NewStateCommand()
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("state command failed: %v", err)
	}
}

func TestStateCommand_ApplyScenario(t *testing.T) {
	cmd := NewStateCommand()
	cmd.SetArgs([]string{"--scenario", "running"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("state command failed: %v", err)
	}
}

func TestStateCommand_UnknownScenario(t *testing.T) {
	cmd := NewStateCommand()
	cmd.SetArgs([]string{"--scenario", "nope"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestStateCommand_Query(t *testing.T) {
	cmd := NewStateCommand()
	cmd.SetArgs([]string{"--scenario", "high-cost", "--query", "$.costs.total"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("state command failed: %v", err)
	}
}

func TestScenariosCommand_List(t *testing.T) {
	cmd := NewScenariosCommand()
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("scenarios command failed: %v", err)
	}
}

func TestScenariosCommand_InvalidFile(t *testing.T) {
	cmd := NewScenariosCommand()
	cmd.SetArgs([]string{"--file", "/nonexistent/scenarios.yaml"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestScenariosCommand_LoadFile(t *testing.T) {
	yaml := `
scenarios:
  - name: cli-loaded
    description: loaded from the scenarios subcommand
    playerCount: 3
`
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write yaml: %v", err)
	}

	cmd := NewScenariosCommand()
	cmd.SetArgs([]string{"--file", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("scenarios command failed: %v", err)
	}
}
