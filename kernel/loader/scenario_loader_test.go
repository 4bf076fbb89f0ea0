package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/craftops/panelsim/kernel/model"
	"github.com/craftops/panelsim/kernel/scenario"
	"github.com/craftops/panelsim/kernel/store"
)

func writeTempYaml(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write yaml: %v", err)
	}
	return path
}

func TestLoadScenarios_Basic(t *testing.T) {
	yaml := `
scenarios:
  - name: tournament
    description: twenty players and a fat bill
    instance:
      state: running
    playerCount: 20
    costs:
      total: "310.00"
  - name: stack-gone
    description: stack deleted out from under the panel
    stack:
      exists: false
`
	path := writeTempYaml(t, yaml)

	n, err := LoadScenarios(path)
	if err != nil {
		t.Fatalf("LoadScenarios failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 scenarios, got %d", n)
	}

	s := store.NewMemoryStore()
	lib := scenario.NewLibrary(s)

	if err := lib.Apply("tournament"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	u := s.Snapshot()
	if u.Instance.State != model.StateRunning {
		t.Errorf("expected running, got '%s'", u.Instance.State)
	}
	if u.PlayerCount != 20 {
		t.Errorf("expected 20 players, got %d", u.PlayerCount)
	}
	if u.Costs.Total != "310.00" {
		t.Errorf("expected total '310.00', got '%s'", u.Costs.Total)
	}

	if err := lib.Apply("stack-gone"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if s.Snapshot().Stack.Exists {
		t.Error("expected stack to not exist")
	}
}

func TestLoadScenarios_DuplicateBuiltinRejected(t *testing.T) {
	yaml := `
scenarios:
  - name: running
    description: shadowing a built-in
`
	path := writeTempYaml(t, yaml)

	if _, err := LoadScenarios(path); err == nil {
		t.Fatal("expected error registering a duplicate of a built-in")
	}
}

func TestLoadScenarios_MissingFile(t *testing.T) {
	if _, err := LoadScenarios(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestLoadScenarios_BadYaml(t *testing.T) {
	path := writeTempYaml(t, "scenarios: [not: {valid")

	if _, err := LoadScenarios(path); err == nil {
		t.Fatal("expected error for unparseable yaml")
	}
}
