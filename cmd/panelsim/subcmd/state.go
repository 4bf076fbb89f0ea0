package subcmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/craftops/panelsim/kernel/control"
	"github.com/craftops/panelsim/kernel/store"
)

func init() {
	RootCmd.AddCommand(NewStateCommand())
}

func NewStateCommand() *cobra.Command {
	stateCmd := &StateCommand{}

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the universe a scenario produces",
		Long: "Builds an in-process universe, optionally applies a scenario, and " +
			"prints it as JSON. Useful for checking what a test precondition " +
			"looks like without starting a server.",
		RunE: stateCmd.run,
	}

	cmd.Flags().StringVarP(&stateCmd.Scenario, "scenario", "s", "", "apply this scenario before printing")
	cmd.Flags().StringVarP(&stateCmd.Query, "query", "q", "", "JSONPath expression to evaluate, e.g. $.instance.state")

	return cmd
}

type StateCommand struct {
	Scenario string
	Query    string
}

func (s *StateCommand) run(cmd *cobra.Command, args []string) error {
	surface := control.NewSurface(store.NewMemoryStore())

	if s.Scenario != "" {
		if err := surface.ApplyScenario(s.Scenario); err != nil {
			return err
		}
	}

	if s.Query != "" {
		res, err := surface.QueryState(s.Query)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	out, err := json.MarshalIndent(surface.State(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
