package subcmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/craftops/panelsim/kernel/loader"
	"github.com/craftops/panelsim/kernel/scenario"
)

func init() {
	RootCmd.AddCommand(NewScenariosCommand())
}

func NewScenariosCommand() *cobra.Command {
	scenariosCmd := &ScenariosCommand{}

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List the available simulation scenarios",
		RunE:  scenariosCmd.run,
	}

	cmd.Flags().StringVarP(&scenariosCmd.File, "file", "f", "", "also register scenarios from a YAML file")

	return cmd
}

type ScenariosCommand struct {
	File string
}

func (s *ScenariosCommand) run(cmd *cobra.Command, args []string) error {
	if s.File != "" {
		n, err := loader.LoadScenarios(s.File)
		if err != nil {
			return err
		}
		logrus.Infof("registered %d scenario(s) from %s", n, s.File)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Name", "Description"})
	for _, info := range scenario.Catalog() {
		t.AppendRow(table.Row{info.Name, info.Description})
	}
	t.Render()
	return nil
}
