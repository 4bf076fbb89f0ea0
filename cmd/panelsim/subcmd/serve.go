package subcmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/craftops/panelsim/kernel/control"
	"github.com/craftops/panelsim/kernel/loader"
	"github.com/craftops/panelsim/kernel/store"
	"github.com/craftops/panelsim/kernel/web"
)

func init() {
	RootCmd.AddCommand(NewServeCommand())
}

func NewServeCommand() *cobra.Command {
	serveCmd := &ServeCommand{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation control surface over HTTP",
		RunE:  serveCmd.serve,
	}

	cmd.Flags().StringVarP(&serveCmd.Listen, "listen", "l", ":8080", "listen address")
	cmd.Flags().StringVar(&serveCmd.StateFile, "state-file", "", "persist the universe to this JSON file across restarts")
	cmd.Flags().StringVar(&serveCmd.ScenarioFile, "scenario-file", "", "register extra scenarios from a YAML file")

	return cmd
}

type ServeCommand struct {
	Listen       string
	StateFile    string
	ScenarioFile string
}

func (s *ServeCommand) serve(cmd *cobra.Command, args []string) error {
	var st store.StateStore
	if s.StateFile != "" {
		fs, err := store.NewFileStore(s.StateFile)
		if err != nil {
			return err
		}
		st = fs
		logrus.Infof("state persisted to %s", s.StateFile)
	} else {
		st = store.NewMemoryStore()
	}

	if s.ScenarioFile != "" {
		n, err := loader.LoadScenarios(s.ScenarioFile)
		if err != nil {
			return err
		}
		logrus.Infof("registered %d scenario(s) from %s", n, s.ScenarioFile)
	}

	surface := control.NewSurface(st)
	server := &http.Server{
		Addr:    s.Listen,
		Handler: web.NewServer(surface).Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.Infof("simulation control surface listening on %s", s.Listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logrus.Info("shut down")
	return nil
}
