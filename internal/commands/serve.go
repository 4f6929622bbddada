package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omnis-dev/omnis/internal/server"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.ListenAddr = addr
			}

			tracker, closeStore := newTracker(cfg, log)
			defer closeStore()

			srv := server.New(newFeedBuilder(cfg, log), newFlowManager(tracker, log), cfg.Server, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = srv.Run(ctx)
			tracker.Wait()
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.listen_addr)")

	return cmd
}

