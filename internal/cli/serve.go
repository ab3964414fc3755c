package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Konsultn-Engineering/valueset/connector"
	"github.com/Konsultn-Engineering/valueset/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lookups over HTTP",
		Long: `Load the catalog, open the database session and serve

  GET /lookup?tableId=<id>&<name>=<value>...
  GET /catalog
  GET /healthz

until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session := connector.NewSession(cfg.Driver, cfg.Database, connector.WithSessionLogger(logger))
			if err := session.Open(ctx); err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			exec, err := session.Executor()
			if err != nil {
				return err
			}
			reloader, err := server.NewReloader(cfg.Catalog, exec, logger)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			srv := server.New(server.Config{
				Addr:              cfg.Server.Addr,
				ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
				ShutdownTimeout:   cfg.Server.ShutdownTimeout,
				Watch:             cfg.Server.Watch,
				Reloader:          reloader,
				Health:            session.Health,
				Logger:            logger,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default: :8000)")
	cmd.Flags().Bool("watch", false, "reload the catalog when its file changes")
	return cmd
}
