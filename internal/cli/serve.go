package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ocifkit/ocifkit/internal/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validation and export HTTP API",
		Long: `Run the HTTP API.

Endpoints:
  GET  /healthz             liveness and version
  POST /v1/validate         validation report for the request body
  POST /v1/export/{format}  artifact for the request body

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.cfg()
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			backend := string(cfg.Cache.Backend)
			if noCache || backend == "" {
				backend = "none"
			}
			u := newUI(cmd.OutOrStdout())
			u.keyValue("Address", cfg.Server.Addr)
			u.keyValue("Cache", backend)
			if cfg.Path != "" {
				u.keyValue("Config", cfg.Path)
			}

			srv := server.New(server.Config{
				Addr:            cfg.Server.Addr,
				MaxBodyBytes:    cfg.Server.MaxBodyBytes,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				Runner:          runner,
				Defaults:        cfg.PipelineOptions(),
				Logger:          loggerFromContext(ctx),
			})
			if err := srv.Serve(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			u.success("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
