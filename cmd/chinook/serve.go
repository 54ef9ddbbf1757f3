package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/chinook/config"
	"github.com/syssam/chinook/server"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve GraphQL over HTTP",
		Long: `Serve the GraphQL endpoint at /query, a readiness probe at /health
and Prometheus metrics at /metrics.

When --config is given the file is watched, and the similarity threshold,
batching, slow query threshold and log level are applied on change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			a, err := newApp(ctx, cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()
			if *configPath != "" {
				if err := config.Watch(ctx, *configPath, a.reload, a.log); err != nil {
					return err
				}
			}
			srv := server.New(a.exec, a.drv,
				server.WithLogger(a.log),
				server.WithMetrics(a.metrics),
				server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
			)
			return srv.Run(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}
