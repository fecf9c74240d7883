package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/server"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		port       string
		host       string
		noCompress bool
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Start the HTTP and WebSocket API",
		Long: `Start the playground API.

Routes:
  GET  /health          health and pool utilisation
  GET  /metrics         Prometheus metrics
  GET  /api/library     bound library and function names
  POST /api/documents   assemble and bridge a snippet
  POST /api/runs        run a snippet in a pooled sandbox
  POST /api/evaluate    evaluate a snippet directly
  GET  /stream          WebSocket, streams output lines as they are written`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(false)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if noCompress {
				cfg.Server.Compress = false
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			srv, err := server.NewServer(cfg, server.WithLogger(logger))
			if err != nil {
				return err
			}
			defer func() {
				if err := srv.Close(); err != nil {
					logger.Error("Error during shutdown", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (default $PORT or 8000)")
	cmd.Flags().StringVar(&host, "host", "", "host to bind to (default $HOST or 0.0.0.0)")
	cmd.Flags().BoolVar(&noCompress, "no-compress", false, "disable gzip responses")
	return cmd
}
