package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/hanpama/gqlcore/internal/logging"
	starwars "github.com/hanpama/gqlcore/internal/starwars"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFleetCmd() *cobra.Command {
	var addr, logLevel string
	cmd := &cobra.Command{
		Use:   "fleet",
		Short: "Serve the starship fleet over gRPC for serve --fleet.endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logLevel, false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveFleet(ctx, lis, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9090", "gRPC listen address")
	cmd.Flags().StringVar(&logLevel, "log.level", "info", "Log level (debug, info, warn, error)")
	return cmd
}

// serveFleet serves until ctx is done, then drains in-flight calls.
func serveFleet(ctx context.Context, lis net.Listener, logger *zap.Logger) error {
	srv := starwars.NewFleetServer(starwars.NewStore())
	errc := make(chan error, 1)
	go func() {
		logger.Info("fleet service listening", zap.String("addr", lis.Addr().String()))
		errc <- srv.Serve(lis)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	srv.GracefulStop()
	return nil
}
