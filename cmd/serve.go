package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/mathsim/internal/observability"
	"github.com/abhisek/mathsim/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workflows over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		shutdown, err := observability.InitTracing(ctx, a.cfg.Tracing)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				a.logger.Warn().Err(err).Msg("tracer shutdown")
			}
		}()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.cfg.Addr
		}
		srv := server.New(a.orch, server.Options{
			Improvement: a.improvement,
			Metrics:     a.metrics.Handler(),
			Logger:      a.logger,
		})
		return srv.ListenAndServe(ctx, addr, shutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, then :8080)")
}
