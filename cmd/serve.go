package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linesmerrill/shift-handover/api/handlers"
	"github.com/linesmerrill/shift-handover/api/scheduler"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the handover form API on localhost",
		Long: `Serve the handover form API on the configured local address.

The API edits one report at a time. When backup.enabled is set, the store is
copied to the backup folder on backup.schedule.

Examples:
  # Serve with defaults (127.0.0.1:8080)
  shift-handover serve

  # Serve on another port
  HANDOVER_SERVER_PORT=9000 shift-handover serve`,
		Args: cobra.NoArgs,
		RunE: c.runServe,
	}
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := handlers.App{Config: *c.conf}
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	defer a.Close()

	if c.conf.Backup.Enabled {
		sched := scheduler.NewScheduler(a.Store, c.conf.Backup)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	ln, err := net.Listen("tcp", c.conf.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.conf.Server.Addr(), err)
	}
	srv := &http.Server{
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.S().Infow("shift-handover is up and running",
			"addr", ln.Addr().String(),
			"env", c.conf.Env,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		zap.S().Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
