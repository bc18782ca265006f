package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/repair-ticket-service/internal/api/http"
	"github.com/spec-kit/repair-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/repair-ticket-service/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	reminder := worker.NewPickupReminder(rt.tickets, cfg.Reminder, cfg.Business.Location(), logger)
	if err := reminder.Start(); err != nil {
		return err
	}
	defer reminder.Stop()

	app := httptransport.NewServer(cfg.App.Name, logger, rt.metrics, cfg.App.RequestTimeout(), httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, rt.postgres, rt.redis, rt.metrics),
		Tickets:   handlers.NewTicketsHandler(rt.tickets),
		Receipts:  handlers.NewReceiptsHandler(rt.receipts),
		Dashboard: handlers.NewDashboardHandler(rt.tickets),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	return app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
