package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/cache"
	"github.com/spec-kit/repair-ticket-service/internal/config"
	"github.com/spec-kit/repair-ticket-service/internal/events"
	"github.com/spec-kit/repair-ticket-service/internal/observability"
	"github.com/spec-kit/repair-ticket-service/internal/persistence"
	"github.com/spec-kit/repair-ticket-service/internal/receipt"
	"github.com/spec-kit/repair-ticket-service/internal/repository"
	"github.com/spec-kit/repair-ticket-service/internal/secrets"
	"github.com/spec-kit/repair-ticket-service/internal/service"
	"github.com/spec-kit/repair-ticket-service/internal/worker"
)

// runtime holds every long-lived collaborator of a command.
type runtime struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *observability.Metrics
	postgres   *persistence.Postgres
	redis      *persistence.Redis
	dispatcher events.Dispatcher
	forwarder  *events.KafkaForwarder
	stats      *cache.StatsCache
	tickets    *service.TicketService
	receipts   *service.ReceiptService
}

func newRuntime(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*runtime, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	sealer, err := secrets.NewSealer(cfg.Security.DeviceSecretKey)
	if err != nil {
		pg.Close()
		return nil, err
	}
	if !sealer.Enabled() {
		logger.Warn("DEVICE_SECRET_KEY not provided; device passwords are stored in plain text")
	}

	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		metrics:  observability.NewMetrics(),
		postgres: pg,
		redis:    persistence.NewRedis(cfg.Redis, logger),
	}
	rt.dispatcher = events.NewInMemoryDispatcher(logger)
	rt.forwarder = events.NewKafkaForwarder(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	rt.stats = cache.NewStatsCache(rt.redis.Cmdable(), cfg.Redis.StatsTTL(), logger)

	deps := service.TicketDependencies{
		Dispatcher: rt.dispatcher,
		StatsCache: rt.stats,
		Sealer:     sealer,
		Logger:     logger,
		Location:   cfg.Business.Location(),
	}
	if pool := pg.PoolHandle(); pool != nil {
		deps.TicketRepo = repository.NewTicketRepository(pool)
		deps.SequenceRepo = repository.NewSequenceRepository(pool)
		deps.HistoryRepo = repository.NewTicketHistoryRepository(pool)
	} else {
		memory := repository.NewMemoryTicketRepository()
		deps.TicketRepo = memory
		deps.SequenceRepo = repository.NewMemorySequenceRepository(memory)
		deps.HistoryRepo = repository.NewMemoryHistoryRepository()
	}
	rt.tickets = service.NewTicketService(deps)

	layout, err := receipt.ParseLayout(cfg.Business.DefaultLayout, receipt.LayoutA5)
	if err != nil {
		logger.Warn("unknown RECEIPT_DEFAULT_LAYOUT, using a5", zap.String("layout", cfg.Business.DefaultLayout))
		layout = receipt.LayoutA5
	}
	rt.receipts = service.NewReceiptService(rt.tickets, receipt.ProfileFromConfig(cfg.Business), layout)

	notifications := service.NewNotificationService(rt.dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(rt.dispatcher, notifications, rt.stats, rt.forwarder)
	events.SubscribeAll(rt.dispatcher, func(_ context.Context, e events.Event) error {
		rt.metrics.RecordEvent(string(e.Type))
		return nil
	})
	return rt, nil
}

func (rt *runtime) Close() {
	if err := rt.forwarder.Close(); err != nil {
		rt.logger.Warn("closing kafka writer", zap.Error(err))
	}
	rt.redis.Close()
	rt.postgres.Close()
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
