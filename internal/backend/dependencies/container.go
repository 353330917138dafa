package dependencies

import (
	"context"
	"fmt"
	"log/slog"

	"SiteWatch/internal/backend/runner"
	"SiteWatch/internal/backend/services"
	"SiteWatch/internal/backend/storage"
	"SiteWatch/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Container контейнер зависимостей
type Container struct {
	// Config
	Config *config.Config

	// Logger
	Logger *slog.Logger

	// Storage
	WebsiteStore   storage.WebsiteStore
	ReportStore    storage.ReportStore
	StatusLogStore storage.StatusLogStore
	Events         storage.EventPublisher

	// Services
	WebsiteService *services.WebsiteService
	ReportService  *services.ReportService
	AlertService   *services.AlertService
	MonitorService *services.MonitorService

	// Database connections
	DB *pgxpool.Pool
}

// NewContainer создает и инициализирует контейнер зависимостей
func NewContainer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Container, error) {
	container := &Container{
		Config: cfg,
		Logger: log,
	}

	// Инициализация зависимостей
	if err := container.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := container.initRedis(); err != nil {
		return nil, err
	}

	if err := container.initStorage(); err != nil {
		return nil, err
	}

	if err := container.initServices(); err != nil {
		return nil, err
	}

	slog.Info("Dependency container initialized successfully")
	return container, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	db, err := storage.NewPostgres(ctx, &c.Config.Database, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.DB = db
	return nil
}

func (c *Container) initRedis() error {
	events, err := storage.NewRedisPublisher(&c.Config.Redis, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.Events = events
	return nil
}

func (c *Container) initStorage() error {
	c.WebsiteStore = storage.NewWebsiteStore(c.DB)
	c.ReportStore = storage.NewReportStore(c.DB)
	c.StatusLogStore = storage.NewStatusLogStore(c.DB)
	return nil
}

func (c *Container) initServices() error {
	logger := slog.Default()

	var mailer services.Mailer
	if c.Config.SMTP.Host != "" {
		mailer = services.NewSMTPMailer(&c.Config.SMTP)
	} else {
		mailer = services.NewLogMailer(logger.With("service", "alert"))
	}

	c.AlertService = services.NewAlertService(
		mailer,
		services.AlertServiceConfig{
			QueueSize: c.Config.Monitor.AlertQueueSize,
		},
		logger.With("service", "alert"),
	)

	c.ReportService = services.NewReportService(
		c.WebsiteStore,
		c.ReportStore,
		c.StatusLogStore,
		c.Events,
		c.AlertService,
		services.ReportServiceConfig{
			HistoryLimit: c.Config.Monitor.HistoryLimit,
		},
		logger.With("service", "report"),
	)

	c.MonitorService = services.NewMonitorService(
		c.WebsiteStore,
		c.ReportService,
		runner.NewHTTPRunner(c.Config.Monitor.CheckTimeout),
		services.MonitorServiceConfig{
			ReconcileInterval: c.Config.Monitor.ReconcileInterval,
			CheckTimeout:      c.Config.Monitor.CheckTimeout,
		},
		logger.With("service", "monitor"),
	)

	c.WebsiteService = services.NewWebsiteService(
		c.WebsiteStore,
		logger.With("service", "website"),
	)

	c.AlertService.Start()

	return nil
}

// Close останавливает мониторинг и закрывает все соединения
func (c *Container) Close() error {
	var errors []error

	if c.MonitorService != nil {
		c.MonitorService.StopAll()
	}

	if c.AlertService != nil {
		c.AlertService.Stop()
	}

	if c.DB != nil {
		c.DB.Close()
	}

	if c.Events != nil {
		if err := c.Events.Close(); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errors)
	}

	return nil
}
