package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gabriel-reiss/guildtickets/internal/api/http"
	"github.com/gabriel-reiss/guildtickets/internal/api/http/handlers"
	"github.com/gabriel-reiss/guildtickets/internal/auth"
	"github.com/gabriel-reiss/guildtickets/internal/command"
	"github.com/gabriel-reiss/guildtickets/internal/config"
	"github.com/gabriel-reiss/guildtickets/internal/events"
	"github.com/gabriel-reiss/guildtickets/internal/observability"
	"github.com/gabriel-reiss/guildtickets/internal/persistence"
	"github.com/gabriel-reiss/guildtickets/internal/platform"
	"github.com/gabriel-reiss/guildtickets/internal/repository"
	"github.com/gabriel-reiss/guildtickets/internal/service"
	"github.com/gabriel-reiss/guildtickets/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	queueRepo := repository.NewQueueRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	configRepo := repository.NewGuildConfigRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	suggestionRepo := repository.NewSuggestionRepository(pool)
	panelRepo := repository.NewPanelRepository(pool)
	streamRepo := repository.NewStreamRepository(pool)

	gateway := platform.NewGatewayClient(cfg.Platform, logger)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	teardown := worker.NewTeardownWorker(redis.Client, gateway, logger)
	go teardown.Run(ctx)

	auditService := service.NewAuditService(auditRepo, logger)
	admissionService := service.NewAdmissionService(queueRepo, dispatcher, logger)
	dispatchService := service.NewDispatchService(queueRepo, ticketRepo, configRepo, auditService, gateway, gateway, dispatcher, logger)
	lifecycleService := service.NewLifecycleService(ticketRepo, configRepo, auditService, gateway, teardown, gateway, dispatcher, cfg.Workflow, logger)
	statsService := service.NewStatsService(ticketRepo, queueRepo, configRepo)
	configService := service.NewConfigService(configRepo)
	templateService := service.NewTemplateService(templateRepo, configRepo)
	suggestionService := service.NewSuggestionService(suggestionRepo, configRepo, dispatcher)
	panelService := service.NewPanelService(panelRepo, gateway)
	streamService := service.NewStreamService(streamRepo, gateway)

	notificationService := service.NewNotificationService(configRepo, gateway, logger)
	worker.StartNotificationWorker(notificationService, dispatcher)

	registry := command.NewRegistry()
	registerCommands(logger, registry, admissionService, dispatchService, lifecycleService, suggestionService, templateService, panelService)

	gatewayAuth := auth.NewGatewayAuth(cfg.Auth)
	authMiddleware := auth.NewAuthMiddleware(gatewayAuth.TokenManager())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(gatewayAuth),
		Tickets:        handlers.NewTicketsHandler(admissionService, lifecycleService),
		Queue:          handlers.NewQueueHandler(dispatchService, statsService),
		Admin:          handlers.NewAdminHandler(configService, templateService, panelService, streamService),
		Suggestions:    handlers.NewSuggestionsHandler(suggestionService),
		Interactions:   handlers.NewInteractionsHandler(registry),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func registerCommands(
	logger *zap.Logger,
	registry *command.Registry,
	admission *service.AdmissionService,
	dispatch *service.DispatchService,
	lifecycle *service.LifecycleService,
	suggestions *service.SuggestionService,
	templates *service.TemplateService,
	panels *service.PanelService,
) {
	cmds := []command.Command{
		&command.SubmitCommand{Admission: admission},
		&command.ClaimCommand{Dispatch: dispatch},
		&command.CloseCommand{Lifecycle: lifecycle},
		&command.AssignCommand{Lifecycle: lifecycle},
		&command.AddCommand{Lifecycle: lifecycle},
		&command.PendingCommand{Dispatch: dispatch},
		&command.MineCommand{Lifecycle: lifecycle},
		&command.SuggestCommand{Suggestions: suggestions},
		&command.ApproveCommand{Suggestions: suggestions},
		&command.TemplateCommand{Templates: templates},
		&command.PanelCommand{Panels: panels},
	}
	for _, cmd := range cmds {
		if err := registry.Register(cmd); err != nil {
			logger.Fatal("command registration", zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
