package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/SMKJI/simba-ji-sub000/internal/api/http"
	"github.com/SMKJI/simba-ji-sub000/internal/api/http/handlers"
	"github.com/SMKJI/simba-ji-sub000/internal/auth"
	"github.com/SMKJI/simba-ji-sub000/internal/config"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
	"github.com/SMKJI/simba-ji-sub000/internal/observability"
	"github.com/SMKJI/simba-ji-sub000/internal/persistence"
	"github.com/SMKJI/simba-ji-sub000/internal/repository"
	"github.com/SMKJI/simba-ji-sub000/internal/service"
	"github.com/SMKJI/simba-ji-sub000/internal/worker"
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
	applicantRepo := repository.NewApplicantRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	queueRepo := repository.NewQueueRepository(pool)
	counterRepo := repository.NewCounterRepository(pool)
	operatorRepo := repository.NewOperatorRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(service.AuthDependencies{
		ApplicantRepo: applicantRepo,
		StaffRepo:     staffRepo,
		ResetRepo:     resetRepo,
		TokenManager:  tokenManager,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Config:        cfg.Auth,
	})
	groupService := service.NewGroupService(service.GroupDependencies{
		GroupRepo:     groupRepo,
		ApplicantRepo: applicantRepo,
		Dispatcher:    dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		MessageRepo:  messageRepo,
		CategoryRepo: categoryRepo,
		HistoryRepo:  historyRepo,
		Dispatcher:   dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:   ticketRepo,
		OperatorRepo: operatorRepo,
		HistoryRepo:  historyRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	queueService := service.NewQueueService(service.QueueDependencies{
		QueueRepo:    queueRepo,
		CounterRepo:  counterRepo,
		CategoryRepo: categoryRepo,
		Dispatcher:   dispatcher,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		StaffRepo:    staffRepo,
		CounterRepo:  counterRepo,
		OperatorRepo: operatorRepo,
		CategoryRepo: categoryRepo,
		Logger:       logger,
		BcryptCost:   cfg.Auth.BcryptCost,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	realtimeService := service.NewRealtimeService(redis, dispatcher, logger, cfg.Realtime)
	worker.StartNotificationWorker(notificationService)
	worker.StartRealtimeWorker(realtimeService)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, applicantRepo, staffRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Applicants:     handlers.NewApplicantsHandler(authService, groupService),
		Staff:          handlers.NewStaffHandler(authService),
		Groups:         handlers.NewGroupsHandler(groupService),
		Tickets:        handlers.NewTicketsHandler(ticketService, queueService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, assignmentService),
		Queue:          handlers.NewQueueHandler(queueService),
		Admin:          handlers.NewAdminHandler(adminService, metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
