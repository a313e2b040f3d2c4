package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/crestbridge/ir-portal/internal/application/handler"
	"github.com/crestbridge/ir-portal/internal/application/service"
	"github.com/crestbridge/ir-portal/internal/config"
	"github.com/crestbridge/ir-portal/internal/infrastructure/external/mailer"
	"github.com/crestbridge/ir-portal/internal/infrastructure/external/n8n"
	"github.com/crestbridge/ir-portal/internal/infrastructure/persistence/repository"
	"github.com/crestbridge/ir-portal/internal/infrastructure/persistence/sqlite"
	"github.com/crestbridge/ir-portal/internal/infrastructure/storage"
	httpiface "github.com/crestbridge/ir-portal/internal/interfaces/http"
	"github.com/crestbridge/ir-portal/pkg/database"
	"github.com/crestbridge/ir-portal/pkg/utils"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting investor portal approval engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	txManager := sqlite.NewDB(db.DB, logger)
	ticketRepo := repository.NewTicketRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)

	// External collaborators
	gateway := n8n.NewGateway(n8n.Config{
		BaseURL: cfg.Workflow.BaseURL,
		APIKey:  cfg.Workflow.APIKey,
		Timeout: cfg.Workflow.Timeout,
	}, logger)
	emailSender := mailer.NewSender(mailer.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	}, logger)
	files := storage.NewLocalFileStorage(cfg.Storage.BaseDir, logger)

	appLogger := sugaredLogger{logger.Sugar()}

	// The handler registry covers every ticket entity type; a gap here is a
	// startup error.
	registry, err := handler.BuildRegistry(handler.Deps{
		Tickets:       ticketRepo,
		Allocations:   repository.NewAllocationRepository(db.DB, logger),
		Deals:         repository.NewDealRepository(db.DB, logger),
		Interests:     repository.NewInterestRepository(db.DB, logger),
		Access:        repository.NewAccessRepository(db.DB, logger),
		Submissions:   repository.NewSubmissionRepository(db.DB, logger),
		Subscriptions: repository.NewSubscriptionRepository(db.DB, logger),
		FeePlans:      repository.NewFeePlanRepository(db.DB, logger),
		Valuations:    repository.NewValuationRepository(db.DB, logger),
		Referrals:     repository.NewReferralRepository(db.DB, logger),
		Signatures:    repository.NewSignatureRequestRepository(db.DB, logger),
		Documents:     repository.NewDocumentRepository(db.DB, logger),
		Wires:         repository.NewWireInstructionRepository(db.DB, logger),
		Sales:         repository.NewSaleRequestRepository(db.DB, logger),
		Investors:     repository.NewInvestorRepository(db.DB, logger),
		Users:         userRepo,
		Invitations:   repository.NewInvitationRepository(db.DB, logger),
		Profiles:      repository.NewProfileRepository(db.DB, logger),
		Notifications: notificationRepo,
		Audit:         auditRepo,
		TxManager:     txManager,
		Gateway:       gateway,
		Files:         files,
		Mailer:        emailSender,
	}, appLogger)
	if err != nil {
		logger.Fatal("Failed to build handler registry", zap.Error(err))
	}

	// Services
	auditService := service.NewAuditService(auditRepo, appLogger)
	notificationService := service.NewNotificationService(notificationRepo, appLogger)
	decisionService := service.NewDecisionService(ticketRepo, registry, auditService, notificationService, appLogger)
	reportService := service.NewReportService(ticketRepo, appLogger)

	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JWTSecret:    cfg.Auth.JWTSecret,
	}, decisionService, reportService, userRepo, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// sugaredLogger adapts zap's sugared logger to the application Logger
// interfaces.
type sugaredLogger struct {
	s *zap.SugaredLogger
}

func (l sugaredLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l sugaredLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
