package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	grpchandler "github.com/AshithaPGowda/code-challenge/internal/adapters/grpc/handler"
	httphandler "github.com/AshithaPGowda/code-challenge/internal/adapters/http/handler"
	"github.com/AshithaPGowda/code-challenge/internal/adapters/notify/telnyx"
	"github.com/AshithaPGowda/code-challenge/internal/adapters/pdf"
	"github.com/AshithaPGowda/code-challenge/internal/adapters/repository/postgres"
	zipclient "github.com/AshithaPGowda/code-challenge/internal/adapters/zipcode"
	"github.com/AshithaPGowda/code-challenge/internal/adapters/zipcode/zipcache"
	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/notice"
	"github.com/AshithaPGowda/code-challenge/internal/core/review"
	"github.com/AshithaPGowda/code-challenge/internal/core/voicetool"
	"github.com/AshithaPGowda/code-challenge/internal/core/zipcode"
	"github.com/AshithaPGowda/code-challenge/internal/platform/config"
	pg "github.com/AshithaPGowda/code-challenge/internal/platform/db/postgres"
	"github.com/AshithaPGowda/code-challenge/internal/platform/logging"
	"github.com/AshithaPGowda/code-challenge/internal/platform/metrics"
	"github.com/AshithaPGowda/code-challenge/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database pool: %w", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool, pg.WithTransactionLogger(logger.Named("tx")))
	workflowMetrics := metrics.NewWorkflow()

	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	formRepo := postgres.NewFormRepository(dbPool)

	var sender notice.Sender = notice.NopSender{}
	if cfg.SMS.Enabled() {
		sender = telnyx.NewSender(telnyx.Config{
			APIKey:     cfg.SMS.APIKey,
			FromNumber: cfg.SMS.FromNumber,
			BaseURL:    cfg.SMS.BaseURL,
			Timeout:    cfg.SMS.Timeout,
		}, logger.Named("telnyx"))
	} else {
		logger.Warn("sms delivery disabled; TELNYX_API_KEY or TELNYX_PHONE_NUMBER is not set")
	}
	notifier := notice.NewNotifier(sender, notice.Templates{
		OrganizationName: cfg.PDF.Organization.Name,
		HRContact:        cfg.SMS.HRContact,
	}, logger.Named("notice"))

	employeeSvc := employee.NewService(employeeRepo, nil, txManager)
	formSvc := i9.NewService(formRepo, employeeSvc, nil, txManager,
		i9.WithNotifier(notifier),
		i9.WithMetrics(workflowMetrics),
		i9.WithLogger(logger.Named("i9")),
	)

	reviewOpts := []review.Option{
		review.WithNotifier(notifier),
		review.WithEmployees(employeeSvc),
		review.WithMetrics(workflowMetrics),
		review.WithLogger(logger.Named("review")),
		review.WithStatusOverride(cfg.Workflow.AllowStatusOverride),
	}
	var artifactDir string
	if cfg.PDF.Enabled() {
		docOpt, dir, err := documentOption(cfg.PDF, logger)
		if err != nil {
			return err
		}
		reviewOpts = append(reviewOpts, docOpt)
		artifactDir = dir
	} else {
		logger.Warn("pdf generation disabled; pdf.template_path is not set")
	}
	reviewSvc := review.NewService(formRepo, nil, txManager, reviewOpts...)

	zipLookup := zipclient.NewClient(zipclient.Config{
		BaseURL: cfg.Zipcode.BaseURL,
		Timeout: cfg.Zipcode.Timeout,
	}, logger.Named("zippopotam"))
	defer zipLookup.CloseIdleConnections()

	zipOpts := []zipcode.Option{zipcode.WithLogger(logger.Named("zipcode"))}
	if cfg.Zipcode.Redis.Addr != "" {
		rdb := zipcache.NewClient(zipcache.Options{
			Addr:     cfg.Zipcode.Redis.Addr,
			Password: cfg.Zipcode.Redis.Password,
			DB:       cfg.Zipcode.Redis.DB,
		})
		defer closeRedis(rdb, logger)
		zipOpts = append(zipOpts, zipcode.WithCache(zipcache.New(rdb, cfg.Zipcode.Redis.TTL, logger.Named("zipcache"))))
	}
	zipSvc := zipcode.NewService(zipLookup, zipOpts...)

	dispatcher, err := voicetool.NewDispatcher(employeeSvc, formSvc, zipSvc, logger.Named("voicetool"))
	if err != nil {
		return fmt.Errorf("build tool dispatcher: %w", err)
	}

	httpHandler := httphandler.NewRouter(
		httphandler.NewHandler(dispatcher, employeeSvc, formSvc, zipSvc, logger.Named("http")),
		httphandler.RouterOptions{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			ArtifactDir:    artifactDir,
			Metrics:        workflowMetrics.Handler(),
			Health:         dbPool,
		},
	)
	reviewHandler := grpchandler.NewReviewGrpcHandler(formSvc, reviewSvc, employeeSvc, logger.Named("grpc"))

	srv := server.New(server.Options{
		ListenAddr:      cfg.Server.ListenAddr,
		HTTPAddr:        cfg.Server.HTTPAddr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, reviewHandler, httpHandler, logger)

	logger.Info("starting servers",
		zap.String("grpc_addr", cfg.Server.ListenAddr),
		zap.String("http_addr", cfg.Server.HTTPAddr),
		zap.Bool("sms_enabled", cfg.SMS.Enabled()),
		zap.Bool("pdf_enabled", cfg.PDF.Enabled()),
	)
	return srv.Run(ctx)
}

func documentOption(cfg config.PDFConfig, logger *zap.Logger) (review.Option, string, error) {
	renderer, err := pdf.NewRendererFromFile(cfg.TemplatePath,
		pdf.WithLockedFields(cfg.LockFields),
		pdf.WithRendererLogger(logger.Named("pdf")),
	)
	if err != nil {
		return nil, "", fmt.Errorf("load pdf template: %w", err)
	}
	store, err := pdf.NewFileStore(cfg.OutputDir, cfg.PublicBaseURL, logger.Named("artifacts"))
	if err != nil {
		return nil, "", fmt.Errorf("prepare artifact store: %w", err)
	}
	org := review.Organization{
		Name:                cfg.Organization.Name,
		Address:             cfg.Organization.Address,
		City:                cfg.Organization.City,
		State:               cfg.Organization.State,
		ZipCode:             cfg.Organization.ZipCode,
		RepresentativeName:  cfg.Organization.RepresentativeName,
		RepresentativeTitle: cfg.Organization.RepresentativeTitle,
	}
	return review.WithDocuments(renderer, store, org), store.Dir(), nil
}

func closeRedis(rdb *redis.Client, logger *zap.Logger) {
	if err := rdb.Close(); err != nil {
		logger.Warn("failed to close redis client", zap.Error(err))
	}
}
