package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-leave-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/push"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/postgresql"
	employeeService "github.com/cmlabs-hris/hris-leave-go/internal/service/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-leave-go/internal/service/notification"
	"github.com/go-chi/httplog/v3"
	"golang.org/x/time/rate"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, _ := cfg.SlogLevel()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseURL()
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(dsn); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	categoryRepo := postgresql.NewLeaveCategoryRepository(db)
	balanceRepo := postgresql.NewLeaveBalanceRepository(db)
	requestRepo := postgresql.NewLeaveRequestRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	pushRepo := postgresql.NewPushRepository(db)

	sender, err := newPushSender(ctx, cfg.Push, logger)
	if err != nil {
		return err
	}

	hub := sse.NewHub(0)
	defer hub.Close()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.SSEExpiration)
	notifications := notificationService.NewNotificationService(
		transactor,
		notificationRepo,
		pushRepo,
		sender,
		hub,
		notificationService.Config{
			BatchSize:       cfg.Notification.BatchSize,
			FlushInterval:   cfg.Notification.FlushInterval,
			WorkerCount:     cfg.Notification.Workers,
			QueueSize:       cfg.Notification.QueueSize,
			PushConcurrency: cfg.Push.Concurrency,
			MaxAttempts:     cfg.Push.MaxAttempts,
			RetryLease:      cfg.Push.RetryLease,
		},
	)

	calculator := leave.NewDayCalculator(loc)
	leaveSvc := leave.NewLeaveService(transactor, categoryRepo, balanceRepo, requestRepo, userRepo, calculator, notifications)
	seeder := leave.NewBalanceSeeder(categoryRepo, balanceRepo, calculator, time.Month(cfg.Leave.BalanceExpiryMonth), cfg.Leave.BalanceExpiryDay)
	employeeSvc := employeeService.NewEmployeeService(transactor, userRepo, seeder)

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)

	scheduler := cron.NewScheduler(loc)
	if err := scheduler.AddJob("push-retry", cfg.Push.RetrySchedule, notifications.RetryPendingDeliveries); err != nil {
		return err
	}
	if err := scheduler.AddJob("rate-limit-cleanup", "@every 10m", func(ctx context.Context) error {
		remaining := limiter.Cleanup(10 * time.Minute)
		slog.Debug("rate limiter cleaned", "remaining", remaining)
		return nil
	}); err != nil {
		return err
	}
	scheduler.Start()
	// Catch up on deliveries left pending by the previous process.
	go scheduler.RunOnce(ctx)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{AllowedOrigins: cfg.App.AllowedOrigins, LogLevel: level},
		logger,
		JWTService,
		limiter,
		appHTTP.Handlers{
			Leave:        appHTTP.NewLeaveHandler(leaveSvc),
			Notification: appHTTP.NewNotificationHandler(notifications, JWTService),
			Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	// Open SSE streams would otherwise hold Shutdown until the timeout.
	slog.Info("closing sse streams", "streams", hub.TotalSubscribers(), "dropped_events", hub.Dropped())
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
	}
	scheduler.Stop(shutdownCtx)
	notifications.Stop()

	slog.Info("server stopped")
	return nil
}

func newPushSender(ctx context.Context, cfg config.PushConfig, logger *slog.Logger) (push.Sender, error) {
	switch cfg.Provider {
	case config.PushProviderFCM:
		sender, err := push.NewFCMSender(ctx, cfg.FCMProjectID, cfg.FCMCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("init fcm sender: %w", err)
		}
		return sender, nil
	default:
		return push.NewLogSender(logger.With("component", "push")), nil
	}
}
