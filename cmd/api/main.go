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

	"github.com/go-chi/httplog/v3"

	"github.com/cmlabs-hris/worktime-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/worktime-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/logging"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/worktime-backend-go/internal/repository/postgresql"
	absenceService "github.com/cmlabs-hris/worktime-backend-go/internal/service/absence"
	serviceAuth "github.com/cmlabs-hris/worktime-backend-go/internal/service/auth"
	clockService "github.com/cmlabs-hris/worktime-backend-go/internal/service/clock"
	serviceCompany "github.com/cmlabs-hris/worktime-backend-go/internal/service/company"
	dashboardService "github.com/cmlabs-hris/worktime-backend-go/internal/service/dashboard"
	kpiService "github.com/cmlabs-hris/worktime-backend-go/internal/service/kpi"
	liveService "github.com/cmlabs-hris/worktime-backend-go/internal/service/live"
	reportService "github.com/cmlabs-hris/worktime-backend-go/internal/service/report"
	teamService "github.com/cmlabs-hris/worktime-backend-go/internal/service/team"
	userService "github.com/cmlabs-hris/worktime-backend-go/internal/service/user"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(logging.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
	})
	slog.SetDefault(logger)

	defaults, err := config.LoadPolicyDefaults(cfg.Policy.File)
	if err != nil {
		return err
	}
	defaultPolicy, err := defaults.ToPolicy()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseURL()
	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(dsn); err != nil {
			return err
		}
		slog.Info("Database migrations applied")
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	teamRepo := postgresql.NewTeamRepository(db)
	eventRepo := postgresql.NewClockEventRepository(db)
	absenceRepo := postgresql.NewAbsenceRepository(db)
	tx := postgresql.NewTransactor(db)

	clk := utils.SystemClock{}
	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.StreamExpiration)

	access := teamService.NewAccessService(userRepo, teamRepo)
	liveSvc := liveService.NewLiveService(hub, JWTService, access)
	companySvc := serviceCompany.NewCompanyService(companyRepo, holidayRepo)
	authSvc := serviceAuth.NewAuthService(tx, userRepo, companyRepo, JWTService, defaultPolicy)
	userSvc := userService.NewUserService(userRepo, teamRepo)
	teamSvc := teamService.NewTeamService(teamRepo, userRepo, access)
	clockSvc := clockService.NewClockService(tx, eventRepo, absenceRepo, companySvc, access, liveSvc, clk)
	absenceSvc := absenceService.NewAbsenceService(tx, absenceRepo, companySvc, access, liveSvc, clk)
	calc := kpiService.NewCalculator(eventRepo, absenceRepo, companySvc, clk,
		kpiService.WithLookback(cfg.Jobs.StaleSessionAfter+cfg.Jobs.Interval))
	kpiSvc := kpiService.NewKPIService(calc, userRepo, teamRepo, access, clk)
	dashboardSvc := dashboardService.NewDashboardService(clockSvc, calc, access, userRepo, teamRepo, absenceRepo, clk)
	reportSvc := reportService.NewReportService(calc, access, absenceRepo, clk)

	handlers := appHTTP.Handlers{
		Auth:      appHTTP.NewAuthHandler(authSvc),
		User:      appHTTP.NewUserHandler(userSvc),
		Company:   appHTTP.NewCompanyHandler(companySvc),
		Team:      appHTTP.NewTeamHandler(teamSvc),
		Clock:     appHTTP.NewClockHandler(clockSvc),
		Absence:   appHTTP.NewAbsenceHandler(absenceSvc),
		KPI:       appHTTP.NewKPIHandler(kpiSvc),
		Dashboard: appHTTP.NewDashboardHandler(dashboardSvc),
		Report:    appHTTP.NewReportHandler(reportSvc),
		Live:      appHTTP.NewLiveHandler(liveSvc, 30*time.Second),
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	requestLogger := slog.New(logging.NewContextHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       logging.ParseLevel(cfg.App.LogLevel),
			ReplaceAttr: logFormat.ReplaceAttr,
		}),
		cfg.App.Name,
		cfg.App.Env,
	)).With(slog.String("version", cfg.App.Version))

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: []string{cfg.App.FrontendURL},
		RequestLogger:  requestLogger,
		LoginLimiter:   middleware.NewRateLimiter(cfg.RateLimit.LoginRequestsPerSecond, cfg.RateLimit.LoginBurst, 5*time.Minute),
	}, JWTService, userRepo, handlers)

	if cfg.Jobs.Enabled {
		scheduler := cron.NewScheduler(logger)
		cron.NewClockJobs(clockSvc, cfg.Jobs.Interval, cfg.Jobs.StaleSessionAfter, logger).RegisterJobs(scheduler)
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	// Live streams never finish on their own.
	server.RegisterOnShutdown(hub.Close)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "version", cfg.App.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.App.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
