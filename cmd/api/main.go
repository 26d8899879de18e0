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

	"github.com/sitecrew/workforce-backend-go/internal/config"
	appHTTP "github.com/sitecrew/workforce-backend-go/internal/handler/http"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/cron"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/database"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/logging"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/storage"
	"github.com/sitecrew/workforce-backend-go/internal/repository/postgresql"
	summaryService "github.com/sitecrew/workforce-backend-go/internal/service/summary"
	"github.com/sitecrew/workforce-backend-go/migrations"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	summarySvc := summaryService.NewSummaryService(summaryService.Repositories{
		Transactor:      postgresql.NewTransactor(db),
		Summaries:       postgresql.NewSummaryRepository(db),
		InvoiceSequence: postgresql.NewInvoiceSequenceRepository(db),
		Employees:       postgresql.NewEmployeeRepository(db),
		Users:           postgresql.NewUserRepository(db),
		Attendances:     postgresql.NewAttendanceRepository(db),
		Timesheets:      postgresql.NewTimesheetRepository(db),
		LeaveRequests:   postgresql.NewLeaveRequestRepository(db),
		Projects:        postgresql.NewProjectRepository(db),
	}, summaryService.OptionsFromConfig(cfg.Payroll))

	fileStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	scheduler := cron.NewScheduler()
	cron.NewSummaryJobs(summarySvc, fileStorage, cfg.Cron).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	summaryHandler := appHTTP.NewSummaryHandler(summarySvc, fileStorage, cfg.App.Name)
	router := appHTTP.NewRouter(cfg.App, logger, summaryHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
