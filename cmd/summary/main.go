// Command summary generates monthly summaries from the command line, either
// for one employee (-employee) or for every employee in a batch.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitecrew/workforce-backend-go/internal/config"
	"github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/cron"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/database"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/logging"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/storage"
	"github.com/sitecrew/workforce-backend-go/internal/repository/postgresql"
	summaryService "github.com/sitecrew/workforce-backend-go/internal/service/summary"
	"github.com/sitecrew/workforce-backend-go/migrations"
)

const (
	exitOK       = 0
	exitFatal    = 1
	exitFailures = 2
)

type options struct {
	month    int
	year     int
	employee string
	export   bool
	migrate  bool
}

func parseArgs(args []string, now time.Time, stderr io.Writer) (options, error) {
	defMonth, defYear := summaryService.PreviousPeriod(now)

	var opts options
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.month, "month", defMonth, "period month (1-12), defaults to the previous month")
	fs.IntVar(&opts.year, "year", defYear, "period year, defaults to the year of the previous month")
	fs.StringVar(&opts.employee, "employee", "", "employee ID or full name; omit to run the batch")
	fs.BoolVar(&opts.export, "export", false, "write the XLSX register for the period to storage")
	fs.BoolVar(&opts.migrate, "migrate", false, "apply database migrations first")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if err := summary.ValidatePeriod(opts.month, opts.year); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, time.Now(), stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "summary:", err)
		return exitFatal
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "summary: loading config:", err)
		return exitFatal
	}
	slog.SetDefault(logging.New(stderr, cfg.App))

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return exitFatal
	}
	defer db.Close()

	if opts.migrate {
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			slog.Error("Failed to apply migrations", "error", err)
			return exitFatal
		}
	}

	svc := summaryService.NewSummaryService(summaryService.Repositories{
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

	code := exitOK
	if opts.employee != "" {
		result, err := svc.GenerateForEmployeeRef(ctx, opts.employee, opts.month, opts.year)
		if err != nil {
			slog.Error("Monthly summary generation failed", "employee", opts.employee, "error", err)
			return exitFatal
		}
		if err := writeJSON(stdout, summary.GenerateSummaryResponse{
			Outcome: string(result.Outcome),
			Summary: summary.NewSummaryResponse(result.Summary),
		}); err != nil {
			return exitFatal
		}
	} else {
		report, err := svc.GenerateBatch(ctx, opts.month, opts.year)
		if err != nil {
			slog.Error("Monthly summary batch failed", "error", err)
			return exitFatal
		}
		if err := writeJSON(stdout, report); err != nil {
			return exitFatal
		}
		if report.HasFailures() {
			code = exitFailures
		}
	}

	if opts.export {
		fileStorage, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			slog.Error("Failed to initialize storage", "error", err)
			return exitFatal
		}
		key, err := cron.NewSummaryJobs(svc, fileStorage, cfg.Cron).ExportRegister(ctx, opts.month, opts.year)
		if err != nil {
			slog.Error("Failed to export summary register", "error", err)
			return exitFatal
		}
		slog.Info("Summary register exported", "key", key, "url", fileStorage.URL(key))
	}
	return code
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to encode output", "error", err)
		return err
	}
	return nil
}
