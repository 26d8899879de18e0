package cron

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sitecrew/workforce-backend-go/internal/config"
	domain "github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/export"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/storage"
	summarysvc "github.com/sitecrew/workforce-backend-go/internal/service/summary"
)

const MonthlySummaryJobName = "monthly_summary_generation"

// SummaryJobs generates last month's summaries once a month and files the
// register export.
type SummaryJobs struct {
	summaryService domain.SummaryService
	storage        storage.FileStorage
	cfg            config.CronConfig
	now            func() time.Time

	mu      sync.Mutex
	lastRun string
}

func NewSummaryJobs(summaryService domain.SummaryService, fileStorage storage.FileStorage, cfg config.CronConfig) *SummaryJobs {
	return &SummaryJobs{
		summaryService: summaryService,
		storage:        fileStorage,
		cfg:            cfg,
		now:            time.Now,
	}
}

func (j *SummaryJobs) RegisterJobs(scheduler *Scheduler) {
	if !j.cfg.SummaryEnabled {
		slog.Info("Cron job disabled", "name", MonthlySummaryJobName)
		return
	}
	scheduler.AddJob(MonthlySummaryJobName, time.Hour, j.GenerateMonthlySummaries)
}

// GenerateMonthlySummaries runs only during the configured day and hour (UTC)
// and at most once per period. A period whose register is already in storage
// is not run again.
func (j *SummaryJobs) GenerateMonthlySummaries(ctx context.Context) error {
	now := j.now().UTC()
	if now.Day() != j.cfg.SummaryDay || now.Hour() != j.cfg.SummaryHour {
		return nil
	}

	month, year := summarysvc.PreviousPeriod(now)
	period := fmt.Sprintf("%04d-%02d", year, month)

	j.mu.Lock()
	if j.lastRun == period {
		j.mu.Unlock()
		return nil
	}
	j.lastRun = period
	j.mu.Unlock()

	// a filed register means an earlier process already ran this period
	filed, err := j.storage.Exists(ctx, export.RegisterKey(month, year))
	if err != nil {
		j.resetLastRun(period)
		return fmt.Errorf("failed to check summary register: %w", err)
	}
	if filed {
		slog.Info("Cron: Monthly summary register already filed, skipping", "month", month, "year", year)
		return nil
	}

	slog.Info("Cron: Starting monthly summary generation", "month", month, "year", year)

	report, err := j.summaryService.GenerateBatch(ctx, month, year)
	if err != nil {
		j.resetLastRun(period)
		return fmt.Errorf("failed to generate monthly summaries: %w", err)
	}

	key, err := j.ExportRegister(ctx, month, year)
	if err != nil {
		j.resetLastRun(period)
		return err
	}

	slog.Info("Cron: Monthly summary generation finished",
		"run_id", report.RunID, "total", report.Total, "succeeded", report.Succeeded,
		"skipped_approved", report.SkippedApproved, "resolution_errors", report.ResolutionErrors,
		"failed", report.Failed, "export", key)
	return nil
}

// ExportRegister writes the XLSX register of every summary in the period to
// storage and returns its key.
func (j *SummaryJobs) ExportRegister(ctx context.Context, month, year int) (string, error) {
	summaries, err := export.CollectPeriod(ctx, j.summaryService, month, year)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := export.WriteSummaryRegister(&buf, summaries); err != nil {
		return "", fmt.Errorf("failed to build summary register: %w", err)
	}

	key, err := j.storage.Save(ctx, export.RegisterKey(month, year), &buf)
	if err != nil {
		return "", fmt.Errorf("failed to store summary register: %w", err)
	}
	return key, nil
}

func (j *SummaryJobs) resetLastRun(period string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastRun == period {
		j.lastRun = ""
	}
}
