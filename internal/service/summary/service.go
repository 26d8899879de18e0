package summary

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/workforce-backend-go/internal/config"
	"github.com/sitecrew/workforce-backend-go/internal/domain/attendance"
	"github.com/sitecrew/workforce-backend-go/internal/domain/employee"
	"github.com/sitecrew/workforce-backend-go/internal/domain/leave"
	"github.com/sitecrew/workforce-backend-go/internal/domain/project"
	domain "github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/domain/timesheet"
	"github.com/sitecrew/workforce-backend-go/internal/domain/user"
)

// Options are the payroll knobs read by the generator.
type Options struct {
	TaxPercentage      decimal.Decimal
	InvoicePrefix      string
	InvoiceSeqWidth    int
	MaxSequenceRetries int
	RetryBackoff       time.Duration
	BatchConcurrency   int
}

func OptionsFromConfig(cfg config.PayrollConfig) Options {
	return Options{
		TaxPercentage:      cfg.DefaultTaxPercentage,
		InvoicePrefix:      cfg.InvoicePrefix,
		InvoiceSeqWidth:    cfg.InvoiceSeqWidth,
		MaxSequenceRetries: cfg.SequenceMaxRetries,
		BatchConcurrency:   cfg.BatchConcurrency,
	}
}

func (o Options) withDefaults() Options {
	if o.InvoicePrefix == "" {
		o.InvoicePrefix = "INV"
	}
	if o.InvoiceSeqWidth <= 0 {
		o.InvoiceSeqWidth = 4
	}
	if o.MaxSequenceRetries < 0 {
		o.MaxSequenceRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 20 * time.Millisecond
	}
	if o.BatchConcurrency <= 0 {
		o.BatchConcurrency = 1
	}
	return o
}

// Repositories groups the collaborators of the summary service.
type Repositories struct {
	Transactor      domain.Transactor
	Summaries       domain.SummaryRepository
	InvoiceSequence domain.InvoiceSequenceRepository
	Employees       employee.EmployeeRepository
	Users           user.UserRepository
	Attendances     attendance.AttendanceRepository
	Timesheets      timesheet.TimesheetRepository
	LeaveRequests   leave.LeaveRequestRepository
	Projects        project.ProjectRepository
}

type SummaryServiceImpl struct {
	tx             domain.Transactor
	summaryRepo    domain.SummaryRepository
	sequenceRepo   domain.InvoiceSequenceRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	timesheetRepo  timesheet.TimesheetRepository
	leaveRepo      leave.LeaveRequestRepository
	projectRepo    project.ProjectRepository
	resolver       *IdentityResolver
	opts           Options
	now            func() time.Time
}

func NewSummaryService(repos Repositories, opts Options) domain.SummaryService {
	return newSummaryService(repos, opts)
}

func newSummaryService(repos Repositories, opts Options) *SummaryServiceImpl {
	return &SummaryServiceImpl{
		tx:             repos.Transactor,
		summaryRepo:    repos.Summaries,
		sequenceRepo:   repos.InvoiceSequence,
		employeeRepo:   repos.Employees,
		attendanceRepo: repos.Attendances,
		timesheetRepo:  repos.Timesheets,
		leaveRepo:      repos.LeaveRequests,
		projectRepo:    repos.Projects,
		resolver:       NewIdentityResolver(repos.Users),
		opts:           opts.withDefaults(),
		now:            time.Now,
	}
}

// GetByID implements summary.SummaryService.
func (s *SummaryServiceImpl) GetByID(ctx context.Context, id string) (domain.MonthlySummary, error) {
	return s.summaryRepo.GetByID(ctx, id)
}

// List implements summary.SummaryService.
func (s *SummaryServiceImpl) List(ctx context.Context, filter domain.SummaryFilter) ([]domain.MonthlySummary, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	filter.ApplyDefaults()
	return s.summaryRepo.List(ctx, filter)
}
