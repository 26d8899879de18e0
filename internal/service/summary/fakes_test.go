package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/workforce-backend-go/internal/domain/attendance"
	"github.com/sitecrew/workforce-backend-go/internal/domain/employee"
	"github.com/sitecrew/workforce-backend-go/internal/domain/leave"
	domain "github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/domain/timesheet"
	"github.com/sitecrew/workforce-backend-go/internal/domain/user"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/validator"
)

// memStore is an in-memory stand-in for monthly_summaries and
// invoice_sequences. Transactions are serialized and rolled back by restoring
// a snapshot, which mirrors the row locks the SQL implementation relies on.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	summaries map[string]domain.MonthlySummary
	sequences map[string]int
	nextID    int

	conflictsLeft int
	upsertErr     error
	upserts       int
}

func newMemStore() *memStore {
	return &memStore{
		summaries: make(map[string]domain.MonthlySummary),
		sequences: make(map[string]int),
	}
}

func periodKey(employeeID string, month, year int) string {
	return fmt.Sprintf("%s|%02d|%04d", employeeID, month, year)
}

func bucketKey(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func (m *memStore) put(s domain.MonthlySummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		m.nextID++
		s.ID = fmt.Sprintf("summary-%d", m.nextID)
	}
	m.summaries[periodKey(s.EmployeeID, s.PeriodMonth, s.PeriodYear)] = s
}

func (m *memStore) get(employeeID string, month, year int) (domain.MonthlySummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[periodKey(employeeID, month, year)]
	return s, ok
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.summaries)
}

// ===== Transactor =====

type memTransactor struct {
	store *memStore
}

func (t *memTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	t.store.mu.Lock()
	summaries := make(map[string]domain.MonthlySummary, len(t.store.summaries))
	for k, v := range t.store.summaries {
		summaries[k] = v
	}
	sequences := make(map[string]int, len(t.store.sequences))
	for k, v := range t.store.sequences {
		sequences[k] = v
	}
	t.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.store.mu.Lock()
		t.store.summaries = summaries
		t.store.sequences = sequences
		t.store.mu.Unlock()
		return err
	}
	return nil
}

// ===== Summary repository =====

type memSummaryRepo struct {
	store *memStore
}

func (r *memSummaryRepo) GetByID(ctx context.Context, id string) (domain.MonthlySummary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.summaries {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.MonthlySummary{}, domain.ErrSummaryNotFound
}

func (r *memSummaryRepo) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (domain.MonthlySummary, error) {
	s, ok := r.store.get(employeeID, month, year)
	if !ok {
		return domain.MonthlySummary{}, domain.ErrSummaryNotFound
	}
	return s, nil
}

func (r *memSummaryRepo) GetByEmployeePeriodForUpdate(ctx context.Context, employeeID string, month, year int) (domain.MonthlySummary, error) {
	return r.GetByEmployeePeriod(ctx, employeeID, month, year)
}

func (r *memSummaryRepo) Upsert(ctx context.Context, s domain.MonthlySummary) (domain.MonthlySummary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.upserts++
	if r.store.upsertErr != nil {
		return domain.MonthlySummary{}, r.store.upsertErr
	}
	if r.store.conflictsLeft > 0 {
		r.store.conflictsLeft--
		return domain.MonthlySummary{}, fmt.Errorf("%w: simulated", domain.ErrSequenceConflict)
	}

	key := periodKey(s.EmployeeID, s.PeriodMonth, s.PeriodYear)
	existing, ok := r.store.summaries[key]
	if ok && existing.Status == domain.StatusApproved {
		return domain.MonthlySummary{}, domain.ErrApprovedLocked
	}
	if s.InvoiceNumber != nil {
		for k, other := range r.store.summaries {
			if k != key && other.InvoiceNumber != nil && *other.InvoiceNumber == *s.InvoiceNumber {
				return domain.MonthlySummary{}, fmt.Errorf("%w: %s", domain.ErrSequenceConflict, *s.InvoiceNumber)
			}
		}
	}

	now := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	if ok {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
	} else {
		r.store.nextID++
		s.ID = fmt.Sprintf("summary-%d", r.store.nextID)
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	s.Status = domain.StatusDraft
	r.store.summaries[key] = s
	return s, nil
}

func (r *memSummaryRepo) List(ctx context.Context, filter domain.SummaryFilter) ([]domain.MonthlySummary, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var list []domain.MonthlySummary
	for _, s := range r.store.summaries {
		if filter.Month != nil && s.PeriodMonth != *filter.Month {
			continue
		}
		if filter.Year != nil && s.PeriodYear != *filter.Year {
			continue
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, int64(len(list)), nil
}

// ===== Invoice sequence repository =====

type memSequenceRepo struct {
	store *memStore
	err   error
}

func (r *memSequenceRepo) Next(ctx context.Context, month, year int) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	highest := r.store.sequences[bucketKey(month, year)]
	for _, s := range r.store.summaries {
		if s.PeriodMonth == month && s.PeriodYear == year && s.InvoiceSeq != nil && *s.InvoiceSeq > highest {
			highest = *s.InvoiceSeq
		}
	}
	r.store.sequences[bucketKey(month, year)] = highest + 1
	return highest + 1, nil
}

// ===== Source repositories =====

type memEmployeeRepo struct {
	employees []employee.Employee
	listErr   error
}

func (r *memEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *memEmployeeRepo) FindByFullName(ctx context.Context, fullName string) ([]employee.Employee, error) {
	var matches []employee.Employee
	for _, e := range r.employees {
		if strings.EqualFold(strings.TrimSpace(e.FullName), strings.TrimSpace(fullName)) {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

func (r *memEmployeeRepo) List(ctx context.Context) ([]employee.Employee, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.employees, nil
}

type memUserRepo struct {
	users []user.User
	err   error
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if r.err != nil {
		return user.User{}, r.err
	}
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *memUserRepo) GetByNormalizedEmail(ctx context.Context, email string) (user.User, error) {
	if r.err != nil {
		return user.User{}, r.err
	}
	for _, u := range r.users {
		if validator.NormalizeEmail(u.Email) == validator.NormalizeEmail(email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

type memAttendanceRepo struct {
	records []attendance.Attendance
	err     error
}

func (r *memAttendanceRepo) CountDistinctCheckInDays(ctx context.Context, userID string, from, to time.Time) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	days := make(map[time.Time]struct{})
	for _, a := range r.records {
		if a.UserID == userID && !a.CheckInTime.Before(from) && a.CheckInTime.Before(to) {
			days[a.CheckInDate()] = struct{}{}
		}
	}
	return len(days), nil
}

type memTimesheetRepo struct {
	sheets []timesheet.Timesheet
	err    error
}

func (r *memTimesheetRepo) ListByEmployeeInRange(ctx context.Context, employeeID string, from, to time.Time, statuses []timesheet.ApprovalStatus) ([]timesheet.Timesheet, error) {
	if r.err != nil {
		return nil, r.err
	}
	var list []timesheet.Timesheet
	for _, ts := range r.sheets {
		if ts.EmployeeID != employeeID || ts.WorkDate.Before(from) || ts.WorkDate.After(to) {
			continue
		}
		for _, s := range statuses {
			if ts.ApprovalStatus == s {
				list = append(list, ts)
				break
			}
		}
	}
	return list, nil
}

type memLeaveRepo struct {
	requests []leave.LeaveRequest
	err      error
}

func (r *memLeaveRepo) ListOverlapping(ctx context.Context, employeeID string, status leave.LeaveRequestStatus, from, to time.Time) ([]leave.LeaveRequest, error) {
	if r.err != nil {
		return nil, r.err
	}
	var list []leave.LeaveRequest
	for _, lr := range r.requests {
		if lr.EmployeeID == employeeID && lr.Status == status && lr.Overlaps(from, to) {
			list = append(list, lr)
		}
	}
	return list, nil
}

type memProjectRepo struct {
	names map[string]string
}

func (r *memProjectRepo) GetNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, id := range ids {
		if name, ok := r.names[id]; ok {
			result[id] = name
		}
	}
	return result, nil
}

// ===== Fixture =====

type fixture struct {
	store       *memStore
	employees   *memEmployeeRepo
	users       *memUserRepo
	attendances *memAttendanceRepo
	timesheets  *memTimesheetRepo
	leaves      *memLeaveRepo
	projects    *memProjectRepo
	sequences   *memSequenceRepo
	service     *SummaryServiceImpl
}

func newFixture(opts Options) *fixture {
	store := newMemStore()
	f := &fixture{
		store:       store,
		employees:   &memEmployeeRepo{},
		users:       &memUserRepo{},
		attendances: &memAttendanceRepo{},
		timesheets:  &memTimesheetRepo{},
		leaves:      &memLeaveRepo{},
		projects:    &memProjectRepo{names: map[string]string{}},
		sequences:   &memSequenceRepo{store: store},
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = time.Millisecond
	}
	f.service = newSummaryService(Repositories{
		Transactor:      &memTransactor{store: store},
		Summaries:       &memSummaryRepo{store: store},
		InvoiceSequence: f.sequences,
		Employees:       f.employees,
		Users:           f.users,
		Attendances:     f.attendances,
		Timesheets:      f.timesheets,
		LeaveRequests:   f.leaves,
		Projects:        f.projects,
	}, opts)
	return f
}

// addHourlyWorker registers an employee linked to a user with the given
// hourly rate and returns both IDs.
func (f *fixture) addHourlyWorker(id, name string, rate int64) (employeeID, userID string) {
	userID = "user-" + id
	r := decimal.NewFromInt(rate)
	f.users.users = append(f.users.users, user.User{ID: userID, Email: strings.ToLower(name) + "@site.test"})
	f.employees.employees = append(f.employees.employees, employee.Employee{
		ID:          id,
		UserID:      &userID,
		FullName:    name,
		PaymentType: employee.PaymentTypeHourly,
		HourlyRate:  &r,
	})
	return id, userID
}

func (f *fixture) addTimesheet(employeeID, date string, hours, ot float64, status timesheet.ApprovalStatus, projectID *string) {
	f.timesheets.sheets = append(f.timesheets.sheets, timesheet.Timesheet{
		ID:             fmt.Sprintf("ts-%d", len(f.timesheets.sheets)+1),
		EmployeeID:     employeeID,
		WorkDate:       mustDate(date),
		TotalHours:     decimal.NewFromFloat(hours),
		OvertimeHours:  decimal.NewFromFloat(ot),
		ApprovalStatus: status,
		ProjectID:      projectID,
	})
}

func (f *fixture) addCheckIn(userID, ts string) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	f.attendances.records = append(f.attendances.records, attendance.Attendance{
		ID:          fmt.Sprintf("att-%d", len(f.attendances.records)+1),
		UserID:      userID,
		CheckInTime: t,
	})
}

func mustDate(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }

var errBoom = errors.New("boom")
