package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/database"
	"github.com/sitecrew/workforce-backend-go/migrations"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds a migrated, empty test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL, applies migrations and
// truncates every table. The test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 30})
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx, migrations.FS))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	return setup
}

// TruncateAllTables removes all rows from the workforce and summary tables.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"monthly_summaries",
		"invoice_sequences",
		"leave_requests",
		"timesheets",
		"attendances",
		"projects",
		"employees",
		"users",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *TestDatabaseSetup) CreateUser(t *testing.T, email string) string {
	t.Helper()
	var id string
	err := s.DB.QueryRow(context.Background(),
		`INSERT INTO users (email) VALUES ($1) RETURNING id`, email).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateHourlyEmployee inserts an hourly employee. userID and email may be nil.
func (s *TestDatabaseSetup) CreateHourlyEmployee(t *testing.T, name string, userID, email *string, rate int64) string {
	t.Helper()
	var id string
	err := s.DB.QueryRow(context.Background(), `
		INSERT INTO employees (user_id, email, full_name, payment_type, hourly_rate)
		VALUES ($1, $2, $3, 'hourly', $4)
		RETURNING id
	`, userID, email, name, decimal.NewFromInt(rate)).Scan(&id)
	require.NoError(t, err)
	return id
}

func (s *TestDatabaseSetup) CreateProject(t *testing.T, name string) string {
	t.Helper()
	var id string
	err := s.DB.QueryRow(context.Background(),
		`INSERT INTO projects (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func (s *TestDatabaseSetup) AddCheckIn(t *testing.T, userID string, at time.Time) {
	t.Helper()
	_, err := s.DB.Exec(context.Background(),
		`INSERT INTO attendances (user_id, check_in_time) VALUES ($1, $2)`, userID, at)
	require.NoError(t, err)
}

func (s *TestDatabaseSetup) AddTimesheet(t *testing.T, employeeID, date string, hours, overtime string, status string, projectID *string) {
	t.Helper()
	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO timesheets (employee_id, work_date, total_hours, overtime_hours, approval_status, project_id)
		VALUES ($1, $2::date, $3::numeric, $4::numeric, $5, $6)
	`, employeeID, date, hours, overtime, status, projectID)
	require.NoError(t, err)
}

func (s *TestDatabaseSetup) AddLeave(t *testing.T, employeeID, start, end, status, days string) {
	t.Helper()
	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO leave_requests (employee_id, start_date, end_date, status, number_of_days)
		VALUES ($1, $2::date, $3::date, $4, $5::numeric)
	`, employeeID, start, end, status, days)
	require.NoError(t, err)
}
