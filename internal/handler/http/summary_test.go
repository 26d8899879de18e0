package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sitecrew/workforce-backend-go/internal/config"
	"github.com/sitecrew/workforce-backend-go/internal/domain/employee"
	"github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/export"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummaryService struct {
	generate   func(ref string, month, year int) (summary.GenerateResult, error)
	batch      func(month, year int) (summary.BatchReport, error)
	summaries  map[string]summary.MonthlySummary
	lastFilter summary.SummaryFilter
}

func (f *fakeSummaryService) GenerateSummary(ctx context.Context, employeeID string, month, year int) (summary.GenerateResult, error) {
	return f.generate(employeeID, month, year)
}

func (f *fakeSummaryService) GenerateForEmployeeRef(ctx context.Context, ref string, month, year int) (summary.GenerateResult, error) {
	return f.generate(ref, month, year)
}

func (f *fakeSummaryService) GenerateBatch(ctx context.Context, month, year int) (summary.BatchReport, error) {
	return f.batch(month, year)
}

func (f *fakeSummaryService) GetByID(ctx context.Context, id string) (summary.MonthlySummary, error) {
	s, ok := f.summaries[id]
	if !ok {
		return summary.MonthlySummary{}, summary.ErrSummaryNotFound
	}
	return s, nil
}

func (f *fakeSummaryService) List(ctx context.Context, filter summary.SummaryFilter) ([]summary.MonthlySummary, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	f.lastFilter = filter
	var list []summary.MonthlySummary
	for _, s := range f.summaries {
		list = append(list, s)
	}
	return list, int64(len(list)), nil
}

func invoicedSummary() summary.MonthlySummary {
	invoice := "INV-2024-01-0001"
	name := "Ana Pereira"
	hourly := employee.PaymentTypeHourly
	return summary.MonthlySummary{
		ID:            "summary-1",
		EmployeeID:    "emp-1",
		EmployeeName:  &name,
		PeriodMonth:   1,
		PeriodYear:    2024,
		PaymentType:   &hourly,
		Subtotal:      decimal.NewFromInt(350),
		TaxPercentage: decimal.NewFromInt(10),
		TaxAmount:     decimal.NewFromInt(35),
		TotalAmount:   decimal.NewFromInt(385),
		InvoiceNumber: &invoice,
		Status:        summary.StatusDraft,
	}
}

func newTestRouter(t *testing.T, svc summary.SummaryService) http.Handler {
	t.Helper()
	fileStorage, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/files")
	require.NoError(t, err)
	return newTestRouterWithStorage(svc, fileStorage)
}

func newTestRouterWithStorage(svc summary.SummaryService, fileStorage storage.FileStorage) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.AppConfig{Name: "workforce-backend", LogLevel: "error", AllowedOrigins: []string{"http://localhost:3000"}}
	return NewRouter(cfg, logger, NewSummaryHandler(svc, fileStorage, "Sitecrew Construction"))
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		TotalItems int64 `json:"total_items"`
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
	} `json:"meta"`
}

func do(t *testing.T, h http.Handler, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestSummaryHandler_Generate(t *testing.T) {
	svc := &fakeSummaryService{generate: func(ref string, month, year int) (summary.GenerateResult, error) {
		s := invoicedSummary()
		s.EmployeeID = ref
		return summary.GenerateResult{Summary: s, Outcome: summary.OutcomeGenerated}, nil
	}}

	rec, env := do(t, newTestRouter(t, svc), http.MethodPost, "/api/v1/monthly-summaries/generate",
		map[string]any{"employee_id": "Ana Pereira", "month": 1, "year": 2024})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var data summary.GenerateSummaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "generated", data.Outcome)
	assert.Equal(t, "Ana Pereira", data.Summary.EmployeeID)
	assert.Equal(t, "INV-2024-01-0001", *data.Summary.InvoiceNumber)
}

func TestSummaryHandler_GenerateErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		err      error
		wantCode int
		wantErr  string
	}{
		{"invalid month", map[string]any{"employee_id": "emp-1", "month": 13, "year": 2024}, nil, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"missing employee", map[string]any{"month": 1, "year": 2024}, nil, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"unknown employee", map[string]any{"employee_id": "ghost", "month": 1, "year": 2024},
			&summary.ResolutionError{EmployeeRef: "ghost", Reason: "not found", Err: employee.ErrEmployeeNotFound}, http.StatusNotFound, "RESOLUTION_ERROR"},
		{"identity not resolved", map[string]any{"employee_id": "emp-1", "month": 1, "year": 2024},
			&summary.ResolutionError{EmployeeRef: "emp-1", Reason: "no user"}, http.StatusNotFound, "RESOLUTION_ERROR"},
		{"employee not found", map[string]any{"employee_id": "emp-1", "month": 1, "year": 2024},
			employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"ambiguous", map[string]any{"employee_id": "Sam Lee", "month": 1, "year": 2024},
			fmt.Errorf("%w: twice", summary.ErrAmbiguousEmployee), http.StatusConflict, "CONFLICT"},
		{"sequence exhausted", map[string]any{"employee_id": "emp-1", "month": 1, "year": 2024},
			&summary.SequenceConflictError{Month: 1, Year: 2024, Attempts: 6, Err: summary.ErrSequenceConflict}, http.StatusConflict, "CONFLICT"},
		{"query failure", map[string]any{"employee_id": "emp-1", "month": 1, "year": 2024},
			&summary.AggregationError{Step: "timesheets", Err: io.ErrUnexpectedEOF}, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSummaryService{generate: func(string, int, int) (summary.GenerateResult, error) {
				return summary.GenerateResult{}, tt.err
			}}

			rec, env := do(t, newTestRouter(t, svc), http.MethodPost, "/api/v1/monthly-summaries/generate", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
		})
	}
}

func TestSummaryHandler_GenerateMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/monthly-summaries/generate", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()

	newTestRouter(t, &fakeSummaryService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryHandler_Batch(t *testing.T) {
	svc := &fakeSummaryService{batch: func(month, year int) (summary.BatchReport, error) {
		return summary.BatchReport{RunID: "run-1", PeriodMonth: month, PeriodYear: year, Total: 2, Succeeded: 2}, nil
	}}

	rec, env := do(t, newTestRouter(t, svc), http.MethodPost, "/api/v1/monthly-summaries/batch", map[string]any{"month": 2, "year": 2024})

	require.Equal(t, http.StatusOK, rec.Code)
	var report summary.BatchReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 2, report.PeriodMonth)
	assert.Equal(t, 2, report.Succeeded)
}

func TestSummaryHandler_ListAndGet(t *testing.T) {
	svc := &fakeSummaryService{summaries: map[string]summary.MonthlySummary{"summary-1": invoicedSummary()}}
	router := newTestRouter(t, svc)

	rec, env := do(t, router, http.MethodGet, "/api/v1/monthly-summaries?month=1&year=2024&status=DRAFT", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.TotalItems)
	assert.Equal(t, 1, env.Meta.Page)
	assert.Equal(t, 50, env.Meta.Limit)
	require.NotNil(t, svc.lastFilter.Month)
	assert.Equal(t, 1, *svc.lastFilter.Month)
	assert.Equal(t, "DRAFT", *svc.lastFilter.Status)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/monthly-summaries?month=abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, env = do(t, router, http.MethodGet, "/api/v1/monthly-summaries/summary-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got summary.SummaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "summary-1", got.ID)
	assert.Equal(t, "385", got.TotalAmount.String())

	rec, env = do(t, router, http.MethodGet, "/api/v1/monthly-summaries/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestSummaryHandler_Export(t *testing.T) {
	svc := &fakeSummaryService{summaries: map[string]summary.MonthlySummary{"summary-1": invoicedSummary()}}

	rec, _ := do(t, newTestRouter(t, svc), http.MethodGet, "/api/v1/monthly-summaries/export?month=1&year=2024", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "monthly-summaries-2024-01.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec, _ = do(t, newTestRouter(t, svc), http.MethodGet, "/api/v1/monthly-summaries/export?month=1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryHandler_ExportFiled(t *testing.T) {
	fileStorage, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/files")
	require.NoError(t, err)
	_, err = fileStorage.Save(context.Background(), export.RegisterKey(1, 2024), bytes.NewBufferString("PK filed register"))
	require.NoError(t, err)
	router := newTestRouterWithStorage(&fakeSummaryService{}, fileStorage)

	rec, _ := do(t, router, http.MethodGet, "/api/v1/monthly-summaries/export/filed?month=1&year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "monthly-summaries-2024-01.xlsx")
	assert.Equal(t, "PK filed register", rec.Body.String())

	rec, env := do(t, router, http.MethodGet, "/api/v1/monthly-summaries/export/filed?month=2&year=2024", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/monthly-summaries/export/filed?month=13&year=2024", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSummaryHandler_Invoice(t *testing.T) {
	withoutInvoice := invoicedSummary()
	withoutInvoice.ID = "summary-2"
	withoutInvoice.InvoiceNumber = nil
	svc := &fakeSummaryService{summaries: map[string]summary.MonthlySummary{
		"summary-1": invoicedSummary(),
		"summary-2": withoutInvoice,
	}}
	router := newTestRouter(t, svc)

	rec, _ := do(t, router, http.MethodGet, "/api/v1/monthly-summaries/summary-1/invoice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.PDFContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec, env := do(t, router, http.MethodGet, "/api/v1/monthly-summaries/summary-2/invoice", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, &fakeSummaryService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
