package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/handler/http/response"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/export"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/storage"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/validator"
)

type SummaryHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	GenerateBatch(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	ExportFiled(w http.ResponseWriter, r *http.Request)
	Invoice(w http.ResponseWriter, r *http.Request)
}

type summaryHandlerImpl struct {
	summaryService summary.SummaryService
	storage        storage.FileStorage
	issuer         string
}

// NewSummaryHandler builds the monthly summary handler. fileStorage holds the
// registers filed by the scheduled job; issuer is printed on invoices.
func NewSummaryHandler(summaryService summary.SummaryService, fileStorage storage.FileStorage, issuer string) SummaryHandler {
	return &summaryHandlerImpl{summaryService: summaryService, storage: fileStorage, issuer: issuer}
}

// ========== GENERATION ==========

func (h *summaryHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req summary.GenerateSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.summaryService.GenerateForEmployeeRef(r.Context(), req.EmployeeID, req.Month, req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Monthly summary generated"
	if result.Outcome == summary.OutcomeSkippedApproved {
		message = "Monthly summary is approved and was left unchanged"
	}
	response.SuccessWithMessage(w, message, summary.GenerateSummaryResponse{
		Outcome: string(result.Outcome),
		Summary: summary.NewSummaryResponse(result.Summary),
	})
}

func (h *summaryHandlerImpl) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req summary.GenerateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.summaryService.GenerateBatch(r.Context(), req.Month, req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}

// ========== QUERIES ==========

func (h *summaryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter summary.SummaryFilter
	var errs validator.ValidationErrors

	intParam := func(name string) *int {
		raw := q.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: name, Message: "must be an integer"})
			return nil
		}
		return &v
	}

	filter.Month = intParam("month")
	filter.Year = intParam("year")
	if page := intParam("page"); page != nil {
		filter.Page = *page
	}
	if limit := intParam("limit"); limit != nil {
		filter.Limit = *limit
	}
	if status := q.Get("status"); status != "" {
		filter.Status = &status
	}
	if employeeID := q.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	list, total, err := h.summaryService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter.ApplyDefaults()
	response.SuccessWithMeta(w, summary.NewSummaryResponses(list), response.NewMeta(filter.Page, filter.Limit, total))
}

func (h *summaryHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Summary ID is required", nil)
		return
	}

	result, err := h.summaryService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary.NewSummaryResponse(result))
}

// ========== DOWNLOADS ==========

// periodQuery reads the required month and year query parameters, writing the
// error response itself when they are missing or invalid.
func periodQuery(w http.ResponseWriter, r *http.Request) (month, year int, ok bool) {
	month, err1 := strconv.Atoi(r.URL.Query().Get("month"))
	year, err2 := strconv.Atoi(r.URL.Query().Get("year"))
	if err1 != nil || err2 != nil {
		response.BadRequest(w, "month and year query parameters are required", nil)
		return 0, 0, false
	}
	if err := summary.ValidatePeriod(month, year); err != nil {
		response.HandleError(w, err)
		return 0, 0, false
	}
	return month, year, true
}

// Export builds the register from the current summaries.
func (h *summaryHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodQuery(w, r)
	if !ok {
		return
	}

	summaries, err := export.CollectPeriod(r.Context(), h.summaryService, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSummaryRegister(&buf, summaries); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, export.XLSXContentType, export.RegisterFileName(month, year), &buf)
}

// ExportFiled serves the register the scheduled job stored for the period.
func (h *summaryHandlerImpl) ExportFiled(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodQuery(w, r)
	if !ok {
		return
	}

	file, err := h.storage.Open(r.Context(), export.RegisterKey(month, year))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer file.Close()

	response.Attachment(w, export.XLSXContentType, export.RegisterFileName(month, year), file)
}

func (h *summaryHandlerImpl) Invoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Summary ID is required", nil)
		return
	}

	result, err := h.summaryService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteInvoicePDF(&buf, h.issuer, result); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, export.PDFContentType, export.InvoiceFileName(result), &buf)
}
