package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sitecrew/workforce-backend-go/internal/domain/employee"
	"github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/storage"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var seqErr *summary.SequenceConflictError

	switch {
	// Resolution errors may wrap ErrEmployeeNotFound, so they go first
	case errors.Is(err, summary.ErrIdentityNotResolved):
		NotFoundWithCode(w, "RESOLUTION_ERROR", err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, summary.ErrAmbiguousEmployee):
		Conflict(w, err.Error())

	// Summary domain errors
	case errors.Is(err, summary.ErrSummaryNotFound):
		NotFound(w, "Monthly summary not found")
	case errors.Is(err, summary.ErrNoInvoice):
		Conflict(w, "Monthly summary has no invoice number")
	case errors.Is(err, summary.ErrApprovedLocked):
		Conflict(w, "Monthly summary is approved")
	case errors.As(err, &seqErr):
		Conflict(w, "Invoice numbering is busy, please retry")

	// Storage errors
	case errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, "File not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
