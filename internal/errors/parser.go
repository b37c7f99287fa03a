package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL integrity constraint violation codes
const (
	PgErrUniqueViolation     = "23505"
	PgErrForeignKeyViolation = "23503"
	PgErrNotNullViolation    = "23502"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique-index conflict from any
// supported driver. Batch importers use it to tell duplicates from failures.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == PgErrUniqueViolation {
		return true
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint")
}

// BodyTooLarge maps a read cut short by http.MaxBytesReader to a 413
func BodyTooLarge(err error) (*AppError, bool) {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return nil, false
	}
	return Wrap(err, http.StatusRequestEntityTooLarge, RequestBodyTooLarge,
		fmt.Sprintf("Request body exceeds the %d byte limit", tooLarge.Limit)), true
}

// ParseError converts any error into an AppError with a client-safe message.
// context names the operation, e.g. "fetch part" or "create order".
func ParseError(err error, context string) *AppError {
	if err == nil {
		return New(http.StatusInternalServerError, InternalServerError, "Internal Server Error")
	}

	if appErr, ok := As(err); ok {
		return appErr
	}

	if appErr, ok := BodyTooLarge(err); ok {
		return appErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(err, http.StatusNotFound, ResourceNotFound, getNotFoundMessage(context))
	}

	if IsUniqueViolation(err) {
		return parseDuplicateKeyError(err)
	}

	errLower := strings.ToLower(err.Error())

	if pgCode(err) == PgErrForeignKeyViolation || errors.Is(err, gorm.ErrForeignKeyViolated) ||
		strings.Contains(errLower, "foreign key constraint") {
		return Wrap(err, http.StatusBadRequest, ResourceConflict, "Referenced record does not exist or is still in use")
	}

	if pgCode(err) == PgErrNotNullViolation || strings.Contains(errLower, "not null constraint") ||
		strings.Contains(errLower, "violates not-null constraint") {
		return Wrap(err, http.StatusBadRequest, ValidationRequired, "A required field is missing")
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return Wrap(err, http.StatusInternalServerError, InternalDatabaseError, "Database is unavailable, please retry shortly")
	}

	return Wrap(err, http.StatusInternalServerError, InternalServerError, getDefaultErrorMessage(context))
}

func parseDuplicateKeyError(err error) *AppError {
	errLower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errLower, "idx_parts_item_part") ||
		(strings.Contains(errLower, "parts.item_id") && strings.Contains(errLower, "parts.part_id")):
		return Wrap(err, http.StatusBadRequest, PartAlreadyExists, "Part with this item_id and part_id already exists")
	case strings.Contains(errLower, "set_name"):
		return Wrap(err, http.StatusBadRequest, SetNameExists, "A Lego set with this name already exists")
	case strings.Contains(errLower, "order_id"):
		return Wrap(err, http.StatusBadRequest, OrderIDExists, "An order with this orderId already exists")
	}

	return Wrap(err, http.StatusBadRequest, ResourceAlreadyExists, "Record already exists")
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "part"):
		return "Part not found"
	case strings.Contains(contextLower, "set"):
		return "Lego set not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	}
	return "Requested record not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create") || strings.Contains(contextLower, "import"):
		return "Failed to save, please retry shortly"
	case strings.Contains(contextLower, "update"):
		return "Failed to update, please retry shortly"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete, please retry shortly"
	}
	return "Internal Server Error"
}
