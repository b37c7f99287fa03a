package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm translated", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"postgres code", &pgconn.PgError{Code: PgErrUniqueViolation}, true},
		{"postgres text", errors.New(`ERROR: duplicate key value violates unique constraint "idx_order_details_order_id"`), true},
		{"sqlite text", errors.New("UNIQUE constraint failed: parts.item_id, parts.part_id"), true},
		{"other postgres code", &pgconn.PgError{Code: PgErrForeignKeyViolation, Message: "fk"}, false},
		{"not found", gorm.ErrRecordNotFound, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestParseError(t *testing.T) {
	t.Run("AppError passes through", func(t *testing.T) {
		original := NotFound(PartNotFound, "Part with ID '9' not found")
		parsed := ParseError(fmt.Errorf("lookup: %w", original), "fetch part")
		assert.Same(t, original, parsed)
	})

	t.Run("record not found uses context", func(t *testing.T) {
		parsed := ParseError(gorm.ErrRecordNotFound, "fetch order")
		assert.Equal(t, http.StatusNotFound, parsed.Status)
		assert.Equal(t, "Order not found", parsed.Message)
		assert.ErrorIs(t, parsed, gorm.ErrRecordNotFound)
	})

	t.Run("duplicate is a client error", func(t *testing.T) {
		parsed := ParseError(errors.New("UNIQUE constraint failed: parts.item_id, parts.part_id"), "create part")
		assert.Equal(t, http.StatusBadRequest, parsed.Status)
		assert.Equal(t, PartAlreadyExists, parsed.Code)
	})

	t.Run("unknown is internal", func(t *testing.T) {
		parsed := ParseError(errors.New("boom"), "delete set")
		assert.Equal(t, http.StatusInternalServerError, parsed.Status)
		assert.Equal(t, "Failed to delete, please retry shortly", parsed.Message)
	})
}

func TestUpstream_SurfacesUpstreamMessage(t *testing.T) {
	err := Upstream(errors.New("bucket not found"), "Image upload failed")
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "bucket not found", err.Message)

	err = Upstream(nil, "Image upload failed")
	assert.Equal(t, "Image upload failed", err.Message)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(BadRequest("", "bad")))
	assert.Equal(t, http.StatusNotFound, StatusOf(gorm.ErrRecordNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))
}
