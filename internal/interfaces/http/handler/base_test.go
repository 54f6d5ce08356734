package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apptrace "github.com/foodtrace/backend/internal/application/traceability"
	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/foodtrace/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestGetCompanyID(t *testing.T) {
	t.Run("reads company from context", func(t *testing.T) {
		c, _ := newTestContext()
		id := uuid.New()
		c.Set(middleware.CompanyIDKey, id.String())

		got, err := getCompanyID(c)
		assert.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("falls back to header", func(t *testing.T) {
		c, _ := newTestContext()
		id := uuid.New()
		c.Request.Header.Set(middleware.CompanyHeaderKey, id.String())

		got, err := getCompanyID(c)
		assert.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("errors when absent", func(t *testing.T) {
		c, _ := newTestContext()

		_, err := getCompanyID(c)
		assert.Error(t, err)
	})
}

func TestHandleDomainError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("maps not found to 404", func(t *testing.T) {
		c, w := newTestContext()
		h.HandleDomainError(c, shared.NewDomainError("NOT_FOUND", "lot not found"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
	})

	t.Run("maps insufficient stock to 422", func(t *testing.T) {
		c, w := newTestContext()
		h.HandleDomainError(c, shared.NewDomainError("INSUFFICIENT_STOCK", "available 10 KG, requested 25 KG"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_INSUFFICIENT_STOCK")
	})

	t.Run("maps concurrency conflict to 409", func(t *testing.T) {
		c, w := newTestContext()
		h.HandleDomainError(c, shared.ErrConcurrencyConflict)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("renders every validation finding", func(t *testing.T) {
		c, w := newTestContext()
		failure := &apptrace.ValidationFailedError{
			Issues: []traceability.KDEValidationIssue{
				{Field: "harvest_date", Severity: traceability.KDESeverityError, Message: "Required key data element is missing"},
				{Field: "cooling_temperature", Severity: traceability.KDESeverityError, Message: "Value 55 is outside range [-20, 40]"},
			},
		}
		h.HandleDomainError(c, failure)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "harvest_date")
		assert.Contains(t, w.Body.String(), "cooling_temperature")
		assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
	})

	t.Run("unknown errors become 500", func(t *testing.T) {
		c, w := newTestContext()
		h.HandleDomainError(c, errors.New("connection reset"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}
