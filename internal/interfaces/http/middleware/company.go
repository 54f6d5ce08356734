package middleware

import (
	"net/http"
	"strings"

	"github.com/foodtrace/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys used to store company information in gin.Context
const (
	CompanyIDKey     = "company_id"
	CompanyHeaderKey = "X-Company-ID"
)

// CompanyValidator defines the interface for validating a company.
// The validator typically checks that the company exists and is active.
type CompanyValidator interface {
	ValidateCompany(companyID string) error
}

// CompanyMiddlewareConfig holds configuration for company middleware
type CompanyMiddlewareConfig struct {
	// SkipPaths are paths that don't require company context (e.g., health check)
	SkipPaths []string
	// Required determines if company context is mandatory
	Required bool
	// Validator is an optional validator to check if the company exists and is active
	Validator CompanyValidator
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultCompanyConfig returns default company middleware configuration
func DefaultCompanyConfig() CompanyMiddlewareConfig {
	return CompanyMiddlewareConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/health"},
		Required:  true,
		Validator: nil,
		Logger:    nil,
	}
}

// CompanyMiddleware extracts the company context from the X-Company-ID header.
// Every traceability resource is scoped to one company; requests without a
// company context cannot touch lot or event data.
func CompanyMiddleware() gin.HandlerFunc {
	return CompanyMiddlewareWithConfig(DefaultCompanyConfig())
}

// CompanyMiddlewareWithConfig returns company middleware with custom configuration
func CompanyMiddlewareWithConfig(cfg CompanyMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if path should be skipped
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		companyID := c.GetHeader(CompanyHeaderKey)

		// Validate company ID format if present
		if companyID != "" {
			if _, err := uuid.Parse(companyID); err != nil {
				respondUnauthorized(c, "Invalid company ID format")
				return
			}
		}

		if companyID == "" && cfg.Required {
			respondUnauthorized(c, "Company identification required")
			return
		}

		// Optional: Validate company exists and is active
		if companyID != "" && cfg.Validator != nil {
			if err := cfg.Validator.ValidateCompany(companyID); err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Company validation failed",
					zap.String("company_id", companyID),
					zap.Error(err),
				)
				respondUnauthorized(c, "Invalid or inactive company")
				return
			}
		}

		// Set company information in context
		if companyID != "" {
			c.Set(CompanyIDKey, companyID)

			// Set in request context for service layer access
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithCompanyID(ctx, log, companyID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetCompanyID retrieves the company ID from gin.Context
func GetCompanyID(c *gin.Context) string {
	if companyID, exists := c.Get(CompanyIDKey); exists {
		if id, ok := companyID.(string); ok {
			return id
		}
	}
	return ""
}

// GetCompanyUUID retrieves the company ID as UUID from gin.Context
func GetCompanyUUID(c *gin.Context) (uuid.UUID, error) {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(companyID)
}

// OptionalCompanyMiddleware creates middleware that doesn't require a company
func OptionalCompanyMiddleware() gin.HandlerFunc {
	cfg := DefaultCompanyConfig()
	cfg.Required = false
	return CompanyMiddlewareWithConfig(cfg)
}
