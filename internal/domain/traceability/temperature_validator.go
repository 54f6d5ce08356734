package traceability

import (
	"fmt"
	"strings"

	"github.com/foodtrace/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// Physical sanity bounds for a recorded temperature, in Celsius. Values
// outside this window are sensor or data-entry faults, rejected before any
// category rule is consulted.
var (
	TempSanityMin = decimal.NewFromInt(-20)
	TempSanityMax = decimal.NewFromInt(40)
)

// NearLimitMargin is how close to the category ceiling a passing temperature
// can be before a non-blocking warning is raised.
var NearLimitMargin = decimal.NewFromInt(2)

// CategoryTempLimit is one row of the category ceiling table
type CategoryTempLimit struct {
	Category   string
	Keywords   []string
	MaxCelsius decimal.Decimal
}

// defaultCategoryLimits is the built-in category ceiling table. Resolution
// matches on category name first, then on product-name keywords, then falls
// back to the generic produce ceiling. Adding a category is a data change
// here, not a code change in the validator.
var defaultCategoryLimits = []CategoryTempLimit{
	{Category: "leafy_greens", Keywords: []string{"lettuce", "spinach", "romaine", "kale", "arugula", "greens"}, MaxCelsius: decimal.NewFromInt(5)},
	{Category: "seafood", Keywords: []string{"fish", "salmon", "tuna", "shrimp", "crab", "oyster", "shellfish"}, MaxCelsius: decimal.NewFromInt(2)},
	{Category: "dairy", Keywords: []string{"milk", "cheese", "yogurt", "butter", "cream"}, MaxCelsius: decimal.NewFromInt(4)},
	{Category: "fresh_cut", Keywords: []string{"fresh-cut", "cut fruit", "cut vegetable", "sliced"}, MaxCelsius: decimal.NewFromInt(5)},
	{Category: "sprouts", Keywords: []string{"sprout", "microgreen"}, MaxCelsius: decimal.NewFromInt(5)},
	{Category: "ready_to_eat", Keywords: []string{"ready-to-eat", "rte", "deli", "salad"}, MaxCelsius: decimal.NewFromInt(5)},
	{Category: "eggs", Keywords: []string{"egg"}, MaxCelsius: decimal.NewFromInt(7)},
}

// genericProduceMax is the fallback ceiling when no category row matches
var genericProduceMax = decimal.NewFromInt(7)

// TempValidationResult reports the outcome of a temperature check
type TempValidationResult struct {
	Valid     bool                 `json:"valid"`
	Errors    []KDEValidationIssue `json:"errors"`
	Warnings  []KDEValidationIssue `json:"warnings"`
	Category  string               `json:"category,omitempty"`
	LimitUsed *decimal.Decimal     `json:"limitUsed,omitempty"`
}

// TemperatureValidator enforces cold-chain rules on cooling and initial
// packing events. The ceiling table is injected so deployments can extend
// it without touching the validation logic.
type TemperatureValidator struct {
	limits []CategoryTempLimit
}

// NewTemperatureValidator creates a validator with the built-in ceiling table
func NewTemperatureValidator() *TemperatureValidator {
	return NewTemperatureValidatorWithLimits(defaultCategoryLimits)
}

// NewTemperatureValidatorWithLimits creates a validator with a custom ceiling table
func NewTemperatureValidatorWithLimits(limits []CategoryTempLimit) *TemperatureValidator {
	return &TemperatureValidator{limits: limits}
}

// Validate checks a recorded temperature for the given event type and
// product. For event types that require temperature, a nil value is a hard
// failure. A product-level cold chain override takes precedence over the
// category table. Exceeding the ceiling is a food safety violation; landing
// within NearLimitMargin of it passes with a warning.
func (v *TemperatureValidator) Validate(eventType EventType, product *catalog.Product, temperature *decimal.Decimal) TempValidationResult {
	result := TempValidationResult{
		Valid:    true,
		Errors:   []KDEValidationIssue{},
		Warnings: []KDEValidationIssue{},
	}

	if !eventType.RequiresTemperature() {
		if temperature != nil {
			result.Warnings = append(result.Warnings, KDEValidationIssue{
				Field: "temperature", Label: "Temperature", Severity: KDESeverityInfo,
				Message: fmt.Sprintf("Temperature recorded on a %s event is stored but not checked", eventType),
			})
		}
		return result
	}

	if temperature == nil {
		result.Valid = false
		result.Errors = append(result.Errors, KDEValidationIssue{
			Field: "temperature", Label: "Temperature", Severity: KDESeverityError,
			Message: fmt.Sprintf("Temperature is mandatory for %s events and was not provided", eventType),
		})
		return result
	}

	temp := *temperature
	if temp.LessThan(TempSanityMin) || temp.GreaterThan(TempSanityMax) {
		result.Valid = false
		result.Errors = append(result.Errors, KDEValidationIssue{
			Field: "temperature", Label: "Temperature", Severity: KDESeverityError,
			Message: fmt.Sprintf("Temperature %s°C is outside the plausible range %s°C to %s°C; check the sensor reading or data entry", temp, TempSanityMin, TempSanityMax),
		})
		return result
	}

	category, limit := v.resolveLimit(product)
	result.Category = category
	result.LimitUsed = &limit

	if temp.GreaterThan(limit) {
		result.Valid = false
		result.Errors = append(result.Errors, KDEValidationIssue{
			Field: "temperature", Label: "Temperature", Severity: KDESeverityError,
			Message: fmt.Sprintf("Temperature %s°C exceeds the %s°C maximum for %s; this is a food safety violation and the event cannot be submitted", temp, limit, categoryDisplay(category)),
		})
		return result
	}

	if limit.Sub(temp).LessThanOrEqual(NearLimitMargin) {
		result.Warnings = append(result.Warnings, KDEValidationIssue{
			Field: "temperature", Label: "Temperature", Severity: KDESeverityWarning,
			Message: fmt.Sprintf("Temperature %s°C is within %s°C of the %s°C maximum for %s; review the cold chain", temp, NearLimitMargin, limit, categoryDisplay(category)),
		})
	}

	return result
}

// resolveLimit finds the ceiling for a product. A product-level cold chain
// maximum wins; otherwise the category table is matched by category name and
// then product-name keywords, ending at the generic produce fallback.
func (v *TemperatureValidator) resolveLimit(product *catalog.Product) (string, decimal.Decimal) {
	if product != nil && product.ColdChainMaxTemp != nil {
		return "product_override", *product.ColdChainMaxTemp
	}

	if product != nil {
		category := strings.ToLower(strings.TrimSpace(product.Category))
		for _, row := range v.limits {
			if row.Category == category {
				return row.Category, row.MaxCelsius
			}
		}

		name := strings.ToLower(product.Name)
		for _, row := range v.limits {
			for _, keyword := range row.Keywords {
				if strings.Contains(name, keyword) {
					return row.Category, row.MaxCelsius
				}
			}
		}
	}

	return "general_produce", genericProduceMax
}

func categoryDisplay(category string) string {
	return strings.ReplaceAll(category, "_", " ")
}
