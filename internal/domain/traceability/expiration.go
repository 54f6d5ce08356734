package traceability

import (
	"time"
)

// ExpiryStatus buckets a lot by days until expiry
type ExpiryStatus string

const (
	ExpiryStatusExpired      ExpiryStatus = "expired"       // past expiry
	ExpiryStatusExpiringSoon ExpiryStatus = "expiring_soon" // 0 to 7 days left
	ExpiryStatusMonitor      ExpiryStatus = "monitor"       // 8 to 30 days left
	ExpiryStatusGood         ExpiryStatus = "good"          // more than 30 days left
	ExpiryStatusExempt       ExpiryStatus = "exempt"        // no shelf life configured
)

// ExpiryAssessment is the full expiration picture for a lot
type ExpiryAssessment struct {
	ExpiryDate      *time.Time   `json:"expiryDate,omitempty"`
	DaysUntilExpiry *int         `json:"daysUntilExpiry,omitempty"`
	Status          ExpiryStatus `json:"status"`
	UsableInEvents  bool         `json:"usableInEvents"`
}

// ExpirationCalculator derives expiry dates and status buckets. All methods
// are pure; the clock is injected for testability.
type ExpirationCalculator struct {
	now func() time.Time
}

// NewExpirationCalculator creates a calculator using the wall clock
func NewExpirationCalculator() *ExpirationCalculator {
	return &ExpirationCalculator{now: time.Now}
}

// NewExpirationCalculatorAt creates a calculator with a fixed clock
func NewExpirationCalculatorAt(now func() time.Time) *ExpirationCalculator {
	return &ExpirationCalculator{now: now}
}

// ExpiryDate computes productionDate + shelfLifeDays. A nil shelf life means
// the product is exempt and no expiry exists.
func (c *ExpirationCalculator) ExpiryDate(productionDate time.Time, shelfLifeDays *int) *time.Time {
	if shelfLifeDays == nil {
		return nil
	}
	expiry := truncateToDay(productionDate).AddDate(0, 0, *shelfLifeDays)
	return &expiry
}

// Assess computes the status bucket and event-usability for an expiry date.
// Comparison is at day granularity.
func (c *ExpirationCalculator) Assess(expiryDate *time.Time) ExpiryAssessment {
	if expiryDate == nil {
		return ExpiryAssessment{Status: ExpiryStatusExempt, UsableInEvents: true}
	}

	today := truncateToDay(c.now())
	expiry := truncateToDay(*expiryDate)
	days := int(expiry.Sub(today).Hours() / 24)

	assessment := ExpiryAssessment{
		ExpiryDate:      &expiry,
		DaysUntilExpiry: &days,
	}

	switch {
	case days < 0:
		assessment.Status = ExpiryStatusExpired
	case days <= 7:
		assessment.Status = ExpiryStatusExpiringSoon
	case days <= 30:
		assessment.Status = ExpiryStatusMonitor
	default:
		assessment.Status = ExpiryStatusGood
	}

	// Expiry day itself is still usable; only strictly-past dates block
	assessment.UsableInEvents = days >= 0
	return assessment
}

// CanUseInCTE reports whether a lot with this expiry date may be consumed as
// a transformation input. The boundary is inclusive: a lot expiring today is
// still usable.
func (c *ExpirationCalculator) CanUseInCTE(expiryDate *time.Time) bool {
	return c.Assess(expiryDate).UsableInEvents
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
