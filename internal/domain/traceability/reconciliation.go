package traceability

import (
	"fmt"
	"time"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceFlag classifies a reconciliation outcome
type BalanceFlag string

const (
	FlagNormal            BalanceFlag = "normal"
	FlagAbnormal          BalanceFlag = "abnormal"
	FlagCriticalViolation BalanceFlag = "critical_violation"
)

// BalanceSeverity ranks a reconciliation outcome
type BalanceSeverity string

const (
	SeverityOK       BalanceSeverity = "ok"
	SeverityMedium   BalanceSeverity = "medium"
	SeverityHigh     BalanceSeverity = "high"
	SeverityCritical BalanceSeverity = "critical"
)

// varianceThreshold is one row of the reconciliation grading table. Shortage
// deductions exceed surplus deductions at the same band: shipping goods that
// do not exist is a traceability breach, while surplus is usually an
// unrecorded receipt.
type varianceThreshold struct {
	maxPercent        decimal.Decimal
	flag              BalanceFlag
	severity          BalanceSeverity
	shortageDeduction int
	surplusDeduction  int
}

var varianceThresholds = []varianceThreshold{
	{maxPercent: decimal.NewFromInt(5), flag: FlagNormal, severity: SeverityOK, shortageDeduction: 0, surplusDeduction: 0},
	{maxPercent: decimal.NewFromInt(10), flag: FlagAbnormal, severity: SeverityMedium, shortageDeduction: 7, surplusDeduction: 5},
	{maxPercent: decimal.NewFromInt(20), flag: FlagAbnormal, severity: SeverityHigh, shortageDeduction: 12, surplusDeduction: 10},
}

// criticalThreshold applies above the last banded row
var criticalThreshold = varianceThreshold{
	flag: FlagCriticalViolation, severity: SeverityCritical, shortageDeduction: 20, surplusDeduction: 15,
}

// InventoryBalance is the full reconciliation picture for one lot. All
// quantities are in base units.
type InventoryBalance struct {
	LotID               uuid.UUID       `json:"lotId"`
	TLCCode             string          `json:"tlcCode"`
	TotalInput          decimal.Decimal `json:"totalInput"`
	TotalOutput         decimal.Decimal `json:"totalOutput"`
	TotalLoss           decimal.Decimal `json:"totalLoss"`
	Expected            decimal.Decimal `json:"expected"`
	Actual              decimal.Decimal `json:"actual"`
	Variance            decimal.Decimal `json:"variance"`
	VariancePercentage  decimal.Decimal `json:"variancePercentage"`
	IsShortage          bool            `json:"isShortage"`
	Flag                BalanceFlag     `json:"flag"`
	Severity            BalanceSeverity `json:"severity"`
	ComplianceDeduction int             `json:"complianceDeduction"`
	Recommendation      string          `json:"recommendation"`
	SnapshotKey         string          `json:"snapshotKey"`
}

// RequiresAnomaly returns true when this balance should open an anomaly record
func (b *InventoryBalance) RequiresAnomaly() bool {
	return b.Flag != FlagNormal
}

// ReconciliationEngine compares the ledger-derived stock of a lot against
// its persisted cached quantity and grades the variance.
type ReconciliationEngine struct{}

// NewReconciliationEngine creates a reconciliation engine
func NewReconciliationEngine() *ReconciliationEngine {
	return &ReconciliationEngine{}
}

// Reconcile grades a lot's cached quantity against a fresh ledger
// computation. Variance is reported, never thrown: anomalies are a
// first-class output and do not block operations.
func (e *ReconciliationEngine) Reconcile(lot *TraceabilityLot, computed *StockComputation) InventoryBalance {
	totalInput, totalOutput, totalLoss := splitBreakdown(computed.Breakdown)
	expected := computed.Value
	actual := lot.AvailableQuantity
	variance := actual.Sub(expected).Abs()
	isShortage := actual.LessThan(expected)

	var variancePct decimal.Decimal
	switch {
	case !expected.IsZero():
		variancePct = variance.Div(expected.Abs()).Mul(decimal.NewFromInt(100)).Round(2)
	case variance.IsZero():
		variancePct = decimal.Zero
	default:
		// Any variance against a zero expectation is total
		variancePct = decimal.NewFromInt(100)
	}

	threshold := gradeVariance(variancePct)
	deduction := threshold.surplusDeduction
	if isShortage {
		deduction = threshold.shortageDeduction
	}

	balance := InventoryBalance{
		LotID:               lot.ID,
		TLCCode:             lot.TLCCode,
		TotalInput:          totalInput,
		TotalOutput:         totalOutput,
		TotalLoss:           totalLoss,
		Expected:            expected,
		Actual:              actual,
		Variance:            variance,
		VariancePercentage:  variancePct,
		IsShortage:          isShortage,
		Flag:                threshold.flag,
		Severity:            threshold.severity,
		ComplianceDeduction: deduction,
		SnapshotKey:         snapshotKey(lot.ID, expected, actual),
	}
	balance.Recommendation = recommendation(&balance)
	return balance
}

func gradeVariance(pct decimal.Decimal) varianceThreshold {
	for _, row := range varianceThresholds {
		if pct.LessThanOrEqual(row.maxPercent) {
			return row
		}
	}
	return criticalThreshold
}

// splitBreakdown folds the ledger breakdown into the reconciliation view:
// inputs (production, harvest, receiving, returns), outputs (shipping), and
// loss (disposal and transformation consumption). Output and loss families
// are stored negative in the breakdown and reported positive here.
func splitBreakdown(breakdown map[string]decimal.Decimal) (input, output, loss decimal.Decimal) {
	for family, amount := range breakdown {
		switch family {
		case FamilyProduction, FamilyHarvest, FamilyReceiving, FamilyReturns:
			input = input.Add(amount)
		case FamilyShipping:
			output = output.Add(amount.Neg())
		case FamilyDisposal, FamilyConsumption:
			loss = loss.Add(amount.Neg())
		}
	}
	return input, output, loss
}

// snapshotKey identifies one (lot, expected, actual) state. Re-running
// reconciliation on unchanged inputs yields the same key, which is what
// makes anomaly emission idempotent.
func snapshotKey(lotID uuid.UUID, expected, actual decimal.Decimal) string {
	return fmt.Sprintf("%s:%s:%s", lotID, expected.StringFixed(4), actual.StringFixed(4))
}

func recommendation(b *InventoryBalance) string {
	switch {
	case b.Flag == FlagNormal:
		return "Ledger and cached quantity agree within tolerance. No action needed."
	case b.IsShortage && b.Flag == FlagCriticalViolation:
		return fmt.Sprintf("Cached stock for lot %s is %s %s below the ledger-derived value. This indicates over-shipment or unrecorded loss and is a traceability breach: freeze outbound shipments for this lot, perform a physical count, and record a correction event for the discrepancy.", b.TLCCode, b.Variance.StringFixed(4), "kg")
	case b.IsShortage:
		return fmt.Sprintf("Cached stock for lot %s is %s kg below the ledger-derived value. Check for unrecorded shipments, disposal, or processing loss and record the missing event.", b.TLCCode, b.Variance.StringFixed(4))
	case b.Flag == FlagCriticalViolation:
		return fmt.Sprintf("Cached stock for lot %s is %s kg above the ledger-derived value. Check for unrecorded receipts or duplicate receiving events and correct the history.", b.TLCCode, b.Variance.StringFixed(4))
	default:
		return fmt.Sprintf("Cached stock for lot %s differs from the ledger-derived value by %s kg (surplus). Verify recent receiving events.", b.TLCCode, b.Variance.StringFixed(4))
	}
}

// AnomalyStatus is the lifecycle state of an anomaly record
type AnomalyStatus string

const (
	AnomalyStatusOpen     AnomalyStatus = "open"
	AnomalyStatusResolved AnomalyStatus = "resolved"
)

// InventoryAnomaly is a persisted reconciliation finding. One open anomaly
// exists per (lot, variance snapshot); re-detection of the same snapshot is
// a no-op.
type InventoryAnomaly struct {
	shared.CompanyAggregateRoot
	LotID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	TLCCode            string          `gorm:"type:varchar(100);not null"`
	SnapshotKey        string          `gorm:"type:varchar(200);not null;index:idx_anomaly_snapshot"`
	Flag               BalanceFlag     `gorm:"type:varchar(30);not null"`
	Severity           BalanceSeverity `gorm:"type:varchar(20);not null;index"`
	Expected           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Actual             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Variance           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VariancePercentage decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	Deduction          int             `gorm:"not null"`
	Recommendation     string          `gorm:"type:text"`
	Status             AnomalyStatus   `gorm:"type:varchar(20);not null;default:'open';index"`
	ResolvedAt         *time.Time      `gorm:"type:timestamptz"`
	ResolutionNote     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InventoryAnomaly) TableName() string {
	return "inventory_anomalies"
}

// NewInventoryAnomaly creates an open anomaly from a graded balance
func NewInventoryAnomaly(companyID uuid.UUID, balance InventoryBalance) *InventoryAnomaly {
	anomaly := &InventoryAnomaly{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		LotID:                balance.LotID,
		TLCCode:              balance.TLCCode,
		SnapshotKey:          balance.SnapshotKey,
		Flag:                 balance.Flag,
		Severity:             balance.Severity,
		Expected:             balance.Expected,
		Actual:               balance.Actual,
		Variance:             balance.Variance,
		VariancePercentage:   balance.VariancePercentage,
		Deduction:            balance.ComplianceDeduction,
		Recommendation:       balance.Recommendation,
		Status:               AnomalyStatusOpen,
	}
	anomaly.AddDomainEvent(NewAnomalyDetectedEvent(anomaly))
	return anomaly
}

// Resolve closes the anomaly with an operator note
func (a *InventoryAnomaly) Resolve(note string) error {
	if a.Status == AnomalyStatusResolved {
		return shared.NewDomainError("INVALID_STATE", "Anomaly is already resolved")
	}
	now := time.Now()
	a.Status = AnomalyStatusResolved
	a.ResolvedAt = &now
	a.ResolutionNote = note
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}
