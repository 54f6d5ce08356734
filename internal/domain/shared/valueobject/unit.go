package valueobject

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitDimension classifies what a unit measures.
type UnitDimension string

const (
	// DimensionMass covers weight-based units. Base unit is the kilogram.
	DimensionMass UnitDimension = "MASS"
	// DimensionCount covers discrete units (eaches, cases). These pass
	// through conversion unchanged.
	DimensionCount UnitDimension = "COUNT"
)

// Unit codes recognized by the engine
const (
	UnitCodeKG   = "KG"   // Kilograms (base unit for mass)
	UnitCodeG    = "G"    // Grams
	UnitCodeMG   = "MG"   // Milligrams
	UnitCodeT    = "T"    // Metric tonnes
	UnitCodeLB   = "LB"   // Pounds
	UnitCodeOZ   = "OZ"   // Ounces
	UnitCodeEACH = "EACH" // Individual items
	UnitCodeUNIT = "UNIT" // Alias for individual items
	UnitCodeCASE = "CASE" // Shipping cases
	UnitCodePCS  = "PCS"  // Pieces
)

// BaseUnitCode is the base unit all mass quantities normalize to.
const BaseUnitCode = UnitCodeKG

// Unit is a value object representing a unit of measurement.
// It is immutable; units come from the fixed registry below rather than
// user input, so an unrecognized code is always an error, never a default.
type Unit struct {
	code      string
	name      string
	dimension UnitDimension
	toBase    decimal.Decimal // 1 of this unit = toBase kilograms (mass only)
}

// unitRegistry is the exhaustive table of supported units. Adding a unit is
// a data change here, not a code change anywhere else.
var unitRegistry = map[string]Unit{
	UnitCodeKG:   {code: UnitCodeKG, name: "Kilogram", dimension: DimensionMass, toBase: decimal.NewFromInt(1)},
	UnitCodeG:    {code: UnitCodeG, name: "Gram", dimension: DimensionMass, toBase: decimal.NewFromFloat(0.001)},
	UnitCodeMG:   {code: UnitCodeMG, name: "Milligram", dimension: DimensionMass, toBase: decimal.NewFromFloat(0.000001)},
	UnitCodeT:    {code: UnitCodeT, name: "Metric Tonne", dimension: DimensionMass, toBase: decimal.NewFromInt(1000)},
	UnitCodeLB:   {code: UnitCodeLB, name: "Pound", dimension: DimensionMass, toBase: decimal.NewFromFloat(0.453592)},
	UnitCodeOZ:   {code: UnitCodeOZ, name: "Ounce", dimension: DimensionMass, toBase: decimal.NewFromFloat(0.0283495)},
	UnitCodeEACH: {code: UnitCodeEACH, name: "Each", dimension: DimensionCount, toBase: decimal.NewFromInt(1)},
	UnitCodeUNIT: {code: UnitCodeUNIT, name: "Unit", dimension: DimensionCount, toBase: decimal.NewFromInt(1)},
	UnitCodeCASE: {code: UnitCodeCASE, name: "Case", dimension: DimensionCount, toBase: decimal.NewFromInt(1)},
	UnitCodePCS:  {code: UnitCodePCS, name: "Pieces", dimension: DimensionCount, toBase: decimal.NewFromInt(1)},
}

// ResolveUnit looks up a unit by code (case-insensitive).
// Returns shared.ErrUnsupportedUnit when the code is not in the registry.
// Callers must never treat that error as "skip": a dropped term misstates
// regulatory quantities.
func ResolveUnit(code string) (Unit, error) {
	normalized := strings.TrimSpace(strings.ToUpper(code))
	if normalized == "" {
		return Unit{}, shared.ErrUnsupportedUnit
	}
	unit, ok := unitRegistry[normalized]
	if !ok {
		return Unit{}, shared.NewDomainError(
			shared.ErrUnsupportedUnit.Code,
			fmt.Sprintf("Unit of measure %q is not recognized", code),
		)
	}
	return unit, nil
}

// MustResolveUnit looks up a unit and panics on failure.
// Use only for registry codes known at compile time.
func MustResolveUnit(code string) Unit {
	u, err := ResolveUnit(code)
	if err != nil {
		panic(err)
	}
	return u
}

// SupportedUnitCodes returns the codes of all registered units.
func SupportedUnitCodes() []string {
	codes := make([]string, 0, len(unitRegistry))
	for code := range unitRegistry {
		codes = append(codes, code)
	}
	return codes
}

// IsSupportedUnit reports whether a code resolves to a registered unit.
func IsSupportedUnit(code string) bool {
	_, err := ResolveUnit(code)
	return err == nil
}

// Code returns the unit code (normalized to uppercase).
func (u Unit) Code() string {
	return u.code
}

// Name returns the human-readable unit name.
func (u Unit) Name() string {
	return u.name
}

// Dimension returns what the unit measures.
func (u Unit) Dimension() UnitDimension {
	return u.dimension
}

// IsCountBased returns true for discrete units that bypass mass conversion.
func (u Unit) IsCountBased() bool {
	return u.dimension == DimensionCount
}

// IsBaseUnit returns true for the kilogram.
func (u Unit) IsBaseUnit() bool {
	return u.code == BaseUnitCode
}

// IsZero returns true for the zero-value Unit.
func (u Unit) IsZero() bool {
	return u.code == ""
}

// ConvertToBase converts a quantity in this unit to base kilograms.
// Count-based units pass through unchanged: a count has no mass equivalent
// and is accounted in its own dimension.
func (u Unit) ConvertToBase(quantity decimal.Decimal) decimal.Decimal {
	if u.IsCountBased() {
		return quantity
	}
	return quantity.Mul(u.toBase).Round(4)
}

// Equals returns true if both units have the same code.
func (u Unit) Equals(other Unit) bool {
	return u.code == other.code
}

// String returns a display representation of the unit.
func (u Unit) String() string {
	return fmt.Sprintf("%s (%s)", u.code, u.name)
}

// Value implements driver.Valuer for database storage. Stores the code only.
func (u Unit) Value() (driver.Value, error) {
	return u.code, nil
}

// Scan implements sql.Scanner for database retrieval.
// An unrecognized stored code surfaces as an error when later resolved,
// not here, so historical rows stay readable.
func (u *Unit) Scan(value any) error {
	if value == nil {
		*u = Unit{}
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Unit", value)
	}

	if resolved, err := ResolveUnit(strVal); err == nil {
		*u = resolved
		return nil
	}
	u.code = strings.TrimSpace(strings.ToUpper(strVal))
	u.name = u.code
	return nil
}
