package catalog

import (
	"strings"
	"time"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product represents a food product on the FDA Food Traceability List or
// otherwise tracked by the platform. The engine reads this reference data
// (shelf life, cold-chain limits, unit of measure) and never mutates it
// outside catalog management.
type Product struct {
	shared.CompanyAggregateRoot
	Code             string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_company_code,priority:2"`
	Name             string           `gorm:"type:varchar(200);not null"`
	Description      string           `gorm:"type:text"`
	Category         string           `gorm:"type:varchar(50);not null;index"` // e.g. "leafy_greens", "seafood", "dairy"
	Unit             string           `gorm:"type:varchar(20);not null"`       // Default unit of measure (registry code)
	ShelfLifeDays    *int             `gorm:"type:int"`                        // nil = no configured shelf life, exempt from expiry checks
	ColdChainMinTemp *decimal.Decimal `gorm:"type:decimal(6,2)"`               // Celsius
	ColdChainMaxTemp *decimal.Decimal `gorm:"type:decimal(6,2)"`               // Celsius
	RequiresCTE      bool             `gorm:"not null;default:true"`           // Whether critical tracking events are mandated
	Status           ProductStatus    `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new tracked product
func NewProduct(companyID uuid.UUID, code, name, category, unit string) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(category) == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}
	if !valueobject.IsSupportedUnit(unit) {
		return nil, shared.NewDomainError(shared.ErrUnsupportedUnit.Code, "Product unit of measure is not recognized")
	}

	product := &Product{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Code:                 strings.ToUpper(code),
		Name:                 name,
		Category:             strings.ToLower(strings.TrimSpace(category)),
		Unit:                 strings.ToUpper(unit),
		RequiresCTE:          true,
		Status:               ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// SetShelfLife sets the shelf life in days. Zero or negative values are
// rejected; clear the shelf life instead to exempt the product.
func (p *Product) SetShelfLife(days int) error {
	if days <= 0 {
		return shared.NewDomainError("INVALID_SHELF_LIFE", "Shelf life must be a positive number of days")
	}
	p.ShelfLifeDays = &days
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ClearShelfLife removes the configured shelf life, exempting lots of this
// product from expiration checks.
func (p *Product) ClearShelfLife() {
	p.ShelfLifeDays = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetColdChainLimits sets the allowed cold-chain temperature window in Celsius.
func (p *Product) SetColdChainLimits(minTemp, maxTemp decimal.Decimal) error {
	if minTemp.GreaterThan(maxTemp) {
		return shared.NewDomainError("INVALID_TEMPERATURE_RANGE", "Cold-chain minimum cannot exceed maximum")
	}
	p.ColdChainMinTemp = &minTemp
	p.ColdChainMaxTemp = &maxTemp
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetRequiresCTE toggles whether critical tracking events are mandated.
func (p *Product) SetRequiresCTE(required bool) {
	p.RequiresCTE = required
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusDiscontinued {
		return shared.NewDomainError("INVALID_STATUS", "Discontinued products cannot be deactivated")
	}
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// HasShelfLife returns true when a shelf life is configured.
func (p *Product) HasShelfLife() bool {
	return p.ShelfLifeDays != nil
}

// IsActive returns true when the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func validateProductCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code is required")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
