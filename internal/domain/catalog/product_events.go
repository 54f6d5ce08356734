package catalog

import (
	"github.com/foodtrace/backend/internal/domain/shared"
)

// Event types for the catalog domain
const (
	EventTypeProductCreated = "catalog.product.created"
	EventTypeProductUpdated = "catalog.product.updated"
)

// ProductCreatedEvent is emitted when a product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, "Product", p.ID, p.CompanyID),
		Code:            p.Code,
		Name:            p.Name,
		Category:        p.Category,
	}
}
