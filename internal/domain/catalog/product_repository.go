package catalog

import (
	"context"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*Product, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Product, error)
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
}
