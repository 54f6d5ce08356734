package catalog

import (
	"context"
	"time"

	"github.com/foodtrace/backend/internal/domain/catalog"
	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest registers a new product
type CreateProductRequest struct {
	Code             string           `json:"code" binding:"required"`
	Name             string           `json:"name" binding:"required"`
	Description      string           `json:"description,omitempty"`
	Category         string           `json:"category" binding:"required"`
	Unit             string           `json:"unit" binding:"required"`
	ShelfLifeDays    *int             `json:"shelfLifeDays,omitempty"`
	ColdChainMinTemp *decimal.Decimal `json:"coldChainMinTemp,omitempty"`
	ColdChainMaxTemp *decimal.Decimal `json:"coldChainMaxTemp,omitempty"`
}

// ProductResponse is the API view of a product
type ProductResponse struct {
	ID               uuid.UUID        `json:"id"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Category         string           `json:"category"`
	Unit             string           `json:"unit"`
	ShelfLifeDays    *int             `json:"shelfLifeDays,omitempty"`
	ColdChainMinTemp *decimal.Decimal `json:"coldChainMinTemp,omitempty"`
	ColdChainMaxTemp *decimal.Decimal `json:"coldChainMaxTemp,omitempty"`
	RequiresCTE      bool             `json:"requiresCte"`
	Status           string           `json:"status"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// ToProductResponse maps a product to the API view
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Code:             p.Code,
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		Unit:             p.Unit,
		ShelfLifeDays:    p.ShelfLifeDays,
		ColdChainMinTemp: p.ColdChainMinTemp,
		ColdChainMaxTemp: p.ColdChainMaxTemp,
		RequiresCTE:      p.RequiresCTE,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
	}
}

// ProductService handles product catalog operations. The traceability engine
// only reads the catalog; writes happen here, through a separate surface.
type ProductService struct {
	repo           catalog.ProductRepository
	eventPublisher shared.EventPublisher
}

// NewProductService creates a ProductService
func NewProductService(repo catalog.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// SetEventPublisher sets the publisher for domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a product
func (s *ProductService) Create(ctx context.Context, companyID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if existing, err := s.repo.FindByCode(ctx, companyID, req.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError("PRODUCT_CODE_TAKEN", "A product with this code already exists")
	}

	product, err := catalog.NewProduct(companyID, req.Code, req.Name, req.Category, req.Unit)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description

	if req.ShelfLifeDays != nil {
		if err := product.SetShelfLife(*req.ShelfLifeDays); err != nil {
			return nil, err
		}
	}
	if req.ColdChainMinTemp != nil && req.ColdChainMaxTemp != nil {
		if err := product.SetColdChainLimits(*req.ColdChainMinTemp, *req.ColdChainMaxTemp); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID returns one product
func (s *ProductService) GetByID(ctx context.Context, companyID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.repo.FindByIDForCompany(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List returns a page of the company's products
func (s *ProductService) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	products, err := s.repo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateShelfLife sets or clears a product's shelf life
func (s *ProductService) UpdateShelfLife(ctx context.Context, companyID, productID uuid.UUID, days *int) (*ProductResponse, error) {
	product, err := s.repo.FindByIDForCompany(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if days == nil {
		product.ClearShelfLife()
	} else if err := product.SetShelfLife(*days); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// Deactivate retires a product from the catalog
func (s *ProductService) Deactivate(ctx context.Context, companyID, productID uuid.UUID) error {
	product, err := s.repo.FindByIDForCompany(ctx, companyID, productID)
	if err != nil {
		return err
	}
	product.Deactivate()
	return s.repo.Save(ctx, product)
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	product.ClearDomainEvents()
}
