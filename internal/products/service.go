package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentavia-mx/dentavia-backend/pkg/db"
	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
	pkgerrors "github.com/dentavia-mx/dentavia-backend/pkg/errors"
)

// CreateInput carries the fields an admin supplies for a new listing.
type CreateInput struct {
	SKU              string
	Name             string
	Description      *string
	Category         string
	Tags             []string
	PriceCents       int
	ShippingWeightG  *float64
	ShippingLengthCM *float64
	ShippingWidthCM  *float64
	ShippingHeightCM *float64
	ShippingProfile  *string
}

// UpdateShippingInput patches the shipping columns on a listing.
type UpdateShippingInput struct {
	ProductID        uuid.UUID
	ShippingWeightG  *float64
	ShippingLengthCM *float64
	ShippingWidthCM  *float64
	ShippingHeightCM *float64
	ShippingProfile  *string
}

// Service defines catalog operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	UpdateShipping(ctx context.Context, input UpdateShippingInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters ListFilters) ([]models.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	product := &models.Product{
		SKU:              sku,
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		Category:         strings.TrimSpace(input.Category),
		Tags:             input.Tags,
		PriceCents:       input.PriceCents,
		IsActive:         true,
		ShippingWeightG:  input.ShippingWeightG,
		ShippingLengthCM: input.ShippingLengthCM,
		ShippingWidthCM:  input.ShippingWidthCM,
		ShippingHeightCM: input.ShippingHeightCM,
		ShippingProfile:  input.ShippingProfile,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateShipping(ctx context.Context, input UpdateShippingInput) (*models.Product, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates := map[string]any{}
	if input.ShippingWeightG != nil {
		updates["shipping_weight_g"] = *input.ShippingWeightG
	}
	if input.ShippingLengthCM != nil {
		updates["shipping_length_cm"] = *input.ShippingLengthCM
	}
	if input.ShippingWidthCM != nil {
		updates["shipping_width_cm"] = *input.ShippingWidthCM
	}
	if input.ShippingHeightCM != nil {
		updates["shipping_height_cm"] = *input.ShippingHeightCM
	}
	if input.ShippingProfile != nil {
		updates["shipping_profile"] = strings.ToUpper(strings.TrimSpace(*input.ShippingProfile))
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no shipping fields to update")
	}

	if err := s.repo.Update(ctx, input.ProductID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shipping attributes")
	}
	return s.Get(ctx, input.ProductID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 50
	}
	list, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if err := s.repo.Update(ctx, id, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}
