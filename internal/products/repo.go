package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentavia-mx/dentavia-backend/internal/shipping"
	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
)

// ListFilters narrows catalog queries.
type ListFilters struct {
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Repository is the catalog persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, filters ListFilters) ([]models.Product, error)
	ShippingAttributesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]shipping.ProductAttributes, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Order("name ASC")
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var list []models.Product
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ShippingAttributesByIDs bulk-fetches the shipping columns for the package
// calculator. IDs absent from the result simply fall back to defaults.
func (r *repository) ShippingAttributesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]shipping.ProductAttributes, error) {
	result := make(map[uuid.UUID]shipping.ProductAttributes, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.Product
	err := r.db.WithContext(ctx).
		Select("id", "shipping_weight_g", "shipping_length_cm", "shipping_width_cm", "shipping_height_cm", "shipping_profile").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ID] = shipping.ProductAttributes{
			WeightG:  row.ShippingWeightG,
			LengthCM: row.ShippingLengthCM,
			WidthCM:  row.ShippingWidthCM,
			HeightCM: row.ShippingHeightCM,
			Profile:  row.ShippingProfile,
		}
	}
	return result, nil
}
