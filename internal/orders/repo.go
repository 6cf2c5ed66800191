package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

// MetadataSnapshot pairs an order's metadata with the updated_at value it
// was read at, for use as the optimistic write precondition.
type MetadataSnapshot struct {
	Metadata  types.JSONMap
	UpdatedAt time.Time
}

// Repository is the orders persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	NextOrderNumber(ctx context.Context) (int64, error)
	ReadMetadata(ctx context.Context, id uuid.UUID) (*MetadataSnapshot, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, metadata types.JSONMap, expectedUpdatedAt time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) NextOrderNumber(ctx context.Context) (int64, error) {
	var current int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(MAX(order_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// ReadMetadata reads the metadata column and its updated_at exactly as
// persisted. Callers must re-read immediately before writing.
func (r *repository) ReadMetadata(ctx context.Context, id uuid.UUID) (*MetadataSnapshot, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Select("id", "metadata", "updated_at").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &MetadataSnapshot{Metadata: order.Metadata, UpdatedAt: order.UpdatedAt}, nil
}

// UpdateMetadata writes the merged blob under an updated_at equality
// precondition. A false return means a concurrent writer got there first;
// the caller re-reads and retries.
func (r *repository) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata types.JSONMap, expectedUpdatedAt time.Time) (bool, error) {
	// Map updates bypass the field serializer, so the Valuer on *JSONMap
	// does the encoding.
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND updated_at = ?", id, expectedUpdatedAt).
		Updates(map[string]any{"metadata": &metadata})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}
