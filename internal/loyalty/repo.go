package loyalty

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
)

// Repository is the loyalty persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrCreateAccount(ctx context.Context, customerEmail string) (*models.LoyaltyAccount, error)
	FindAccountByEmail(ctx context.Context, customerEmail string) (*models.LoyaltyAccount, error)
	CreateEntry(ctx context.Context, entry *models.LoyaltyEntry) error
	IncrementBalance(ctx context.Context, accountID uuid.UUID, points int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a loyalty repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrCreateAccount(ctx context.Context, customerEmail string) (*models.LoyaltyAccount, error) {
	email := normalizeEmail(customerEmail)
	var account models.LoyaltyAccount
	err := r.db.WithContext(ctx).
		Where("customer_email = ?", email).
		FirstOrCreate(&account, models.LoyaltyAccount{CustomerEmail: email}).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindAccountByEmail(ctx context.Context, customerEmail string) (*models.LoyaltyAccount, error) {
	var account models.LoyaltyAccount
	err := r.db.WithContext(ctx).
		Where("customer_email = ?", normalizeEmail(customerEmail)).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LoyaltyEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) IncrementBalance(ctx context.Context, accountID uuid.UUID, points int64) error {
	return r.db.WithContext(ctx).
		Model(&models.LoyaltyAccount{}).
		Where("id = ?", accountID).
		Update("points_balance", gorm.Expr("points_balance + ?", points)).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
