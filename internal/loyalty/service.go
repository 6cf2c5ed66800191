package loyalty

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dentavia-mx/dentavia-backend/pkg/config"
	"github.com/dentavia-mx/dentavia-backend/pkg/db"
	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
	pkgerrors "github.com/dentavia-mx/dentavia-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AccrueInput carries the order facts the accrual formula needs.
type AccrueInput struct {
	OrderID       uuid.UUID
	CustomerEmail string
	TotalCents    int64
}

// Service accrues loyalty points for paid orders.
type Service interface {
	Accrue(ctx context.Context, input AccrueInput) (int64, error)
	Balance(ctx context.Context, customerEmail string) (int64, error)
}

type service struct {
	repo Repository
	tx   txRunner
	rate decimal.Decimal
}

// NewService builds the loyalty service. The accrual rate is points per 100
// cents spent, configured as a decimal string.
func NewService(repo Repository, tx txRunner, cfg config.LoyaltyConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(cfg.PointsPer100Cents))
	if err != nil {
		return nil, fmt.Errorf("invalid loyalty rate %q: %w", cfg.PointsPer100Cents, err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("loyalty rate cannot be negative")
	}
	return &service{repo: repo, tx: tx, rate: rate}, nil
}

// Accrue credits points for an order exactly once: the ledger entry carries
// a unique index on order_id, so checkout retries collapse into a no-op.
func (s *service) Accrue(ctx context.Context, input AccrueInput) (int64, error) {
	if input.OrderID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if input.TotalCents <= 0 {
		return 0, nil
	}

	points := s.pointsFor(input.TotalCents)
	if points == 0 {
		return 0, nil
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		account, err := repo.FindOrCreateAccount(ctx, input.CustomerEmail)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loyalty account")
		}

		orderID := input.OrderID
		entry := &models.LoyaltyEntry{
			AccountID: account.ID,
			OrderID:   &orderID,
			Points:    points,
			Reason:    "order_paid",
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			if db.IsUniqueViolation(err) {
				points = 0
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create loyalty entry")
		}

		if err := repo.IncrementBalance(ctx, account.ID, points); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment loyalty balance")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return points, nil
}

func (s *service) Balance(ctx context.Context, customerEmail string) (int64, error) {
	if strings.TrimSpace(customerEmail) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	account, err := s.repo.FindAccountByEmail(ctx, customerEmail)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loyalty account")
	}
	return account.PointsBalance, nil
}

func (s *service) pointsFor(totalCents int64) int64 {
	return decimal.NewFromInt(totalCents).
		Div(decimal.NewFromInt(100)).
		Mul(s.rate).
		Floor().
		IntPart()
}
