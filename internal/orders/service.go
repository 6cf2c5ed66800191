package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentavia-mx/dentavia-backend/internal/shipping"
	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
	pkgerrors "github.com/dentavia-mx/dentavia-backend/pkg/errors"
	"github.com/dentavia-mx/dentavia-backend/pkg/metrics"
	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

// metadataWriteAttempts bounds the optimistic write loop: the initial
// attempt plus one retry after a conflict.
const metadataWriteAttempts = 2

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LineItemInput is one order line as submitted at checkout.
type LineItemInput struct {
	ProductID      *uuid.UUID
	Name           string
	SKU            *string
	UnitPriceCents int
	Qty            int
}

// CreateInput carries everything needed to persist a new order.
type CreateInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	Items         []LineItemInput
	ShippingCents int
	TaxCents      int
	Metadata      types.JSONMap
}

// MergeMetadataInput is one narrow metadata patch plus the route that
// requested it, for conflict and discrepancy telemetry.
type MergeMetadataInput struct {
	OrderID uuid.UUID
	Patch   types.JSONMap
	Route   string
}

// SelectRateInput records an accepted carrier rate on an order.
type SelectRateInput struct {
	OrderID   uuid.UUID
	Selection shipping.RateSelection
	Route     string
}

// Service defines order operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	MergeMetadata(ctx context.Context, input MergeMetadataInput) (types.JSONMap, error)
	SelectRate(ctx context.Context, input SelectRateInput) (types.JSONMap, error)
	SetShippingAddress(ctx context.Context, orderID uuid.UUID, address types.JSONMap, route string) (types.JSONMap, error)
	ResolveShippingAddress(ctx context.Context, orderID uuid.UUID, requireName bool) (*shipping.ResolvedAddress, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
}

type service struct {
	repo    Repository
	tx      txRunner
	guard   *shipping.Guard
	metrics *metrics.ShippingMetrics
}

// NewService builds the orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, guard *shipping.Guard, m *metrics.ShippingMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if guard == nil {
		return nil, fmt.Errorf("persistence guard required")
	}
	return &service{repo: repo, tx: tx, guard: guard, metrics: m}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}

	subtotal := 0
	lineItems := make([]models.OrderLineItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item qty must be at least 1")
		}
		if item.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
		total := item.UnitPriceCents * item.Qty
		subtotal += total
		lineItems = append(lineItems, models.OrderLineItem{
			ProductID:      item.ProductID,
			Name:           strings.TrimSpace(item.Name),
			SKU:            item.SKU,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     total,
		})
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := repo.NextOrderNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}

		order := &models.Order{
			OrderNumber:   number,
			CustomerName:  strings.TrimSpace(input.CustomerName),
			CustomerEmail: strings.TrimSpace(input.CustomerEmail),
			CustomerPhone: input.CustomerPhone,
			Status:        models.OrderStatusPending,
			Currency:      "MXN",
			SubtotalCents: subtotal,
			ShippingCents: input.ShippingCents,
			TaxCents:      input.TaxCents,
			TotalCents:    subtotal + input.ShippingCents + input.TaxCents,
			Metadata:      input.Metadata.Clone(),
		}
		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for i := range lineItems {
			lineItems[i].OrderID = order.ID
		}
		if err := repo.CreateLineItems(ctx, lineItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order line items")
		}

		order.Items = lineItems
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// MergeMetadata is the read-modify-write protocol every metadata writer
// goes through: re-read immediately before writing, merge the patch into
// the fresh value, write under an updated_at precondition, retry once on
// conflict, then audit the persisted row with the rate mirror guard.
func (s *service) MergeMetadata(ctx context.Context, input MergeMetadataInput) (types.JSONMap, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(input.Patch) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "metadata patch is empty")
	}

	for attempt := 0; attempt < metadataWriteAttempts; attempt++ {
		snapshot, err := s.repo.ReadMetadata(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order metadata")
		}

		merged := shipping.Merge(snapshot.Metadata, input.Patch)

		written, err := s.repo.UpdateMetadata(ctx, input.OrderID, merged, snapshot.UpdatedAt)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write order metadata")
		}
		if !written {
			s.metrics.IncMetadataWriteConflict(input.Route)
			continue
		}

		persisted, err := s.repo.ReadMetadata(ctx, input.OrderID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-read order metadata")
		}
		s.guard.ValidateRateUsed(ctx, persisted.Metadata, input.OrderID.String(), input.Route)
		return persisted.Metadata, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order metadata changed concurrently")
}

func (s *service) SelectRate(ctx context.Context, input SelectRateInput) (types.JSONMap, error) {
	if input.Selection.TotalCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate total must be positive")
	}
	return s.MergeMetadata(ctx, MergeMetadataInput{
		OrderID: input.OrderID,
		Patch:   input.Selection.Patch(),
		Route:   input.Route,
	})
}

// SetShippingAddress validates before writing: the candidate must normalize
// to a complete address, then it is stored raw under the current key.
func (s *service) SetShippingAddress(ctx context.Context, orderID uuid.UUID, address types.JSONMap, route string) (types.JSONMap, error) {
	if len(address) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is empty")
	}
	candidate := types.JSONMap{shipping.KeyShippingAddress: map[string]any(address)}
	if shipping.ResolveAddress(candidate, shipping.ResolveOptions{}) == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}
	return s.MergeMetadata(ctx, MergeMetadataInput{
		OrderID: orderID,
		Patch:   candidate,
		Route:   route,
	})
}

// ResolveShippingAddress projects the canonical destination out of the
// metadata blob, tolerating legacy key shapes.
func (s *service) ResolveShippingAddress(ctx context.Context, orderID uuid.UUID, requireName bool) (*shipping.ResolvedAddress, error) {
	snapshot, err := s.repo.ReadMetadata(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order metadata")
	}
	resolved := shipping.ResolveAddress(snapshot.Metadata, shipping.ResolveOptions{RequireName: requireName})
	if resolved == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no complete shipping address")
	}
	return resolved, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	switch status {
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCanceled:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return nil
}
