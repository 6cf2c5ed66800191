package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"

	"github.com/dentavia-mx/dentavia-backend/internal/loyalty"
	"github.com/dentavia-mx/dentavia-backend/internal/orders"
	"github.com/dentavia-mx/dentavia-backend/internal/products"
	"github.com/dentavia-mx/dentavia-backend/internal/shipping"
	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
	"github.com/dentavia-mx/dentavia-backend/pkg/envia"
	pkgerrors "github.com/dentavia-mx/dentavia-backend/pkg/errors"
	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
	"github.com/dentavia-mx/dentavia-backend/pkg/metrics"
	"github.com/dentavia-mx/dentavia-backend/pkg/square"
	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

// Single-warehouse operation; all shipments originate from the CDMX depot.
var originParty = envia.Party{
	Name:       "Dentavia",
	Street:     "Av. Insurgentes Sur 1602",
	City:       "Ciudad de México",
	State:      "CMX",
	Country:    "MX",
	PostalCode: "03940",
	Phone:      "5555000000",
}

type rateClient interface {
	QuoteRates(ctx context.Context, req envia.QuoteRequest) ([]envia.Rate, error)
	CreateLabel(ctx context.Context, req envia.LabelRequest) (*envia.Label, error)
}

type paymentClient interface {
	CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error)
}

type loyaltyAccruer interface {
	Accrue(ctx context.Context, input loyalty.AccrueInput) (int64, error)
}

// QuoteInput asks for carrier rates for an order as currently stored.
type QuoteInput struct {
	OrderID uuid.UUID
	Route   string
}

// QuoteResult carries the computed parcel plus the aggregator's offers.
type QuoteResult struct {
	Package shipping.PackageResult
	Rates   []envia.Rate
}

// PayInput captures a card payment for an order.
type PayInput struct {
	OrderID        uuid.UUID
	SourceID       string
	IdempotencyKey string
	Route          string
}

// PayResult reports the processed payment and any accrued points.
type PayResult struct {
	PaymentID     string
	Status        string
	PointsAccrued int64
	AmountCents   int64
	Currency      string
	OrderID       uuid.UUID
}

// LabelInput purchases a label for a previously selected rate.
type LabelInput struct {
	OrderID uuid.UUID
	RateID  string
	Route   string
}

// Service orchestrates the storefront checkout flow across the catalog,
// shipping, payment, and loyalty collaborators.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
	Pay(ctx context.Context, input PayInput) (*PayResult, error)
	CreateLabel(ctx context.Context, input LabelInput) (*envia.Label, error)
}

type service struct {
	orders     orders.Service
	products   products.Repository
	calculator *shipping.Calculator
	rates      rateClient
	payments   paymentClient
	loyalty    loyaltyAccruer
	metrics    *metrics.ShippingMetrics
	logger     *logger.Logger
}

// NewService builds the checkout orchestrator.
func NewService(
	ordersSvc orders.Service,
	productsRepo products.Repository,
	calculator *shipping.Calculator,
	rates rateClient,
	payments paymentClient,
	loyalty loyaltyAccruer,
	m *metrics.ShippingMetrics,
	logg *logger.Logger,
) (Service, error) {
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if calculator == nil {
		return nil, fmt.Errorf("shipping calculator required")
	}
	if rates == nil {
		return nil, fmt.Errorf("rate client required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	if loyalty == nil {
		return nil, fmt.Errorf("loyalty service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:     ordersSvc,
		products:   productsRepo,
		calculator: calculator,
		rates:      rates,
		payments:   payments,
		loyalty:    loyalty,
		metrics:    m,
		logger:     logg,
	}, nil
}

// Quote computes the order's parcel and fetches carrier offers for it.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	order, err := s.orders.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	pkg, err := s.computePackage(ctx, order, input.Route)
	if err != nil {
		return nil, err
	}

	resolved, err := s.orders.ResolveShippingAddress(ctx, order.ID, false)
	if err != nil {
		return nil, err
	}

	rates, err := s.rates.QuoteRates(ctx, envia.QuoteRequest{
		Origin:      originParty,
		Destination: partyFromAddress(resolved.Address, order),
		Packages:    []envia.Package{s.enviaPackage(pkg, order)},
	})
	if err != nil {
		return nil, err
	}

	return &QuoteResult{Package: *pkg, Rates: rates}, nil
}

// Pay charges the card, records the payment in metadata, marks the order
// paid, and accrues loyalty points. Loyalty failure is logged, not
// propagated: the charge already succeeded.
func (s *service) Pay(ctx context.Context, input PayInput) (*PayResult, error) {
	if strings.TrimSpace(input.SourceID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source required")
	}

	order, err := s.orders.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not payable in its current state")
	}

	payment, err := s.payments.CreatePayment(ctx, square.PaymentCreateParams{
		AmountCents:    int64(order.TotalCents),
		Currency:       order.Currency,
		SourceID:       input.SourceID,
		IdempotencyKey: input.IdempotencyKey,
		ReferenceID:    order.ID.String(),
		Note:           fmt.Sprintf("order #%d", order.OrderNumber),
	})
	if err != nil {
		return nil, err
	}

	paymentID := stringValue(payment.GetID())
	status := paymentStatus(payment)

	if _, err := s.orders.MergeMetadata(ctx, orders.MergeMetadataInput{
		OrderID: order.ID,
		Patch: types.JSONMap{
			"payment": map[string]any{
				"provider":     "square",
				"payment_id":   paymentID,
				"status":       status,
				"amount_cents": int64(order.TotalCents),
			},
		},
		Route: input.Route,
	}); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, models.OrderStatusPaid); err != nil {
		return nil, err
	}

	result := &PayResult{
		PaymentID:   paymentID,
		Status:      status,
		AmountCents: int64(order.TotalCents),
		Currency:    order.Currency,
		OrderID:     order.ID,
	}

	points, err := s.loyalty.Accrue(ctx, loyalty.AccrueInput{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		TotalCents:    int64(order.TotalCents),
	})
	if err != nil {
		loggedCtx := s.logger.WithOrderID(ctx, order.ID.String())
		s.logger.Error(loggedCtx, "loyalty accrual failed after payment", err)
	} else {
		result.PointsAccrued = points
	}

	return result, nil
}

// CreateLabel purchases the selected rate's label and stores the tracking
// data. The destination must carry a recipient name for the waybill.
func (s *service) CreateLabel(ctx context.Context, input LabelInput) (*envia.Label, error) {
	if strings.TrimSpace(input.RateID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate id required")
	}

	order, err := s.orders.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	pkg, err := s.computePackage(ctx, order, input.Route)
	if err != nil {
		return nil, err
	}

	resolved, err := s.orders.ResolveShippingAddress(ctx, order.ID, true)
	if err != nil {
		return nil, err
	}

	label, err := s.rates.CreateLabel(ctx, envia.LabelRequest{
		RateID:      input.RateID,
		Origin:      originParty,
		Destination: partyFromAddress(resolved.Address, order),
		Packages:    []envia.Package{s.enviaPackage(pkg, order)},
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.orders.MergeMetadata(ctx, orders.MergeMetadataInput{
		OrderID: order.ID,
		Patch: types.JSONMap{
			shipping.KeyShipping: map[string]any{
				"shipment_id":     label.ShipmentID,
				"tracking_number": label.TrackingNumber,
				"tracking_url":    label.TrackingURL,
				"label_url":       label.LabelURL,
				"carrier":         label.Carrier,
			},
		},
		Route: input.Route,
	}); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, models.OrderStatusShipped); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *service) computePackage(ctx context.Context, order *models.Order, route string) (*shipping.PackageResult, error) {
	items := make([]shipping.LineItem, 0, len(order.Items))
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, shipping.LineItem{ProductID: item.ProductID, Qty: item.Qty})
		if item.ProductID != nil {
			ids = append(ids, *item.ProductID)
		}
	}

	attrs, err := s.products.ShippingAttributesByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product shipping attributes")
	}

	pkg := s.calculator.Compute(items, attrs)
	s.metrics.AddMissingWeightFields(route, pkg.MissingWeightFieldsCount)
	s.metrics.AddMissingDimensionFields(route, pkg.MissingDimensionFieldsCount)
	return &pkg, nil
}

func (s *service) enviaPackage(pkg *shipping.PackageResult, order *models.Order) envia.Package {
	return envia.Package{
		Content:       "dental supplies",
		Amount:        1,
		Type:          "box",
		WeightKG:      float64(pkg.WeightG) / 1000,
		LengthCM:      pkg.LengthCM,
		WidthCM:       pkg.WidthCM,
		HeightCM:      pkg.HeightCM,
		DistanceUnit:  "CM",
		MassUnit:      "KG",
		DeclaredValue: order.SubtotalCents / 100,
	}
}

func partyFromAddress(addr shipping.Address, order *models.Order) envia.Party {
	name := addr.Name
	if name == "" {
		name = order.CustomerName
	}
	email := addr.Email
	if email == "" {
		email = order.CustomerEmail
	}
	street := addr.Address1
	if addr.Address2 != "" {
		street = street + ", " + addr.Address2
	}
	return envia.Party{
		Name:       name,
		Phone:      addr.Phone,
		Email:      email,
		Street:     street,
		City:       addr.City,
		State:      addr.State,
		Country:    addr.Country,
		PostalCode: addr.PostalCode,
	}
}

func paymentStatus(payment *sq.Payment) string {
	if payment == nil {
		return ""
	}
	return stringValue(payment.GetStatus())
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
