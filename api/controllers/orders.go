package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dentavia-mx/dentavia-backend/api/responses"
	"github.com/dentavia-mx/dentavia-backend/api/validators"
	"github.com/dentavia-mx/dentavia-backend/internal/orders"
	"github.com/dentavia-mx/dentavia-backend/internal/shipping"
	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

type orderLineItemView struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Name           string     `json:"name"`
	SKU            *string    `json:"sku,omitempty"`
	UnitPriceCents int        `json:"unit_price_cents"`
	Qty            int        `json:"qty"`
	TotalCents     int        `json:"total_cents"`
}

type orderView struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   int64               `json:"order_number"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone *string             `json:"customer_phone,omitempty"`
	Status        models.OrderStatus  `json:"status"`
	Currency      string              `json:"currency"`
	SubtotalCents int                 `json:"subtotal_cents"`
	ShippingCents int                 `json:"shipping_cents"`
	TaxCents      int                 `json:"tax_cents"`
	TotalCents    int                 `json:"total_cents"`
	Metadata      types.JSONMap       `json:"metadata,omitempty"`
	Items         []orderLineItemView `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func orderToView(o *models.Order) orderView {
	items := make([]orderLineItemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderLineItemView{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			SKU:            item.SKU,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     item.TotalCents,
		})
	}
	return orderView{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		Status:        o.Status,
		Currency:      o.Currency,
		SubtotalCents: o.SubtotalCents,
		ShippingCents: o.ShippingCents,
		TaxCents:      o.TaxCents,
		TotalCents:    o.TotalCents,
		Metadata:      o.Metadata,
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

type createOrderItemRequest struct {
	ProductID      *uuid.UUID `json:"product_id"`
	Name           string     `json:"name" validate:"required"`
	SKU            *string    `json:"sku"`
	UnitPriceCents int        `json:"unit_price_cents" validate:"min=0"`
	Qty            int        `json:"qty" validate:"min=1"`
}

type createOrderRequest struct {
	CustomerName  string                   `json:"customer_name" validate:"required"`
	CustomerEmail string                   `json:"customer_email" validate:"required,email"`
	CustomerPhone *string                  `json:"customer_phone"`
	Items         []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingCents int                      `json:"shipping_cents" validate:"min=0"`
	TaxCents      int                      `json:"tax_cents" validate:"min=0"`
	Metadata      map[string]any           `json:"metadata"`
}

// CreateOrder persists a new order with its line items.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orders.LineItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, orders.LineItemInput{
				ProductID:      item.ProductID,
				Name:           item.Name,
				SKU:            item.SKU,
				UnitPriceCents: item.UnitPriceCents,
				Qty:            item.Qty,
			})
		}

		order, err := svc.Create(r.Context(), orders.CreateInput{
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			Items:         items,
			ShippingCents: req.ShippingCents,
			TaxCents:      req.TaxCents,
			Metadata:      types.JSONMap(req.Metadata),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderToView(order))
	}
}

// GetOrder serves a single order with its items.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderToView(order))
	}
}

type shippingAddressView struct {
	Address   shipping.Address `json:"address"`
	SourceKey string           `json:"source_key"`
}

// GetShippingAddress projects the order's normalized shipping address.
func GetShippingAddress(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolved, err := svc.ResolveShippingAddress(r.Context(), id, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shippingAddressView{Address: resolved.Address, SourceKey: resolved.SourceKey})
	}
}

// PutShippingAddress replaces the order's shipping address in metadata.
// The body is taken as-is so the storefront's legacy field names keep
// working; it must resolve to a complete address before it is stored.
func PutShippingAddress(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body map[string]any
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.SetShippingAddress(r.Context(), id, types.JSONMap(body), "orders.set_address"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolved, err := svc.ResolveShippingAddress(r.Context(), id, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shippingAddressView{Address: resolved.Address, SourceKey: resolved.SourceKey})
	}
}
