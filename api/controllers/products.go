package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dentavia-mx/dentavia-backend/api/responses"
	"github.com/dentavia-mx/dentavia-backend/api/validators"
	"github.com/dentavia-mx/dentavia-backend/internal/products"
	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
)

type productView struct {
	ID               uuid.UUID `json:"id"`
	SKU              string    `json:"sku"`
	Name             string    `json:"name"`
	Description      *string   `json:"description,omitempty"`
	Category         string    `json:"category"`
	Tags             []string  `json:"tags,omitempty"`
	PriceCents       int       `json:"price_cents"`
	IsActive         bool      `json:"is_active"`
	ShippingWeightG  *float64  `json:"shipping_weight_g,omitempty"`
	ShippingLengthCM *float64  `json:"shipping_length_cm,omitempty"`
	ShippingWidthCM  *float64  `json:"shipping_width_cm,omitempty"`
	ShippingHeightCM *float64  `json:"shipping_height_cm,omitempty"`
	ShippingProfile  *string   `json:"shipping_profile,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func productToView(p *models.Product) productView {
	return productView{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		Tags:             p.Tags,
		PriceCents:       p.PriceCents,
		IsActive:         p.IsActive,
		ShippingWeightG:  p.ShippingWeightG,
		ShippingLengthCM: p.ShippingLengthCM,
		ShippingWidthCM:  p.ShippingWidthCM,
		ShippingHeightCM: p.ShippingHeightCM,
		ShippingProfile:  p.ShippingProfile,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type createProductRequest struct {
	SKU              string   `json:"sku" validate:"required"`
	Name             string   `json:"name" validate:"required"`
	Description      *string  `json:"description"`
	Category         string   `json:"category" validate:"required"`
	Tags             []string `json:"tags"`
	PriceCents       int      `json:"price_cents" validate:"gt=0"`
	ShippingWeightG  *float64 `json:"shipping_weight_g"`
	ShippingLengthCM *float64 `json:"shipping_length_cm"`
	ShippingWidthCM  *float64 `json:"shipping_width_cm"`
	ShippingHeightCM *float64 `json:"shipping_height_cm"`
	ShippingProfile  *string  `json:"shipping_profile"`
}

type updateProductShippingRequest struct {
	ShippingWeightG  *float64 `json:"shipping_weight_g"`
	ShippingLengthCM *float64 `json:"shipping_length_cm"`
	ShippingWidthCM  *float64 `json:"shipping_width_cm"`
	ShippingHeightCM *float64 `json:"shipping_height_cm"`
	ShippingProfile  *string  `json:"shipping_profile"`
}

// ListProducts serves the public catalog with optional category filtering
// and pagination.
func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.QueryInt(r, "limit", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.QueryInt(r, "offset", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.List(r.Context(), products.ListFilters{
			Category:   r.URL.Query().Get("category"),
			ActiveOnly: !validators.QueryBool(r, "include_inactive"),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]productView, 0, len(listing))
		for i := range listing {
			views = append(views, productToView(&listing[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// GetProduct serves a single listing.
func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productToView(product))
	}
}

// CreateProduct registers a new catalog listing.
func CreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), products.CreateInput{
			SKU:              req.SKU,
			Name:             req.Name,
			Description:      req.Description,
			Category:         req.Category,
			Tags:             req.Tags,
			PriceCents:       req.PriceCents,
			ShippingWeightG:  req.ShippingWeightG,
			ShippingLengthCM: req.ShippingLengthCM,
			ShippingWidthCM:  req.ShippingWidthCM,
			ShippingHeightCM: req.ShippingHeightCM,
			ShippingProfile:  req.ShippingProfile,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, productToView(product))
	}
}

// UpdateProductShipping patches the shipping columns on a listing.
func UpdateProductShipping(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateProductShippingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateShipping(r.Context(), products.UpdateShippingInput{
			ProductID:        id,
			ShippingWeightG:  req.ShippingWeightG,
			ShippingLengthCM: req.ShippingLengthCM,
			ShippingWidthCM:  req.ShippingWidthCM,
			ShippingHeightCM: req.ShippingHeightCM,
			ShippingProfile:  req.ShippingProfile,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productToView(product))
	}
}

// DeactivateProduct hides a listing from the public catalog.
func DeactivateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
