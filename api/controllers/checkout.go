package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dentavia-mx/dentavia-backend/api/responses"
	"github.com/dentavia-mx/dentavia-backend/api/validators"
	"github.com/dentavia-mx/dentavia-backend/internal/checkout"
	"github.com/dentavia-mx/dentavia-backend/internal/shipping"
	"github.com/dentavia-mx/dentavia-backend/pkg/envia"
	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
)

type quoteRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

type packageView struct {
	WeightG            int     `json:"weight_g"`
	LengthCM           int     `json:"length_cm"`
	WidthCM            int     `json:"width_cm"`
	HeightCM           int     `json:"height_cm"`
	DimsSource         string  `json:"dims_source"`
	ProfileUsed        string  `json:"profile_used,omitempty"`
	VolumetricWeightKG float64 `json:"volumetric_weight_kg"`
	BillableWeightKG   float64 `json:"billable_weight_kg"`
}

type quoteView struct {
	Package packageView  `json:"package"`
	Rates   []envia.Rate `json:"rates"`
}

func packageToView(pkg shipping.PackageResult) packageView {
	return packageView{
		WeightG:            pkg.WeightG,
		LengthCM:           pkg.LengthCM,
		WidthCM:            pkg.WidthCM,
		HeightCM:           pkg.HeightCM,
		DimsSource:         string(pkg.DimsSource),
		ProfileUsed:        pkg.ProfileUsed,
		VolumetricWeightKG: pkg.VolumetricWeightKG,
		BillableWeightKG:   pkg.BillableWeightKG,
	}
}

// QuoteShipping computes the order's parcel and returns carrier offers.
func QuoteShipping(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Quote(r.Context(), checkout.QuoteInput{OrderID: req.OrderID, Route: "checkout.quote"})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quoteView{Package: packageToView(result.Package), Rates: result.Rates})
	}
}

type payRequest struct {
	OrderID  uuid.UUID `json:"order_id" validate:"required"`
	SourceID string    `json:"source_id" validate:"required"`
}

type payView struct {
	PaymentID     string    `json:"payment_id"`
	Status        string    `json:"status"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	OrderID       uuid.UUID `json:"order_id"`
	PointsAccrued int64     `json:"points_accrued"`
}

// Pay charges the submitted card source for the order total.
func Pay(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Pay(r.Context(), checkout.PayInput{
			OrderID:        req.OrderID,
			SourceID:       req.SourceID,
			IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
			Route:          "checkout.pay",
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payView{
			PaymentID:     result.PaymentID,
			Status:        result.Status,
			AmountCents:   result.AmountCents,
			Currency:      result.Currency,
			OrderID:       result.OrderID,
			PointsAccrued: result.PointsAccrued,
		})
	}
}
