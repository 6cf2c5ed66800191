package controllers

import (
	"net/http"

	"github.com/dentavia-mx/dentavia-backend/api/responses"
	"github.com/dentavia-mx/dentavia-backend/api/validators"
	"github.com/dentavia-mx/dentavia-backend/internal/checkout"
	"github.com/dentavia-mx/dentavia-backend/internal/orders"
	"github.com/dentavia-mx/dentavia-backend/internal/shipping"
	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
)

// AdminQuoteRates fetches carrier offers for an order by path id.
func AdminQuoteRates(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Quote(r.Context(), checkout.QuoteInput{OrderID: id, Route: "admin.quote"})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quoteView{Package: packageToView(result.Package), Rates: result.Rates})
	}
}

type selectRateRequest struct {
	RateID       string `json:"rate_id" validate:"required"`
	Carrier      string `json:"carrier" validate:"required"`
	Service      string `json:"service"`
	TotalCents   int64  `json:"total_cents" validate:"gt=0"`
	CarrierCents int64  `json:"carrier_cents" validate:"min=0"`
	Currency     string `json:"currency"`
}

// AdminSelectRate records the chosen carrier rate on the order's metadata.
func AdminSelectRate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req selectRateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		metadata, err := svc.SelectRate(r.Context(), orders.SelectRateInput{
			OrderID: id,
			Selection: shipping.RateSelection{
				RateID:       req.RateID,
				Carrier:      req.Carrier,
				Service:      req.Service,
				TotalCents:   req.TotalCents,
				CarrierCents: req.CarrierCents,
				Currency:     req.Currency,
			},
			Route: "admin.select_rate",
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, metadata)
	}
}

type createLabelRequest struct {
	RateID string `json:"rate_id" validate:"required"`
}

// AdminCreateLabel purchases a label for the selected rate and stores the
// tracking data on the order.
func AdminCreateLabel(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createLabelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		label, err := svc.CreateLabel(r.Context(), checkout.LabelInput{
			OrderID: id,
			RateID:  req.RateID,
			Route:   "admin.create_label",
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, label)
	}
}
