package controllers

import (
	"net/http"
	"strings"

	"github.com/dentavia-mx/dentavia-backend/api/responses"
	"github.com/dentavia-mx/dentavia-backend/internal/loyalty"
	pkgerrors "github.com/dentavia-mx/dentavia-backend/pkg/errors"
	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
)

type loyaltyBalanceView struct {
	CustomerEmail string `json:"customer_email"`
	PointsBalance int64  `json:"points_balance"`
}

// LoyaltyBalance reports a customer's current points balance.
func LoyaltyBalance(svc loyalty.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "email query parameter required"))
			return
		}

		balance, err := svc.Balance(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loyaltyBalanceView{CustomerEmail: strings.ToLower(email), PointsBalance: balance})
	}
}
