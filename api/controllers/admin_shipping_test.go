package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
)

func TestAdminSelectRatePersistsCanonicalAndMirror(t *testing.T) {
	svc := &stubOrdersService{order: &models.Order{ID: uuid.New()}}

	router := chi.NewRouter()
	router.Post("/admin/orders/{orderID}/select-rate", AdminSelectRate(svc, nil))

	body := []byte(`{"rate_id":"r1","carrier":"estafeta","service":"ground","total_cents":18900,"carrier_cents":15200}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/"+svc.order.ID.String()+"/select-rate", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	pricing := svc.metadata.SubMap("shipping_pricing")
	require.NotNil(t, pricing)
	assert.EqualValues(t, 18900, pricing["total_cents"])
	assert.EqualValues(t, 15200, pricing["carrier_cents"])
	assert.Equal(t, "MXN", pricing["currency"])

	rateUsed := svc.metadata.SubMap("shipping").SubMap("rate_used")
	require.NotNil(t, rateUsed)
	assert.EqualValues(t, 18900, rateUsed["price_cents"])
	assert.EqualValues(t, 15200, rateUsed["carrier_cents"])
}

func TestAdminSelectRateRejectsZeroTotal(t *testing.T) {
	svc := &stubOrdersService{order: &models.Order{ID: uuid.New()}}

	router := chi.NewRouter()
	router.Post("/admin/orders/{orderID}/select-rate", AdminSelectRate(svc, nil))

	body := []byte(`{"rate_id":"r1","carrier":"estafeta","total_cents":0}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/"+svc.order.ID.String()+"/select-rate", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Nil(t, svc.metadata)
}

func TestAdminSelectRateRejectsBadOrderID(t *testing.T) {
	svc := &stubOrdersService{}

	router := chi.NewRouter()
	router.Post("/admin/orders/{orderID}/select-rate", AdminSelectRate(svc, nil))

	var decoded struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/not-a-uuid/select-rate", bytes.NewReader([]byte(`{}`)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "VALIDATION_ERROR", decoded.Error.Code)
}
