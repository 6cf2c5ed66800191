package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentavia-mx/dentavia-backend/internal/orders"
	"github.com/dentavia-mx/dentavia-backend/internal/shipping"
	"github.com/dentavia-mx/dentavia-backend/pkg/db/models"
	pkgerrors "github.com/dentavia-mx/dentavia-backend/pkg/errors"
	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

type stubOrdersService struct {
	order      *models.Order
	metadata   types.JSONMap
	createdErr error
	lastCreate orders.CreateInput
}

func (s *stubOrdersService) Create(ctx context.Context, input orders.CreateInput) (*models.Order, error) {
	s.lastCreate = input
	if s.createdErr != nil {
		return nil, s.createdErr
	}
	return s.order, nil
}

func (s *stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.order, nil
}

func (s *stubOrdersService) MergeMetadata(ctx context.Context, input orders.MergeMetadataInput) (types.JSONMap, error) {
	s.metadata = shipping.Merge(s.metadata, input.Patch)
	return s.metadata, nil
}

func (s *stubOrdersService) SelectRate(ctx context.Context, input orders.SelectRateInput) (types.JSONMap, error) {
	return s.MergeMetadata(ctx, orders.MergeMetadataInput{OrderID: input.OrderID, Patch: input.Selection.Patch(), Route: input.Route})
}

func (s *stubOrdersService) SetShippingAddress(ctx context.Context, orderID uuid.UUID, address types.JSONMap, route string) (types.JSONMap, error) {
	if shipping.ResolveAddress(types.JSONMap{"shipping_address": map[string]any(address)}, shipping.ResolveOptions{}) == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "incomplete shipping address")
	}
	return s.MergeMetadata(ctx, orders.MergeMetadataInput{OrderID: orderID, Patch: types.JSONMap{"shipping_address": map[string]any(address)}, Route: route})
}

func (s *stubOrdersService) ResolveShippingAddress(ctx context.Context, orderID uuid.UUID, requireName bool) (*shipping.ResolvedAddress, error) {
	resolved := shipping.ResolveAddress(s.metadata, shipping.ResolveOptions{RequireName: requireName})
	if resolved == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no complete shipping address")
	}
	return resolved, nil
}

func (s *stubOrdersService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	s.order.Status = status
	return nil
}

func newOrdersRouter(svc orders.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/orders", CreateOrder(svc, nil))
	r.Get("/orders/{orderID}", GetOrder(svc, nil))
	r.Get("/orders/{orderID}/shipping-address", GetShippingAddress(svc, nil))
	r.Put("/orders/{orderID}/shipping-address", PutShippingAddress(svc, nil))
	return r
}

func TestCreateOrderReturnsCreated(t *testing.T) {
	svc := &stubOrdersService{order: &models.Order{ID: uuid.New(), OrderNumber: 7, Status: models.OrderStatusPending}}
	router := newOrdersRouter(svc)

	body := map[string]any{
		"customer_name":  "Dra. Torres",
		"customer_email": "torres@example.mx",
		"items": []map[string]any{
			{"name": "Brackets kit", "unit_price_cents": 25000, "qty": 2},
		},
	}
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(encoded))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, "Brackets kit", svc.lastCreate.Items[0].Name)
	assert.Equal(t, 2, svc.lastCreate.Items[0].Qty)
}

func TestCreateOrderRejectsMissingItems(t *testing.T) {
	svc := &stubOrdersService{}
	router := newOrdersRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(`{"customer_name":"x","customer_email":"x@example.mx","items":[]}`)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestCreateOrderRejectsUnknownFields(t *testing.T) {
	svc := &stubOrdersService{}
	router := newOrdersRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(`{"customer_name":"x","customer_email":"x@example.mx","items":[{"name":"a","qty":1}],"surprise":true}`)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestGetOrderNotFound(t *testing.T) {
	svc := &stubOrdersService{}
	router := newOrdersRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetShippingAddressResolvesLegacyKeys(t *testing.T) {
	svc := &stubOrdersService{
		order: &models.Order{ID: uuid.New()},
		metadata: types.JSONMap{
			"shippingAddress": map[string]any{
				"nombre":        "Dra. Torres",
				"calle":         "Av. Juarez 10",
				"ciudad":        "Guadalajara",
				"estado":        "JAL",
				"codigo_postal": "44100",
			},
		},
	}
	router := newOrdersRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+svc.order.ID.String()+"/shipping-address", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope struct {
		Data shippingAddressView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "Guadalajara", envelope.Data.Address.City)
	assert.Equal(t, "MX", envelope.Data.Address.Country)
	assert.Equal(t, "shippingAddress", envelope.Data.SourceKey)
}

func TestPutShippingAddressRejectsIncomplete(t *testing.T) {
	svc := &stubOrdersService{order: &models.Order{ID: uuid.New()}}
	router := newOrdersRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/orders/"+svc.order.ID.String()+"/shipping-address", bytes.NewReader([]byte(`{"city":"CDMX"}`)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Nil(t, svc.metadata["shipping_address"])
}
