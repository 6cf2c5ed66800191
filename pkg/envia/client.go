package envia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/dentavia-mx/dentavia-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.envia.com"
	responseBodyReadLimit int64 = 1 << 20
)

var errAPIKeyRequired = errors.New("envia api key is required")

// Client wraps the Envia shipping aggregator endpoints used for rate
// quoting and label creation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured aggregator base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout overrides the default HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the aggregator client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// Party is one end of a shipment on the wire.
type Party struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Street     string `json:"street"`
	Reference  string `json:"reference,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

// Package is the flat integer descriptor the aggregator expects; weight is
// derived from the billable grams upstream.
type Package struct {
	Content       string  `json:"content"`
	Amount        int     `json:"amount"`
	Type          string  `json:"type"`
	WeightKG      float64 `json:"weight"`
	LengthCM      int     `json:"lengthCm"`
	WidthCM       int     `json:"widthCm"`
	HeightCM      int     `json:"heightCm"`
	DistanceUnit  string  `json:"distanceUnit"`
	MassUnit      string  `json:"massUnit"`
	DeclaredValue int     `json:"declaredValue,omitempty"`
}

// QuoteRequest asks the aggregator for carrier rates.
type QuoteRequest struct {
	Origin      Party     `json:"origin"`
	Destination Party     `json:"destination"`
	Packages    []Package `json:"packages"`
}

// Rate is one carrier offer.
type Rate struct {
	RateID       string `json:"rateId"`
	Carrier      string `json:"carrier"`
	Service      string `json:"service"`
	TotalCents   int64  `json:"totalCents"`
	CarrierCents int64  `json:"carrierCents"`
	Currency     string `json:"currency"`
	DeliveryDays int    `json:"deliveryDays"`
}

// LabelRequest turns an accepted rate into a shipping label.
type LabelRequest struct {
	RateID      string    `json:"rateId"`
	Origin      Party     `json:"origin"`
	Destination Party     `json:"destination"`
	Packages    []Package `json:"packages"`
}

// Label is the aggregator's label-creation result.
type Label struct {
	ShipmentID     string `json:"shipmentId"`
	TrackingNumber string `json:"trackingNumber"`
	TrackingURL    string `json:"trackingUrl"`
	LabelURL       string `json:"labelUrl"`
	Carrier        string `json:"carrier"`
	TotalCents     int64  `json:"totalCents"`
}

// QuoteRates fetches carrier offers for the package/destination pair.
func (c *Client) QuoteRates(ctx context.Context, req QuoteRequest) ([]Rate, error) {
	if len(req.Packages) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one package is required")
	}
	var payload struct {
		Rates []Rate `json:"rates"`
	}
	if err := c.do(ctx, http.MethodPost, "/ship/rate", req, &payload); err != nil {
		return nil, err
	}
	return payload.Rates, nil
}

// CreateLabel purchases the selected rate and returns the label.
func (c *Client) CreateLabel(ctx context.Context, req LabelRequest) (*Label, error) {
	if strings.TrimSpace(req.RateID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate id is required")
	}
	var payload struct {
		Label *Label `json:"label"`
	}
	if err := c.do(ctx, http.MethodPost, "/ship/generate", req, &payload); err != nil {
		return nil, err
	}
	if payload.Label == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "aggregator returned no label")
	}
	return payload.Label, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode aggregator request")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build aggregator request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call shipping aggregator")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read aggregator response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapStatus(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode aggregator response")
	}
	return nil
}

func (c *Client) mapStatus(status int, raw []byte) error {
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 256 {
		msg = msg[:256]
	}
	err := fmt.Errorf("aggregator status %d: %s", status, msg)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "aggregator rejected credentials")
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "aggregator rejected shipment payload")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregator request failed")
	}
}
