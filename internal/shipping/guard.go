package shipping

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
	"github.com/dentavia-mx/dentavia-backend/pkg/metrics"
	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

// GuardReport is the outcome of a rate-mirror consistency check.
type GuardReport struct {
	IsValid             bool
	HasCanonicalPricing bool
	RateUsedHasNumbers  bool
	Discrepancy         bool
}

var errRateMirrorDiverged = errors.New("canonical shipping pricing persisted without rate_used mirror")

// Guard audits metadata immediately after a write, reading it exactly as
// persisted. Canonical pricing without a populated rate_used mirror is a
// persistence bug: the order would show the customer a null rate.
type Guard struct {
	logger  *logger.Logger
	metrics *metrics.ShippingMetrics
}

// NewGuard builds the persistence guard. A nil metrics handle disables the
// discrepancy counter but not the log.
func NewGuard(logg *logger.Logger, m *metrics.ShippingMetrics) *Guard {
	return &Guard{logger: logg, metrics: m}
}

// ValidateRateUsed is pure and read-only: it performs no writes and never
// fails the request. A discrepancy is logged for operator remediation; the
// write already happened.
func (g *Guard) ValidateRateUsed(ctx context.Context, meta types.JSONMap, orderID, route string) GuardReport {
	pricing := meta.SubMap(KeyShippingPricing)
	rateUsed := meta.SubMap(KeyShipping).SubMap(KeyRateUsed)

	report := GuardReport{
		HasCanonicalPricing: fieldHasNumber(pricing, KeyTotalCents) || fieldHasNumber(pricing, KeyCarrierCents),
		RateUsedHasNumbers:  fieldHasNumber(rateUsed, KeyPriceCents) || fieldHasNumber(rateUsed, KeyCarrierCents),
	}
	report.Discrepancy = report.HasCanonicalPricing && !report.RateUsedHasNumbers
	report.IsValid = !report.Discrepancy

	if report.Discrepancy && g != nil && g.logger != nil {
		ctx = g.logger.WithOrderID(ctx, orderID)
		ctx = g.logger.WithRoute(ctx, route)
		ctx = g.logger.WithFields(ctx, map[string]any{
			"shipping_pricing": sanitizedJSON(pricing),
			"rate_used":        sanitizedJSON(rateUsed),
		})
		g.logger.Error(ctx, "shipping rate mirror discrepancy", errRateMirrorDiverged)
		g.metrics.IncRateMirrorDiscrepancy(route)
	}
	return report
}

func fieldHasNumber(m types.JSONMap, key string) bool {
	if m == nil {
		return false
	}
	_, ok := types.PositiveCents(m[key])
	return ok
}

func sanitizedJSON(m types.JSONMap) string {
	if m == nil {
		return "null"
	}
	raw, err := json.Marshal(sanitizeValue(m))
	if err != nil {
		return "unserializable"
	}
	return string(raw)
}

// sanitizeValue strips control characters from every string in the payload
// before it reaches a log line.
func sanitizeValue(value any) any {
	switch v := value.(type) {
	case string:
		return logger.Sanitize(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, nested := range v {
			out[logger.Sanitize(k)] = sanitizeValue(nested)
		}
		return out
	case types.JSONMap:
		return sanitizeValue(map[string]any(v))
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = sanitizeValue(nested)
		}
		return out
	default:
		return v
	}
}
