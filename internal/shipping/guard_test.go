package shipping

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
	"github.com/dentavia-mx/dentavia-backend/pkg/metrics"
	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

func newTestGuard(buf *bytes.Buffer) *Guard {
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	return NewGuard(logg, nil)
}

func TestValidateRateUsedDetectsDiscrepancy(t *testing.T) {
	var buf bytes.Buffer
	guard := newTestGuard(&buf)

	meta := types.JSONMap{
		"shipping_pricing": map[string]any{"total_cents": float64(5000)},
		"shipping": map[string]any{
			"rate_used": map[string]any{"price_cents": nil},
		},
	}

	report := guard.ValidateRateUsed(context.Background(), meta, "ord-1", "admin.select_rate")

	assert.True(t, report.Discrepancy)
	assert.False(t, report.IsValid)
	assert.True(t, report.HasCanonicalPricing)
	assert.False(t, report.RateUsedHasNumbers)
	assert.Contains(t, buf.String(), "shipping rate mirror discrepancy")
}

func TestValidateRateUsedConsistentMetadata(t *testing.T) {
	var buf bytes.Buffer
	guard := newTestGuard(&buf)

	meta := types.JSONMap{
		"shipping_pricing": map[string]any{"total_cents": float64(5000), "carrier_cents": float64(4200)},
		"shipping": map[string]any{
			"rate_used": map[string]any{"price_cents": float64(5000), "carrier_cents": float64(4200)},
		},
	}

	report := guard.ValidateRateUsed(context.Background(), meta, "ord-1", "admin.select_rate")

	assert.False(t, report.Discrepancy)
	assert.True(t, report.IsValid)
	assert.Empty(t, buf.String(), "consistent metadata must not log")
}

func TestValidateRateUsedAcceptsStringifiedCents(t *testing.T) {
	var buf bytes.Buffer
	guard := newTestGuard(&buf)

	meta := types.JSONMap{
		"shipping_pricing": map[string]any{"total_cents": "5000"},
		"shipping": map[string]any{
			"rate_used": map[string]any{"price_cents": "5000"},
		},
	}

	report := guard.ValidateRateUsed(context.Background(), meta, "ord-1", "route")

	assert.True(t, report.HasCanonicalPricing)
	assert.True(t, report.RateUsedHasNumbers)
	assert.True(t, report.IsValid)
}

func TestValidateRateUsedNoPricingIsValid(t *testing.T) {
	var buf bytes.Buffer
	guard := newTestGuard(&buf)

	report := guard.ValidateRateUsed(context.Background(), types.JSONMap{}, "ord-1", "route")

	assert.True(t, report.IsValid)
	assert.False(t, report.HasCanonicalPricing)
	assert.Empty(t, buf.String())
}

func TestValidateRateUsedSanitizesLogPayload(t *testing.T) {
	var buf bytes.Buffer
	guard := newTestGuard(&buf)

	meta := types.JSONMap{
		"shipping_pricing": map[string]any{
			"total_cents": float64(5000),
			"carrier":     "fedex\nlevel=error injected",
		},
	}

	guard.ValidateRateUsed(context.Background(), meta, "ord-1\ninjected", "route")

	logged := buf.String()
	require.NotEmpty(t, logged)
	assert.NotContains(t, logged, `\nlevel=error`)
	assert.NotContains(t, logged, "ord-1\ninjected")
}

func TestValidateRateUsedIncrementsDiscrepancyCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewShippingMetrics(reg)
	var buf bytes.Buffer
	guard := NewGuard(logger.New(logger.Options{ServiceName: "test", Output: &buf}), m)

	meta := types.JSONMap{
		"shipping_pricing": map[string]any{"total_cents": float64(100)},
	}
	guard.ValidateRateUsed(context.Background(), meta, "ord-1", "admin.select_rate")

	count := testutil.CollectAndCount(reg, "shipping_rate_mirror_discrepancy_total")
	assert.Equal(t, 1, count)
}
