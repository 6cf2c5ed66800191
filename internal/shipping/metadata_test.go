package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

func TestMergeReplacesScalarKeys(t *testing.T) {
	current := types.JSONMap{"notes": "old", "channel": "web"}
	patch := types.JSONMap{"notes": "new"}

	merged := Merge(current, patch)

	assert.Equal(t, "new", merged["notes"])
	assert.Equal(t, "web", merged["channel"])
	assert.Equal(t, "old", current["notes"], "merge must not mutate the source")
}

func TestMergeDeepMergesShippingSubKeys(t *testing.T) {
	current := types.JSONMap{
		"shipping": map[string]any{
			"shipping_address": validAddressMap("Dra. Torres"),
		},
	}
	patch := RateSelection{
		RateID:       "r1",
		Carrier:      "estafeta",
		Service:      "ground",
		TotalCents:   18900,
		CarrierCents: 15200,
	}.Patch()

	merged := Merge(current, patch)

	shipping := merged.SubMap("shipping")
	require.NotNil(t, shipping.SubMap("shipping_address"), "sibling address must survive a rate merge")
	rateUsed := shipping.SubMap("rate_used")
	require.NotNil(t, rateUsed)
	assert.Equal(t, int64(18900), rateUsed["price_cents"])

	pricing := merged.SubMap("shipping_pricing")
	require.NotNil(t, pricing)
	assert.Equal(t, int64(18900), pricing["total_cents"])
	assert.Equal(t, int64(15200), pricing["carrier_cents"])
	assert.Equal(t, "MXN", pricing["currency"])
}

func TestMergePreservesRateUsedMirror(t *testing.T) {
	current := types.JSONMap{
		"shipping": map[string]any{
			"rate_used": map[string]any{"price_cents": float64(5000), "carrier": "dhl"},
		},
	}
	// A writer replacing the whole shipping object without re-reading would
	// drop the mirror; the merge re-attaches it.
	patch := types.JSONMap{
		"shipping": map[string]any{
			"tracking_number": "ABC123",
			"rate_used":       nil,
		},
	}

	merged := Merge(current, patch)

	rateUsed := merged.SubMap("shipping").SubMap("rate_used")
	require.NotNil(t, rateUsed)
	assert.Equal(t, float64(5000), rateUsed["price_cents"])
	assert.Equal(t, "ABC123", merged.SubMap("shipping")["tracking_number"])
}

func TestPreserveRateUsedNoopWhenMirrorIntact(t *testing.T) {
	old := types.JSONMap{
		"shipping": map[string]any{
			"rate_used": map[string]any{"price_cents": float64(100)},
		},
	}
	merged := types.JSONMap{
		"shipping": map[string]any{
			"rate_used": map[string]any{"price_cents": float64(200)},
		},
	}

	result := PreserveRateUsed(old, merged)

	assert.Equal(t, float64(200), result.SubMap("shipping").SubMap("rate_used")["price_cents"])
}

func TestPreserveRateUsedNoopWhenOldHadNoNumbers(t *testing.T) {
	old := types.JSONMap{
		"shipping": map[string]any{
			"rate_used": map[string]any{"carrier": "dhl"},
		},
	}
	merged := types.JSONMap{"shipping": map[string]any{}}

	result := PreserveRateUsed(old, merged)

	assert.Nil(t, result.SubMap("shipping").SubMap("rate_used"))
}

func TestRateSelectionPatchDefaultsCurrency(t *testing.T) {
	patch := RateSelection{TotalCents: 100, CarrierCents: 80}.Patch()
	assert.Equal(t, "MXN", patch.SubMap("shipping_pricing")["currency"])
}
