package shipping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentavia-mx/dentavia-backend/pkg/config"
)

func newTestCalculator() *Calculator {
	return NewCalculator(config.ShippingConfig{
		TareWeightG:        1200,
		DefaultItemWeightG: 100,
		VolumetricDivisor:  5000,
	})
}

func f64(v float64) *float64 { return &v }

func strp(v string) *string { return &v }

func uuidPtr() *uuid.UUID {
	id := uuid.New()
	return &id
}

func TestComputeEmptyItemsIsTareOnly(t *testing.T) {
	result := newTestCalculator().Compute(nil, nil)

	assert.Equal(t, 1200.0, result.MassWeightG)
	assert.Equal(t, DimsSourceFallback, result.DimsSource)
	assert.Equal(t, ProfileCustom, result.ProfileUsed)
	assert.Zero(t, result.MissingWeightFieldsCount)
}

func TestComputeAdHocItemFallsBackToCustomProfile(t *testing.T) {
	result := newTestCalculator().Compute([]LineItem{{ProductID: nil, Qty: 1}}, nil)

	assert.Equal(t, 1300.0, result.MassWeightG)
	assert.Equal(t, Dimensions{LengthCM: 25, WidthCM: 20, HeightCM: 15}, result.Dimensions)
	assert.Equal(t, ProfileCustom, result.ProfileUsed)
	assert.Equal(t, DimsSourceFallback, result.DimsSource)
	assert.Equal(t, 1, result.MissingWeightFieldsCount)
	assert.Equal(t, 1, result.MissingDimensionFieldsCount)
}

func TestComputeVolumetricFormula(t *testing.T) {
	id := uuidPtr()
	attrs := map[uuid.UUID]ProductAttributes{
		*id: {WeightG: f64(500), LengthCM: f64(25), WidthCM: f64(20), HeightCM: f64(15)},
	}

	result := newTestCalculator().Compute([]LineItem{{ProductID: id, Qty: 1}}, attrs)

	assert.InDelta(t, 15.0, result.VolumetricWeightKG, 1e-9)
}

func TestComputeBillableWeightDominance(t *testing.T) {
	heavy := uuidPtr()
	bulky := uuidPtr()
	attrs := map[uuid.UUID]ProductAttributes{
		*heavy: {WeightG: f64(9000), LengthCM: f64(10), WidthCM: f64(10), HeightCM: f64(10)},
		*bulky: {WeightG: f64(200), LengthCM: f64(50), WidthCM: f64(40), HeightCM: f64(30)},
	}
	calc := newTestCalculator()

	cases := []struct {
		name string
		item LineItem
	}{
		{"mass dominates", LineItem{ProductID: heavy, Qty: 1}},
		{"volumetric dominates", LineItem{ProductID: bulky, Qty: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := calc.Compute([]LineItem{tc.item}, attrs)
			assert.GreaterOrEqual(t, result.BillableWeightKG, result.MassWeightG/1000)
			assert.GreaterOrEqual(t, result.BillableWeightKG, result.VolumetricWeightKG)
		})
	}
}

func TestComputeMixedOrderEndToEnd(t *testing.T) {
	id := uuidPtr()
	attrs := map[uuid.UUID]ProductAttributes{
		*id: {WeightG: f64(300), LengthCM: f64(20), WidthCM: f64(15), HeightCM: f64(10)},
	}
	items := []LineItem{
		{ProductID: id, Qty: 2},
		{ProductID: nil, Qty: 1},
	}

	result := newTestCalculator().Compute(items, attrs)

	require.Equal(t, 1900.0, result.MassWeightG)
	assert.Equal(t, Dimensions{LengthCM: 20, WidthCM: 15, HeightCM: 10}, result.Dimensions)
	assert.Equal(t, DimsSourceMixed, result.DimsSource)
	assert.InDelta(t, 0.6, result.VolumetricWeightKG, 1e-9)
	assert.InDelta(t, 1.9, result.BillableWeightKG, 1e-9)
	assert.Equal(t, 1, result.MissingWeightFieldsCount)
	assert.Equal(t, 1, result.MissingDimensionFieldsCount)

	assert.Equal(t, 1900, result.WeightG)
	assert.Equal(t, 20, result.LengthCM)
	assert.Equal(t, 15, result.WidthCM)
	assert.Equal(t, 10, result.HeightCM)
}

func TestComputeQtyMultipliesWeightAndCounter(t *testing.T) {
	known := uuidPtr()
	unknown := uuidPtr()
	attrs := map[uuid.UUID]ProductAttributes{
		*known: {WeightG: f64(250), LengthCM: f64(12), WidthCM: f64(8), HeightCM: f64(4)},
	}
	items := []LineItem{
		{ProductID: known, Qty: 3},
		{ProductID: unknown, Qty: 2},
	}

	result := newTestCalculator().Compute(items, attrs)

	assert.Equal(t, 1200.0+250*3+100*2, result.MassWeightG)
	assert.Equal(t, 2, result.MissingWeightFieldsCount)
}

func TestComputeZeroWeightTreatedAsMissing(t *testing.T) {
	id := uuidPtr()
	attrs := map[uuid.UUID]ProductAttributes{
		*id: {WeightG: f64(0), LengthCM: f64(10), WidthCM: f64(10), HeightCM: f64(10)},
	}

	result := newTestCalculator().Compute([]LineItem{{ProductID: id, Qty: 1}}, attrs)

	assert.Equal(t, 1300.0, result.MassWeightG)
	assert.Equal(t, 1, result.MissingWeightFieldsCount)
}

func TestComputeProfileFallbackFoldsIntoMaxima(t *testing.T) {
	withDims := uuidPtr()
	noDims := uuidPtr()
	attrs := map[uuid.UUID]ProductAttributes{
		*withDims: {WeightG: f64(400), LengthCM: f64(10), WidthCM: f64(9), HeightCM: f64(20)},
		*noDims:   {WeightG: f64(150), Profile: strp(ProfileSmallBox)},
	}
	items := []LineItem{
		{ProductID: withDims, Qty: 1},
		{ProductID: noDims, Qty: 1},
	}

	result := newTestCalculator().Compute(items, attrs)

	// SMALL_BOX is 15x10x8; the fold keeps per-axis maxima.
	assert.Equal(t, Dimensions{LengthCM: 15, WidthCM: 10, HeightCM: 20}, result.Dimensions)
	assert.Equal(t, DimsSourceMixed, result.DimsSource)
	assert.Equal(t, ProfileSmallBox, result.ProfileUsed)
}
