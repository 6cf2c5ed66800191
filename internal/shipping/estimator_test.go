package shipping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEstimateDimensionsSourceTagging(t *testing.T) {
	full := uuidPtr()
	other := uuidPtr()
	attrs := map[uuid.UUID]ProductAttributes{
		*full:  {LengthCM: f64(20), WidthCM: f64(15), HeightCM: f64(10)},
		*other: {LengthCM: f64(18), WidthCM: f64(12), HeightCM: f64(6)},
	}

	cases := []struct {
		name   string
		items  []LineItem
		source DimsSource
	}{
		{
			name:   "all items contribute",
			items:  []LineItem{{ProductID: full, Qty: 1}, {ProductID: other, Qty: 1}},
			source: DimsSourceProducts,
		},
		{
			name:   "one item contributes",
			items:  []LineItem{{ProductID: full, Qty: 1}, {ProductID: nil, Qty: 1}},
			source: DimsSourceMixed,
		},
		{
			name:   "none contribute",
			items:  []LineItem{{ProductID: nil, Qty: 1}},
			source: DimsSourceFallback,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			est := EstimateDimensions(tc.items, attrs, GlobalDefault)
			assert.Equal(t, tc.source, est.Source)
		})
	}
}

func TestEstimateDimensionsEmptyItems(t *testing.T) {
	est := EstimateDimensions(nil, nil, GlobalDefault)

	assert.Equal(t, DefaultDimensions(), est.Dimensions)
	assert.Equal(t, DimsSourceFallback, est.Source)
	assert.Zero(t, est.MissingFieldsCount)
}

func TestEstimateDimensionsZeroDimensionIsUntrusted(t *testing.T) {
	id := uuidPtr()
	attrs := map[uuid.UUID]ProductAttributes{
		*id: {LengthCM: f64(20), WidthCM: f64(0), HeightCM: f64(10)},
	}

	est := EstimateDimensions([]LineItem{{ProductID: id, Qty: 1}}, attrs, GlobalDefault)

	assert.Equal(t, DefaultDimensions(), est.Dimensions)
	assert.Equal(t, DimsSourceFallback, est.Source)
	assert.Equal(t, 1, est.MissingFieldsCount)
}

func TestEstimateDimensionsStrategyDivergence(t *testing.T) {
	id := uuidPtr()
	attrs := map[uuid.UUID]ProductAttributes{
		*id: {Profile: strp(ProfileEnvelope)},
	}
	items := []LineItem{{ProductID: id, Qty: 1}}

	global := EstimateDimensions(items, attrs, GlobalDefault)
	assert.Equal(t, DefaultDimensions(), global.Dimensions)
	assert.Equal(t, ProfileCustom, global.ProfileUsed)

	keyed := EstimateDimensions(items, attrs, ProfileKeyed)
	assert.Equal(t, Dimensions{LengthCM: 24, WidthCM: 16, HeightCM: 2}, keyed.Dimensions)
	assert.Equal(t, ProfileEnvelope, keyed.ProfileUsed)
}

func TestEstimateDimensionsMaxAcrossItems(t *testing.T) {
	a := uuidPtr()
	b := uuidPtr()
	attrs := map[uuid.UUID]ProductAttributes{
		*a: {LengthCM: f64(30), WidthCM: f64(5), HeightCM: f64(12)},
		*b: {LengthCM: f64(10), WidthCM: f64(22), HeightCM: f64(8)},
	}

	est := EstimateDimensions([]LineItem{{ProductID: a, Qty: 1}, {ProductID: b, Qty: 4}}, attrs, GlobalDefault)

	assert.Equal(t, Dimensions{LengthCM: 30, WidthCM: 22, HeightCM: 12}, est.Dimensions)
	assert.Equal(t, DimsSourceProducts, est.Source)
}

func TestFallbackForUnknownProfile(t *testing.T) {
	dims, used := FallbackFor("PALLET")
	assert.Equal(t, DefaultDimensions(), dims)
	assert.Equal(t, ProfileCustom, used)

	dims, used = FallbackFor(" small_box ")
	assert.Equal(t, Dimensions{LengthCM: 15, WidthCM: 10, HeightCM: 8}, dims)
	assert.Equal(t, ProfileSmallBox, used)
}
