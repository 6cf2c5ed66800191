package shipping

import (
	"math"

	"github.com/google/uuid"

	"github.com/dentavia-mx/dentavia-backend/pkg/config"
)

// PackageResult describes the single parcel an order ships in. The flat
// integer fields mirror the structured values for consumers that expect the
// legacy shape (the carrier aggregator payload among them).
type PackageResult struct {
	MassWeightG        float64
	Dimensions         Dimensions
	DimsSource         DimsSource
	ProfileUsed        string
	VolumetricWeightKG float64
	BillableWeightKG   float64

	MissingWeightFieldsCount    int
	MissingDimensionFieldsCount int

	WeightG  int
	LengthCM int
	WidthCM  int
	HeightCM int
}

// Calculator computes package weight and dimensions from order line items
// and catalog shipping attributes. It never fails: tare weight and the
// CUSTOM dimension fallback are non-zero floors, so every input converges
// on a valid positive result.
type Calculator struct {
	tareWeightG        float64
	defaultItemWeightG float64
	volumetricDivisor  float64
}

// NewCalculator builds a calculator from the shipping config, applying the
// production constants for any unset value.
func NewCalculator(cfg config.ShippingConfig) *Calculator {
	c := &Calculator{
		tareWeightG:        cfg.TareWeightG,
		defaultItemWeightG: cfg.DefaultItemWeightG,
		volumetricDivisor:  cfg.VolumetricDivisor,
	}
	if c.tareWeightG <= 0 {
		c.tareWeightG = 1200
	}
	if c.defaultItemWeightG <= 0 {
		c.defaultItemWeightG = 100
	}
	if c.volumetricDivisor <= 0 {
		c.volumetricDivisor = 5000
	}
	return c
}

// Compute derives the parcel for the given items. Missing catalog data is a
// diagnostic signal, not an error: items without a usable weight contribute
// the default weight, items without a usable dimension triple contribute
// their profile's fallback dimensions.
func (c *Calculator) Compute(items []LineItem, attrs map[uuid.UUID]ProductAttributes) PackageResult {
	result := PackageResult{MassWeightG: c.tareWeightG}

	for _, item := range items {
		qty := item.Qty
		if qty < 1 {
			qty = 1
		}
		weight, ok := c.itemWeight(item, attrs)
		if !ok {
			result.MissingWeightFieldsCount += qty
		}
		result.MassWeightG += weight * float64(qty)
	}

	est := EstimateDimensions(items, attrs, ProfileKeyed)
	result.Dimensions = est.Dimensions
	result.DimsSource = est.Source
	result.ProfileUsed = est.ProfileUsed
	result.MissingDimensionFieldsCount = est.MissingFieldsCount

	result.VolumetricWeightKG = (est.Dimensions.LengthCM * est.Dimensions.WidthCM * est.Dimensions.HeightCM) / c.volumetricDivisor
	result.BillableWeightKG = math.Max(result.MassWeightG/1000, result.VolumetricWeightKG)

	result.WeightG = int(math.Round(result.BillableWeightKG * 1000))
	result.LengthCM = int(math.Round(est.Dimensions.LengthCM))
	result.WidthCM = int(math.Round(est.Dimensions.WidthCM))
	result.HeightCM = int(math.Round(est.Dimensions.HeightCM))
	return result
}

func (c *Calculator) itemWeight(item LineItem, attrs map[uuid.UUID]ProductAttributes) (float64, bool) {
	if item.ProductID == nil {
		return c.defaultItemWeightG, false
	}
	attr, ok := attrs[*item.ProductID]
	if !ok || attr.WeightG == nil || *attr.WeightG <= 0 {
		return c.defaultItemWeightG, false
	}
	return *attr.WeightG, true
}
