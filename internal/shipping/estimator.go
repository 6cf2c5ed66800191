package shipping

import "github.com/google/uuid"

// DimsSource tags where a package's dimensions came from.
type DimsSource string

const (
	DimsSourceProducts DimsSource = "products"
	DimsSourceFallback DimsSource = "fallback"
	DimsSourceMixed    DimsSource = "mixed"
)

// LineItem is the slice of an order line the shipping computation needs.
// ProductID is nil for ad-hoc lines; those always use defaults.
type LineItem struct {
	ProductID *uuid.UUID
	Qty       int
}

// ProductAttributes are the per-product shipping fields bulk-fetched from
// the catalog. Nil pointers mean the field is unset in the catalog.
type ProductAttributes struct {
	WeightG  *float64
	LengthCM *float64
	WidthCM  *float64
	HeightCM *float64
	Profile  *string
}

func (a ProductAttributes) dimensions() Dimensions {
	var d Dimensions
	if a.LengthCM != nil {
		d.LengthCM = *a.LengthCM
	}
	if a.WidthCM != nil {
		d.WidthCM = *a.WidthCM
	}
	if a.HeightCM != nil {
		d.HeightCM = *a.HeightCM
	}
	return d
}

func (a ProductAttributes) profile() string {
	if a.Profile == nil {
		return ""
	}
	return *a.Profile
}

// FallbackStrategy selects how items without usable catalog dimensions
// contribute to the estimate. GlobalDefault ignores them during the pass and
// applies one default at the end; ProfileKeyed folds each product's
// profile-table dimensions into the running maxima.
type FallbackStrategy int

const (
	GlobalDefault FallbackStrategy = iota
	ProfileKeyed
)

// DimensionEstimate is the outcome of a dimension pass over an order's items.
type DimensionEstimate struct {
	Dimensions         Dimensions
	Source             DimsSource
	ProfileUsed        string
	MissingFieldsCount int
}

// EstimateDimensions derives package dimensions using a max-across-items
// fold: a single parcel must be large enough to contain its largest item.
// It never fails; with no usable input it returns the global default.
func EstimateDimensions(items []LineItem, attrs map[uuid.UUID]ProductAttributes, strategy FallbackStrategy) DimensionEstimate {
	est := DimensionEstimate{}
	if len(items) == 0 {
		est.Dimensions = DefaultDimensions()
		est.Source = DimsSourceFallback
		est.ProfileUsed = ProfileCustom
		return est
	}

	var maxima Dimensions
	hasProductDims := false
	hasFallbacks := false

	for _, item := range items {
		if item.ProductID == nil {
			est.MissingFieldsCount++
			hasFallbacks = true
			continue
		}
		attr, ok := attrs[*item.ProductID]
		if ok {
			if dims := attr.dimensions(); dims.Usable() {
				maxima = foldMax(maxima, dims)
				hasProductDims = true
				continue
			}
		}
		est.MissingFieldsCount++
		hasFallbacks = true
		if strategy == ProfileKeyed {
			dims, used := FallbackFor(attr.profile())
			maxima = foldMax(maxima, dims)
			if est.ProfileUsed == "" {
				est.ProfileUsed = used
			}
		}
	}

	if !maxima.Usable() {
		est.Dimensions = DefaultDimensions()
		est.Source = DimsSourceFallback
		est.ProfileUsed = ProfileCustom
		return est
	}

	est.Dimensions = maxima
	switch {
	case hasProductDims && hasFallbacks:
		est.Source = DimsSourceMixed
	case hasProductDims:
		est.Source = DimsSourceProducts
	default:
		est.Source = DimsSourceFallback
	}
	return est
}

func foldMax(acc, next Dimensions) Dimensions {
	if next.LengthCM > acc.LengthCM {
		acc.LengthCM = next.LengthCM
	}
	if next.WidthCM > acc.WidthCM {
		acc.WidthCM = next.WidthCM
	}
	if next.HeightCM > acc.HeightCM {
		acc.HeightCM = next.HeightCM
	}
	return acc
}
