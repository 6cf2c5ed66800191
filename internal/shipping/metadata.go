package shipping

import (
	"github.com/dentavia-mx/dentavia-backend/pkg/types"
)

// Metadata keys for the shipping sub-objects. Canonical pricing lives under
// shipping_pricing; shipping.rate_used is the legacy mirror kept in sync for
// older consumers.
const (
	KeyShipping        = "shipping"
	KeyRateUsed        = "rate_used"
	KeyShippingPricing = "shipping_pricing"
	KeyShippingAddress = "shipping_address"

	KeyTotalCents   = "total_cents"
	KeyCarrierCents = "carrier_cents"
	KeyPriceCents   = "price_cents"
)

// RateSelection is the typed projection of an accepted carrier rate, written
// to both the canonical and mirror locations.
type RateSelection struct {
	RateID       string
	Carrier      string
	Service      string
	TotalCents   int64
	CarrierCents int64
	Currency     string
}

// Patch builds the metadata sub-objects for the selection. Merging it writes
// shipping_pricing wholesale and deep-merges shipping.rate_used, leaving
// sibling shipping keys (the address among them) untouched.
func (r RateSelection) Patch() types.JSONMap {
	currency := r.Currency
	if currency == "" {
		currency = "MXN"
	}
	return types.JSONMap{
		KeyShippingPricing: map[string]any{
			KeyTotalCents:   r.TotalCents,
			KeyCarrierCents: r.CarrierCents,
			"currency":      currency,
			"rate_id":       r.RateID,
			"carrier":       r.Carrier,
			"service":       r.Service,
		},
		KeyShipping: map[string]any{
			KeyRateUsed: map[string]any{
				KeyPriceCents:   r.TotalCents,
				KeyCarrierCents: r.CarrierCents,
				"carrier":       r.Carrier,
				"service":       r.Service,
			},
		},
	}
}

// Merge folds a patch into freshly read metadata. Objects on both sides
// merge recursively so writers touch only their own sub-keys; scalar values
// replace. The rate_used mirror is re-attached if the patch would drop it.
func Merge(current, patch types.JSONMap) types.JSONMap {
	merged := deepMerge(current.Clone(), patch)
	return PreserveRateUsed(current, merged)
}

// PreserveRateUsed guarantees a merge never silently discards a previously
// persisted rate mirror. If the old metadata carried positive rate_used
// values and the merged result does not, the old sub-object is restored.
func PreserveRateUsed(old, merged types.JSONMap) types.JSONMap {
	oldRate := old.SubMap(KeyShipping).SubMap(KeyRateUsed)
	if !rateHasNumbers(oldRate) {
		return merged
	}
	if rateHasNumbers(merged.SubMap(KeyShipping).SubMap(KeyRateUsed)) {
		return merged
	}

	if merged == nil {
		merged = types.JSONMap{}
	}
	shipping := merged.SubMap(KeyShipping).Clone()
	if shipping == nil {
		shipping = types.JSONMap{}
	}
	shipping[KeyRateUsed] = map[string]any(oldRate.Clone())
	merged[KeyShipping] = map[string]any(shipping)
	return merged
}

func rateHasNumbers(rateUsed types.JSONMap) bool {
	if rateUsed == nil {
		return false
	}
	if _, ok := types.PositiveCents(rateUsed[KeyPriceCents]); ok {
		return true
	}
	if _, ok := types.PositiveCents(rateUsed[KeyCarrierCents]); ok {
		return true
	}
	return false
}

func deepMerge(dst, patch types.JSONMap) types.JSONMap {
	if dst == nil {
		dst = types.JSONMap{}
	}
	for key, value := range patch {
		patchObj, patchIsObj := asObject(value)
		dstObj, dstIsObj := asObject(dst[key])
		if patchIsObj && dstIsObj {
			dst[key] = map[string]any(deepMerge(dstObj.Clone(), patchObj))
			continue
		}
		dst[key] = value
	}
	return dst
}

func asObject(value any) (types.JSONMap, bool) {
	switch v := value.(type) {
	case map[string]any:
		return types.JSONMap(v), true
	case types.JSONMap:
		return v, true
	default:
		return nil, false
	}
}
