package shipping

import "strings"

// Packaging profile tags carried on catalog products. Unknown tags resolve
// to the CUSTOM fallback.
const (
	ProfileSmallBox  = "SMALL_BOX"
	ProfileMediumBox = "MEDIUM_BOX"
	ProfileEnvelope  = "ENVELOPE"
	ProfileCustom    = "CUSTOM"
)

// Dimensions is a package dimension triple in centimeters.
type Dimensions struct {
	LengthCM float64
	WidthCM  float64
	HeightCM float64
}

// Usable reports whether all three components are present and positive.
// Zero or negative dimensions are never trusted.
func (d Dimensions) Usable() bool {
	return d.LengthCM > 0 && d.WidthCM > 0 && d.HeightCM > 0
}

var fallbackDimensions = map[string]Dimensions{
	ProfileSmallBox:  {LengthCM: 15, WidthCM: 10, HeightCM: 8},
	ProfileMediumBox: {LengthCM: 25, WidthCM: 20, HeightCM: 15},
	ProfileEnvelope:  {LengthCM: 24, WidthCM: 16, HeightCM: 2},
	ProfileCustom:    {LengthCM: 25, WidthCM: 20, HeightCM: 15},
}

// FallbackFor resolves a profile tag to its fallback dimensions, returning
// the normalized profile key actually used.
func FallbackFor(profile string) (Dimensions, string) {
	key := strings.ToUpper(strings.TrimSpace(profile))
	if key == "" {
		key = ProfileCustom
	}
	dims, ok := fallbackDimensions[key]
	if !ok {
		return fallbackDimensions[ProfileCustom], ProfileCustom
	}
	return dims, key
}

// DefaultDimensions is the global fallback used when nothing in an order
// contributes a dimension.
func DefaultDimensions() Dimensions {
	return fallbackDimensions[ProfileCustom]
}
