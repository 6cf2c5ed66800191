package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositiveCents(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  int64
		ok    bool
	}{
		{"json number", float64(5000), 5000, true},
		{"int", 250, 250, true},
		{"stringified by storage layer", "5000", 5000, true},
		{"padded string", " 1299 ", 1299, true},
		{"zero", float64(0), 0, false},
		{"negative", float64(-100), 0, false},
		{"fractional", 12.5, 0, false},
		{"nil", nil, 0, false},
		{"empty string", "", 0, false},
		{"decorated string", "$5000", 0, false},
		{"signed string", "-5000", 0, false},
		{"bool", true, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PositiveCents(tc.value)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
