package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestShippingMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewShippingMetrics(reg)

	m.AddMissingWeightFields("admin.shipping.quote", 3)
	m.AddMissingWeightFields("admin.shipping.quote", 0)
	m.IncRateMirrorDiscrepancy("admin.shipping.select-rate")
	m.IncMetadataWriteConflict("")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.missingWeightFields.WithLabelValues("admin.shipping.quote")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateMirrorDiscrepancy.WithLabelValues("admin.shipping.select-rate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.metadataWriteConflicts.WithLabelValues("unknown")))
}

func TestShippingMetricsNilSafe(t *testing.T) {
	var m *ShippingMetrics
	assert.NotPanics(t, func() {
		m.AddMissingWeightFields("x", 1)
		m.IncRateMirrorDiscrepancy("x")
	})
}
