package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ShippingMetrics records catalog data-quality gaps and metadata integrity
// signals surfaced by the shipping subsystem.
type ShippingMetrics struct {
	missingWeightFields    *prometheus.CounterVec
	missingDimensionFields *prometheus.CounterVec
	rateMirrorDiscrepancy  *prometheus.CounterVec
	metadataWriteConflicts *prometheus.CounterVec
}

// NewShippingMetrics registers the shipping counters on the provided registerer.
func NewShippingMetrics(reg prometheus.Registerer) *ShippingMetrics {
	if reg == nil {
		return &ShippingMetrics{}
	}
	missingWeight := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipping_missing_weight_fields_total",
		Help: "Line items computed with the default weight because catalog data was missing.",
	}, []string{"route"})
	missingDims := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipping_missing_dimension_fields_total",
		Help: "Line items computed with fallback dimensions because catalog data was missing.",
	}, []string{"route"})
	discrepancy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipping_rate_mirror_discrepancy_total",
		Help: "Metadata writes where canonical pricing persisted but the rate_used mirror did not.",
	}, []string{"route"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_metadata_write_conflicts_total",
		Help: "Metadata updates rejected by the updated_at precondition.",
	}, []string{"route"})
	reg.MustRegister(missingWeight, missingDims, discrepancy, conflicts)
	return &ShippingMetrics{
		missingWeightFields:    missingWeight,
		missingDimensionFields: missingDims,
		rateMirrorDiscrepancy:  discrepancy,
		metadataWriteConflicts: conflicts,
	}
}

// AddMissingWeightFields records line items that fell back to the default weight.
func (m *ShippingMetrics) AddMissingWeightFields(route string, count int) {
	if m == nil || m.missingWeightFields == nil || count <= 0 {
		return
	}
	m.missingWeightFields.WithLabelValues(normalizeLabel(route)).Add(float64(count))
}

// AddMissingDimensionFields records line items that fell back to profile dimensions.
func (m *ShippingMetrics) AddMissingDimensionFields(route string, count int) {
	if m == nil || m.missingDimensionFields == nil || count <= 0 {
		return
	}
	m.missingDimensionFields.WithLabelValues(normalizeLabel(route)).Add(float64(count))
}

// IncRateMirrorDiscrepancy counts a guard-detected mirror divergence.
func (m *ShippingMetrics) IncRateMirrorDiscrepancy(route string) {
	if m == nil || m.rateMirrorDiscrepancy == nil {
		return
	}
	m.rateMirrorDiscrepancy.WithLabelValues(normalizeLabel(route)).Inc()
}

// IncMetadataWriteConflict counts a rejected optimistic metadata write.
func (m *ShippingMetrics) IncMetadataWriteConflict(route string) {
	if m == nil || m.metadataWriteConflicts == nil {
		return
	}
	m.metadataWriteConflicts.WithLabelValues(normalizeLabel(route)).Inc()
}

func normalizeLabel(route string) string {
	if route == "" {
		return "unknown"
	}
	return route
}
