package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAdoptionMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAdoptionMetrics(reg)

	m.IncBegin("created")
	m.IncBegin("created")
	m.IncComplete("paid")
	m.IncComplete("")
	m.ObserveGatewayDuration("create_order", 0.25)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "adoption_begin_total", "outcome", "created"); err != nil || got != 2 {
		t.Fatalf("begin counter = %v, err %v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "adoption_complete_total", "outcome", "paid"); err != nil || got != 1 {
		t.Fatalf("complete counter = %v, err %v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "adoption_complete_total", "outcome", "unknown"); err != nil || got != 1 {
		t.Fatalf("empty outcome should normalize to unknown: %v, err %v", got, err)
	}
}

func TestAdoptionMetricsNilSafe(t *testing.T) {
	var m *AdoptionMetrics
	m.IncBegin("created")
	m.IncComplete("paid")
	m.ObserveGatewayDuration("create_order", 1)

	empty := NewAdoptionMetrics(nil)
	empty.IncBegin("created")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric family %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q with %s=%s not found", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
