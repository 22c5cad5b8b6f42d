package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("archiver", prometheus.NewRegistry())

	m.Dispatch("resource", ResultSuccess)
	m.Dispatch("resource", ResultSuccess)
	m.Dispatch("dataset", ResultFailed)
	m.Read("get_resource_status", OutcomePlaceholder)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DispatchCounter("resource", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchCounter("dataset", ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReadCounter("get_resource_status", OutcomePlaceholder)))
}

func TestMetrics_NilRegistererSkipsRegistration(t *testing.T) {
	assert.NotPanics(t, func() {
		New("archiver", nil)
		New("archiver", nil)
	})
}

func TestMetrics_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New("archiver", reg)

	assert.Panics(t, func() { New("archiver", reg) })
}
