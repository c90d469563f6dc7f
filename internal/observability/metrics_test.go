package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.AggregationsTotal.Inc()
	m.CacheLookups.WithLabelValues("hit").Inc()
	m.TripsIndexed.Set(42)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AggregationsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.TripsIndexed))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRecordLoad(t *testing.T) {
	okBefore := testutil.ToFloat64(DefaultMetrics.LoadsTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(DefaultMetrics.LoadsTotal.WithLabelValues("error"))

	RecordLoad(time.Second, nil)
	RecordLoad(time.Second, errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(DefaultMetrics.LoadsTotal.WithLabelValues("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(DefaultMetrics.LoadsTotal.WithLabelValues("error")))
	assert.NotZero(t, testutil.ToFloat64(DefaultMetrics.LastSuccessLoad))
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{304, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.status))
	}
}
