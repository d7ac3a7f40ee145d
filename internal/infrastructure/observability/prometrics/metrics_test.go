package prometrics

import (
	"testing"

	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterFillsMissingLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New("minimarket", "", reg)

	c := r.Counter("widgets_total", "Widgets.", "kind", "outcome")
	c.Add(1, observability.L("kind", "a"), observability.L("outcome", "ok"))
	c.Add(2, observability.L("kind", "a"), observability.L("bogus", "x"))
	c.Bind(observability.L("kind", "b"), observability.L("outcome", "ok")).Add(3)

	cv := c.(*counter).v
	assert.Equal(t, 1.0, testutil.ToFloat64(cv.WithLabelValues("a", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(cv.WithLabelValues("a", "")))
	assert.Equal(t, 3.0, testutil.ToFloat64(cv.WithLabelValues("b", "ok")))
}

func TestRegistryReusesVectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New("", "", reg)

	first := r.Histogram("latency_seconds", "Latency.", prometheus.DefBuckets, "route")
	second := r.Histogram("latency_seconds", "Latency.", prometheus.DefBuckets, "route")
	assert.Same(t, first, second)

	other := New("", "", reg).Counter("usecase_requests_total", "x", "use_case")
	again := New("", "", reg).Counter("usecase_requests_total", "x", "use_case")
	assert.Same(t, other.(*counter).v, again.(*counter).v)

	first.Observe(0.2, observability.L("route", "/api/orders"))
	n, err := testutil.GatherAndCount(reg, "latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInstrumentsCoverEveryKey(t *testing.T) {
	counters, histograms := Instruments(New("", "", prometheus.NewRegistry()))
	for _, k := range []observability.MetricKey{
		observability.MUsecaseRequests, observability.MHTTPRequests, observability.MExternalRequests,
		observability.MCheckoutLines, observability.MCacheLookups,
	} {
		assert.Contains(t, counters, k)
	}
	for _, k := range []observability.MetricKey{
		observability.MUsecaseDuration, observability.MHTTPRequestDuration, observability.MExternalRequestDuration,
	} {
		assert.Contains(t, histograms, k)
	}
}
