package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.IncCompletion("daily")
	m.IncCompletion("daily")
	m.IncCompletion("none")
	m.IncFallback()
	m.IncNotification(true)
	m.IncNotification(false)
	m.IncNotification(false)
	m.ObservePoll(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.completions.WithLabelValues("daily")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("sent")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.notifications.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.pollDuration))
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncCompletion("daily")
		m.IncFallback()
		m.IncNotification(true)
		m.ObservePoll(time.Second)
	})
}
