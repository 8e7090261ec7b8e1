package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/artpar/wiregate/adapters/metrics"
)

func TestObserveDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewWithRegistry(reg)

	c.ObserveDispatch("crew", "getOfficer", "ok", 5*time.Millisecond)
	c.ObserveDispatch("crew", "getOfficer", "ok", 7*time.Millisecond)
	c.ObserveDispatch("crew", "getOfficer", "validation_error", time.Millisecond)

	if got := testutil.ToFloat64(c.DispatchTotal.WithLabelValues("crew", "getOfficer", "ok")); got != 2 {
		t.Errorf("ok dispatches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.DispatchTotal.WithLabelValues("crew", "getOfficer", "validation_error")); got != 1 {
		t.Errorf("validation dispatches = %v, want 1", got)
	}
}

func TestObserveDispatch_NilCollector(t *testing.T) {
	var c *metrics.Collector
	// Must not panic.
	c.ObserveDispatch("crew", "getOfficer", "ok", time.Millisecond)
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewWithRegistry(reg)

	c.AuthFailures.WithLabelValues("invalid_key").Inc()
	c.ValidationFailures.WithLabelValues("server", "input").Inc()
	c.ConfigReloads.Inc()
	c.ConfigReloads.Inc()
	c.ConfigReloadErrors.Inc()
	c.DispatchInFlight.Inc()

	if got := testutil.ToFloat64(c.AuthFailures.WithLabelValues("invalid_key")); got != 1 {
		t.Errorf("auth failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.ConfigReloads); got != 2 {
		t.Errorf("config reloads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.DispatchInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
}

func TestSeparateRegistries(t *testing.T) {
	// Two collectors on separate registries must not collide.
	a := metrics.NewWithRegistry(prometheus.NewRegistry())
	b := metrics.NewWithRegistry(prometheus.NewRegistry())

	a.ConfigReloads.Inc()
	if got := testutil.ToFloat64(b.ConfigReloads); got != 0 {
		t.Errorf("second collector saw %v reloads, want 0", got)
	}
}
