package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
	if rec.Connected == nil || rec.PacketsReceived == nil || rec.ParamFieldsTotal == nil {
		t.Fatal("expected every Recorder field to be constructed")
	}
}

func TestSetConnected(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)

	rec.SetConnected(true)
	if got := gaugeValue(t, rec.Connected); got != 1 {
		t.Fatalf("Connected = %v, want 1", got)
	}
	rec.SetConnected(false)
	if got := gaugeValue(t, rec.Connected); got != 0 {
		t.Fatalf("Connected = %v, want 0", got)
	}
}

func TestSetParamSyncState(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)

	rec.SetParamSyncState(true, false)
	if got := gaugeValue(t, rec.ParamSyncReady); got != 1 {
		t.Fatalf("ParamSyncReady = %v, want 1", got)
	}
	if got := gaugeValue(t, rec.ParamSyncMissing); got != 0 {
		t.Fatalf("ParamSyncMissing = %v, want 0", got)
	}

	rec.SetParamSyncState(false, true)
	if got := gaugeValue(t, rec.ParamSyncReady); got != 0 {
		t.Fatalf("ParamSyncReady = %v, want 0", got)
	}
	if got := gaugeValue(t, rec.ParamSyncMissing); got != 1 {
		t.Fatalf("ParamSyncMissing = %v, want 1", got)
	}
}

func TestHandlerReturnsNonNil(t *testing.T) {
	if Handler() == nil {
		t.Fatal("Handler() returned nil")
	}
}
