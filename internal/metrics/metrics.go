// Package metrics exposes transport and parameter-sync counters as
// Prometheus gauges/counters, using the common promauto convention of a
// namespace/subsystem labeled metric set returned from one package-level
// constructor as a single struct of registered collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds every registered collector for one vehicle connection.
type Recorder struct {
	Connected           prometheus.Gauge
	PacketsReceived     prometheus.Counter
	PacketsSent         prometheus.Counter
	SequenceLossTotal   prometheus.Counter
	RunningLossPercent  prometheus.Gauge
	RestartsTotal       prometheus.Counter
	DetectedProtoVersion prometheus.Gauge

	ParamSyncProgress   prometheus.Gauge
	ParamSyncReady      prometheus.Gauge
	ParamSyncMissing    prometheus.Gauge
	ParamFieldsTotal    prometheus.Gauge
}

// New constructs and registers a Recorder under the "groundstation"
// namespace. Registerer is usually prometheus.DefaultRegisterer; pass a
// fresh prometheus.NewRegistry() in tests to avoid global collisions.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		Connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundstation",
			Subsystem: "transport",
			Name:      "connected",
			Help:      "1 if the transport is currently connected to the vehicle, 0 otherwise.",
		}),
		PacketsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "groundstation",
			Subsystem: "transport",
			Name:      "packets_received_total",
			Help:      "Total MAVLink frames received from the vehicle.",
		}),
		PacketsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "groundstation",
			Subsystem: "transport",
			Name:      "packets_sent_total",
			Help:      "Total MAVLink frames sent to the vehicle.",
		}),
		SequenceLossTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "groundstation",
			Subsystem: "transport",
			Name:      "sequence_loss_total",
			Help:      "Total frames inferred lost via sequence-number gaps.",
		}),
		RunningLossPercent: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundstation",
			Subsystem: "transport",
			Name:      "running_loss_percent",
			Help:      "Running percentage of frames lost since connect.",
		}),
		RestartsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "groundstation",
			Subsystem: "transport",
			Name:      "restarts_total",
			Help:      "Total automatic reconnect cycles triggered by the health monitor.",
		}),
		DetectedProtoVersion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundstation",
			Subsystem: "transport",
			Name:      "detected_protocol_version",
			Help:      "Auto-detected MAVLink protocol version (0 = undetected, 1 or 2).",
		}),
		ParamSyncProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundstation",
			Subsystem: "param",
			Name:      "sync_progress_ratio",
			Help:      "Parameter synchronization progress in [0,1] for the current cycle.",
		}),
		ParamSyncReady: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundstation",
			Subsystem: "param",
			Name:      "sync_ready",
			Help:      "1 once the parameter set has finished its initial synchronization.",
		}),
		ParamSyncMissing: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundstation",
			Subsystem: "param",
			Name:      "sync_missing",
			Help:      "1 if synchronization settled with one or more parameters still missing.",
		}),
		ParamFieldsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundstation",
			Subsystem: "param",
			Name:      "fields_total",
			Help:      "Number of parameter fields currently known for the active component.",
		}),
	}
}

// SetConnected records the transport's connection state.
func (r *Recorder) SetConnected(connected bool) {
	if connected {
		r.Connected.Set(1)
	} else {
		r.Connected.Set(0)
	}
}

// SetParamSyncState records the coarse outcome of a parameter sync cycle.
func (r *Recorder) SetParamSyncState(ready, missing bool) {
	if ready {
		r.ParamSyncReady.Set(1)
	} else {
		r.ParamSyncReady.Set(0)
	}
	if missing {
		r.ParamSyncMissing.Set(1)
	} else {
		r.ParamSyncMissing.Set(0)
	}
}

// Handler returns the HTTP handler to mount at a "/metrics" route.
func Handler() http.Handler {
	return promhttp.Handler()
}
