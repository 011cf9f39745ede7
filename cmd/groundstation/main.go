// Command groundstation is the minimal driver that wires transport,
// vehicle dispatch and the optional metrics/events collaborators together
// and runs until interrupted. Pretty-printing and an interactive CLI are
// out of scope; this is the embedder-facing reference wiring.
package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flightpath-dev/groundstation-core/internal/config"
	"github.com/flightpath-dev/groundstation-core/internal/events"
	"github.com/flightpath-dev/groundstation-core/internal/field"
	"github.com/flightpath-dev/groundstation-core/internal/metrics"
	"github.com/flightpath-dev/groundstation-core/internal/param"
	"github.com/flightpath-dev/groundstation-core/internal/transport"
	"github.com/flightpath-dev/groundstation-core/internal/vehicle"
)

const statsPollPeriod = 2 * time.Second

// pollStats periodically copies transport counters into the Prometheus
// recorder. The transport itself stays metrics-agnostic; this is the only
// place that reads Stats() and there is no other consumer for it.
func pollStats(tr *transport.Transport, rec *metrics.Recorder, stop <-chan struct{}) {
	ticker := time.NewTicker(statsPollPeriod)
	defer ticker.Stop()
	var lastRx, lastTx, lastLoss, lastRestarts uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s := tr.Stats()
			if d := s.PacketsRx - lastRx; d > 0 {
				rec.PacketsReceived.Add(float64(d))
			}
			if d := s.PacketsTx - lastTx; d > 0 {
				rec.PacketsSent.Add(float64(d))
			}
			if d := s.TotalLoss - lastLoss; d > 0 {
				rec.SequenceLossTotal.Add(float64(d))
			}
			if d := s.RestartCount - lastRestarts; d > 0 {
				rec.RestartsTotal.Add(float64(d))
			}
			lastRx, lastTx, lastLoss, lastRestarts = s.PacketsRx, s.PacketsTx, s.TotalLoss, s.RestartCount
			rec.RunningLossPercent.Set(s.RunningLossPercent)
			rec.DetectedProtoVersion.Set(float64(s.DetectedProtoVersion))
		}
	}
}

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "groundstation: ", log.LstdFlags)

	var rec *metrics.Recorder
	if cfg.Metrics.Enabled {
		rec = metrics.New(prometheus.DefaultRegisterer)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	bus, err := events.Connect(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, logger)
	if err != nil {
		logger.Fatalf("events: %v", err)
	}
	defer bus.Close()

	var v *vehicle.Vehicle

	tr := transport.New(transport.Config{
		TargetAddress:        cfg.Vehicle.TargetAddress,
		TargetPort:           cfg.Vehicle.TargetPort,
		LocalPort:            cfg.Vehicle.LocalPort,
		SystemID:             cfg.Vehicle.SystemID,
		ComponentID:          cfg.Vehicle.ComponentID,
		HealthCheckEnabled:   cfg.Vehicle.HealthCheckEnabled,
		AutoRestartEnabled:   cfg.Vehicle.AutoRestartEnabled,
		ConnectionTimeout:    cfg.Vehicle.ConnectionTimeout(),
		RestartDelay:         cfg.Vehicle.RestartDelay(),
		AutoVersionDetection: cfg.Vehicle.AutoVersionDetection,
		Logger:               logger,
	}, transport.Callbacks{
		ConnectionChanged: func(connected bool) {
			logger.Printf("connection changed: connected=%v", connected)
			if rec != nil {
				rec.SetConnected(connected)
			}
		},
		MessageReceived: func(msg message.Message, sysID, compID uint8) {
			// v is assigned below, before Connect starts the receive
			// goroutine that delivers frames through this callback.
			if v != nil {
				v.HandleMessage(msg, sysID, compID)
			}
		},
	})

	vehCb := vehicle.Callbacks{
		IdentityChanged: func(id vehicle.Identity) {
			logger.Printf("identity changed: sysID=%d compID=%d board=%s", id.SystemID, id.ComponentID, id.BoardName)
			bus.PublishIdentityChanged(events.IdentityChangedEvent{
				SystemID:     id.SystemID,
				ComponentID:  id.ComponentID,
				VehicleType:  id.VehicleType,
				Autopilot:    id.Autopilot,
				SystemStatus: id.SystemStatus,
				BoardName:    id.BoardName,
			})
		},
		TextMessage: func(severity vehicle.Severity, text string) {
			logger.Printf("[%s] %s", severity, text)
		},
	}

	paramCb := param.Callbacks{
		Ready: func(ready bool) {
			logger.Printf("parameter sync ready=%v", ready)
			if rec != nil {
				rec.SetParamSyncState(ready, v.Parameters.MissingParameters())
				rec.ParamFieldsTotal.Set(float64(v.Parameters.FieldCount(cfg.Vehicle.ComponentID)))
			}
			bus.PublishParametersReady(events.ParametersReadyEvent{
				ComponentID: cfg.Vehicle.ComponentID,
				FieldCount:  v.Parameters.FieldCount(cfg.Vehicle.ComponentID),
				Missing:     v.Parameters.MissingParameters(),
			})
		},
		Progress: func(fraction float64) {
			if rec != nil {
				rec.ParamSyncProgress.Set(fraction)
			}
		},
		FieldValueChanged: func(groupName, name string, cooked field.TypedValue) {
			bus.PublishFieldValueChanged(events.FieldValueChangedEvent{
				ComponentID: cfg.Vehicle.ComponentID,
				GroupName:   groupName,
				FieldName:   name,
				Value:       cooked.ToString(6),
			})
		},
	}

	v = vehicle.New(cfg.Vehicle.ComponentID, cfg.Vehicle.SystemID, tr, cfg.Vehicle.CacheDir, vehCb, paramCb, logger)

	if cfg.Vehicle.FieldMetaPath != "" {
		overlay, err := config.LoadFieldMetaOverlay(cfg.Vehicle.FieldMetaPath)
		if err != nil {
			logger.Fatalf("field meta overlay: %v", err)
		}
		overlay.Apply(v.Group)
	}

	if err := tr.Connect(); err != nil {
		logger.Fatalf("connect: %v", err)
	}
	defer tr.Disconnect()

	stopPoll := make(chan struct{})
	if rec != nil {
		go pollStats(tr, rec, stopPoll)
		defer close(stopPoll)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Println("shutting down")
}
