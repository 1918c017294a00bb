// Package metrics defines and registers all custom Prometheus metrics for the
// bus tracking service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; /metrics exposes them together with the echo request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bustracking"

// ── Ingestion metrics ────────────────────────────────────────────────────────

// EventsIngestedTotal counts producer events that mutated the registry.
// Label:
//   - action: START, STOP, GPS_ACTIVE, GPS_ERROR, POSITION or DISCONNECT
var EventsIngestedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_ingested_total",
		Help:      "Total number of producer events applied to the session registry.",
	},
	[]string{"action"},
)

// EventsDroppedTotal counts producer events that were rejected or ignored.
// Label:
//   - reason: "malformed", "invalid", "unknown_vehicle", "unknown_action"
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of producer events dropped without touching the registry.",
	},
	[]string{"reason"},
)

// LiveVehicles tracks the current size of the session registry.
var LiveVehicles = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_vehicles",
		Help:      "Number of vehicles currently held in the session registry.",
	},
)

// ── Fan-out metrics ──────────────────────────────────────────────────────────

// ObserverConnections tracks open websocket connections.
// Label:
//   - audience: "producer", "viewer" or "operator"
var ObserverConnections = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections",
		Help:      "Current number of open websocket connections per audience.",
	},
	[]string{"audience"},
)

// BroadcastsTotal counts fan-out messages sent to an audience.
// Labels:
//   - audience: "viewer" or "operator"
//   - type: message type (e.g. "SNAPSHOT", "BUS_LOCATION_UPDATE")
var BroadcastsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcasts_total",
		Help:      "Total number of broadcasts issued, by audience and message type.",
	},
	[]string{"audience", "type"},
)

// BroadcastsSuppressedTotal counts viewer broadcasts skipped because no vehicle had a fix.
var BroadcastsSuppressedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "viewer_broadcasts_suppressed_total",
		Help:      "Total number of viewer broadcasts skipped because the filtered snapshot was empty.",
	},
)

// SendFailuresTotal counts observers dropped because they could not accept a message.
// Label:
//   - audience: "viewer" or "operator"
var SendFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "send_failures_total",
		Help:      "Total number of observer connections dropped after a failed or stalled send.",
	},
	[]string{"audience"},
)

// ── Write-through metrics ────────────────────────────────────────────────────

// WriteQueueDepth tracks vehicles with a pending write per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var WriteQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "writethrough_queue_depth",
		Help:      "Current number of vehicles with a pending write-through snapshot per worker.",
	},
	[]string{"worker_id"},
)

// WriteErrorsTotal counts durable-store writes that failed.
var WriteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "writethrough_errors_total",
		Help:      "Total number of write-through upserts rejected by the durable store.",
	},
)

// WriteCoalescedTotal counts pending snapshots replaced by a newer one for
// the same vehicle before they were written.
var WriteCoalescedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "writethrough_coalesced_total",
		Help:      "Total number of pending write-through snapshots superseded by a newer state for the same vehicle.",
	},
)

// WriteDuration measures a single durable-store upsert.
var WriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "writethrough_duration_seconds",
		Help:      "Duration of a single write-through upsert to the durable store.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Recovery metrics ─────────────────────────────────────────────────────────

// VehiclesRecoveredTotal counts vehicles re-seeded from the durable store.
// Label:
//   - result: "restored" or "skipped"
var VehiclesRecoveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vehicles_recovered_total",
		Help:      "Total number of persisted vehicles considered by the recovery loader.",
	},
	[]string{"result"},
)
