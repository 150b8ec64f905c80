package stonesched

import (
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// capitan signals. Signals follow the pattern <component>.<event>,
// mirroring the scheme pipz connectors use for their own signals.
const (
	SignalPriorityChanged capitan.Signal = "scheduler.priority-changed"
	SignalFileOpFailed    capitan.Signal = "scheduler.file-op-failed"
	SignalBootstrapFailed capitan.Signal = "scheduler.bootstrap-failed"
	SignalForwardFailed   capitan.Signal = "scheduler.forward-failed"
)

// capitan field keys used alongside the signals above.
var (
	FieldName      = capitan.NewStringKey("name")
	FieldError     = capitan.NewStringKey("error")
	FieldTimestamp = capitan.NewFloat64Key("timestamp")
	FieldPriority  = capitan.NewIntKey("priority")
	FieldDelta     = capitan.NewIntKey("delta")
	FieldPath      = capitan.NewStringKey("path")
	FieldWorkerID  = capitan.NewIntKey("worker_id")
)

// metricz keys. Counters accumulate for the life of a Scheduler; gauges
// reflect instantaneous state as of the last Snapshot call and are there
// for external scraping (the telemetry renderer reads Snapshot itself).
const (
	MetricAdmittedTotal = metricz.Key("scheduler.admitted.total")
	MetricDoneTotal     = metricz.Key("scheduler.done.total")
	MetricStealTotal    = metricz.Key("scheduler.steal.total")
	MetricParkTotal     = metricz.Key("scheduler.park.total")
	MetricReadyDepth    = metricz.Key("scheduler.ready.depth")
	MetricWorkersIdle   = metricz.Key("scheduler.workers.idle")
	MetricIOInFlight    = metricz.Key("scheduler.io.inflight")
)

// tracez span and tag keys.
const (
	pollSpan   = tracez.Key("stonesched.poll")
	fileOpSpan = tracez.Key("stonesched.file-op")

	tagProcessName = tracez.Tag("stonesched.process")
	tagOutcomeDone = tracez.Tag("stonesched.done")
	tagFileOpKind  = tracez.Tag("stonesched.file-op-kind")
	tagFileOpErr   = tracez.Tag("stonesched.file-op-error")
)

// hookz event keys and payloads. Embedders subscribe to these keys on the
// instance returned by Scheduler.Hooks.
const (
	EventAdmitted       = hookz.Key("scheduler.admitted")
	EventCompleted      = hookz.Key("scheduler.completed")
	EventPriorityChange = hookz.Key("scheduler.priority-changed")
	EventShutdown       = hookz.Key("scheduler.shutdown")
)

// Event is the single payload type carried by the scheduler's
// hookz.Hooks instance: one shared shape across all four EventXxx keys.
// Only the fields relevant to the emitting key are populated; the rest
// are left at their zero value.
type Event struct {
	ID            uint64
	Name          string
	Priority      int32
	OldPriority   int32
	RunningTime   float64 // seconds, set on EventCompleted
	AdmittedTotal uint64
	DoneTotal     uint64
}
