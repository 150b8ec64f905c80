// Package stonesched implements a user-space, cooperative scheduler that
// multiplexes many lightweight processes — user-defined step machines —
// over a fixed pool of OS-thread workers.
//
// # Overview
//
// A Process is polled repeatedly; each call to Poll advances one step and
// returns a PollOutcome saying either "I'm done" or "not done yet, here's
// what I need next" (nothing, a priority adjustment, or a blocking file
// operation). The scheduler never preempts a Process mid-poll — it is
// strictly cooperative between Poll calls.
//
// Ready processes live in a work-stealing ready-set: one global Injector
// plus one LocalQueue per worker. Each worker periodically drains a share
// of its local queue into a private priority heap keyed by Metric — the
// combination of accumulated running time and priority — and polls
// highest-priority-first until the heap empties, then repeats. Workers
// that find no work park on a Parker until unparked by a producer.
//
// Processes that need blocking file I/O are handed to a dedicated IOPool
// with its own goroutines (ceil(n/2)+1 for n workers unless
// Config.IOPoolSize overrides it), so no worker ever blocks on a
// syscall; the IOPool re-admits the process to the Injector when the
// operation completes.
//
// # What this package does not do
//
// stonesched never implements: the concrete business logic of any
// Process (see package workload for samples), the terminal dashboard
// (see package telemetry), the TCP log forwarder (see package forwarder),
// or loading of sample text files from disk. Those are thin adapters
// layered on top of the scheduling core.
//
// # Observability
//
// Every Scheduler carries a metricz.Registry, a tracez.Tracer, and a
// hookz.Hooks[Event] instance so embedders can watch admission,
// completion, priority changes, and shutdown without touching the
// scheduling core itself. Structured signals for priority changes and
// I/O errors go out via capitan alongside the human-readable log line.
package stonesched
