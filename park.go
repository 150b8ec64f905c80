package stonesched

import (
	"sync/atomic"

	"github.com/zoobzio/metricz"
)

// Parker is a single worker's idle primitive: a buffered channel of
// capacity 1 standing in for a futex. Unpark is unconditional and
// idempotent — a pending token already in the channel means a wake is
// already queued, so a second Unpark before the matching Park is a
// harmless no-op rather than a double-wake.
type Parker struct {
	token chan struct{}
}

func newParker() *Parker {
	return &Parker{token: make(chan struct{}, 1)}
}

// Unpark queues a wake token if one isn't already pending.
func (p *Parker) Unpark() {
	select {
	case p.token <- struct{}{}:
	default:
	}
}

// Park blocks until a token is available.
func (p *Parker) Park() {
	<-p.token
}

// parkTable holds one Parker per worker. The I/O pool wakes workers
// through this same table rather than a separate set of parkers, so a
// completed file op and a priority bump both reach a worker the same
// way.
type parkTable struct {
	workers []*Parker
	exit    atomic.Bool
	metrics *metricz.Registry
}

func newParkTable(n int) *parkTable {
	pt := &parkTable{
		workers: make([]*Parker, n),
	}
	for i := 0; i < n; i++ {
		pt.workers[i] = newParker()
	}
	return pt
}

// attachMetrics wires a shared registry so park cycles are reflected in
// scheduler.park.total. Left nil in tests that construct a parkTable
// directly, which is why park guards on it.
func (pt *parkTable) attachMetrics(m *metricz.Registry) {
	pt.metrics = m
}

// park blocks worker id until unparked, recording the park cycle.
func (pt *parkTable) park(id int) {
	pt.workers[id].Park()
	if pt.metrics != nil {
		pt.metrics.Counter(MetricParkTotal).Inc()
	}
}

// unparkAll wakes every worker, used on admission and on shutdown.
func (pt *parkTable) unparkAll() {
	for _, p := range pt.workers {
		p.Unpark()
	}
}

// unparkPeer wakes a specific worker other than self, used after a
// local re-admission so stolen work gets picked up promptly.
func (pt *parkTable) unparkPeer(id int) {
	if id < 0 || id >= len(pt.workers) {
		return
	}
	pt.workers[id].Unpark()
}

// unparkRandomIOAware wakes one worker at random, used by the I/O pool
// when a file op completes so the re-admitted PCB gets picked up
// promptly.
func (pt *parkTable) unparkRandomIOAware(pick func(n int) int) {
	if len(pt.workers) == 0 {
		return
	}
	pt.workers[pick(len(pt.workers))].Unpark()
}

// shutdown sets worker_exit and wakes every worker so each observes it
// on its next park wake.
func (pt *parkTable) shutdown() {
	pt.exit.Store(true)
	pt.unparkAll()
}

func (pt *parkTable) shouldExit() bool {
	return pt.exit.Load()
}
