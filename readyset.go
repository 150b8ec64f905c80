package stonesched

import (
	"math/rand"
	"sync"

	"github.com/zoobzio/metricz"
)

// Injector is the global ready-set: a FIFO any thread may push to or
// drain from. Workers pull from it only when their local queue and
// peer-stealing both come up empty.
type Injector struct {
	mu    sync.Mutex
	items []*PCB
}

func newInjector() *Injector {
	return &Injector{}
}

// Push admits a PCB to the global queue.
func (inj *Injector) Push(pcb *PCB) {
	inj.mu.Lock()
	inj.items = append(inj.items, pcb)
	inj.mu.Unlock()
}

// Drain removes and returns up to n PCBs, FIFO order.
func (inj *Injector) Drain(n int) []*PCB {
	if n <= 0 {
		return nil
	}
	inj.mu.Lock()
	defer inj.mu.Unlock()

	if n > len(inj.items) {
		n = len(inj.items)
	}
	taken := inj.items[:n]
	inj.items = inj.items[n:]
	return taken
}

// Len reports the current depth of the global queue.
func (inj *Injector) Len() int {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	return len(inj.items)
}

// LocalQueue is a per-worker FIFO: the owner pops from the front, peers
// steal from the back, matching the usual work-stealing deque discipline
// without the complexity of a lock-free chase-lev implementation — a
// single mutex is plenty for this scheduler's scale.
type LocalQueue struct {
	mu    sync.Mutex
	items []*PCB
}

func newLocalQueue() *LocalQueue {
	return &LocalQueue{}
}

// Push appends a PCB to the owner's end of the queue.
func (q *LocalQueue) Push(pcb *PCB) {
	q.mu.Lock()
	q.items = append(q.items, pcb)
	q.mu.Unlock()
}

// Pop removes and returns the front item, or nil if empty. Only the
// owning worker calls Pop.
func (q *LocalQueue) Pop() *PCB {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	pcb := q.items[0]
	q.items = q.items[1:]
	return pcb
}

// Steal removes and returns the back item, or nil if empty. Called by
// peer workers, never by the owner.
func (q *LocalQueue) Steal() *PCB {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	if n == 0 {
		return nil
	}
	pcb := q.items[n-1]
	q.items = q.items[:n-1]
	return pcb
}

// Len reports the current depth of this local queue.
func (q *LocalQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// readySet bundles the injector and every worker's local queue, and
// implements the drain-with-stealing and probabilistic re-admission
// policy shared by the worker loop and the dispatch path.
type readySet struct {
	injector *Injector
	locals   []*LocalQueue
	metrics  *metricz.Registry
}

func newReadySet(workers int) *readySet {
	locals := make([]*LocalQueue, workers)
	for i := range locals {
		locals[i] = newLocalQueue()
	}
	return &readySet{injector: newInjector(), locals: locals}
}

// attachMetrics wires a shared registry so drain-path steals are
// reflected in scheduler.steal.total. Left nil in tests that construct
// a readySet directly, which is why stealFromPeer guards on it.
func (rs *readySet) attachMetrics(m *metricz.Registry) {
	rs.metrics = m
}

// drain pulls up to n PCBs for worker id, preferring its own local
// queue, falling back to stealing from a random peer, then to the
// injector.
func (rs *readySet) drain(id, n int) []*PCB {
	out := make([]*PCB, 0, n)
	local := rs.locals[id]

	for len(out) < n {
		if pcb := local.Pop(); pcb != nil {
			out = append(out, pcb)
			continue
		}
		break
	}

	for len(out) < n {
		pcb := rs.stealFromPeer(id)
		if pcb == nil {
			break
		}
		out = append(out, pcb)
	}

	if remaining := n - len(out); remaining > 0 {
		out = append(out, rs.injector.Drain(remaining)...)
	}

	return out
}

// stealFromPeer picks a random worker other than id and steals one PCB
// from its local queue, or returns nil if that peer has nothing.
func (rs *readySet) stealFromPeer(id int) *PCB {
	n := len(rs.locals)
	if n <= 1 {
		return nil
	}
	victim := rand.Intn(n - 1)
	if victim >= id {
		victim++
	}
	pcb := rs.locals[victim].Steal()
	if pcb != nil && rs.metrics != nil {
		rs.metrics.Counter(MetricStealTotal).Inc()
	}
	return pcb
}

// readmit places pcb in worker id's own local queue with probability
// n/(n+1), and in the global injector with probability 1/(n+1).
func (rs *readySet) readmit(id int, pcb *PCB) {
	n := len(rs.locals)
	if n <= 1 || rand.Intn(n+1) != n {
		rs.locals[id].Push(pcb)
		return
	}
	rs.injector.Push(pcb)
}

// depth reports the combined number of PCBs waiting across the
// injector and every local queue, used by the telemetry snapshot.
func (rs *readySet) depth() int {
	total := rs.injector.Len()
	for _, l := range rs.locals {
		total += l.Len()
	}
	return total
}
