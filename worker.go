package stonesched

import "container/heap"

// Worker is one OS-thread-backed scheduling loop: drain a batch from
// the ready set into a private heap, poll each PCB highest-priority
// first, dispatch its outcome, and park when there's nothing left to
// do.
type Worker struct {
	id  int
	sch *Scheduler
	h   pcbHeap
}

func newWorker(id int, sch *Scheduler) *Worker {
	return &Worker{id: id, sch: sch}
}

func (w *Worker) run() {
	for {
		avg := w.avgProcesses()
		drained := w.sch.ready.drain(w.id, avg)

		if len(drained) == 0 && w.h.Len() == 0 {
			w.sch.markIdle(w.id, true)
			w.sch.parks.park(w.id)
			w.sch.markIdle(w.id, false)
			if w.sch.parks.shouldExit() {
				return
			}
			continue
		}

		for _, pcb := range drained {
			heap.Push(&w.h, pcb)
		}

		for w.h.Len() > 0 {
			pcb := heap.Pop(&w.h).(*PCB)
			outcome := pcb.pollWrap(w.sch.cfg.Clock, w.sch.cfg.TimeSlice)
			w.sch.dispatch(w.id, pcb, outcome)

			if w.sch.parks.shouldExit() {
				return
			}
		}
	}
}

// avgProcesses computes max(1, (admitted-done)/workers) so a worker
// never tries to drain zero PCBs and spin forever without refilling its
// heap.
func (w *Worker) avgProcesses() int {
	admitted := w.sch.admitted.Load()
	done := w.sch.done.Load()
	n := uint64(len(w.sch.workers))
	if n == 0 {
		return 1
	}

	remaining := int64(admitted) - int64(done)
	if remaining <= 0 {
		return 1
	}

	avg := int(uint64(remaining) / n)
	if avg < 1 {
		avg = 1
	}
	return avg
}
