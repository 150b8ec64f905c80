package stonesched

import (
	"context"
	"math/rand"
	"strconv"

	"github.com/zoobzio/capitan"
)

// dispatch applies the outcome of a just-completed poll: it marks
// completion, re-admits the PCB through the ready set, hands file ops
// to the I/O pool, or both mutates priority and re-admits.
func (s *Scheduler) dispatch(workerID int, pcb *PCB, outcome PollOutcome) {
	if outcome.Done {
		s.completeOne(pcb.info)
		return
	}

	switch op := outcome.Op.(type) {
	case nil, NoOp:
		s.readmitAndPoke(workerID, pcb)

	case AddPriority:
		s.changePriority(workerID, pcb, pcb.info.Metric.Priority+op.Delta)

	case SubPriority:
		s.changePriority(workerID, pcb, pcb.info.Metric.Priority-op.Delta)

	case SetPriority:
		s.changePriority(workerID, pcb, op.Priority)

	case ReadFile, WriteFile:
		if s.metrics != nil {
			s.metrics.Counter(MetricIOInFlight).Inc()
		}
		s.iopool.Submit(pcb, op)

	default:
		s.readmitAndPoke(workerID, pcb)
	}
}

// changePriority mutates the PCB's priority, emits a human-readable
// message and a capitan signal, emits the corresponding hookz event,
// then re-admits.
func (s *Scheduler) changePriority(workerID int, pcb *PCB, newPriority int32) {
	old := pcb.info.Metric.Priority
	pcb.info.Metric.Priority = newPriority

	if pcb.sink != nil {
		select {
		case pcb.sink <- priorityMessage(pcb.info.Name, old, newPriority):
		default:
		}
	}

	capitan.Info(context.Background(), SignalPriorityChanged,
		FieldName.Field(pcb.info.Name),
		FieldPriority.Field(int(newPriority)),
		FieldDelta.Field(int(newPriority-old)),
	)

	_ = s.hooks.Emit(context.Background(), EventPriorityChange, Event{ //nolint:errcheck
		ID:          pcb.info.ID,
		Name:        pcb.info.Name,
		Priority:    newPriority,
		OldPriority: old,
	})

	s.readmitAndPoke(workerID, pcb)
}

func (s *Scheduler) readmitAndPoke(workerID int, pcb *PCB) {
	s.ready.readmit(workerID, pcb)
	s.parks.unparkPeer(randomPeer(workerID, len(s.workers)))
}

// randomPeer picks a worker id other than self. With fewer than two
// workers there is no peer to wake, so it returns self and unparkPeer
// becomes a harmless self-wake.
func randomPeer(self, n int) int {
	if n <= 1 {
		return self
	}
	peer := rand.Intn(n - 1)
	if peer >= self {
		peer++
	}
	return peer
}

func priorityMessage(name string, old, next int32) string {
	return name + " priority changed " + strconv.Itoa(int(old)) + " -> " + strconv.Itoa(int(next))
}
