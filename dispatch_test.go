package stonesched

import (
	"path/filepath"
	"testing"

	"github.com/zoobzio/tracez"
)

func schedulerForDispatch(t *testing.T) *Scheduler {
	t.Helper()
	return newTestScheduler(t, 2)
}

type dispatchProc struct{ name string }

func (p *dispatchProc) Name() string { return p.name }
func (p *dispatchProc) Poll(chan<- string, FileOpResult) PollOutcome {
	return Ready()
}

func TestDispatchReadyMarksDoneAndIncrementsCounter(t *testing.T) {
	sch := schedulerForDispatch(t)
	info := newPInfo(1, 0)
	pcb := newPCB(&dispatchProc{name: "p"}, info, nil, tracez.New())

	sch.admitted.Store(1)
	sch.dispatch(0, pcb, Ready())

	if !info.Done {
		t.Error("expected info.Done to be true")
	}
	if sch.done.Load() != 1 {
		t.Errorf("done counter = %d, want 1", sch.done.Load())
	}
}

func TestDispatchAddPriorityMutatesAndSendsMessage(t *testing.T) {
	sch := schedulerForDispatch(t)
	sink := make(chan string, 1)
	info := newPInfo(1, 5)
	info.Name = "bumper"
	pcb := newPCB(&dispatchProc{name: "bumper"}, info, sink, tracez.New())

	sch.dispatch(0, pcb, Polling(AddPriority{Delta: 3}))

	if info.Metric.Priority != 8 {
		t.Errorf("priority = %d, want 8", info.Metric.Priority)
	}
	select {
	case msg := <-sink:
		if msg == "" {
			t.Error("expected a non-empty priority-change message")
		}
	default:
		t.Error("expected a message on the sink")
	}
}

func TestDispatchSetPriorityPinsAbsoluteValue(t *testing.T) {
	sch := schedulerForDispatch(t)
	info := newPInfo(1, 5)
	pcb := newPCB(&dispatchProc{name: "p"}, info, nil, tracez.New())

	sch.dispatch(0, pcb, Polling(SetPriority{Priority: 42}))

	if info.Metric.Priority != 42 {
		t.Errorf("priority = %d, want 42", info.Metric.Priority)
	}
}

func TestDispatchFileOpSubmitsToIOPoolWithoutReadmitting(t *testing.T) {
	dir := t.TempDir()
	sch := newTestScheduler(t, 2)
	info := newPInfo(1, 0)
	pcb := newPCB(&dispatchProc{name: "reader"}, info, nil, tracez.New())

	sch.dispatch(0, pcb, Polling(ReadFile{Path: filepath.Join(dir, "missing.txt")}))

	// The PCB must not be readmitted to the dispatching worker's local
	// queue; the IOPool owns it until completion and then pushes it to the
	// injector itself.
	if sch.ready.locals[0].Len() != 0 {
		t.Error("file op should not readmit to the local queue")
	}
}

func TestRandomPeerNeverReturnsSelf(t *testing.T) {
	for trial := 0; trial < 50; trial++ {
		peer := randomPeer(2, 5)
		if peer == 2 {
			t.Fatalf("randomPeer returned self on trial %d", trial)
		}
	}
}

func TestRandomPeerSingleWorkerReturnsSelf(t *testing.T) {
	if got := randomPeer(0, 1); got != 0 {
		t.Errorf("randomPeer(0, 1) = %d, want 0", got)
	}
}
