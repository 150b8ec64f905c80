package stonesched

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// immediateProcess returns Ready on its first poll.
type immediateProcess struct{ name string }

func (p *immediateProcess) Name() string { return p.name }
func (p *immediateProcess) Poll(chan<- string, FileOpResult) PollOutcome {
	return Ready()
}

// stepProcess returns NoOp for steps-1 polls, then Ready.
type stepProcess struct {
	name  string
	steps int
	done  int
}

func (p *stepProcess) Name() string { return p.name }
func (p *stepProcess) Poll(chan<- string, FileOpResult) PollOutcome {
	p.done++
	if p.done >= p.steps {
		return Ready()
	}
	return Polling(NoOp{})
}

// priorityBumpProcess issues AddPriority(delta) k times then completes.
type priorityBumpProcess struct {
	name  string
	delta int32
	k     int
	sent  int
}

func (p *priorityBumpProcess) Name() string { return p.name }
func (p *priorityBumpProcess) Poll(chan<- string, FileOpResult) PollOutcome {
	if p.sent >= p.k {
		return Ready()
	}
	p.sent++
	return Polling(AddPriority{Delta: p.delta})
}

func newTestScheduler(t *testing.T, workers int) *Scheduler {
	t.Helper()
	dir := t.TempDir()
	sch, err := Build(Config{
		Workers: workers,
		TxtDir:  filepath.Join(dir, "txt"),
		OutDir:  filepath.Join(dir, "out"),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return sch
}

func TestScenarioImmediateReady(t *testing.T) {
	sch := newTestScheduler(t, 2)
	sch.Execute(&immediateProcess{name: "p1"})
	sch.Join()

	if sch.admitted.Load() != 1 || sch.done.Load() != 1 {
		t.Fatalf("admitted=%d done=%d, want 1/1", sch.admitted.Load(), sch.done.Load())
	}

	snap := sch.Snapshot()
	if len(snap.PInfos) != 1 {
		t.Fatalf("expected 1 PInfo, got %d", len(snap.PInfos))
	}
	info := snap.PInfos[0]
	if !info.Done {
		t.Error("expected PInfo.Done")
	}
	if len(info.Stones) != 1 {
		t.Fatalf("expected exactly one stone, got %d", len(info.Stones))
	}
	if _, ok := info.Stones[0].(TimeStone); !ok {
		t.Errorf("expected a TimeStone, got %T", info.Stones[0])
	}
}

func TestScenarioPriorityBumpFinalValue(t *testing.T) {
	sch := newTestScheduler(t, 2)
	proc := &priorityBumpProcess{name: "bumper", delta: 10, k: 3}
	sch.Execute(proc)
	sch.Join()

	snap := sch.Snapshot()
	info := snap.PInfos[0]
	if info.Metric.Priority != 30 {
		t.Errorf("final priority = %d, want 30", info.Metric.Priority)
	}
}

func TestManyProcessesAllComplete(t *testing.T) {
	sch := newTestScheduler(t, 4)
	const n = 50
	for i := 0; i < n; i++ {
		sch.Execute(&stepProcess{name: "p", steps: 5})
	}
	sch.Join()

	if sch.done.Load() != n || sch.admitted.Load() != n {
		t.Fatalf("admitted=%d done=%d, want %d/%d", sch.admitted.Load(), sch.done.Load(), n, n)
	}
	if sch.done.Load() > sch.admitted.Load() {
		t.Fatal("done exceeded admitted")
	}
}

func TestSingleWorkerHigherPriorityRunningTimeWithinCompensation(t *testing.T) {
	sch := newTestScheduler(t, 1)

	a := &stepProcess{name: "A", steps: 50} // priority 0
	b := &stepProcess{name: "B", steps: 50}

	sch.ExecutePriority(a, 0)
	sch.ExecutePriority(b, 100)
	sch.Join()

	snap := sch.Snapshot()
	var runA, runB time.Duration
	for _, info := range snap.PInfos {
		switch info.Name {
		case "A":
			runA = info.Metric.RunningTime
		case "B":
			runB = info.Metric.RunningTime
		}
	}

	if runB > runA+100*Compensate {
		t.Errorf("higher-priority process B accumulated more running time than compensation allows: runA=%v runB=%v", runA, runB)
	}
}

func TestWriteFileOpProducesOpsStoneAndFile(t *testing.T) {
	sch := newTestScheduler(t, 2)

	path := filepath.Join(t.TempDir(), "result.txt")
	proc := &writerOnceProcess{name: "writer", path: path}
	sch.Execute(proc)
	sch.Join()

	snap := sch.Snapshot()
	info := snap.PInfos[0]

	foundOps := false
	for _, s := range info.Stones {
		if ops, ok := s.(OpsStone); ok && ops.Kind == StoneFile {
			foundOps = true
		}
	}
	if !foundOps {
		t.Error("expected an OpsStone{Kind: StoneFile} on the timeline")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(data) != "payload" {
		t.Errorf("file content = %q, want %q", data, "payload")
	}
}

type writerOnceProcess struct {
	name string
	path string
	sent bool
}

func (p *writerOnceProcess) Name() string { return p.name }
func (p *writerOnceProcess) Poll(_ chan<- string, last FileOpResult) PollOutcome {
	if !p.sent {
		p.sent = true
		return Polling(WriteFile{Path: p.path, Content: "payload"})
	}
	if _, ok := last.(WriteResult); ok {
		return Ready()
	}
	return Polling(NoOp{})
}
