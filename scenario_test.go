package stonesched_test

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zoobzio/stonesched"
)

// microStepProcess takes a random number of short sleep steps with an
// occasional priority bump partway through — the same shape as scenario
// 3's "N micro-steps of 0-30ms sleeps with rare priority/file ops",
// scaled down to a size a unit test can actually run.
type microStepProcess struct {
	name  string
	steps int
	sleep time.Duration
	n     int
}

func (p *microStepProcess) Name() string { return p.name }

func (p *microStepProcess) Poll(_ chan<- string, _ stonesched.FileOpResult) stonesched.PollOutcome {
	if p.n >= p.steps {
		return stonesched.Ready()
	}
	time.Sleep(p.sleep)
	p.n++
	if p.steps > 1 && p.n == p.steps/2 {
		return stonesched.Polling(stonesched.AddPriority{Delta: 1})
	}
	return stonesched.Polling(stonesched.NoOp{})
}

// TestScenarioManyShortProcessesCompleteWithinBoundedWallTime is
// scenario 3: 20 processes with randomized step counts and rare
// priority ops all complete, and total wall time with W workers stays
// within the serial work divided by W plus a fixed two-second slack.
func TestScenarioManyShortProcessesCompleteWithinBoundedWallTime(t *testing.T) {
	const (
		processCount = 20
		workers      = 4
		maxSteps     = 15
		sleepPerStep = 2 * time.Millisecond
	)

	dir := t.TempDir()
	sch, err := stonesched.Build(stonesched.Config{
		Workers: workers,
		TxtDir:  filepath.Join(dir, "txt"),
		OutDir:  filepath.Join(dir, "out"),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var totalWork time.Duration
	for i := 0; i < processCount; i++ {
		steps := 1 + rand.Intn(maxSteps)
		totalWork += time.Duration(steps) * sleepPerStep
		sch.Execute(&microStepProcess{name: fmt.Sprintf("p%d", i), steps: steps, sleep: sleepPerStep})
	}

	start := time.Now()
	sch.Join()
	elapsed := time.Since(start)

	bound := totalWork/time.Duration(workers) + 2*time.Second
	if elapsed > bound {
		t.Errorf("elapsed %v exceeded bound %v (total work %v over %d workers)", elapsed, bound, totalWork, workers)
	}

	snap := sch.Snapshot()
	if snap.Done != processCount || snap.Admitted != processCount {
		t.Fatalf("admitted=%d done=%d, want %d/%d", snap.Admitted, snap.Done, processCount, processCount)
	}
}

// manyWriterProcess issues total sequential WriteFile ops, one per
// poll, without inspecting the WriteResult of the previous one.
type manyWriterProcess struct {
	name  string
	dir   string
	total int
	n     int
}

func (p *manyWriterProcess) Name() string { return p.name }

func (p *manyWriterProcess) Poll(_ chan<- string, _ stonesched.FileOpResult) stonesched.PollOutcome {
	if p.n >= p.total {
		return stonesched.Ready()
	}
	path := filepath.Join(p.dir, fmt.Sprintf("write_%04d.txt", p.n))
	content := fmt.Sprintf("payload-%d", p.n)
	p.n++
	return stonesched.Polling(stonesched.WriteFile{Path: path, Content: content})
}

// TestScenarioThousandWriteOpsProduceMatchingStonesAndFiles is scenario
// 5: a process emitting 1000 write ops produces 1000 Ops(File) stones
// and 1000 files on disk whose contents equal the respective payloads.
func TestScenarioThousandWriteOpsProduceMatchingStonesAndFiles(t *testing.T) {
	const total = 1000

	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	sch, err := stonesched.Build(stonesched.Config{
		Workers: 4,
		TxtDir:  filepath.Join(dir, "txt"),
		OutDir:  outDir,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sch.Execute(&manyWriterProcess{name: "writer", dir: outDir, total: total})
	sch.Join()

	snap := sch.Snapshot()
	if len(snap.PInfos) != 1 {
		t.Fatalf("expected 1 PInfo, got %d", len(snap.PInfos))
	}

	fileStones := 0
	for _, s := range snap.PInfos[0].Stones {
		if ops, ok := s.(stonesched.OpsStone); ok && ops.Kind == stonesched.StoneFile {
			fileStones++
		}
	}
	if fileStones != total {
		t.Errorf("got %d OpsStone{Kind: StoneFile} entries, want %d", fileStones, total)
	}

	for i := 0; i < total; i++ {
		path := filepath.Join(outDir, fmt.Sprintf("write_%04d.txt", i))
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		want := fmt.Sprintf("payload-%d", i)
		if string(data) != want {
			t.Errorf("%s content = %q, want %q", path, data, want)
		}
	}
}
