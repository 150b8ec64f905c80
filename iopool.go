package stonesched

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// ioJob pairs a PCB removed from a worker's hot path with the file op it
// issued.
type ioJob struct {
	pcb *PCB
	op  Op
}

// IOPool services blocking file reads and writes off the worker
// threads, sized at ceil(n/2)+1 by default (see Config.IOPoolSize). It
// owns a job queue buffered to 256 entries (Submit blocks while it is
// full) drained by a fixed-size pool of consumer goroutines, one
// dedicated loop per slot rather than one goroutine per call.
type IOPool struct {
	jobs    chan ioJob
	wg      sync.WaitGroup
	ready   *readySet
	parks   *parkTable
	tracer  *tracez.Tracer
	metrics *metricz.Registry
	outDir  string
	txts    []string // enumerated once at startup, never mutated after
}

// NewIOPool enumerates txtDir once into an immutable slice and starts
// size worker goroutines draining the job queue. A missing or
// unreadable txtDir is not a bootstrap failure — it simply yields no
// read targets.
func NewIOPool(size int, rs *readySet, parks *parkTable, tracer *tracez.Tracer, metrics *metricz.Registry, txtDir, outDir string) *IOPool {
	if size <= 0 {
		size = 1
	}

	pool := &IOPool{
		jobs:    make(chan ioJob, 256),
		ready:   rs,
		parks:   parks,
		tracer:  tracer,
		metrics: metrics,
		outDir:  outDir,
		txts:    enumerateTxts(txtDir),
	}

	pool.wg.Add(size)
	for i := 0; i < size; i++ {
		go pool.loop()
	}

	return pool
}

func enumerateTxts(dir string) []string {
	var out []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out
}

// Txts returns the immutable set of sample files enumerated at startup.
func (p *IOPool) Txts() []string { return p.txts }

// Submit hands a PCB and its file op to the pool. The caller must not
// touch pcb again until it reappears through the injector.
func (p *IOPool) Submit(pcb *PCB, op Op) {
	p.jobs <- ioJob{pcb: pcb, op: op}
}

// Close drains and stops the pool's workers. Callers must ensure no
// further Submit calls occur once Close has been invoked.
func (p *IOPool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *IOPool) loop() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.service(job)
	}
}

func (p *IOPool) service(job ioJob) {
	_, span := p.tracer.StartSpan(context.Background(), fileOpSpan)

	var result FileOpResult
	switch op := job.op.(type) {
	case ReadFile:
		result = p.read(job.pcb, op)
		span.SetTag(tagFileOpKind, "read")
	case WriteFile:
		result = p.write(job.pcb, op)
		span.SetTag(tagFileOpKind, "write")
	default:
		result = NoFileResult{}
	}

	if p.metrics != nil {
		p.metrics.Counter(MetricIOInFlight).Add(-1)
	}

	job.pcb.last = result
	job.pcb.info.Stones = appendOps(job.pcb.info.Stones, StoneFile)
	span.Finish()

	p.ready.injector.Push(job.pcb)
	p.parks.unparkRandomIOAware(rand.Intn)
}

func (p *IOPool) read(pcb *PCB, op ReadFile) FileOpResult {
	if fb, ok := pcb.proc.(FileBufferer); ok {
		if buf := fb.FileBuffer(); buf != nil {
			*buf = ""
		}
	} else {
		p.warnf(pcb, op.Path, "read", ErrBufMissing)
		return ReadResult{BufMissing: true}
	}

	data, err := os.ReadFile(op.Path)
	if err != nil {
		p.warnf(pcb, op.Path, "read", err)
		return ReadResult{Err: &FileOpError{Process: pcb.proc.Name(), Path: op.Path, Op: "read", Err: err}}
	}

	if fb, ok := pcb.proc.(FileBufferer); ok {
		if buf := fb.FileBuffer(); buf != nil {
			*buf = string(data)
		}
	}

	return ReadResult{N: len(data)}
}

func (p *IOPool) write(pcb *PCB, op WriteFile) FileOpResult {
	if err := os.MkdirAll(filepath.Dir(op.Path), 0o755); err != nil {
		p.warnf(pcb, op.Path, "write", err)
		return WriteResult{Path: op.Path, Err: &FileOpError{Process: pcb.proc.Name(), Path: op.Path, Op: "write", Err: err}}
	}

	if err := os.WriteFile(op.Path, []byte(op.Content), 0o644); err != nil {
		p.warnf(pcb, op.Path, "write", err)
		return WriteResult{Path: op.Path, Err: &FileOpError{Process: pcb.proc.Name(), Path: op.Path, Op: "write", Err: err}}
	}

	return WriteResult{Path: op.Path}
}

func (p *IOPool) warnf(pcb *PCB, path, op string, err error) {
	capitan.Warn(context.Background(), SignalFileOpFailed,
		FieldName.Field(pcb.proc.Name()),
		FieldPath.Field(path),
		FieldError.Field(err.Error()),
	)
}
