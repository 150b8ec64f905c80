package stonesched

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Config configures a Scheduler built with Build. Zero-value fields
// take the defaults noted per field.
type Config struct {
	// Workers is the number of worker goroutines. Defaults to
	// runtime.NumCPU() when zero or negative.
	Workers int

	// TimeSlice is the unit used to compute PInfo.RunSlices. Defaults to
	// 20ms.
	TimeSlice time.Duration

	// IOPoolSize overrides the default ceil(n/2)+1 I/O pool sizing when
	// positive.
	IOPoolSize int

	// TxtDir is enumerated once at startup as read targets for file ops.
	// Defaults to "./txt".
	TxtDir string

	// OutDir is recorded on the I/O pool. Defaults to "./out". WriteFile
	// ops are written to the exact Path they carry; OutDir does not
	// redirect them.
	OutDir string

	// InitialPriority is the priority newly admitted processes start
	// with. Defaults to 0.
	InitialPriority int32

	// Clock abstracts time for poll accounting and testing. Defaults to
	// clockz.RealClock.
	Clock clockz.Clock
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TimeSlice <= 0 {
		c.TimeSlice = 20 * time.Millisecond
	}
	if c.IOPoolSize <= 0 {
		c.IOPoolSize = (c.Workers+1)/2 + 1
	}
	if c.TxtDir == "" {
		c.TxtDir = "./txt"
	}
	if c.OutDir == "" {
		c.OutDir = "./out"
	}
	if c.Clock == nil {
		c.Clock = clockz.RealClock
	}
	return c
}

// SchedulerSnapshot is a racily-read, point-in-time view of scheduler
// state for the telemetry renderer. Fields are read without
// synchronization by design: each field is internally consistent but
// the snapshot as a whole may be torn across a concurrent update.
type SchedulerSnapshot struct {
	Admitted         uint64
	Done             uint64
	Workers          int
	WorkersIdle      int
	ReadyDepth       int
	ThreadEfficiency float64
	PInfos           []*PInfo
	SchedulerDone    bool
}

// Scheduler is the façade: admission, shutdown coordination, and the
// shared resources every worker and the I/O pool draw on.
type Scheduler struct {
	cfg Config

	ready  *readySet
	parks  *parkTable
	iopool *IOPool
	tracer *tracez.Tracer

	metrics *metricz.Registry
	hooks   *hookz.Hooks[Event]

	workers []*Worker
	wg      sync.WaitGroup

	admitted atomic.Uint64
	done     atomic.Uint64
	nextID   atomic.Uint64
	idle     []atomic.Bool

	schedulerDone atomic.Bool
	shutdownOnce  sync.Once

	mu     sync.Mutex
	pinfos []*PInfo

	msgSink chan string
}

// Build constructs and starts a Scheduler: worker goroutines, the I/O
// pool, and the observability stack are all running by the time Build
// returns. Bootstrap failures are returned as errors, never panics.
func Build(cfg Config) (*Scheduler, error) {
	cfg = cfg.withDefaults()
	if cfg.Workers <= 0 {
		return nil, &BootstrapError{Component: "scheduler", Err: ErrNoWorkers}
	}

	s := &Scheduler{
		cfg:     cfg,
		ready:   newReadySet(cfg.Workers),
		parks:   newParkTable(cfg.Workers),
		tracer:  tracez.New(),
		metrics: metricz.New(),
		hooks:   hookz.New[Event](),
		idle:    make([]atomic.Bool, cfg.Workers),
		msgSink: make(chan string, 1024),
	}

	s.metrics.Counter(MetricAdmittedTotal)
	s.metrics.Counter(MetricDoneTotal)
	s.metrics.Counter(MetricStealTotal)
	s.metrics.Counter(MetricParkTotal)
	s.metrics.Counter(MetricIOInFlight)
	s.metrics.Gauge(MetricReadyDepth)
	s.metrics.Gauge(MetricWorkersIdle)

	s.ready.attachMetrics(s.metrics)
	s.parks.attachMetrics(s.metrics)

	s.iopool = NewIOPool(cfg.IOPoolSize, s.ready, s.parks, s.tracer, s.metrics, cfg.TxtDir, cfg.OutDir)

	s.workers = make([]*Worker, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		s.workers[i] = newWorker(i, s)
	}

	s.wg.Add(cfg.Workers)
	for _, w := range s.workers {
		go func(w *Worker) {
			defer s.wg.Done()
			w.run()
		}(w)
	}

	return s, nil
}

// MessageSink exposes the shared outbound channel processes may write
// human-readable lines to; the message forwarder drains it.
func (s *Scheduler) MessageSink() chan<- string { return s.msgSink }

// Messages exposes the raw channel for the forwarder to range over.
func (s *Scheduler) Messages() <-chan string { return s.msgSink }

// Metrics returns the scheduler's metricz registry.
func (s *Scheduler) Metrics() *metricz.Registry { return s.metrics }

// Tracer returns the scheduler's tracez tracer.
func (s *Scheduler) Tracer() *tracez.Tracer { return s.tracer }

// Txts returns the read targets enumerated once at I/O-pool startup,
// for callers building a random workload that reads from the sample
// text directory.
func (s *Scheduler) Txts() []string { return s.iopool.Txts() }

// Hooks returns the scheduler's hookz hooks, keyed by the Event* constants.
func (s *Scheduler) Hooks() *hookz.Hooks[Event] { return s.hooks }

// Execute admits a process at the configured initial priority.
func (s *Scheduler) Execute(proc Process) {
	s.ExecutePriority(proc, s.cfg.InitialPriority)
}

// ExecutePriority admits a process at an explicit initial priority.
func (s *Scheduler) ExecutePriority(proc Process, priority int32) {
	id := s.nextID.Add(1)
	info := newPInfo(id, priority)
	info.Name = proc.Name()

	pcb := newPCB(proc, info, s.msgSink, s.tracer)

	s.mu.Lock()
	s.pinfos = append(s.pinfos, info)
	s.mu.Unlock()

	s.admitted.Add(1)
	s.metrics.Counter(MetricAdmittedTotal).Inc()

	s.ready.injector.Push(pcb)
	s.parks.unparkAll()

	_ = s.hooks.Emit(context.Background(), EventAdmitted, Event{ID: id, Name: proc.Name(), Priority: priority}) //nolint:errcheck
}

// Join blocks until every admitted process has completed and every
// worker has exited. MessageSink is closed as part of that shutdown, so a
// forwarder ranging over Messages() observes closure and its own Done
// channel fires; callers also running a telemetry renderer should wait
// on the renderer's Done channel separately, since the renderer lives
// outside this package and detects completion from Snapshot on its own
// tick rather than being driven by Join.
func (s *Scheduler) Join() {
	for s.admitted.Load() > 0 && !s.schedulerDone.Load() {
		time.Sleep(time.Millisecond)
	}
	s.wg.Wait()
}

// InfiniteRun blocks on the worker goroutines without polling for
// completion, used when admissions may still arrive from other
// goroutines after the call. It returns once every worker has exited,
// which happens when the done count reaches the admitted count.
func (s *Scheduler) InfiniteRun() {
	s.wg.Wait()
}

// Snapshot returns a racily-consistent view of scheduler state for the
// telemetry renderer.
func (s *Scheduler) Snapshot() SchedulerSnapshot {
	s.mu.Lock()
	pinfos := make([]*PInfo, len(s.pinfos))
	copy(pinfos, s.pinfos)
	s.mu.Unlock()

	idleCount := 0
	for i := range s.idle {
		if s.idle[i].Load() {
			idleCount++
		}
	}

	admitted := s.admitted.Load()
	done := s.done.Load()
	remaining := int(admitted - done)
	running := len(s.workers) - idleCount
	denom := remaining
	if denom > len(s.workers) {
		denom = len(s.workers)
	}
	efficiency := 0.0
	if denom > 0 {
		efficiency = float64(running) / float64(denom)
	}

	readyDepth := s.ready.depth()
	if s.metrics != nil {
		s.metrics.Gauge(MetricReadyDepth).Set(float64(readyDepth))
		s.metrics.Gauge(MetricWorkersIdle).Set(float64(idleCount))
	}

	return SchedulerSnapshot{
		Admitted:         admitted,
		Done:             done,
		Workers:          len(s.workers),
		WorkersIdle:      idleCount,
		ReadyDepth:       readyDepth,
		ThreadEfficiency: efficiency,
		PInfos:           pinfos,
		SchedulerDone:    s.schedulerDone.Load(),
	}
}

func (s *Scheduler) markIdle(id int, idle bool) {
	s.idle[id].Store(idle)
}

// completeOne records a process completion and triggers shutdown once
// every admitted process is done.
func (s *Scheduler) completeOne(info *PInfo) {
	info.Done = true
	done := s.done.Add(1)
	s.metrics.Counter(MetricDoneTotal).Inc()

	_ = s.hooks.Emit(context.Background(), EventCompleted, Event{ //nolint:errcheck
		ID:            info.ID,
		Name:          info.Name,
		RunningTime:   info.Metric.RunningTime.Seconds(),
		AdmittedTotal: s.admitted.Load(),
		DoneTotal:     done,
	})

	if done >= s.admitted.Load() {
		s.shutdownOnce.Do(func() {
			s.schedulerDone.Store(true)
			s.iopool.Close()
			s.parks.shutdown()
			_ = s.hooks.Emit(context.Background(), EventShutdown, Event{AdmittedTotal: s.admitted.Load()}) //nolint:errcheck
			close(s.msgSink)
		})
	}
}
