package stonesched

import (
	"context"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/tracez"
)

// PCB is the transient scheduling envelope binding a Process to its
// durable PInfo. A PCB is, at any moment, in exactly one of: the
// injector, a local queue, a worker's private heap, the IOPool's
// in-flight set, or terminally retired — enforced by
// construction, since only one goroutine ever holds a *PCB reference at
// a time: it travels between those places over channels and
// mutex-guarded queues, never shared.
type PCB struct {
	proc   Process
	info   *PInfo
	last   FileOpResult
	sink   chan<- string
	tracer *tracez.Tracer
}

func newPCB(proc Process, info *PInfo, sink chan<- string, tracer *tracez.Tracer) *PCB {
	return &PCB{proc: proc, info: info, last: NoFileResult{}, sink: sink, tracer: tracer}
}

// pollWrap wraps Process.Poll, measuring wall-clock duration with a
// monotonic clock and folding the result into the PInfo's accounting.
func (p *PCB) pollWrap(clock clockz.Clock, slice time.Duration) PollOutcome {
	_, span := p.tracer.StartSpan(context.Background(), pollSpan)
	start := clock.Now()

	outcome := p.proc.Poll(p.sink, p.last)
	p.last = NoFileResult{}

	duration := clock.Since(start)

	info := p.info
	info.Name = p.proc.Name()
	if slice > 0 {
		info.RunSlices += float64(duration) / float64(slice)
	}
	info.Metric.RunningTime += duration
	info.Stones = appendTime(info.Stones, duration)

	span.SetTag(tagProcessName, info.Name)
	span.SetTag(tagOutcomeDone, boolTag(outcome.Done))
	span.Finish()

	return outcome
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
