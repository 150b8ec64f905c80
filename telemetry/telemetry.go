// Package telemetry renders a periodic terminal snapshot of a
// stonesched.Scheduler's worker and process state. It is an external
// collaborator per the scheduling core's scope: the exact glyph
// choices below are a reference implementation, not part of the
// scheduling contract.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/stonesched"
)

const (
	clearScreen = "\x1b[2J\x1b[H"

	glyphTenSeconds = "☀"
	glyphOneSecond  = "🌙"
	glyphFiftyMilli = "⭐"
	glyphFileOp     = "📄"
	glyphNetOp      = "🌐"
	glyphDone       = "🏁"
)

// Source is the subset of *stonesched.Scheduler the renderer needs.
// Matching against an interface rather than the concrete type keeps
// this package's only dependency on stonesched narrow and testable.
type Source interface {
	Snapshot() stonesched.SchedulerSnapshot
}

// Renderer periodically writes a snapshot of scheduler state to Out.
type Renderer struct {
	Source   Source
	Out      io.Writer
	Interval time.Duration
	Clock    clockz.Clock

	done chan struct{}
}

// New builds a Renderer with the given tick interval. A zero interval
// defaults to 200ms.
func New(source Source, out io.Writer, interval time.Duration) *Renderer {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &Renderer{
		Source:   source,
		Out:      out,
		Interval: interval,
		Clock:    clockz.RealClock,
		done:     make(chan struct{}),
	}
}

// Run ticks until ctx is canceled or the scheduler reports completion,
// at which point it prints a completion banner and closes Done.
func (r *Renderer) Run(ctx context.Context) {
	defer close(r.done)
	start := r.Clock.Now()

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := r.Source.Snapshot()
			fmt.Fprint(r.Out, clearScreen)
			fmt.Fprint(r.Out, render(snap, r.Clock.Now().Sub(start)))

			if snap.SchedulerDone && snap.Done == snap.Admitted {
				fmt.Fprintln(r.Out, "\nALL DONE!")
				return
			}
		}
	}
}

// Done reports the channel that closes once rendering has stopped.
func (r *Renderer) Done() <-chan struct{} { return r.done }

func render(snap stonesched.SchedulerSnapshot, elapsed time.Duration) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Cost Time: %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "Threads: %d\n", snap.Workers)
	fmt.Fprintf(&b, "Completes: %d/%d\n", snap.Done, snap.Admitted)
	fmt.Fprintf(&b, "Running Threads: %d/%d\n", snap.Workers-snap.WorkersIdle, snap.Workers)
	fmt.Fprintf(&b, "Threads Efficiency: %.2f\n\n", snap.ThreadEfficiency)

	for _, info := range snap.PInfos {
		fmt.Fprintf(&b, "%d. %s (%d %s x%.1f): ",
			info.ID, info.Name, info.Metric.Priority,
			info.Metric.RunningTime.Round(time.Millisecond), info.RunSlices)
		b.WriteString(renderTimeline(info.Stones))
		if info.Done {
			b.WriteString(glyphDone)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderTimeline(stones []stonesched.Stone) string {
	var b strings.Builder
	for _, s := range stones {
		switch v := s.(type) {
		case stonesched.TimeStone:
			b.WriteString(renderTimeBuckets(v.Duration))
		case stonesched.OpsStone:
			if v.Kind == stonesched.StoneNet {
				b.WriteString(glyphNetOp)
			} else {
				b.WriteString(glyphFileOp)
			}
		}
	}
	return b.String()
}

// renderTimeBuckets decomposes a duration greedily into 10s, 1s, and
// 50ms buckets, each emitting its own glyph repeated once per whole
// bucket it contains.
func renderTimeBuckets(d time.Duration) string {
	var b strings.Builder

	tens := d / (10 * time.Second)
	d -= tens * 10 * time.Second
	for i := time.Duration(0); i < tens; i++ {
		b.WriteString(glyphTenSeconds)
	}

	ones := d / time.Second
	d -= ones * time.Second
	for i := time.Duration(0); i < ones; i++ {
		b.WriteString(glyphOneSecond)
	}

	fifties := d / (50 * time.Millisecond)
	for i := time.Duration(0); i < fifties; i++ {
		b.WriteString(glyphFiftyMilli)
	}

	return b.String()
}
