// Package workload provides reference Process implementations: a fixed
// demonstration batch (Fixed1..Fixed5) and a random workload factory.
// Concrete process business logic is explicitly out of scope for the
// scheduling core (stonesched never imports this package); this is a
// reference implementation so the program is runnable end to end.
package workload

import (
	"time"

	"github.com/zoobzio/stonesched"
)

// Fixed2 completes on its very first poll.
type Fixed2 struct{}

func (Fixed2) Name() string { return "P2" }
func (Fixed2) Poll(chan<- string, stonesched.FileOpResult) stonesched.PollOutcome {
	return stonesched.Ready()
}

// sleepSteps is a Process that sleeps each duration in order, one per
// poll, then completes.
type sleepSteps struct {
	name  string
	steps []time.Duration
	n     int
}

func (p *sleepSteps) Name() string { return p.name }

func (p *sleepSteps) Poll(chan<- string, stonesched.FileOpResult) stonesched.PollOutcome {
	if p.n >= len(p.steps) {
		return stonesched.Ready()
	}
	time.Sleep(p.steps[p.n])
	p.n++
	return stonesched.Polling(stonesched.NoOp{})
}

// Fixed3 sleeps 100ms, then 50ms, then completes.
func Fixed3() stonesched.Process {
	return &sleepSteps{name: "P3", steps: []time.Duration{100 * time.Millisecond, 50 * time.Millisecond}}
}

// Fixed4 sleeps 100ms, 100ms, then 2s, then completes.
func Fixed4() stonesched.Process {
	return &sleepSteps{name: "P4", steps: []time.Duration{
		100 * time.Millisecond, 100 * time.Millisecond, 2 * time.Second,
	}}
}

// Fixed5 sleeps 100ms, 100ms, 2s, then 400ms, then completes.
func Fixed5() stonesched.Process {
	return &sleepSteps{name: "P5", steps: []time.Duration{
		100 * time.Millisecond, 100 * time.Millisecond, 2 * time.Second, 400 * time.Millisecond,
	}}
}

// Fixed1 sleeps 40ms and bumps its own priority by 10, sleeps 30ms and
// reads a (likely missing) file, sleeps 30ms, then completes.
type Fixed1 struct {
	n int
}

func (*Fixed1) Name() string { return "P1" }

func (p *Fixed1) Poll(_ chan<- string, _ stonesched.FileOpResult) stonesched.PollOutcome {
	p.n++
	switch p.n {
	case 1:
		time.Sleep(40 * time.Millisecond)
		return stonesched.Polling(stonesched.AddPriority{Delta: 10})
	case 2:
		time.Sleep(30 * time.Millisecond)
		return stonesched.Polling(stonesched.ReadFile{Path: "file_open"})
	case 3:
		time.Sleep(30 * time.Millisecond)
		return stonesched.Polling(stonesched.NoOp{})
	default:
		return stonesched.Ready()
	}
}
