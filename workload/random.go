package workload

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/zoobzio/stonesched"
)

// words is a small built-in list used for write-op filenames and
// contents, for chatty messages, and as a fallback read path.
var words = []string{
	"amber", "basalt", "cobalt", "drift", "ember", "flint", "granite",
	"harbor", "ivory", "jasper", "kindle", "lichen", "marrow", "nectar",
	"opal", "pebble", "quartz", "ridge", "slate", "tundra", "umber",
	"violet", "willow", "xenon", "yarrow", "zephyr",
}

func randomWord() string {
	return words[rand.Intn(len(words))]
}

// RandomProcess takes a random number of steps, sleeping a random
// duration per step, occasionally emitting a priority op, a file op,
// or a chatty message.
type RandomProcess struct {
	state    uint32
	stateMax uint32
	sleepLo  time.Duration
	sleepHi  time.Duration
	name     string
	buf      string
	txts     []string
}

// NewRandomProcess builds a process that runs for stateMax steps,
// sleeping a random duration in [sleepLo, sleepHi) each step (exactly
// sleepLo when sleepHi <= sleepLo). txts is
// the pool of read targets enumerated by the I/O pool at startup.
func NewRandomProcess(stateMax uint32, sleepLo, sleepHi time.Duration, txts []string) *RandomProcess {
	return &RandomProcess{
		stateMax: stateMax,
		sleepLo:  sleepLo,
		sleepHi:  sleepHi,
		name:     "Random Ready",
		txts:     txts,
	}
}

func (p *RandomProcess) Name() string { return p.name }

// FileBuffer implements stonesched.FileBufferer.
func (p *RandomProcess) FileBuffer() *string { return &p.buf }

func (p *RandomProcess) Poll(msgTx chan<- string, last stonesched.FileOpResult) stonesched.PollOutcome {
	p.reportLastResult(msgTx, last)

	if p.state == p.stateMax {
		return stonesched.Ready()
	}

	sleepFor := randomDuration(p.sleepLo, p.sleepHi)
	p.writeName(sleepFor)

	if rand.Intn(10000) == 0 {
		send(msgTx, fmt.Sprintf("%s say: %s", p.name, randomWord()))
	}

	time.Sleep(sleepFor)
	p.state++

	return p.randomOp()
}

func (p *RandomProcess) reportLastResult(msgTx chan<- string, last stonesched.FileOpResult) {
	switch r := last.(type) {
	case stonesched.ReadResult:
		switch {
		case r.Err != nil:
			send(msgTx, fmt.Sprintf("%s READ ERR: %v", p.name, r.Err))
		case r.BufMissing:
		default:
			send(msgTx, fmt.Sprintf("%s READ: %s", p.name, p.buf))
		}
	case stonesched.WriteResult:
		if r.Err != nil {
			send(msgTx, fmt.Sprintf("%s [%s] WRITE ERR: %v", p.name, r.Path, r.Err))
		} else {
			send(msgTx, fmt.Sprintf("%s [%s] WRITE OK.", p.name, r.Path))
		}
	}
}

func (p *RandomProcess) writeName(sleepFor time.Duration) {
	p.name = fmt.Sprintf("[%d-%s %d]", p.state+1, sleepFor.Round(time.Millisecond), p.stateMax)
}

func (p *RandomProcess) randomOp() stonesched.PollOutcome {
	switch rand.Intn(10000) {
	case 0:
		return stonesched.Polling(stonesched.AddPriority{Delta: int32(1 + rand.Intn(30))})
	case 1:
		return stonesched.Polling(stonesched.SubPriority{Delta: int32(1 + rand.Intn(30))})
	case 2:
		return stonesched.Polling(stonesched.SetPriority{Priority: int32(1 + rand.Intn(30))})
	case 3:
		return stonesched.Polling(stonesched.ReadFile{Path: p.pickReadPath()})
	case 4:
		return stonesched.Polling(stonesched.WriteFile{
			Path:    fmt.Sprintf("out/%s.txt", randomWord()),
			Content: randomWord(),
		})
	default:
		return stonesched.Polling(stonesched.NoOp{})
	}
}

func (p *RandomProcess) pickReadPath() string {
	choice := rand.Intn(len(p.txts) + 2)
	if choice < len(p.txts) {
		return p.txts[choice]
	}
	return randomWord()
}

func send(msgTx chan<- string, msg string) {
	select {
	case msgTx <- msg:
	default:
	}
}

func randomDuration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

// RandomFactory builds a batch of RandomProcess instances, each with
// its own random step count and sleep range.
type RandomFactory struct {
	procs []*RandomProcess
}

// NewRandomFactory builds size random processes, each taking up to
// stateMax steps (chosen per-process up to the given bound) sleeping
// within a range derived from sleepRange: each process independently
// picks a random lower bound in [0, sleepRange[0]) and a random upper
// bound in [sleepRange[0], sleepRange[1]).
func NewRandomFactory(size int, stateMax uint32, sleepRange [2]time.Duration, txts []string) *RandomFactory {
	f := &RandomFactory{procs: make([]*RandomProcess, 0, size)}
	for i := 0; i < size; i++ {
		lo := randomDuration(0, sleepRange[0])
		hi := randomDuration(sleepRange[0], sleepRange[1])
		steps := uint32(rand.Int63n(int64(stateMax) + 1))
		f.procs = append(f.procs, NewRandomProcess(steps, lo, hi, txts))
	}
	return f
}

// Processes returns every process the factory built.
func (f *RandomFactory) Processes() []*RandomProcess { return f.procs }

// Len reports how many processes this factory built.
func (f *RandomFactory) Len() int { return len(f.procs) }
