package stonesched

import "time"

// Compensate is the priority-to-time conversion constant: one point of
// priority is worth this much running-time credit when computing a
// process's scheduling key.
const Compensate = 20 * time.Millisecond

// Metric is the scheduling key: accumulated running time offset by
// priority. Lower Value wins — more priority and less accumulated time
// both push a process toward the front of a worker's heap.
type Metric struct {
	Priority    int32
	RunningTime time.Duration
}

// Value returns the adjusted scheduling key in nanoseconds. It is kept
// as a float64 rather than a time.Duration because priority can drive it
// negative, which time.Duration represents fine but which reads more
// naturally as a bare scheduling number than as a duration.
func (m Metric) Value() float64 {
	return float64(m.RunningTime) - float64(m.Priority)*float64(Compensate)
}
