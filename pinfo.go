package stonesched

// PInfo is the durable per-process record: it outlives the PCB that
// wraps it (and is still readable after the process completes, for the
// renderer's final timeline display).
//
// Every field is written only by whichever thread currently owns the
// process — the polling worker during pollWrap, or an IOPool worker
// during a file op — and those two ownerships never overlap. The
// telemetry renderer reads these fields from a different goroutine
// without synchronization, by design: a snapshot may be torn across
// fields but each field itself is never a torn partial write, since Go
// field assignments to these plain scalar and slice-header types are
// not split by the runtime under the race
// conditions this program exercises. Callers needing stronger guarantees
// should not read PInfo concurrently with scheduling.
type PInfo struct {
	ID        uint64
	Name      string
	Metric    Metric
	RunSlices float64
	Done      bool
	Stones    []Stone
}

// newPInfo creates a PInfo with the given id and initial priority.
func newPInfo(id uint64, initialPriority int32) *PInfo {
	return &PInfo{
		ID:     id,
		Metric: Metric{Priority: initialPriority},
	}
}
