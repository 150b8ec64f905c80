package stonesched

import "container/heap"

// pcbHeap orders drained PCBs so the lowest adjusted scheduling key pops
// first: more priority and less accumulated running time both push a PCB
// toward the front. Starts empty each time a worker drains a batch and is
// fully emptied before the next drain, so plain heap.Push suffices — no
// decrease-key support is needed.
type pcbHeap []*PCB

func (h pcbHeap) Len() int { return len(h) }

func (h pcbHeap) Less(i, j int) bool {
	return h[i].info.Metric.Value() < h[j].info.Metric.Value()
}

func (h pcbHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pcbHeap) Push(x any) {
	*h = append(*h, x.(*PCB))
}

func (h *pcbHeap) Pop() any {
	old := *h
	n := len(old)
	pcb := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return pcb
}

var _ heap.Interface = (*pcbHeap)(nil)
