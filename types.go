// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

// segment is the capability interface a bounded sub-queue algorithm must
// satisfy to be plugged in as one node's payload behind the unbounded
// segmented-list shell (Queue[T, S]).
//
// A segment never itself grows unbounded: once tryEnqueue reports false,
// the shell links a fresh segment and retries there. resetThreshold is a
// capability, not a type switch — it is a real operation for the SCQ
// family's livelock-avoidance counter and a no-op for FAA and LCRQ, which
// have no analogous counter to reset. This keeps the shell's dequeue
// second-chance path free of per-variant branching, matching the capability-trait
// modeling spec.md's design notes call for.
type segment[T any] interface {
	// tryEnqueue attempts to claim a slot and store elem. Reports false
	// when the segment is full (the shell must link a new node).
	tryEnqueue(elem *T) bool

	// tryDequeue attempts to claim and return the oldest live slot.
	// Reports false when the segment's variant-specific emptiness check
	// fires; the shell still must additionally check node.next itself
	// before treating false as queue-global emptiness (see Queue.Dequeue).
	tryDequeue() (elem *T, ok bool)

	// resetThreshold rearms a segment's livelock-avoidance counter before
	// the shell's second dequeue attempt on a segment that has a successor.
	// No-op for segment kinds without one.
	resetThreshold()
}

// Drainer is implemented by queue families with a producer-done signal
// that lets consumers skip threshold/livelock bookkeeping once no further
// enqueues will occur. Queue implements it for every segment kind, but it
// only changes behavior for the SCQ family; FAA and LCRQ segments ignore
// the signal. MSQueue does not implement it.
//
// Example:
//
//	prodWg.Wait() // all producers finished
//	if d, ok := any(q).(segqueue.Drainer); ok {
//	    d.Drain()
//	}
type Drainer interface {
	// Drain signals that no more enqueues will occur. After Drain, Dequeue
	// may skip threshold checks and drain remaining items eagerly.
	//
	// Drain is a hint — the caller must ensure no further Enqueue calls
	// are made afterward.
	Drain()
}

func checkTid(tid, maxThreads int) {
	if tid < 0 || tid >= maxThreads {
		panic("segqueue: tid out of range")
	}
}
