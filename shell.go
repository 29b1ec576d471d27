// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

const (
	hpEnqTail = 0
	hpDeqHead = 0
)

// node is one link of the segmented list: a bounded segment S plus the
// next pointer the shell uses to chain segments together. Segment linkage
// uses sync/atomic.Pointer, not atomix, so the Go garbage collector can
// trace live segments directly — see DESIGN.md.
type node[T any, S segment[T]] struct {
	ring S
	next atomic.Pointer[node[T, S]]
}

// Queue is the generic unbounded, lock-free, multi-producer multi-consumer
// FIFO queue: a segmented list of bounded sub-queues of kind S, reclaimed
// with hazard pointers. It is the Go realization of the capability-trait
// shell spec's design notes call for — S supplies the bounded algorithm,
// Queue supplies growth and reclamation, identical for every S.
//
// Grounded line-for-line on
// original_source/include/queues/lcr/lcrq.hpp's queue<T>::enqueue/dequeue,
// which already separates a generic list-of-rings shell from the bounded
// ring body the exact way this type separates Queue from segment.
type Queue[T any, S segment[T]] struct {
	_          pad
	head       atomic.Pointer[node[T, S]]
	_          pad
	tail       atomic.Pointer[node[T, S]]
	_          pad
	hazards    *hazardDomain[node[T, S]]
	maxThreads int
	drain      atomix.Bool
	newSegment func(*atomix.Bool) S
}

func newQueue[T any, S segment[T]](maxThreads int, newSegment func(*atomix.Bool) S) *Queue[T, S] {
	if maxThreads <= 0 {
		maxThreads = DefaultMaxThreads
	}
	q := &Queue[T, S]{
		hazards:    newHazardDomain[node[T, S]](maxThreads, 1, 0),
		maxThreads: maxThreads,
		newSegment: newSegment,
	}
	head := &node[T, S]{ring: newSegment(&q.drain)}
	q.head.Store(head)
	q.tail.Store(head)
	return q
}

// Enqueue adds elem to the queue. tid must be unique among concurrently
// active callers, in [0, maxThreads). Returns ErrNilElement if elem is nil;
// never blocks and never reports the queue full, since the queue grows a
// new segment instead.
func (q *Queue[T, S]) Enqueue(elem *T, tid int) error {
	if elem == nil {
		return ErrNilElement
	}
	checkTid(tid, q.maxThreads)

	for {
		tail := q.hazards.protect(&q.tail, tid, hpEnqTail)
		if tail != q.tail.Load() {
			continue
		}

		if next := tail.next.Load(); next != nil {
			q.tail.CompareAndSwap(tail, next)
			continue
		}

		if tail.ring.tryEnqueue(elem) {
			break
		}

		// Segment full or closed: append a new segment seeded with elem.
		// The seed cannot fail, since no other thread can see newNode yet.
		newNode := &node[T, S]{ring: q.newSegment(&q.drain)}
		newNode.ring.tryEnqueue(elem)
		if tail.next.CompareAndSwap(nil, newNode) {
			q.tail.CompareAndSwap(tail, newNode)
			break
		}
	}

	q.hazards.clearOne(tid, hpEnqTail)
	return nil
}

// Dequeue removes and returns the oldest element. tid must be unique among
// concurrently active callers, in [0, maxThreads). Returns ok=false if the
// queue was observed empty.
func (q *Queue[T, S]) Dequeue(tid int) (elem *T, ok bool) {
	checkTid(tid, q.maxThreads)

	for {
		head := q.hazards.protect(&q.head, tid, hpDeqHead)
		if head != q.head.Load() {
			continue
		}

		if elem, ok = head.ring.tryDequeue(); ok {
			break
		}

		if head.next.Load() == nil {
			elem, ok = nil, false
			break
		}

		// Give the segment one final chance to surrender stragglers
		// before it can be retired: rearm its livelock-avoidance
		// threshold, then retry the dequeue, exactly as
		// lscq.hpp's queue<T,N>::dequeue does between its two
		// try_dequeue calls.
		head.ring.resetThreshold()
		if elem, ok = head.ring.tryDequeue(); ok {
			break
		}

		next := head.next.Load()
		if q.head.CompareAndSwap(head, next) {
			q.hazards.retire(head, tid)
		}
	}

	q.hazards.clearOne(tid, hpDeqHead)
	return elem, ok
}

// Drain signals that no more enqueues will occur, letting the SCQ family's
// segments skip their livelock-avoidance threshold check so consumers can
// drain remaining items eagerly. Has no effect on FAA and LCRQ segments,
// which have no threshold or drain check.
func (q *Queue[T, S]) Drain() {
	q.drain.StoreRelease(true)
}
