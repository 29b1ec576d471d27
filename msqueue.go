// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import "sync/atomic"

const (
	msHPEnqTail = 0
	msHPDeqHead = 0
	msHPDeqNext = 1
	// msScanThreshold is the Michael-Scott-specific hazard-pointer scan
	// threshold, preserved from michael_scott.hpp's constructor default
	// of 100 rather than the generic 2*maxThreads*hpPerThread default the
	// segmented-list families use.
	msScanThreshold = 100
)

// msNode is one Michael & Scott (1996) queue node: a single element plus a
// next pointer, one per enqueued item — unlike the segmented families,
// there is no bounded sub-queue batching here.
type msNode[T any] struct {
	elem *T
	next atomic.Pointer[msNode[T]]
}

// MSQueue is the classic Michael & Scott lock-free queue, included as a
// legacy comparison baseline alongside the segmented-list families.
// Grounded line-for-line on
// original_source/include/queues/msc/michael_scott.hpp, cross-checked
// against the idiomatic Go CAS-loop phrasing in
// other_examples' maolonglong lock-free queue transliteration of the same
// algorithm. It does not participate in the segmented-list shell (§4.F):
// one real node per element, not per batch.
type MSQueue[T any] struct {
	_          pad
	head       atomic.Pointer[msNode[T]]
	_          pad
	tail       atomic.Pointer[msNode[T]]
	_          pad
	hazards    *hazardDomain[msNode[T]]
	maxThreads int
}

// NewMichaelScott constructs an empty Michael & Scott queue sized for
// maxThreads concurrently active thread identifiers.
func NewMichaelScott[T any](maxThreads int) *MSQueue[T] {
	if maxThreads <= 0 {
		maxThreads = DefaultMaxThreads
	}
	q := &MSQueue[T]{
		hazards:    newHazardDomain[msNode[T]](maxThreads, 2, msScanThreshold),
		maxThreads: maxThreads,
	}
	sentinel := &msNode[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Enqueue adds elem to the queue. tid must be unique among concurrently
// active callers, in [0, maxThreads). Returns ErrNilElement if elem is nil.
func (q *MSQueue[T]) Enqueue(elem *T, tid int) error {
	if elem == nil {
		return ErrNilElement
	}
	checkTid(tid, q.maxThreads)

	newNode := &msNode[T]{elem: elem}
	for {
		tail := q.hazards.protect(&q.tail, tid, msHPEnqTail)
		if q.tail.Load() != tail {
			continue
		}

		expected := tail.next.Load()
		if expected == nil {
			if tail.next.CompareAndSwap(nil, newNode) {
				q.tail.CompareAndSwap(tail, newNode)
				break
			}
		} else {
			q.tail.CompareAndSwap(tail, expected)
		}
	}

	q.hazards.clearOne(tid, msHPEnqTail)
	return nil
}

// Dequeue removes and returns the oldest element. tid must be unique among
// concurrently active callers, in [0, maxThreads). Returns ok=false if the
// queue was observed empty.
func (q *MSQueue[T]) Dequeue(tid int) (*T, bool) {
	checkTid(tid, q.maxThreads)

	head := q.hazards.protect(&q.head, tid, msHPDeqHead)

	for head != q.tail.Load() {
		next := q.hazards.protect(&head.next, tid, msHPDeqNext)
		if q.head.CompareAndSwap(head, next) {
			res := next.elem
			q.hazards.clear(tid)
			q.hazards.retire(head, tid)
			return res, true
		}
		head = q.hazards.protect(&q.head, tid, msHPDeqHead)
	}

	q.hazards.clear(tid)
	return nil, false
}
