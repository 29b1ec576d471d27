// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// segCapacity is the fixed usable capacity of one bounded segment across
// every segment kind (FAA, LCRQ, SCQ2, SCQD), matching spec's NODE_SIZE /
// RING_SIZE / SCQ capacity = 1024.
const segCapacity = 1024

// scqdSegment is the SCQD (single-wide CAS) bounded segment: Nikolaev's
// Scalable Circular Queue with cycle-tagged slots and a threshold counter
// for livelock avoidance, grounded directly on the teacher's MPMC
// (mpmc.go) — the same FAA-ticket-claim, single-wide-CAS-on-cycle,
// 2n-physical-slots-for-capacity-n design, generalized from a
// standalone bounded queue into one segment behind the unbounded shell.
//
// Elements are stored as *T (pointer identity), not by value: the shell
// owns element lifetime, and an empty slot is represented by a nil cycle
// match failure, never by a reserved element bit pattern.
type scqdSegment[T any] struct {
	_         pad
	tail      atomix.Uint64
	_         pad
	head      atomix.Uint64
	_         pad
	threshold atomix.Int64
	_         pad
	drain     *atomix.Bool
	buffer    [2 * segCapacity]scqdSlot[T]
}

type scqdSlot[T any] struct {
	cycle atomix.Uint64
	data  unsafe.Pointer // *T
	_     padShort
}

// newSCQDSegment constructs an empty SCQD segment. drain is the queue-wide
// drain flag shared by every segment of one Queue; nil is accepted for
// standalone use.
func newSCQDSegment[T any](drain *atomix.Bool) *scqdSegment[T] {
	s := &scqdSegment[T]{drain: drain}
	s.threshold.StoreRelaxed(3*segCapacity - 1)
	for i := uint64(0); i < 2*segCapacity; i++ {
		s.buffer[i].cycle.StoreRelaxed(i / segCapacity)
	}
	return s
}

func (s *scqdSegment[T]) tryEnqueue(elem *T) bool {
	const capacity = segCapacity
	sw := spin.Wait{}
	for {
		tail := s.tail.LoadAcquire()
		head := s.head.LoadAcquire()
		if tail >= head+capacity {
			return false
		}

		myTail := s.tail.AddAcqRel(1) - 1

		slot := &s.buffer[myTail&(2*capacity-1)]
		expectedCycle := myTail / capacity
		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			slot.data = unsafe.Pointer(elem)
			slot.cycle.StoreRelease(expectedCycle + 1)
			s.threshold.StoreRelaxed(3*capacity - 1)
			return true
		}

		if int64(slotCycle) < int64(expectedCycle) {
			return false
		}

		sw.Once()
	}
}

func (s *scqdSegment[T]) tryDequeue() (*T, bool) {
	const capacity = segCapacity
	const size = 2 * capacity

	if s.threshold.LoadRelaxed() < 0 && !s.draining() {
		return nil, false
	}

	sw := spin.Wait{}
	for {
		myHead := s.head.AddAcqRel(1) - 1

		slot := &s.buffer[myHead&(size-1)]
		expectedCycle := myHead/capacity + 1
		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			elem := (*T)(slot.data)
			slot.data = nil
			nextEnqCycle := (myHead + size) / capacity
			slot.cycle.StoreRelease(nextEnqCycle)
			return elem, true
		}

		if int64(slotCycle) < int64(expectedCycle) {
			nextEnqCycle := (myHead + size) / capacity
			slot.cycle.CompareAndSwapAcqRel(slotCycle, nextEnqCycle)

			tail := s.tail.LoadAcquire()
			if tail <= myHead+1 {
				s.catchup(tail, myHead+1)
				s.threshold.AddAcqRel(-1)
				return nil, false
			}
			if s.threshold.AddAcqRel(-1) <= 0 && !s.draining() {
				return nil, false
			}
		}
		sw.Once()
	}
}

// resetThreshold rearms the livelock-avoidance counter. Called by the
// shell's Dequeue after a failed tryDequeue on a segment that already has
// a successor, just before its second tryDequeue attempt.
func (s *scqdSegment[T]) resetThreshold() {
	s.threshold.StoreRelaxed(3*segCapacity - 1)
}

func (s *scqdSegment[T]) draining() bool {
	return s.drain != nil && s.drain.LoadAcquire()
}

func (s *scqdSegment[T]) catchup(tail, head uint64) {
	for tail < head {
		if s.tail.CompareAndSwapRelaxed(tail, head) {
			break
		}
		tail = s.tail.LoadRelaxed()
		head = s.head.LoadRelaxed()
	}
}
