// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// scq2Segment is the SCQ2 (double-wide CAS) bounded segment: cycle and
// element pointer packed into one atomix.Uint128 entry per slot, CAS'd
// together in a single instruction instead of the SCQD segment's
// load-then-store-release pair. Grounded directly on the teacher's
// MPMCIndirect/MPMCPtr (mpmc_128.go), which already pack a cycle and a
// uintptr-sized payload into one Uint128 entry for the same reason
// (collapsing 2-3 atomics per operation into 1); here the payload is a
// *T instead of a raw uintptr or unsafe.Pointer handle.
//
// Entry format: lo = cycle, hi = element pointer bits.
type scq2Segment[T any] struct {
	_         pad
	tail      atomix.Uint64
	_         pad
	head      atomix.Uint64
	_         pad
	threshold atomix.Int64
	_         pad
	drain     *atomix.Bool
	buffer    [2 * segCapacity]scq2Slot
}

type scq2Slot struct {
	entry atomix.Uint128 // lo=cycle, hi=*T bits
	_     padSlot
}

func newSCQ2Segment[T any](drain *atomix.Bool) *scq2Segment[T] {
	s := &scq2Segment[T]{drain: drain}
	s.threshold.StoreRelaxed(3*segCapacity - 1)
	for i := uint64(0); i < 2*segCapacity; i++ {
		s.buffer[i].entry.StoreRelaxed(i/segCapacity, 0)
	}
	return s
}

func (s *scq2Segment[T]) tryEnqueue(elem *T) bool {
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
		slotCycle, valHi := slot.entry.LoadAcquire()

		if slotCycle == expectedCycle {
			if slot.entry.CompareAndSwapAcqRel(expectedCycle, valHi, expectedCycle+1, uint64(uintptr(unsafe.Pointer(elem)))) {
				s.threshold.StoreRelaxed(3*capacity - 1)
				return true
			}
		}

		if int64(slotCycle) < int64(expectedCycle) {
			return false
		}

		sw.Once()
	}
}

func (s *scq2Segment[T]) tryDequeue() (*T, bool) {
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
		slotCycle, valHi := slot.entry.LoadAcquire()

		if slotCycle == expectedCycle {
			nextEnqCycle := (myHead + size) / capacity
			if slot.entry.CompareAndSwapAcqRel(slotCycle, valHi, nextEnqCycle, 0) {
				return (*T)(unsafe.Pointer(uintptr(valHi))), true
			}
		}

		if int64(slotCycle) < int64(expectedCycle) {
			nextEnqCycle := (myHead + size) / capacity
			slot.entry.CompareAndSwapAcqRel(slotCycle, valHi, nextEnqCycle, 0)

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

func (s *scq2Segment[T]) resetThreshold() {
	s.threshold.StoreRelaxed(3*segCapacity - 1)
}

func (s *scq2Segment[T]) draining() bool {
	return s.drain != nil && s.drain.LoadAcquire()
}

func (s *scq2Segment[T]) catchup(tail, head uint64) {
	for tail < head {
		if s.tail.CompareAndSwapRelaxed(tail, head) {
			break
		}
		tail = s.tail.LoadRelaxed()
		head = s.head.LoadRelaxed()
	}
}
