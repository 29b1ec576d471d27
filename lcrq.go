// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// lcrqStatusBit is the top bit of a cell's index word: set means "safe",
// clear means "unsafe" (the cell cannot accept an enqueue unless the head
// ticket has not yet passed it). On tailTicket the same bit is the closed
// flag. Transliterated
// from original_source/include/queues/lcr/detail/crq.hpp's STATUS_BIT
// (top bit of a 64-bit index) and lcrqPatience from its PATIENCE=10.
const (
	lcrqStatusBit = uint64(1) << 63
	lcrqIndexMask = ^lcrqStatusBit
	lcrqPatience  = 10
)

// lcrqSegment is the LCRQ cyclic ring segment (Morrison & Afek), cell-for-
// cell transliterated from crq.hpp: each cell packs a status-tagged index
// and an element pointer into one atomix.Uint128, CAS'd together exactly
// the way the teacher's mpmc_128.go packs cycle+payload for the same
// "collapse two fields into one CAS" reason, here applied to the LCRQ
// cell shape instead of the SCQ slot shape.
type lcrqSegment[T any] struct {
	_          pad
	headTicket atomix.Uint64
	_          pad
	tailTicket atomix.Uint64
	_          pad
	cells      [segCapacity]lcrqCell
}

type lcrqCell struct {
	entry atomix.Uint128 // lo = status|idx, hi = *T bits
	_     padSlot
}

func newLCRQSegment[T any](*atomix.Bool) *lcrqSegment[T] {
	s := &lcrqSegment[T]{}
	for i := uint64(0); i < segCapacity; i++ {
		s.cells[i].entry.StoreRelaxed(lcrqStatusBit|i, 0)
	}
	return s
}

func lcrqPack(status, idx uint64) uint64 { return status | idx }

func (s *lcrqSegment[T]) tryEnqueue(elem *T) bool {
	attempts := 0
	for {
		tailTicket := s.tailTicket.AddAcqRel(1) - 1
		if tailTicket&lcrqStatusBit != 0 {
			return false
		}

		cell := &s.cells[tailTicket%segCapacity]
		composedIdx, ptrHi := cell.entry.LoadAcquire()
		isSafe := composedIdx & lcrqStatusBit
		idx := composedIdx & lcrqIndexMask

		if ptrHi == 0 {
			if idx <= tailTicket && (isSafe == lcrqStatusBit || s.headTicket.LoadAcquire() <= tailTicket) {
				desiredIdx := lcrqPack(lcrqStatusBit, tailTicket)
				if cell.entry.CompareAndSwapAcqRel(composedIdx, 0, desiredIdx, uint64(uintptr(unsafe.Pointer(elem)))) {
					return true
				}
			}
		}

		headTicket := s.headTicket.LoadAcquire()
		if int64(tailTicket)-int64(headTicket) >= segCapacity || attempts >= lcrqPatience {
			s.closeTail()
			return false
		}
		attempts++
	}
}

func (s *lcrqSegment[T]) closeTail() {
	for {
		cur := s.tailTicket.LoadRelaxed()
		if cur&lcrqStatusBit != 0 {
			return
		}
		if s.tailTicket.CompareAndSwapAcqRel(cur, cur|lcrqStatusBit) {
			return
		}
	}
}

func (s *lcrqSegment[T]) tryDequeue() (*T, bool) {
	for {
		headTicket := s.headTicket.AddAcqRel(1) - 1
		cell := &s.cells[headTicket%segCapacity]

		for {
			composedIdx, ptrHi := cell.entry.LoadAcquire()
			isSafe := composedIdx & lcrqStatusBit
			idx := composedIdx & lcrqIndexMask

			if idx > headTicket {
				break
			}

			if ptrHi != 0 {
				if idx == headTicket {
					desiredIdx := lcrqPack(isSafe, headTicket+segCapacity)
					if cell.entry.CompareAndSwapAcqRel(composedIdx, ptrHi, desiredIdx, 0) {
						return (*T)(unsafe.Pointer(uintptr(ptrHi))), true
					}
				} else {
					desiredIdx := lcrqPack(0, idx)
					if cell.entry.CompareAndSwapAcqRel(composedIdx, ptrHi, desiredIdx, ptrHi) {
						break
					}
				}
			} else {
				desiredIdx := lcrqPack(isSafe, headTicket+segCapacity)
				if cell.entry.CompareAndSwapAcqRel(composedIdx, 0, desiredIdx, 0) {
					break
				}
			}
		}

		tailTicket := s.tailTicket.LoadAcquire() & lcrqIndexMask
		if tailTicket <= headTicket+1 {
			s.fixState()
			return nil, false
		}
	}
}

func (s *lcrqSegment[T]) fixState() {
	for {
		tailTicket := s.tailTicket.AddRelaxed(0)
		headTicket := s.headTicket.AddRelaxed(0)

		if s.tailTicket.LoadAcquire() != tailTicket {
			continue
		}
		if headTicket <= tailTicket {
			return
		}
		if s.tailTicket.CompareAndSwapAcqRel(tailTicket, headTicket) {
			return
		}
	}
}

func (s *lcrqSegment[T]) resetThreshold() {}
