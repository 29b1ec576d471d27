// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
)

// faaTaken is the sentinel written into an abandoned slot: a dequeuer that
// claimed a ticket before the matching enqueuer published its element
// swaps the slot to faaTaken, so the late enqueuer's CAS from nil fails and
// it moves on to a fresh ticket instead of publishing into a slot no
// dequeuer will read again. Its
// address is reserved, outside any legitimate caller-supplied T value
// space, since no caller can ever construct a *T aliasing a package
// private byte.
var faaTakenByte byte

func faaTaken[T any]() *T {
	return (*T)(unsafe.Pointer(&faaTakenByte))
}

// faaCore is the shared slot array and ticket counters for all four FAA
// array emptiness-check variants, transliterated from
// original_source/include/queues/faa/detail/node.hpp's node_t (slots,
// enq_idx, deq_idx) and faa_array_fwd.hpp's NODE_SIZE=1024, TAKEN=0x1.
// Slot storage uses sync/atomic.Pointer[T], not atomix, because these
// slots hold live caller element pointers the Go garbage collector must
// be able to trace through — see DESIGN.md.
type faaCore[T any] struct {
	_      pad
	enqIdx atomix.Uint64
	_      pad
	deqIdx atomix.Uint64
	_      pad
	slots  [segCapacity]atomic.Pointer[T]
}

func (c *faaCore[T]) tryEnqueue(elem *T) bool {
	for {
		idx := c.enqIdx.AddRelaxed(1) - 1
		if idx >= segCapacity {
			return false
		}
		if c.slots[idx].CompareAndSwap(nil, elem) {
			return true
		}
		// A dequeuer already poisoned this slot with faaTaken: retry with
		// a fresh ticket.
	}
}

func (c *faaCore[T]) takeSlot(idx uint64) (*T, bool) {
	old := c.slots[idx&(segCapacity-1)].Swap(faaTaken[T]())
	if old == nil || old == faaTaken[T]() {
		return nil, false
	}
	return old, true
}

func (c *faaCore[T]) resetThreshold() {}

// faaOriginal implements the ORIGINAL emptiness check:
// deq_idx.load(relaxed) >= enq_idx.load(acquire).
type faaOriginal[T any] struct{ faaCore[T] }

func newFAAOriginal[T any](*atomix.Bool) *faaOriginal[T] { return &faaOriginal[T]{} }

func (s *faaOriginal[T]) tryDequeue() (*T, bool) {
	for {
		if s.deqIdx.LoadRelaxed() >= s.enqIdx.LoadAcquire() {
			return nil, false
		}
		idx := s.deqIdx.AddRelaxed(1) - 1
		if idx >= segCapacity {
			return nil, false
		}
		if elem, ok := s.takeSlot(idx); ok {
			return elem, true
		}
	}
}

// faaV1 implements VARIANT_1: enq_idx.load(relaxed) <= deq_idx.load(acquire).
type faaV1[T any] struct{ faaCore[T] }

func newFAAV1[T any](*atomix.Bool) *faaV1[T] { return &faaV1[T]{} }

func (s *faaV1[T]) tryDequeue() (*T, bool) {
	for {
		if s.enqIdx.LoadRelaxed() <= s.deqIdx.LoadAcquire() {
			return nil, false
		}
		idx := s.deqIdx.AddRelaxed(1) - 1
		if idx >= segCapacity {
			return nil, false
		}
		if elem, ok := s.takeSlot(idx); ok {
			return elem, true
		}
	}
}

// faaV2 implements VARIANT_2: enq_idx.load(relaxed) <= deq_idx.fetch_add(0, acquire).
// The zero-delta fetch-add on deq_idx is preserved (rather than simplified to
// a plain acquire load) because it changes the instruction selected on some
// architectures and is part of what the benchmark variant is measuring.
type faaV2[T any] struct{ faaCore[T] }

func newFAAV2[T any](*atomix.Bool) *faaV2[T] { return &faaV2[T]{} }

func (s *faaV2[T]) tryDequeue() (*T, bool) {
	for {
		if s.enqIdx.LoadRelaxed() <= s.deqIdx.AddAcquire(0) {
			return nil, false
		}
		idx := s.deqIdx.AddRelaxed(1) - 1
		if idx >= segCapacity {
			return nil, false
		}
		if elem, ok := s.takeSlot(idx); ok {
			return elem, true
		}
	}
}

// faaV3 implements the original's final (unnamed) variant:
// deq_idx.fetch_add(0, relaxed) >= enq_idx.load(acquire).
type faaV3[T any] struct{ faaCore[T] }

func newFAAV3[T any](*atomix.Bool) *faaV3[T] { return &faaV3[T]{} }

func (s *faaV3[T]) tryDequeue() (*T, bool) {
	for {
		if s.deqIdx.AddRelaxed(0) >= s.enqIdx.LoadAcquire() {
			return nil, false
		}
		idx := s.deqIdx.AddRelaxed(1) - 1
		if idx >= segCapacity {
			return nil, false
		}
		if elem, ok := s.takeSlot(idx); ok {
			return elem, true
		}
	}
}
