// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"code.hybscloud.com/iox"
)

// TestScenarioLCRQClosure is spec.md §8 scenario 4: eight producers race a
// single, deliberately delayed consumer against an LCRQ queue whose ring
// capacity (segCapacity, RING_SIZE=1024) is far smaller than the 16000
// elements enqueued, forcing at least one segment's tailTicket to close
// (top/status bit set) before the consumer can catch up. This lives in an
// internal (white-box) test file because tailTicket is unexported state
// with no equivalent in the public API — the closed bit is an
// implementation detail of the LCRQ segment, not something a caller ever
// observes directly.
func TestScenarioLCRQClosure(t *testing.T) {
	if RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}

	const producers = 8
	const perProducer = 2000
	const total = producers * perProducer
	const maxThreads = producers + 1
	const consumerTid = producers

	q := NewLCRQ[int](maxThreads)

	var producersDone sync.WaitGroup
	producersDone.Add(producers)

	for p := range producers {
		go func(tid int) {
			defer producersDone.Done()
			backoff := iox.Backoff{}
			vals := make([]int, perProducer)
			for i := range perProducer {
				vals[i] = tid*perProducer + i
				for q.Enqueue(&vals[i], tid) != nil {
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(p)
	}

	// Delay the single consumer so producers race well ahead of it and
	// force at least one segment to fill and close before it is drained.
	var dequeued int64
	var consumerDone sync.WaitGroup
	consumerDone.Add(1)
	go func() {
		defer consumerDone.Done()
		time.Sleep(20 * time.Millisecond)
		backoff := iox.Backoff{}
		for atomic.LoadInt64(&dequeued) < total {
			if _, ok := q.Dequeue(consumerTid); ok {
				atomic.AddInt64(&dequeued, 1)
				backoff.Reset()
				continue
			}
			backoff.Wait()
		}
	}()

	// A closed segment is unlinked from the head-to-tail chain once the
	// slow consumer fully drains and retires it, so the closed bit must be
	// observed while the race is still in flight, not after both sides
	// finish.
	var observedClosed int32
	var scannerDone sync.WaitGroup
	scannerDone.Add(1)
	go func() {
		defer scannerDone.Done()
		for atomic.LoadInt64(&dequeued) < total {
			for n := q.head.Load(); n != nil; n = n.next.Load() {
				if n.ring.tailTicket.LoadAcquire()&lcrqStatusBit != 0 {
					atomic.StoreInt32(&observedClosed, 1)
					break
				}
			}
			if atomic.LoadInt32(&observedClosed) != 0 {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	producersDone.Wait()
	consumerDone.Wait()
	scannerDone.Wait()

	if got := atomic.LoadInt64(&dequeued); got != total {
		t.Fatalf("dequeued %d elements, want %d", got, total)
	}
	if atomic.LoadInt32(&observedClosed) == 0 {
		t.Fatal("no segment's tailTicket closed bit was ever observed; 16000 elements through a 1024-capacity ring should have forced at least one segment closed while the slow consumer lagged behind")
	}
}
