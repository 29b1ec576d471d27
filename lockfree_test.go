// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Lock-free algorithm tests excluded from race detection.
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channels, WaitGroup) but cannot observe happens-before relationships
// established through atomic memory orderings (acquire-release semantics).
// These queues are correct, but the race detector reports false positives
// on the non-atomic element payload reachable only via an acquire-ordered
// load.

package segqueue_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/segqueue"
)

// =============================================================================
// MPMC stress tests, one subtest per variant.
// =============================================================================

// TestMPMCStress hammers each variant with many concurrent producers and
// consumers and checks every enqueued value is dequeued exactly once.
func TestMPMCStress(t *testing.T) {
	if segqueue.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}

	const producers = 8
	const consumers = 8
	const perProducer = 4096
	const total = producers * perProducer

	variants := []struct {
		name string
		new  func() (enqueue func(*int, int) error, dequeue func(int) (*int, bool), maxThreads int)
	}{
		{"FAA", func() (func(*int, int) error, func(int) (*int, bool), int) {
			q := segqueue.NewFAA[int](producers + consumers)
			return q.Enqueue, q.Dequeue, producers + consumers
		}},
		{"LCRQ", func() (func(*int, int) error, func(int) (*int, bool), int) {
			q := segqueue.NewLCRQ[int](producers + consumers)
			return q.Enqueue, q.Dequeue, producers + consumers
		}},
		{"SCQ2", func() (func(*int, int) error, func(int) (*int, bool), int) {
			q := segqueue.NewSCQ2[int](producers + consumers)
			return q.Enqueue, q.Dequeue, producers + consumers
		}},
		{"SCQD", func() (func(*int, int) error, func(int) (*int, bool), int) {
			q := segqueue.NewSCQD[int](producers + consumers)
			return q.Enqueue, q.Dequeue, producers + consumers
		}},
		{"MichaelScott", func() (func(*int, int) error, func(int) (*int, bool), int) {
			q := segqueue.NewMichaelScott[int](producers + consumers)
			return q.Enqueue, q.Dequeue, producers + consumers
		}},
	}

	for _, variant := range variants {
		t.Run(variant.name, func(t *testing.T) {
			enqueue, dequeue, _ := variant.new()

			var wg sync.WaitGroup
			var mu sync.Mutex
			seen := make(map[int]int, total)

			wg.Add(producers)
			for p := range producers {
				go func(tid int) {
					defer wg.Done()
					backoff := iox.Backoff{}
					vals := make([]int, perProducer)
					for i := range perProducer {
						vals[i] = tid*perProducer + i
						for enqueue(&vals[i], tid) != nil {
							backoff.Wait()
						}
						backoff.Reset()
					}
				}(p)
			}

			var consumed int
			var consumedMu sync.Mutex
			var closeOnce sync.Once
			done := make(chan struct{})

			wg.Add(consumers)
			for c := range consumers {
				go func(tid int) {
					defer wg.Done()
					backoff := iox.Backoff{}
					for {
						select {
						case <-done:
							return
						default:
						}
						v, ok := dequeue(producers + tid)
						if !ok {
							backoff.Wait()
							continue
						}
						backoff.Reset()
						mu.Lock()
						seen[*v]++
						mu.Unlock()
						consumedMu.Lock()
						consumed++
						reached := consumed >= total
						consumedMu.Unlock()
						if reached {
							closeOnce.Do(func() { close(done) })
							return
						}
					}
				}(c)
			}

			wg.Wait()

			if len(seen) != total {
				t.Fatalf("got %d distinct values, want %d", len(seen), total)
			}
			for v, count := range seen {
				if count != 1 {
					t.Fatalf("value %d dequeued %d times, want exactly once", v, count)
				}
			}
		})
	}
}

// TestHighContentionEnqueue exercises many concurrent enqueuers racing to
// append past a single segment's capacity, forcing repeated segment
// linkage under contention.
func TestHighContentionEnqueue(t *testing.T) {
	if segqueue.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}

	const goroutines = 32
	const perGoroutine = 256

	q := segqueue.NewSCQD[int](goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := range goroutines {
		go func(tid int) {
			defer wg.Done()
			v := tid
			for range perGoroutine {
				if err := q.Enqueue(&v, tid); err != nil {
					t.Errorf("Enqueue: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	count := 0
	for {
		if _, ok := q.Dequeue(0); !ok {
			break
		}
		count++
	}
	if count != goroutines*perGoroutine {
		t.Fatalf("got %d items, want %d", count, goroutines*perGoroutine)
	}
}
