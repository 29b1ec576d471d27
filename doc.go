// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package segqueue provides unbounded, lock-free, multi-producer
// multi-consumer FIFO queues built from a segmented list of bounded
// sub-queues, reclaimed with hazard pointers.
//
// Three bounded sub-queue families are available, each behind the same
// segmented-list shell:
//
//   - FAA: fetch-and-add ticket array, four interchangeable emptiness-check
//     variants (NewFAA, NewFAAV1, NewFAAV2, NewFAAV3)
//   - LCRQ: cyclic ring with a double-wide CAS'd cell (NewLCRQ)
//   - SCQ: scalable circular queue, SCQ2 (double-wide CAS) and SCQD
//     (single-wide CAS + threshold) variants (NewSCQ2, NewSCQD)
//
// A legacy Michael & Scott (1996) queue (NewMichaelScott) is included for
// comparison; it is a plain linked list, not a segmented one, and does not
// use the bounded-segment shell.
//
// # Quick Start
//
//	q := segqueue.NewSCQD[Event](segqueue.DefaultMaxThreads)
//
//	// Enqueue: caller supplies a thread identifier, unique among
//	// concurrently active callers for the duration of the call.
//	ev := Event{ID: 1}
//	if err := q.Enqueue(&ev, tid); err != nil {
//	    // err is ErrNilElement (elem was nil) — the only possible error.
//	}
//
//	// Dequeue never blocks: ok is false when the queue was observed empty.
//	elem, ok := q.Dequeue(tid)
//	if ok {
//	    process(elem)
//	}
//
// # Choosing a Variant
//
// SCQD is the best default: single-wide CAS keeps it portable, and its
// livelock-avoidance threshold is well exercised in production. Reach for
// SCQ2 or LCRQ when double-wide CAS is cheap on the target and peak
// throughput under heavy contention matters more than portability. The four
// FAA variants exist primarily to compare emptiness-check strategies under
// benchmark — VARIANT_3 (relaxed fetch-add) is the fastest of the four but
// gives the weakest emptiness-detection guarantee; see spec's §4.B table
// for the exact tradeoffs.
//
// # Thread Identifiers
//
// Every operation takes an explicit tid in [0, maxThreads). This package
// does not allocate or validate tid identities beyond range-checking —
// binding a stable tid to a goroutine (e.g. via a goroutine-local pool or a
// sync.Pool of reusable identifiers) is the caller's responsibility. Reusing
// a tid across two concurrently active callers is a data race on that
// thread's hazard-pointer slots.
//
// # Error Handling
//
// Enqueue returns [ErrNilElement] if elem is nil; there is no "full" error
// since these queues are unbounded. Dequeue returns ok=false, not an error,
// when the queue is observed empty — this is the "⊥" sentinel from the
// queue's safety argument, not a failure, and callers should retry with
// backoff (see [code.hybscloud.com/iox]'s Backoff) rather than treat it as
// an error.
//
// A tid outside [0, maxThreads) panics, matching this package's convention
// of panicking on programmer misuse (construction/precondition violations)
// while returning errors for data-dependent conditions.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channel, WaitGroup) but not happens-before relationships established
// purely through atomic acquire/release orderings. These queues are correct
// under the C11-style memory model described in spec's §5, but the race
// detector may still flag false positives on the non-atomic payload
// reachable only via an acquire-ordered load. Tests that would trip this
// skip themselves when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering (including double-wide CAS via Uint128) and
// [code.hybscloud.com/spin] for backoff in CAS retry loops. Segment linkage
// (segmented-list node pointers) uses the standard library's
// sync/atomic.Pointer so the Go garbage collector can trace it directly;
// see DESIGN.md for why this one concern deliberately departs from the
// atomix convention used everywhere else. [code.hybscloud.com/iox]'s
// Backoff is the recommended retry helper for callers polling a Dequeue
// that returned ok=false; see the package tests for the pattern in use.
package segqueue
