// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import "sync/atomic"

// DefaultMaxThreads is the default upper bound on concurrently active
// thread identifiers a queue will track hazard pointers for.
const DefaultMaxThreads = 128

// hazardDomain is a hazard-pointer reclamation domain for node type N.
//
// It realizes the publish-before-verify SMR protocol: a thread that wants
// to dereference a shared pointer first publishes its intent into a
// per-thread hazard-pointer slot, then re-reads the source atomic to make
// sure the pointer it published is still current. A retiring thread only
// drops its reference to a node once no thread's published hazard pointer
// names that node, at which point the node becomes ordinary garbage the Go
// collector is free to reclaim — there is no manual free in this
// realization, but the retire/scan protocol is preserved faithfully so the
// same safety argument (a retired node is never dereferenced again while
// hazarded) holds regardless of how reclamation is ultimately performed.
type hazardDomain[N any] struct {
	_           pad
	maxThreads  int
	hpPerThread int
	threshold   int
	_           pad
	slots       [][]atomic.Pointer[N] // [tid][hpIdx]
	retireLists []*retireList[N]      // thread-local, indexed by tid
}

type retireList[N any] struct {
	_     pad
	items []*N
}

// newHazardDomain creates a domain sized for maxThreads threads, each with
// hpPerThread hazard-pointer slots. threshold is the retire-list length at
// which a thread scans; a threshold of 0 selects the default of
// 2*maxThreads*hpPerThread, amortizing scan cost to O(1) per retire while
// bounding memory bloat to O(hpPerThread*threshold).
func newHazardDomain[N any](maxThreads, hpPerThread, threshold int) *hazardDomain[N] {
	if maxThreads <= 0 {
		panic("segqueue: maxThreads must be > 0")
	}
	if hpPerThread <= 0 {
		panic("segqueue: hpPerThread must be > 0")
	}
	if threshold <= 0 {
		threshold = 2 * maxThreads * hpPerThread
	}

	d := &hazardDomain[N]{
		maxThreads:  maxThreads,
		hpPerThread: hpPerThread,
		threshold:   threshold,
		slots:       make([][]atomic.Pointer[N], maxThreads),
		retireLists: make([]*retireList[N], maxThreads),
	}
	for tid := range d.slots {
		d.slots[tid] = make([]atomic.Pointer[N], hpPerThread)
		d.retireLists[tid] = &retireList[N]{}
	}
	return d
}

// protect publishes the value currently held by slot into thread tid's
// hazard-pointer slot hpIdx, then re-reads slot until the published value
// is confirmed stable, per the standard publish-verify pattern. This single
// signature realizes both the "protect" and "protect_ptr" call sites the
// original implementation distinguished (see spec's Open Questions):
// always re-reading through the atomic is a valid, simpler realization of
// the same contract.
func (d *hazardDomain[N]) protect(slot *atomic.Pointer[N], tid, hpIdx int) *N {
	for {
		p := slot.Load()
		d.slots[tid][hpIdx].Store(p)
		if slot.Load() == p {
			return p
		}
	}
}

// clearOne retracts thread tid's hazard pointer in slot hpIdx.
func (d *hazardDomain[N]) clearOne(tid, hpIdx int) {
	d.slots[tid][hpIdx].Store(nil)
}

// clear retracts all of thread tid's hazard pointers.
func (d *hazardDomain[N]) clear(tid int) {
	for i := range d.slots[tid] {
		d.slots[tid][i].Store(nil)
	}
}

// retire hands p to thread tid's retire list. Once that list reaches the
// domain's scan threshold, tid scans every thread's hazard-pointer slots
// and drops its reference to every retired node no longer hazarded,
// allowing the garbage collector to reclaim it.
func (d *hazardDomain[N]) retire(p *N, tid int) {
	rl := d.retireLists[tid]
	rl.items = append(rl.items, p)
	if len(rl.items) >= d.threshold {
		d.scan(tid)
	}
}

func (d *hazardDomain[N]) scan(tid int) {
	rl := d.retireLists[tid]

	live := make(map[*N]struct{}, d.maxThreads*d.hpPerThread)
	for t := 0; t < d.maxThreads; t++ {
		for i := 0; i < d.hpPerThread; i++ {
			if p := d.slots[t][i].Load(); p != nil {
				live[p] = struct{}{}
			}
		}
	}

	remaining := rl.items[:0]
	for _, p := range rl.items {
		if _, hazarded := live[p]; hazarded {
			remaining = append(remaining, p)
		}
		// else: drop the last reference; the node becomes collectible.
	}
	rl.items = remaining
}
