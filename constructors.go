// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

// NewFAA constructs a segmented-list queue over the ORIGINAL FAA array
// emptiness-check variant.
func NewFAA[T any](maxThreads int) *Queue[T, *faaOriginal[T]] {
	return newQueue[T, *faaOriginal[T]](maxThreads, newFAAOriginal[T])
}

// NewFAAV1 constructs a segmented-list queue over the FAA array's
// VARIANT_1 emptiness check.
func NewFAAV1[T any](maxThreads int) *Queue[T, *faaV1[T]] {
	return newQueue[T, *faaV1[T]](maxThreads, newFAAV1[T])
}

// NewFAAV2 constructs a segmented-list queue over the FAA array's
// VARIANT_2 emptiness check.
func NewFAAV2[T any](maxThreads int) *Queue[T, *faaV2[T]] {
	return newQueue[T, *faaV2[T]](maxThreads, newFAAV2[T])
}

// NewFAAV3 constructs a segmented-list queue over the FAA array's
// VARIANT_3 emptiness check.
func NewFAAV3[T any](maxThreads int) *Queue[T, *faaV3[T]] {
	return newQueue[T, *faaV3[T]](maxThreads, newFAAV3[T])
}

// NewLCRQ constructs a segmented-list queue over the LCRQ cyclic ring
// segment.
func NewLCRQ[T any](maxThreads int) *Queue[T, *lcrqSegment[T]] {
	return newQueue[T, *lcrqSegment[T]](maxThreads, newLCRQSegment[T])
}

// NewSCQ2 constructs a segmented-list queue over the SCQ2 (double-wide
// CAS) bounded segment.
func NewSCQ2[T any](maxThreads int) *Queue[T, *scq2Segment[T]] {
	return newQueue[T, *scq2Segment[T]](maxThreads, newSCQ2Segment[T])
}

// NewSCQD constructs a segmented-list queue over the SCQD (single-wide
// CAS) bounded segment.
func NewSCQD[T any](maxThreads int) *Queue[T, *scqdSegment[T]] {
	return newQueue[T, *scqdSegment[T]](maxThreads, newSCQDSegment[T])
}
