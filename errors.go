// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

import "errors"

// ErrNilElement is returned by Enqueue when the supplied element pointer is
// nil. Null is reserved as the empty-slot sentinel throughout the segment
// algorithms, so enqueueing it would be indistinguishable from an empty
// slot; this is a data-dependent invalid-argument error, not a programmer
// misuse panic.
var ErrNilElement = errors.New("segqueue: enqueue element must not be nil")
