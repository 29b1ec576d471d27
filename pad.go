// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue

// pad is cache line padding to prevent false sharing between neighboring
// atomic fields (head, tail, hazard-pointer domain state, per-segment
// ticket counters).
type pad [64]byte

// padShort pads an 8-byte field out to a full cache line.
type padShort [64 - 8]byte

// padSlot pads a 16-byte field (e.g. a packed Uint128 slot) out to a full
// cache line.
type padSlot [64 - 16]byte
