// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package counter - lock free connection and call counting
package counter

import (
	"sync/atomic"
)

// Counter - a 64 bit unsigned value updated atomically
type Counter uint64

// Increment - add 1, returns new value
func (ic *Counter) Increment() uint64 {
	return atomic.AddUint64((*uint64)(ic), 1)
}

// Decrement - subtract 1, returns new value
func (ic *Counter) Decrement() uint64 {
	return atomic.AddUint64((*uint64)(ic), ^uint64(0))
}

// Acquire - increment only while the value is below limit
//
// returns false, leaving the counter unchanged, when the limit is reached
func (ic *Counter) Acquire(limit uint64) bool {
	for {
		n := atomic.LoadUint64((*uint64)(ic))
		if n >= limit {
			return false
		}
		if atomic.CompareAndSwapUint64((*uint64)(ic), n, n+1) {
			return true
		}
	}
}

// Uint64 - current value
func (ic *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(ic))
}

// IsZero - check if zero
func (ic *Counter) IsZero() bool {
	return 0 == ic.Uint64()
}
