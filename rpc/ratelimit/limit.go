// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ratelimit - token bucket throttling shared by the RPC services
package ratelimit

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/nftledger/fault"
)

// Limit - wait for one token
func Limit(limiter *rate.Limiter) error {
	r := limiter.Reserve()
	if !r.OK() {
		return fault.ErrRateLimiting
	}
	time.Sleep(r.Delay())
	return nil
}

// LimitN - wait for one token per batch item
//
// an empty or oversized batch costs a single token and is rejected
func LimitN(limiter *rate.Limiter, count int, maximumCount uint64) error {
	if count <= 0 || uint64(count) > maximumCount {
		if err := Limit(limiter); nil != err {
			return err
		}
		return fault.ErrInvalidCount
	}

	r := limiter.ReserveN(time.Now(), count)
	if !r.OK() {
		return fault.ErrRateLimiting
	}
	time.Sleep(r.Delay())
	return nil
}
