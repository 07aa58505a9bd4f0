// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"math/bits"

	"github.com/bitmark-inc/nftledger/fault"
)

// domain separation for the accumulator hashes
const (
	leafPrefix     = 0x00
	interiorPrefix = 0x01
)

// NodeStore - persistence for accumulator nodes
//
// a node is addressed by its level (0 = leaf) and its index within that level
type NodeStore interface {
	GetNode(level uint8, index uint64) (Digest, bool)
	PutNode(level uint8, index uint64, digest Digest)
}

// Peak - root of one perfect subtree of the accumulator
type Peak struct {
	Level  uint8  `json:"level"`
	Index  uint64 `json:"index"`
	Digest Digest `json:"digest"`
}

// LeafHash - hash stored at level 0 for an appended item digest
func LeafHash(item Digest) Digest {
	buffer := make([]byte, 0, 1+DigestLength)
	buffer = append(buffer, leafPrefix)
	buffer = append(buffer, item[:]...)
	return NewDigest(buffer)
}

// NodeHash - hash of an interior node
func NodeHash(left Digest, right Digest) Digest {
	buffer := make([]byte, 0, 1+2*DigestLength)
	buffer = append(buffer, interiorPrefix)
	buffer = append(buffer, left[:]...)
	buffer = append(buffer, right[:]...)
	return NewDigest(buffer)
}

// EmptyRoot - root of an accumulator with no items
func EmptyRoot() Digest {
	return NewDigest(nil)
}

// Append - add the item at position size and return the new size
//
// only the nodes completed by this item are written, at most one per level
func Append(store NodeStore, size uint64, item Digest) (uint64, error) {
	current := LeafHash(item)
	store.PutNode(0, size, current)

	level := uint8(0)
	index := size
	for 1 == index&1 {
		left, ok := store.GetNode(level, index-1)
		if !ok {
			return size, fault.ErrInvalidProof
		}
		current = NodeHash(left, current)
		level += 1
		index >>= 1
		store.PutNode(level, index, current)
	}
	return size + 1, nil
}

// peakPositions - level and index of each peak, highest (leftmost) first
func peakPositions(size uint64) []Peak {
	peaks := make([]Peak, 0, bits.OnesCount64(size))
	position := uint64(0)
	for level := 63; level >= 0; level -= 1 {
		width := uint64(1) << uint(level)
		if 0 != size&width {
			peaks = append(peaks, Peak{
				Level: uint8(level),
				Index: position >> uint(level),
			})
			position += width
		}
	}
	return peaks
}

// Peaks - the perfect subtree roots covering [0, size)
func Peaks(store NodeStore, size uint64) ([]Peak, error) {
	peaks := peakPositions(size)
	for i, p := range peaks {
		d, ok := store.GetNode(p.Level, p.Index)
		if !ok {
			return nil, fault.ErrInvalidProof
		}
		peaks[i].Digest = d
	}
	return peaks, nil
}

// Bag - fold the peak digests right to left into a single root
func Bag(peaks []Digest) Digest {
	if 0 == len(peaks) {
		return EmptyRoot()
	}
	root := peaks[len(peaks)-1]
	for i := len(peaks) - 2; i >= 0; i -= 1 {
		root = NodeHash(peaks[i], root)
	}
	return root
}

// Root - the accumulator root for the first size items
func Root(store NodeStore, size uint64) (Digest, error) {
	peaks, err := Peaks(store, size)
	if nil != err {
		return Digest{}, err
	}
	return Bag(digestsOf(peaks)), nil
}

func digestsOf(peaks []Peak) []Digest {
	result := make([]Digest, len(peaks))
	for i, p := range peaks {
		result[i] = p.Digest
	}
	return result
}
