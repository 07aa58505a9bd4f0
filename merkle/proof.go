// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"github.com/bitmark-inc/nftledger/fault"
)

// Proof - inclusion of one item in an accumulator of a given size
//
// Path holds the siblings from the leaf up to the peak that contains it,
// Peaks holds every peak digest in left to right order
type Proof struct {
	LeafIndex uint64   `json:"leafIndex"`
	Size      uint64   `json:"size"`
	Path      []Digest `json:"path"`
	Peaks     []Digest `json:"peaks"`
}

// Prove - build the inclusion proof of leaf in an accumulator of size items
func Prove(store NodeStore, size uint64, leaf uint64) (*Proof, error) {
	if leaf >= size {
		return nil, fault.ErrIndexOutOfRange
	}

	peaks, err := Peaks(store, size)
	if nil != err {
		return nil, err
	}

	peak, ok := containingPeak(peaks, leaf)
	if !ok {
		return nil, fault.ErrIndexOutOfRange
	}

	path := make([]Digest, 0, peak.Level)
	for level := uint8(0); level < peak.Level; level += 1 {
		sibling := (leaf >> level) ^ 1
		d, ok := store.GetNode(level, sibling)
		if !ok {
			return nil, fault.ErrInvalidProof
		}
		path = append(path, d)
	}

	return &Proof{
		LeafIndex: leaf,
		Size:      size,
		Path:      path,
		Peaks:     digestsOf(peaks),
	}, nil
}

func containingPeak(peaks []Peak, leaf uint64) (Peak, bool) {
	for _, p := range peaks {
		first := p.Index << p.Level
		last := first + (uint64(1) << p.Level)
		if leaf >= first && leaf < last {
			return p, true
		}
	}
	return Peak{}, false
}

// Verify - check that item is at LeafIndex under root
func (p *Proof) Verify(item Digest, root Digest) bool {
	if nil == p || p.LeafIndex >= p.Size {
		return false
	}

	positions := peakPositions(p.Size)
	if len(positions) != len(p.Peaks) {
		return false
	}

	n := -1
	for i, pos := range positions {
		first := pos.Index << pos.Level
		if p.LeafIndex >= first && p.LeafIndex < first+(uint64(1)<<pos.Level) {
			n = i
			break
		}
	}
	if n < 0 || int(positions[n].Level) != len(p.Path) {
		return false
	}

	current := LeafHash(item)
	for level, sibling := range p.Path {
		if 0 == (p.LeafIndex>>uint(level))&1 {
			current = NodeHash(current, sibling)
		} else {
			current = NodeHash(sibling, current)
		}
	}
	if current != p.Peaks[n] {
		return false
	}
	return Bag(p.Peaks) == root
}
