// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package archive

import (
	"encoding/binary"

	"github.com/bitmark-inc/nftledger/fault"
)

// LiveSegmentID - identity reported for the live segment
const LiveSegmentID = "live"

// Segment - a contiguous half open range of blocks held by one store
type Segment struct {
	ID     string `json:"id"`
	Start  uint64 `json:"start,string"`
	End    uint64 `json:"end,string"`
	Sealed bool   `json:"-"`
}

// Length - number of blocks in the segment
func (s Segment) Length() uint64 {
	return s.End - s.Start
}

// Pack - record format: start ‖ end ‖ sealed ‖ id
func (s Segment) Pack() []byte {
	buffer := make([]byte, 17, 17+len(s.ID))
	binary.BigEndian.PutUint64(buffer[0:8], s.Start)
	binary.BigEndian.PutUint64(buffer[8:16], s.End)
	if s.Sealed {
		buffer[16] = 1
	}
	return append(buffer, s.ID...)
}

// UnpackSegment - inverse of Pack
func UnpackSegment(buffer []byte) (Segment, error) {
	if len(buffer) <= 17 {
		return Segment{}, fault.ErrTruncatedValue
	}
	s := Segment{
		Start:  binary.BigEndian.Uint64(buffer[0:8]),
		End:    binary.BigEndian.Uint64(buffer[8:16]),
		Sealed: 0 != buffer[16],
		ID:     string(buffer[17:]),
	}
	if s.End < s.Start {
		return Segment{}, fault.ErrIndexOutOfRange
	}
	return s, nil
}

// Piece - one part of a routed range
//
// Shard is LiveSegmentID for blocks held by the live segment
type Piece struct {
	Shard  string `json:"shard"`
	Start  uint64 `json:"start,string"`
	Length uint64 `json:"length,string"`
}

// Live - true if the piece is served by the live segment
func (p Piece) Live() bool {
	return LiveSegmentID == p.Shard
}

// Plan - split [start, start+length) across the archived segments and the
// live segment [first, logLength)
//
// the requested range is clipped at logLength; the returned pieces are in
// index order and concatenate to exactly the clipped range
func Plan(segments []Segment, first uint64, logLength uint64, start uint64, length uint64) []Piece {
	pieces := []Piece{}
	if start >= logLength || 0 == length {
		return pieces
	}
	end := logLength
	if length < logLength-start {
		end = start + length
	}

	for _, s := range segments {
		if s.End <= start || s.Start >= end || s.Start == s.End {
			continue
		}
		pieces = append(pieces, overlap(s.ID, s.Start, s.End, start, end))
	}
	if first < end && logLength > start {
		pieces = append(pieces, overlap(LiveSegmentID, first, logLength, start, end))
	}
	return pieces
}

func overlap(id string, segmentStart uint64, segmentEnd uint64, start uint64, end uint64) Piece {
	if segmentStart < start {
		segmentStart = start
	}
	if segmentEnd > end {
		segmentEnd = end
	}
	return Piece{
		Shard:  id,
		Start:  segmentStart,
		Length: segmentEnd - segmentStart,
	}
}
