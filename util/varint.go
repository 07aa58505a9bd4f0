// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"encoding/binary"
)

// Varint64MaximumBytes - maximum possible number of bytes in Varint64
const Varint64MaximumBytes = 9

// ToVarint64 - convert a 64 bit unsigned integer to Varint64
//
// seven bits per byte, least significant group first, high bit set
// on every byte except the last; the ninth byte carries a full eight bits
func ToVarint64(value uint64) []byte {
	return AppendVarint64(make([]byte, 0, Varint64MaximumBytes), value)
}

// AppendVarint64 - append the Varint64 form of value to buffer
func AppendVarint64(buffer []byte, value uint64) []byte {
	if value < 0x80 {
		return append(buffer, byte(value))
	}

	for i := 0; i < Varint64MaximumBytes && value != 0; i += 1 {
		ext := uint64(0x80)
		if value < 0x80 {
			ext = 0x00
		}
		buffer = append(buffer, byte(value|ext))
		value >>= 7
	}
	return buffer
}

// FromVarint64 - convert an array of up to Varint64MaximumBytes to a uint64
//
// also return the number of bytes used as second value
// returns 0, 0 if varint64 buffer is truncated
func FromVarint64(buffer []byte) (uint64, int) {
	result := uint64(0)

	shift := uint(0)
	count := 0

	for count < len(buffer) {
		currByte := uint64(buffer[count])
		count += 1
		if count < Varint64MaximumBytes {
			result |= currByte & 0x7f << shift
			if 0 == currByte&0x80 {
				return result, count
			}
		} else {
			result |= currByte << shift
			return result, count
		}
		shift += 7
	}
	return 0, 0
}

// Uint64ToBytes - big endian fixed width key for an index
//
// keeps leveldb iteration order equal to numeric order
func Uint64ToBytes(n uint64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	return buffer
}

// BytesToUint64 - inverse of Uint64ToBytes, second value false if length is wrong
func BytesToUint64(buffer []byte) (uint64, bool) {
	if 8 != len(buffer) {
		return 0, false
	}
	return binary.BigEndian.Uint64(buffer), true
}
