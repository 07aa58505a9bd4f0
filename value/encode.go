// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package value

import (
	"bytes"
	"encoding/binary"

	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/util"
)

// Encode - canonical byte form of a value
//
// layout per kind:
//
//	Nat:   tag  varint(len)  magnitude (big endian, no leading zeros)
//	Int:   tag  sign(0|1)  varint(len)  magnitude
//	Nat64: tag  8 bytes big endian
//	Blob:  tag  varint(len)  bytes
//	Text:  tag  varint(len)  UTF-8 bytes
//	Array: tag  varint(count)  items
//	Map:   tag  varint(count)  (varint(len) key  value)... sorted by key bytes
func Encode(v Value) []byte {
	return appendValue(make([]byte, 0, 64), v)
}

// Hash - digest of the canonical encoding
func Hash(v Value) merkle.Digest {
	return merkle.NewDigest(Encode(v))
}

// Equal - structural equality
func Equal(a Value, b Value) bool {
	if nil == a || nil == b {
		return nil == a && nil == b
	}
	return bytes.Equal(Encode(a), Encode(b))
}

func appendBytes(buffer []byte, b []byte) []byte {
	buffer = util.AppendVarint64(buffer, uint64(len(b)))
	return append(buffer, b...)
}

func appendValue(buffer []byte, v Value) []byte {
	buffer = append(buffer, v.tag())

	switch tv := v.(type) {

	case Nat:
		buffer = appendBytes(buffer, tv.Big().Bytes())

	case Int:
		n := tv.Big()
		sign := byte(0)
		if n.Sign() < 0 {
			sign = 1
		}
		buffer = append(buffer, sign)
		buffer = appendBytes(buffer, n.Bytes()) // Bytes is the absolute value

	case Nat64:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(tv))
		buffer = append(buffer, b[:]...)

	case Blob:
		buffer = appendBytes(buffer, tv)

	case Text:
		buffer = appendBytes(buffer, []byte(tv))

	case Array:
		buffer = util.AppendVarint64(buffer, uint64(len(tv)))
		for _, item := range tv {
			buffer = appendValue(buffer, item)
		}

	case Map:
		entries := tv.sorted()
		buffer = util.AppendVarint64(buffer, uint64(len(entries)))
		for _, e := range entries {
			buffer = appendBytes(buffer, []byte(e.Key))
			buffer = appendValue(buffer, e.Value)
		}
	}
	return buffer
}
