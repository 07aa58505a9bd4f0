// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package value

import (
	"encoding/binary"
	"math/big"
	"unicode/utf8"

	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/util"
)

// MaximumDepth - nesting limit when decoding untrusted bytes
const MaximumDepth = 128

// Decode - parse a canonical encoding
//
// only canonical input is accepted, so Encode(Decode(b)) == b
func Decode(buffer []byte) (Value, error) {
	v, n, err := decodeValue(buffer, 0)
	if nil != err {
		return nil, err
	}
	if n != len(buffer) {
		return nil, fault.ErrCannotDecodeValue
	}
	return v, nil
}

func decodeLength(buffer []byte) (uint64, int, error) {
	length, n := util.FromVarint64(buffer)
	if 0 == n {
		return 0, 0, fault.ErrTruncatedValue
	}
	if n != len(util.ToVarint64(length)) {
		return 0, 0, fault.ErrCannotDecodeValue // padded varint
	}
	return length, n, nil
}

func decodeBytes(buffer []byte) ([]byte, int, error) {
	length, n, err := decodeLength(buffer)
	if nil != err {
		return nil, 0, err
	}
	if length > uint64(len(buffer)-n) {
		return nil, 0, fault.ErrTruncatedValue
	}
	end := n + int(length)
	result := make([]byte, length)
	copy(result, buffer[n:end])
	return result, end, nil
}

func decodeMagnitude(buffer []byte) (*big.Int, int, error) {
	b, n, err := decodeBytes(buffer)
	if nil != err {
		return nil, 0, err
	}
	if len(b) > 0 && 0 == b[0] {
		return nil, 0, fault.ErrCannotDecodeValue
	}
	return new(big.Int).SetBytes(b), n, nil
}

func decodeValue(buffer []byte, depth int) (Value, int, error) {
	if depth > MaximumDepth {
		return nil, 0, fault.ErrValueTooLarge
	}
	if 0 == len(buffer) {
		return nil, 0, fault.ErrTruncatedValue
	}

	tag := buffer[0]
	rest := buffer[1:]

	switch tag {

	case tagNat:
		m, n, err := decodeMagnitude(rest)
		if nil != err {
			return nil, 0, err
		}
		return Nat{n: m}, 1 + n, nil

	case tagInt:
		if 0 == len(rest) {
			return nil, 0, fault.ErrTruncatedValue
		}
		sign := rest[0]
		if sign > 1 {
			return nil, 0, fault.ErrCannotDecodeValue
		}
		m, n, err := decodeMagnitude(rest[1:])
		if nil != err {
			return nil, 0, err
		}
		if 1 == sign {
			if 0 == m.Sign() {
				return nil, 0, fault.ErrCannotDecodeValue // negative zero
			}
			m.Neg(m)
		}
		return Int{n: m}, 2 + n, nil

	case tagNat64:
		if len(rest) < 8 {
			return nil, 0, fault.ErrTruncatedValue
		}
		return Nat64(binary.BigEndian.Uint64(rest[:8])), 9, nil

	case tagBlob:
		b, n, err := decodeBytes(rest)
		if nil != err {
			return nil, 0, err
		}
		return Blob(b), 1 + n, nil

	case tagText:
		b, n, err := decodeBytes(rest)
		if nil != err {
			return nil, 0, err
		}
		if !utf8.Valid(b) {
			return nil, 0, fault.ErrCannotDecodeValue
		}
		return Text(b), 1 + n, nil

	case tagArray:
		count, n, err := decodeLength(rest)
		if nil != err {
			return nil, 0, err
		}
		// every item takes at least two bytes
		if count > uint64(len(rest)) {
			return nil, 0, fault.ErrTruncatedValue
		}
		items := make(Array, 0, count)
		for i := uint64(0); i < count; i += 1 {
			item, k, err := decodeValue(rest[n:], depth+1)
			if nil != err {
				return nil, 0, err
			}
			items = append(items, item)
			n += k
		}
		return items, 1 + n, nil

	case tagMap:
		count, n, err := decodeLength(rest)
		if nil != err {
			return nil, 0, err
		}
		if count > uint64(len(rest)) {
			return nil, 0, fault.ErrTruncatedValue
		}
		entries := make([]Entry, 0, count)
		previous := ""
		for i := uint64(0); i < count; i += 1 {
			key, k, err := decodeBytes(rest[n:])
			if nil != err {
				return nil, 0, err
			}
			n += k
			if i > 0 && string(key) <= previous {
				return nil, 0, fault.ErrCannotDecodeValue // unsorted or duplicate
			}
			previous = string(key)

			item, k, err := decodeValue(rest[n:], depth+1)
			if nil != err {
				return nil, 0, err
			}
			n += k
			entries = append(entries, Entry{Key: string(key), Value: item})
		}
		return Map{entries: entries}, 1 + n, nil
	}

	return nil, 0, fault.ErrInvalidValueTag
}
