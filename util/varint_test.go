// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/nftledger/util"
)

var varint64Tests = []struct {
	value   uint64
	encoded []byte
}{
	{0, []byte{0x00}},
	{1, []byte{0x01}},
	{127, []byte{0x7f}},
	{128, []byte{0x80, 0x01}},
	{255, []byte{0xff, 0x01}},
	{16383, []byte{0xff, 0x7f}},
	{16384, []byte{0x80, 0x80, 0x01}},
	{0x7fffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}},
	{0x8000000000000000, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}},
	{0xffffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
}

func TestVarint64RoundTrip(t *testing.T) {
	for i, item := range varint64Tests {
		assert.Equal(t, item.encoded, util.ToVarint64(item.value), "%d: encode", i)

		value, n := util.FromVarint64(item.encoded)
		assert.Equal(t, item.value, value, "%d: decode", i)
		assert.Equal(t, len(item.encoded), n, "%d: count", i)
	}
}

func TestFromVarint64Truncated(t *testing.T) {
	for i, buffer := range [][]byte{{}, {0x80}, {0xff, 0xff}} {
		value, n := util.FromVarint64(buffer)
		assert.Equal(t, uint64(0), value, "%d: value", i)
		assert.Equal(t, 0, n, "%d: count", i)
	}
}

func TestAppendVarint64(t *testing.T) {
	buffer := util.AppendVarint64([]byte{0xaa}, 300)
	assert.Equal(t, []byte{0xaa, 0xac, 0x02}, buffer)
}

func TestUint64Bytes(t *testing.T) {
	b := util.Uint64ToBytes(0x0102030405060708)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, b)

	n, ok := util.BytesToUint64(b)
	assert.True(t, ok)
	assert.Equal(t, uint64(0x0102030405060708), n)

	_, ok = util.BytesToUint64([]byte{1})
	assert.False(t, ok)
}
