// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package value_test

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/value"
)

func TestEncodeLayout(t *testing.T) {
	items := []struct {
		v        value.Value
		expected []byte
	}{
		{value.Nat64(1), []byte{0x03, 0, 0, 0, 0, 0, 0, 0, 1}},
		{value.NatFromUint64(0), []byte{0x01, 0x00}},
		{value.NatFromUint64(256), []byte{0x01, 0x02, 0x01, 0x00}},
		{value.IntFromInt64(-1), []byte{0x02, 0x01, 0x01, 0x01}},
		{value.IntFromInt64(0), []byte{0x02, 0x00, 0x00}},
		{value.Text("ab"), []byte{0x05, 0x02, 'a', 'b'}},
		{value.Blob{0xff}, []byte{0x04, 0x01, 0xff}},
		{value.Array{}, []byte{0x06, 0x00}},
		{value.Array{value.Nat64(2)}, []byte{0x06, 0x01, 0x03, 0, 0, 0, 0, 0, 0, 0, 2}},
		{value.MustMap(value.Entry{Key: "k", Value: value.Text("")}), []byte{0x07, 0x01, 0x01, 'k', 0x05, 0x00}},
	}

	for i, item := range items {
		assert.Equal(t, item.expected, value.Encode(item.v), "%d: encode", i)
	}
}

func TestMapKeyOrderIsCanonical(t *testing.T) {
	a := value.MustMap(
		value.Entry{Key: "b", Value: value.Nat64(2)},
		value.Entry{Key: "a", Value: value.Nat64(1)},
	)
	b := value.MustMap(
		value.Entry{Key: "a", Value: value.Nat64(1)},
		value.Entry{Key: "b", Value: value.Nat64(2)},
	)
	assert.Equal(t, value.Hash(a), value.Hash(b))
	assert.True(t, value.Equal(a, b))

	// insertion order is still visible to callers
	assert.Equal(t, "b", a.Entries()[0].Key)
}

func TestMapDuplicateKey(t *testing.T) {
	_, err := value.NewMap(
		value.Entry{Key: "a", Value: value.Nat64(1)},
		value.Entry{Key: "a", Value: value.Nat64(2)},
	)
	assert.Equal(t, fault.ErrDuplicateMapKey, err)
}

func TestMapWith(t *testing.T) {
	m := value.MustMap(value.Entry{Key: "a", Value: value.Nat64(1)})
	m2 := m.With("a", value.Nat64(5)).With("b", value.Text("x"))

	assert.Equal(t, 1, m.Len(), "original changed")
	assert.Equal(t, 2, m2.Len())
	v, ok := m2.Get("a")
	assert.True(t, ok)
	assert.Equal(t, value.Nat64(5), v)
}

func TestNegativeNat(t *testing.T) {
	_, err := value.NewNat(big.NewInt(-1))
	assert.NotNil(t, err, "negative natural accepted")
}

func TestDecodeRejectsNonCanonical(t *testing.T) {
	items := [][]byte{
		{},                                   // empty
		{0x09},                               // bad tag
		{0x03, 0, 0},                         // short nat64
		{0x01, 0x02, 0x00, 0x01},             // leading zero
		{0x02, 0x01, 0x00},                   // negative zero
		{0x05, 0x02, 'a'},                    // truncated text
		{0x05, 0x01, 0xff},                   // invalid UTF-8
		{0x04, 0x80, 0x00},                   // padded length
		{0x05, 0x81, 0x00, 'a'},              // padded length
		{0x03, 0, 0, 0, 0, 0, 0, 0, 1, 0x00}, // trailing byte
		{0x07, 0x02, 0x01, 'b', 0x05, 0x00, 0x01, 'a', 0x05, 0x00}, // unsorted keys
		{0x07, 0x02, 0x01, 'a', 0x05, 0x00, 0x01, 'a', 0x05, 0x00}, // duplicate keys
	}
	for i, buffer := range items {
		_, err := value.Decode(buffer)
		assert.NotNil(t, err, "%d: accepted: %x", i, buffer)
	}
}

func TestDecodeNested(t *testing.T) {
	block := value.MustMap(
		value.Entry{Key: "phash", Value: value.Blob(bytes.Repeat([]byte{7}, 32))},
		value.Entry{Key: "tx", Value: value.MustMap(
			value.Entry{Key: "tid", Value: value.NatFromUint64(12)},
			value.Entry{Key: "to", Value: value.Array{value.Blob{1, 2}}},
			value.Entry{Key: "delta", Value: value.IntFromInt64(-300)},
		)},
	)

	buffer := value.Encode(block)
	v, err := value.Decode(buffer)
	assert.Nil(t, err, "decode error")
	assert.True(t, value.Equal(block, v))
	assert.Equal(t, buffer, value.Encode(v))
}

func TestJSON(t *testing.T) {
	block := value.MustMap(
		value.Entry{Key: "n", Value: value.NatFromUint64(99)},
		value.Entry{Key: "i", Value: value.IntFromInt64(-4)},
		value.Entry{Key: "b", Value: value.Blob{0xab}},
		value.Entry{Key: "a", Value: value.Array{value.Nat64(1), value.Text("t")}},
	)

	buffer, err := json.Marshal(value.Holder{Value: block})
	assert.Nil(t, err, "marshal error")

	var h value.Holder
	err = json.Unmarshal(buffer, &h)
	assert.Nil(t, err, "unmarshal error")
	assert.True(t, value.Equal(block, h.Value), "json: %s", buffer)

	err = json.Unmarshal([]byte(`{"Nat":"1","Int":"2"}`), &h)
	assert.NotNil(t, err, "two kinds accepted")
}

func TestRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("decode inverts encode", prop.ForAll(
		func(n uint64, i int64, s string, b []byte, keys []string) bool {
			entries := make([]value.Entry, 0, len(keys))
			seen := make(map[string]struct{})
			for k, key := range keys {
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				entries = append(entries, value.Entry{Key: key, Value: value.Nat64(uint64(k))})
			}
			m, err := value.NewMap(entries...)
			if nil != err {
				return false
			}
			v := value.Array{
				value.Nat64(n),
				value.NatFromUint64(n),
				value.IntFromInt64(i),
				value.Text(s),
				value.Blob(b),
				m,
			}
			buffer := value.Encode(v)
			decoded, err := value.Decode(buffer)
			if nil != err {
				return false
			}
			return bytes.Equal(buffer, value.Encode(decoded)) && value.Hash(v) == value.Hash(decoded)
		},
		gen.UInt64(),
		gen.Int64(),
		gen.AlphaString(),
		gen.SliceOf(gen.UInt8()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
