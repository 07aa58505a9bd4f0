// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package value - recursive structured values used for blocks and metadata
//
// A Value is exactly one of Nat, Int, Nat64, Blob, Text, Array or Map.
// Every value has a single canonical byte encoding and its hash is the
// SHA3-256 of that encoding.
package value

import (
	"math/big"
	"sort"

	"github.com/bitmark-inc/nftledger/fault"
)

// Value - closed set of structured value kinds
type Value interface {
	tag() byte
}

// wire tags
const (
	tagNat   = 0x01
	tagInt   = 0x02
	tagNat64 = 0x03
	tagBlob  = 0x04
	tagText  = 0x05
	tagArray = 0x06
	tagMap   = 0x07
)

// Nat - unsigned big integer
type Nat struct {
	n *big.Int
}

// Int - signed big integer
type Int struct {
	n *big.Int
}

// Nat64 - 64 bit unsigned integer
type Nat64 uint64

// Blob - opaque bytes
type Blob []byte

// Text - UTF-8 string
type Text string

// Array - ordered list of values
type Array []Value

// Entry - one key/value pair of a Map
type Entry struct {
	Key   string
	Value Value
}

// Map - string keyed values, keys unique
//
// only NewMap and MustMap can build a non-empty map
type Map struct {
	entries []Entry
}

func (Nat) tag() byte   { return tagNat }
func (Int) tag() byte   { return tagInt }
func (Nat64) tag() byte { return tagNat64 }
func (Blob) tag() byte  { return tagBlob }
func (Text) tag() byte  { return tagText }
func (Array) tag() byte { return tagArray }
func (Map) tag() byte   { return tagMap }

// NewNat - wrap a non-negative big integer
func NewNat(n *big.Int) (Nat, error) {
	if nil == n {
		return Nat{n: new(big.Int)}, nil
	}
	if n.Sign() < 0 {
		return Nat{}, fault.ErrInvalidValueTag
	}
	return Nat{n: new(big.Int).Set(n)}, nil
}

// NatFromUint64 - small natural number
func NatFromUint64(n uint64) Nat {
	return Nat{n: new(big.Int).SetUint64(n)}
}

// Big - copy of the integer
func (v Nat) Big() *big.Int {
	if nil == v.n {
		return new(big.Int)
	}
	return new(big.Int).Set(v.n)
}

// NewInt - wrap a signed big integer
func NewInt(n *big.Int) Int {
	if nil == n {
		return Int{n: new(big.Int)}
	}
	return Int{n: new(big.Int).Set(n)}
}

// IntFromInt64 - small signed number
func IntFromInt64(n int64) Int {
	return Int{n: big.NewInt(n)}
}

// Big - copy of the integer
func (v Int) Big() *big.Int {
	if nil == v.n {
		return new(big.Int)
	}
	return new(big.Int).Set(v.n)
}

// NewMap - build a map, rejecting duplicate keys
//
// entry order is kept for iteration, encoding always sorts by key bytes
func NewMap(entries ...Entry) (Map, error) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Key]; ok {
			return Map{}, fault.ErrDuplicateMapKey
		}
		if nil == e.Value {
			return Map{}, fault.ErrInvalidValueTag
		}
		seen[e.Key] = struct{}{}
	}
	m := Map{
		entries: make([]Entry, len(entries)),
	}
	copy(m.entries, entries)
	return m, nil
}

// MustMap - NewMap for statically known keys, panics on a duplicate
func MustMap(entries ...Entry) Map {
	m, err := NewMap(entries...)
	if nil != err {
		panic(err)
	}
	return m
}

// Len - number of entries
func (m Map) Len() int {
	return len(m.entries)
}

// Entries - copy of the entries in insertion order
func (m Map) Entries() []Entry {
	result := make([]Entry, len(m.entries))
	copy(result, m.entries)
	return result
}

// Get - lookup a key
func (m Map) Get(key string) (Value, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// With - copy of the map with key set to v, replacing any existing entry
func (m Map) With(key string, v Value) Map {
	result := Map{
		entries: make([]Entry, 0, len(m.entries)+1),
	}
	replaced := false
	for _, e := range m.entries {
		if e.Key == key {
			e.Value = v
			replaced = true
		}
		result.entries = append(result.entries, e)
	}
	if !replaced {
		result.entries = append(result.entries, Entry{Key: key, Value: v})
	}
	return result
}

// sorted - entries in canonical order
func (m Map) sorted() []Entry {
	s := m.Entries()
	sort.Slice(s, func(i, j int) bool {
		return s[i].Key < s[j].Key
	})
	return s
}
