// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"
)

// PoolHandle - committed read access to one prefix of a store
//
// all writes go through a Transaction
type PoolHandle struct {
	prefix byte
	limit  []byte
	store  *Store
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Get - read a value for a given key
//
// returns nil if the key is absent
func (p *PoolHandle) Get(key []byte) []byte {
	p.store.RLock()
	defer p.store.RUnlock()
	if nil == p.store.db {
		return nil
	}
	value, err := p.store.db.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("pool.Get", err)
	return value
}

// GetN - read a record and decode first 8 bytes as big endian uint64
//
// second parameter is false if record was not found
// panics if not 8 (or more) bytes in the record
func (p *PoolHandle) GetN(key []byte) (uint64, bool) {
	buffer := p.Get(key)
	return decodeN(key, buffer)
}

func decodeN(key []byte, buffer []byte) (uint64, bool) {
	if nil == buffer {
		return 0, false
	}
	if len(buffer) < 8 {
		logger.Panicf("pool.GetN truncated record for: %x: %x", key, buffer)
	}
	return binary.BigEndian.Uint64(buffer[:8]), true
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	p.store.RLock()
	defer p.store.RUnlock()
	if nil == p.store.db {
		return false
	}
	value, err := p.store.db.Has(p.prefixKey(key), nil)
	logger.PanicIfError("pool.Has", err)
	return value
}

// LastElement - get the last element in a pool
func (p *PoolHandle) LastElement() (Element, bool) {
	return p.edgeElement(false)
}

// FirstElement - get the first element in a pool
func (p *PoolHandle) FirstElement() (Element, bool) {
	return p.edgeElement(true)
}

func (p *PoolHandle) edgeElement(first bool) (Element, bool) {
	maxRange := ldb_util.Range{
		Start: []byte{p.prefix}, // Start of key range, included in the range
		Limit: p.limit,          // Limit of key range, excluded from the range
	}

	p.store.RLock()
	defer p.store.RUnlock()
	if nil == p.store.db {
		return Element{}, false
	}

	iter := p.store.db.NewIterator(&maxRange, nil)

	found := false
	result := Element{}

	var ok bool
	if first {
		ok = iter.First()
	} else {
		ok = iter.Last()
	}
	if ok {
		result = copyElement(iter.Key(), iter.Value())
		found = true
	}
	iter.Release()
	err := iter.Error()
	logger.PanicIfError("pool.edgeElement", err)
	return result, found
}

// contents of iterator slices must not be modified, and are
// only valid until the next call to Next
func copyElement(key []byte, value []byte) Element {
	dataKey := make([]byte, len(key)-1) // strip the prefix
	copy(dataKey, key[1:])              // ...

	dataValue := make([]byte, len(value))
	copy(dataValue, value)

	return Element{
		Key:   dataKey,
		Value: dataValue,
	}
}
