// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/fault"
)

// Transaction - staged writes to a store, applied atomically by Commit
//
// reads through the transaction see its own staged writes,
// reads through a PoolHandle only see committed data
type Transaction interface {
	Put(*PoolHandle, []byte, []byte)
	PutN(*PoolHandle, []byte, uint64)
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	GetN(*PoolHandle, []byte) (uint64, bool)
	Has(*PoolHandle, []byte) bool
	OnCommit(func())
	Commit() error
	Abort()
}

type transaction struct {
	store    *Store
	batch    *leveldb.Batch
	cache    Cache
	hooks    []func()
	finished bool
}

// Begin - start a transaction, blocks while another is open on the store
func (s *Store) Begin() (Transaction, error) {
	s.writer.Lock()

	s.RLock()
	open := nil != s.db
	s.RUnlock()
	if !open {
		s.writer.Unlock()
		return nil, fault.ErrNotInitialised
	}

	return &transaction{
		store: s,
		batch: new(leveldb.Batch),
		cache: newCache(),
	}, nil
}

func (t *transaction) Put(handle *PoolHandle, key []byte, value []byte) {
	k := handle.prefixKey(key)
	v := make([]byte, len(value))
	copy(v, value)
	t.cache.Set(dbPut, string(k), v)
	t.batch.Put(k, v)
}

func (t *transaction) PutN(handle *PoolHandle, key []byte, value uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	t.Put(handle, key, buffer)
}

func (t *transaction) Delete(handle *PoolHandle, key []byte) {
	k := handle.prefixKey(key)
	t.cache.Set(dbDelete, string(k), nil)
	t.batch.Delete(k)
}

func (t *transaction) Get(handle *PoolHandle, key []byte) []byte {
	value, found, deleted := t.cache.Get(string(handle.prefixKey(key)))
	if deleted {
		return nil
	}
	if found {
		return value
	}
	return handle.Get(key)
}

func (t *transaction) GetN(handle *PoolHandle, key []byte) (uint64, bool) {
	return decodeN(key, t.Get(handle, key))
}

func (t *transaction) Has(handle *PoolHandle, key []byte) bool {
	_, found, deleted := t.cache.Get(string(handle.prefixKey(key)))
	if deleted {
		return false
	}
	if found {
		return true
	}
	return handle.Has(key)
}

// OnCommit - run f after a successful commit, in registration order
func (t *transaction) OnCommit(f func()) {
	t.hooks = append(t.hooks, f)
}

// Commit - write the batch; hooks run before the next transaction can start
func (t *transaction) Commit() error {
	if t.finished {
		return fault.ErrTransactionFinished
	}
	defer t.finish()

	t.store.RLock()
	db := t.store.db
	var err error
	if nil == db {
		err = fault.ErrNotInitialised
	} else {
		err = db.Write(t.batch, nil)
	}
	t.store.RUnlock()

	if nil != err {
		logger.Criticalf("storage: %s  commit error: %s", t.store.name, err)
		return err
	}

	for _, f := range t.hooks {
		f()
	}
	return nil
}

// Abort - discard all staged writes
func (t *transaction) Abort() {
	if t.finished {
		return
	}
	t.finish()
}

func (t *transaction) finish() {
	t.finished = true
	t.batch.Reset()
	t.cache.Clear()
	t.hooks = nil
	t.store.writer.Unlock()
}
