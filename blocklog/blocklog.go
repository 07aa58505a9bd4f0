// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blocklog - append-only, index addressed log of structured blocks
//
// Every block hash is added to a merkle accumulator whose nodes live in
// the same store, so the tip and inclusion proofs never re-hash the log.
// The live segment holds [first, length); blocks below first have been
// moved to archive shards.
package blocklog

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/metrics"
	"github.com/bitmark-inc/nftledger/storage"
	"github.com/bitmark-inc/nftledger/util"
	"github.com/bitmark-inc/nftledger/value"
)

const (
	logName          = "blocklog"
	defaultCacheSize = 1000
)

// metadata keys
var (
	lengthKey   = []byte("log.length")
	firstKey    = []byte("log.first")
	lastHashKey = []byte("log.last-hash")
)

// Builder - produce the block for the given index and previous block hash
//
// previous is nil for the first block of the log
type Builder func(index uint64, previous *merkle.Digest) (value.Value, error)

// Log - the block log of one store
type Log struct {
	sync.RWMutex

	log          *logger.L
	store        *storage.Store
	cache        *lru.Cache
	certifier    Certifier
	hardCapacity uint64

	// committed state
	first    uint64
	length   uint64
	lastHash merkle.Digest
	root     merkle.Digest
}

// New - attach a log to a store and load its committed state
//
// hardCapacity limits the live segment, zero means unlimited
func New(store *storage.Store, hardCapacity uint64, certifier Certifier) (*Log, error) {
	cache, err := lru.New(defaultCacheSize)
	if nil != err {
		return nil, err
	}

	if nil == certifier {
		certifier = NoCertifier{}
	}

	l := &Log{
		log:          logger.New(logName),
		store:        store,
		cache:        cache,
		certifier:    certifier,
		hardCapacity: hardCapacity,
	}

	l.length, _ = store.Metadata.GetN(lengthKey)
	l.first, _ = store.Metadata.GetN(firstKey)
	if l.first > l.length {
		l.log.Criticalf("first: %d > length: %d", l.first, l.length)
		return nil, fault.ErrIndexOutOfRange
	}
	if b := store.Metadata.Get(lastHashKey); nil != b {
		if err := merkle.DigestFromBytes(&l.lastHash, b); nil != err {
			return nil, err
		}
	}
	l.root, err = merkle.Root(poolNodes{store.MerkleNodes}, l.length)
	if nil != err {
		l.log.Criticalf("accumulator for length: %d is incomplete: %s", l.length, err)
		return nil, err
	}

	l.log.Infof("opened: first: %d  length: %d  root: %s", l.first, l.length, l.root)
	return l, nil
}

// Store - the backing store
func (l *Log) Store() *storage.Store {
	return l.store
}

// Append - stage the next block on trx and return its index
//
// the committed state moves only when trx commits; an append that would
// grow the live segment past its hard capacity fails with a fatal error
func (l *Log) Append(trx storage.Transaction, build Builder) (uint64, error) {
	length, _ := trx.GetN(l.store.Metadata, lengthKey)
	first, _ := trx.GetN(l.store.Metadata, firstKey)

	if 0 != l.hardCapacity && length-first >= l.hardCapacity {
		l.log.Criticalf("live segment full: first: %d  length: %d  capacity: %d", first, length, l.hardCapacity)
		return 0, fault.ErrLiveSegmentFull
	}

	var previous *merkle.Digest
	if length > 0 {
		var d merkle.Digest
		if err := merkle.DigestFromBytes(&d, trx.Get(l.store.Metadata, lastHashKey)); nil != err {
			return 0, err
		}
		previous = &d
	}

	block, err := build(length, previous)
	if nil != err {
		return 0, err
	}

	encoded := value.Encode(block)
	hash := merkle.NewDigest(encoded)

	nodes := trxNodes{trx: trx, pool: l.store.MerkleNodes}
	newLength, err := merkle.Append(nodes, length, hash)
	if nil != err {
		return 0, err
	}
	root, err := merkle.Root(nodes, newLength)
	if nil != err {
		return 0, err
	}

	trx.Put(l.store.Blocks, util.Uint64ToBytes(length), encoded)
	trx.PutN(l.store.Metadata, lengthKey, newLength)
	trx.Put(l.store.Metadata, lastHashKey, hash[:])

	trx.OnCommit(func() {
		l.Lock()
		l.length = newLength
		l.lastHash = hash
		l.root = root
		live := l.length - l.first
		l.Unlock()
		metrics.BlocksAppended(1, newLength, live)
	})

	l.log.Debugf("staged block: %d  hash: %s", length, hash)
	return length, nil
}

// Trim - stage removal of live blocks below newFirst
//
// used once the blocks are safely stored in an archive shard
func (l *Log) Trim(trx storage.Transaction, newFirst uint64) error {
	length, _ := trx.GetN(l.store.Metadata, lengthKey)
	first, _ := trx.GetN(l.store.Metadata, firstKey)
	if newFirst < first || newFirst > length {
		return fault.ErrIndexOutOfRange
	}

	for i := first; i < newFirst; i += 1 {
		trx.Delete(l.store.Blocks, util.Uint64ToBytes(i))
	}
	trx.PutN(l.store.Metadata, firstKey, newFirst)

	trx.OnCommit(func() {
		l.Lock()
		l.first = newFirst
		live := l.length - l.first
		l.Unlock()
		for i := first; i < newFirst; i += 1 {
			l.cache.Remove(i)
		}
		metrics.LiveSize(live)
		l.log.Infof("trimmed live segment: [%d, %d) first is now: %d", first, newFirst, newFirst)
	})
	return nil
}

// Length - number of blocks ever appended (archived included)
func (l *Log) Length() uint64 {
	l.RLock()
	defer l.RUnlock()
	return l.length
}

// FirstIndex - lowest index still held by the live segment
func (l *Log) FirstIndex() uint64 {
	l.RLock()
	defer l.RUnlock()
	return l.first
}

// Bounds - first and length read together
func (l *Log) Bounds() (uint64, uint64) {
	l.RLock()
	defer l.RUnlock()
	return l.first, l.length
}

// LiveSize - number of blocks in the live segment
func (l *Log) LiveSize() uint64 {
	l.RLock()
	defer l.RUnlock()
	return l.length - l.first
}

// Get - one block from the live segment
//
// an index below FirstIndex has been archived and is reported as not found,
// callers route those through the archive manager
func (l *Log) Get(index uint64) (value.Value, error) {
	first, length := l.Bounds()
	if index < first || index >= length {
		return nil, fault.ErrBlockNotFound
	}
	if v, ok := l.cache.Get(index); ok {
		return v.(value.Value), nil
	}

	encoded, err := l.GetEncoded(index)
	if nil != err {
		return nil, err
	}
	v, err := value.Decode(encoded)
	if nil != err {
		l.log.Errorf("block: %d  decode error: %s", index, err)
		return nil, err
	}
	l.cache.Add(index, v)
	return v, nil
}

// GetEncoded - canonical bytes of one live block
func (l *Log) GetEncoded(index uint64) ([]byte, error) {
	first, length := l.Bounds()
	if index < first || index >= length {
		return nil, fault.ErrBlockNotFound
	}
	encoded := l.store.Blocks.Get(util.Uint64ToBytes(index))
	if nil == encoded {
		return nil, fault.ErrBlockNotFound
	}
	return encoded, nil
}

// Range - up to count live blocks starting at start, in index order
func (l *Log) Range(start uint64, count uint64) ([][]byte, error) {
	first, length := l.Bounds()
	if start < first || start > length {
		return nil, fault.ErrIndexOutOfRange
	}
	if count > length-start {
		count = length - start
	}
	result := make([][]byte, 0, count)
	if 0 == count {
		return result, nil
	}

	cursor := l.store.Blocks.NewFetchCursor().Seek(util.Uint64ToBytes(start))
	elements, err := cursor.Fetch(int(count))
	if nil != err {
		return nil, err
	}
	for i, e := range elements {
		n, ok := util.BytesToUint64(e.Key)
		if !ok || n != start+uint64(i) {
			return nil, fault.ErrBlockNotFound
		}
		result = append(result, e.Value)
	}
	if uint64(len(result)) != count {
		return nil, fault.ErrBlockNotFound
	}
	return result, nil
}

// Prove - inclusion proof of the block at index against the current root
//
// accumulator nodes are never archived so archived blocks can be proved too
func (l *Log) Prove(index uint64) (*merkle.Proof, merkle.Digest, error) {
	l.RLock()
	length := l.length
	root := l.root
	l.RUnlock()

	proof, err := merkle.Prove(poolNodes{l.store.MerkleNodes}, length, index)
	if nil != err {
		return nil, merkle.Digest{}, err
	}
	return proof, root, nil
}

// IndexedBlock - canonical block bytes with their index
type IndexedBlock struct {
	ID    uint64 `json:"id,string"`
	Block []byte `json:"block"`
}
