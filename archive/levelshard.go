// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/storage"
	"github.com/bitmark-inc/nftledger/util"
)

// bytes in one storage page
const pageSize = 65536

// shard metadata keys
var (
	shardStartKey    = []byte("shard.start")
	shardLengthKey   = []byte("shard.length")
	shardCapacityKey = []byte("shard.capacity")
	shardMaxBytesKey = []byte("shard.max-bytes")
	shardBytesKey    = []byte("shard.bytes")
	shardOwnerKey    = []byte("shard.owner")
)

// LevelShard - a shard in its own leveldb database
type LevelShard struct {
	sync.RWMutex

	log   *logger.L
	id    string
	store *storage.Store

	start    uint64
	length   uint64
	capacity uint64
	maxBytes uint64
	bytes    uint64
	owner    account.Principal
}

// DirectoryProvisioner - shards as databases under one directory
type DirectoryProvisioner struct {
	Directory string
	Capacity  uint64 // records per shard
	MaxPages  uint64 // storage budget per shard, zero is unlimited
}

func (p *DirectoryProvisioner) path(id string) string {
	return filepath.Join(p.Directory, "archive-"+id+".leveldb")
}

// Create - a new empty shard whose first block will be start
func (p *DirectoryProvisioner) Create(start uint64, owner account.Principal) (Shard, error) {
	if err := os.MkdirAll(p.Directory, 0700); nil != err {
		return nil, err
	}

	id := uuid.New().String()
	store, err := storage.Open(p.path(id), storage.ReadWrite)
	if nil != err {
		return nil, err
	}

	trx, err := store.Begin()
	if nil != err {
		store.Close()
		return nil, err
	}
	trx.PutN(store.Metadata, shardStartKey, start)
	trx.PutN(store.Metadata, shardLengthKey, 0)
	trx.PutN(store.Metadata, shardCapacityKey, p.Capacity)
	trx.PutN(store.Metadata, shardMaxBytesKey, p.MaxPages*pageSize)
	trx.PutN(store.Metadata, shardBytesKey, 0)
	trx.Put(store.Metadata, shardOwnerKey, owner)
	if err := trx.Commit(); nil != err {
		store.Close()
		return nil, err
	}
	return openShard(id, store)
}

// Open - reopen an existing shard
func (p *DirectoryProvisioner) Open(id string) (Shard, error) {
	name := p.path(id)
	if !util.EnsureFileExists(name) {
		return nil, fault.ErrShardNotFound
	}
	store, err := storage.Open(name, storage.ReadWrite)
	if nil != err {
		return nil, err
	}
	return openShard(id, store)
}

func openShard(id string, store *storage.Store) (*LevelShard, error) {
	s := &LevelShard{
		log:   logger.New("shard"),
		id:    id,
		store: store,
	}
	var ok bool
	if s.start, ok = store.Metadata.GetN(shardStartKey); !ok {
		store.Close()
		return nil, fault.ErrShardNotFound
	}
	s.length, _ = store.Metadata.GetN(shardLengthKey)
	s.capacity, _ = store.Metadata.GetN(shardCapacityKey)
	s.maxBytes, _ = store.Metadata.GetN(shardMaxBytesKey)
	s.bytes, _ = store.Metadata.GetN(shardBytesKey)
	s.owner = account.Principal(store.Metadata.Get(shardOwnerKey))

	s.log.Infof("shard: %s  range: [%d, %d)  capacity: %d", id, s.start, s.start+s.length, s.capacity)
	return s, nil
}

// ID - shard identity
func (s *LevelShard) ID() string {
	return s.id
}

// Bounds - half open range of stored blocks
func (s *LevelShard) Bounds() (uint64, uint64) {
	s.RLock()
	defer s.RUnlock()
	return s.start, s.start + s.length
}

// AppendBlocks - store blocks at start, which must not leave a gap
func (s *LevelShard) AppendBlocks(start uint64, blocks [][]byte) error {
	s.Lock()
	defer s.Unlock()

	end := s.start + s.length
	if start < s.start || start > end {
		return fault.ErrArchiveNotContiguous
	}

	// blocks already present must match exactly
	overlap := end - start
	if overlap > uint64(len(blocks)) {
		overlap = uint64(len(blocks))
	}
	for i := uint64(0); i < overlap; i += 1 {
		stored := s.store.Blocks.Get(util.Uint64ToBytes(start + i))
		if !bytes.Equal(stored, blocks[i]) {
			s.log.Criticalf("shard: %s  block: %d differs from stored copy", s.id, start+i)
			return fault.ErrArchiveMismatch
		}
	}

	remaining := blocks[overlap:]
	if 0 == len(remaining) {
		return nil
	}
	if uint64(len(remaining)) > s.capacity-s.length {
		return fault.ErrArchiveShardFull
	}
	size := uint64(0)
	for _, b := range remaining {
		size += uint64(len(b))
	}
	if 0 != s.maxBytes && s.bytes+size > s.maxBytes {
		return fault.ErrArchiveShardFull
	}

	trx, err := s.store.Begin()
	if nil != err {
		return err
	}
	for i, b := range remaining {
		trx.Put(s.store.Blocks, util.Uint64ToBytes(end+uint64(i)), b)
	}
	newLength := s.length + uint64(len(remaining))
	newBytes := s.bytes + size
	trx.PutN(s.store.Metadata, shardLengthKey, newLength)
	trx.PutN(s.store.Metadata, shardBytesKey, newBytes)
	if err := trx.Commit(); nil != err {
		return err
	}
	s.length = newLength
	s.bytes = newBytes

	s.log.Infof("shard: %s  appended: [%d, %d)", s.id, end, s.start+s.length)
	return nil
}

// GetBlock - one stored block
func (s *LevelShard) GetBlock(index uint64) ([]byte, error) {
	start, end := s.Bounds()
	if index < start || index >= end {
		return nil, fault.ErrBlockNotFound
	}
	b := s.store.Blocks.Get(util.Uint64ToBytes(index))
	if nil == b {
		return nil, fault.ErrBlockNotFound
	}
	return b, nil
}

// GetBlocks - stored blocks in [start, start+length), clipped to the shard
func (s *LevelShard) GetBlocks(start uint64, length uint64) ([]blocklog.IndexedBlock, error) {
	first, end := s.Bounds()
	if start < first {
		if length <= first-start {
			return []blocklog.IndexedBlock{}, nil
		}
		length -= first - start
		start = first
	}
	if start >= end {
		return []blocklog.IndexedBlock{}, nil
	}
	if length > end-start {
		length = end - start
	}

	elements, err := s.store.Blocks.NewFetchCursor().Seek(util.Uint64ToBytes(start)).Fetch(int(length))
	if nil != err {
		return nil, err
	}
	result := make([]blocklog.IndexedBlock, 0, len(elements))
	for _, e := range elements {
		n, ok := util.BytesToUint64(e.Key)
		if !ok {
			return nil, fault.ErrBlockNotFound
		}
		result = append(result, blocklog.IndexedBlock{ID: n, Block: e.Value})
	}
	return result, nil
}

// RemainingCapacity - records that can still be appended
//
// zero once the storage budget is used up
func (s *LevelShard) RemainingCapacity() uint64 {
	s.RLock()
	defer s.RUnlock()
	if 0 != s.maxBytes && s.bytes >= s.maxBytes {
		return 0
	}
	return s.capacity - s.length
}

// Owner - principal allowed to administer the shard
func (s *LevelShard) Owner() account.Principal {
	s.RLock()
	defer s.RUnlock()
	return s.owner
}

// UpdateOwner - change the owner, only the current owner may do this
func (s *LevelShard) UpdateOwner(caller account.Principal, owner account.Principal) error {
	s.Lock()
	defer s.Unlock()

	if !caller.Equal(s.owner) {
		return fault.ErrUnauthorisedOwner
	}
	if owner.IsAnonymous() {
		return fault.ErrEmptyPrincipal
	}

	trx, err := s.store.Begin()
	if nil != err {
		return err
	}
	trx.Put(s.store.Metadata, shardOwnerKey, owner)
	if err := trx.Commit(); nil != err {
		return err
	}
	s.owner = owner
	s.log.Infof("shard: %s  owner changed to: %s", s.id, owner)
	return nil
}

// Close - release the database
func (s *LevelShard) Close() {
	s.store.Close()
}
