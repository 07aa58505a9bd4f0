// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package archive - move the oldest blocks of the live log into archive
// shards and route range queries across the resulting segments
//
// The archived segments together with the live segment always tile
// [0, log length). A segment record is written before any block is copied
// into its shard and the live log is trimmed only after the copy, so an
// interrupted migration is completed by simply running it again.
package archive

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/metrics"
	"github.com/bitmark-inc/nftledger/util"
)

const (
	logName       = "archive"
	retryInterval = time.Minute
)

// Manager - owns the archived segment list of one block log
type Manager struct {
	sync.RWMutex // guards segments and shards

	migrate  sync.Mutex // one migration step at a time
	settling bool       // guarded by migrate

	log         *logger.L
	config      Configuration
	blocks      *blocklog.Log
	provisioner Provisioner
	owner       account.Principal

	segments []Segment
	shards   map[string]Shard

	notify chan struct{}
}

// NewManager - load the segment list of the log and open its shards
//
// owner is recorded on every newly provisioned shard
func NewManager(config Configuration, blocks *blocklog.Log, provisioner Provisioner, owner account.Principal) (*Manager, error) {
	config.Normalise()

	m := &Manager{
		log:         logger.New(logName),
		config:      config,
		blocks:      blocks,
		provisioner: provisioner,
		owner:       owner,
		segments:    []Segment{},
		shards:      make(map[string]Shard),
		notify:      make(chan struct{}, 1),
	}

	store := blocks.Store()
	err := store.Archives.NewFetchCursor().Map(func(key []byte, buffer []byte) error {
		s, err := UnpackSegment(buffer)
		if nil != err {
			return err
		}
		shard, err := provisioner.Open(s.ID)
		if nil != err {
			m.log.Criticalf("cannot open shard: %s  error: %s", s.ID, err)
			return err
		}
		m.segments = append(m.segments, s)
		m.shards[s.ID] = shard
		return nil
	})
	if nil != err {
		m.closeShards()
		return nil, err
	}

	// segments must end exactly where the live segment starts
	expected := uint64(0)
	for _, s := range m.segments {
		if s.Start != expected {
			m.log.Criticalf("segment: %s  starts at: %d  expected: %d", s.ID, s.Start, expected)
			m.closeShards()
			return nil, fault.ErrArchiveNotContiguous
		}
		expected = s.End
	}
	if first := blocks.FirstIndex(); first != expected {
		m.log.Criticalf("archived segments end at: %d  live segment starts at: %d", expected, first)
		m.closeShards()
		return nil, fault.ErrArchiveNotContiguous
	}

	m.log.Infof("opened %d archive segments", len(m.segments))
	return m, nil
}

// Configuration - the normalised thresholds
func (m *Manager) Configuration() Configuration {
	return m.config
}

// Close - close every shard
func (m *Manager) Close() {
	m.Lock()
	defer m.Unlock()
	m.closeShards()
}

func (m *Manager) closeShards() {
	for id, shard := range m.shards {
		shard.Close()
		delete(m.shards, id)
	}
}

// Notify - request a migration check, never blocks
func (m *Manager) Notify() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Segments - copy of the archived segment list in creation order
func (m *Manager) Segments() []Segment {
	m.RLock()
	defer m.RUnlock()
	result := make([]Segment, len(m.segments))
	copy(result, m.segments)
	return result
}

// ListArchives - the live segment followed by every non-empty archive
//
// with from set only archives created after the one named from are listed;
// from naming the live segment lists every archive
func (m *Manager) ListArchives(from *string) []Segment {
	m.RLock()
	defer m.RUnlock()

	result := []Segment{}
	i := 0
	if nil == from {
		first, length := m.blocks.Bounds()
		result = append(result, Segment{ID: LiveSegmentID, Start: first, End: length})
	} else if LiveSegmentID != *from {
		i = len(m.segments)
		for j, s := range m.segments {
			if s.ID == *from {
				i = j + 1
				break
			}
		}
	}
	for _, s := range m.segments[i:] {
		if s.Start == s.End {
			continue
		}
		result = append(result, s)
	}
	return result
}

// Route - split a requested range across archive shards and the live segment
func (m *Manager) Route(start uint64, length uint64) []Piece {
	m.RLock()
	defer m.RUnlock()
	first, logLength := m.blocks.Bounds()
	return Plan(m.segments, first, logLength, start, length)
}

// Shard - look up an open shard
func (m *Manager) Shard(id string) (Shard, error) {
	m.RLock()
	defer m.RUnlock()
	shard, ok := m.shards[id]
	if !ok {
		return nil, fault.ErrShardNotFound
	}
	return shard, nil
}

// MaybeArchive - run one migration step if the live segment is over its threshold
//
// more is true when blocks still remain to be moved
func (m *Manager) MaybeArchive() (bool, error) {
	m.migrate.Lock()
	defer m.migrate.Unlock()

	first, length := m.blocks.Bounds()
	live := length - first
	if !m.settling && live < m.config.MaxActiveRecords {
		return false, nil
	}
	if live <= m.config.SettleToRecords {
		m.settling = false
		return false, nil
	}

	// once triggered keep moving blocks until the live segment has settled
	m.settling = true
	amount := live - m.config.SettleToRecords

	more := false
	if amount > m.config.MaxRecordsToArchive {
		amount = m.config.MaxRecordsToArchive
		more = true
	}

	index, segment, shard, err := m.target(first)
	if nil != err {
		return false, err
	}

	remaining := shard.RemainingCapacity()
	if 0 == remaining {
		return true, m.seal(index, segment)
	}
	if amount > remaining {
		amount = remaining
		more = true
	}

	blocks, err := m.blocks.Range(first, amount)
	if nil != err {
		return false, err
	}

	err = shard.AppendBlocks(first, blocks)
	if fault.ErrArchiveShardFull == err {
		m.log.Warnf("shard: %s  full at: %d", segment.ID, segment.End)
		return true, m.seal(index, segment)
	}
	if nil != err {
		return false, err
	}

	newFirst := first + amount
	segment.End = newFirst

	trx, err := m.blocks.Store().Begin()
	if nil != err {
		return false, err
	}
	err = m.blocks.Trim(trx, newFirst)
	if nil != err {
		trx.Abort()
		return false, err
	}
	trx.Put(m.blocks.Store().Archives, util.Uint64ToBytes(uint64(index)), segment.Pack())
	trx.OnCommit(func() {
		m.segments[index] = segment
	})

	// routing must never see the trimmed log with the old segment end
	m.Lock()
	err = trx.Commit()
	count := len(m.segments)
	m.Unlock()
	if nil != err {
		return false, err
	}

	metrics.BlocksArchived(amount, count)
	m.log.Infof("archived: [%d, %d) to shard: %s", first, newFirst, segment.ID)

	if length-newFirst > m.config.SettleToRecords {
		more = true
	} else {
		m.settling = false
	}
	return more, nil
}

// the segment that should receive blocks starting at first
func (m *Manager) target(first uint64) (int, Segment, Shard, error) {
	m.RLock()
	n := len(m.segments)
	if n > 0 {
		s := m.segments[n-1]
		shard := m.shards[s.ID]
		if !s.Sealed && s.End == first && nil != shard {
			m.RUnlock()
			return n - 1, s, shard, nil
		}
	}
	m.RUnlock()

	shard, err := m.provisioner.Create(first, m.owner)
	if nil != err {
		return 0, Segment{}, nil, err
	}
	s := Segment{
		ID:    shard.ID(),
		Start: first,
		End:   first,
	}

	// the record exists before any block is copied so a retry reuses this shard
	trx, err := m.blocks.Store().Begin()
	if nil != err {
		shard.Close()
		return 0, Segment{}, nil, err
	}
	trx.Put(m.blocks.Store().Archives, util.Uint64ToBytes(uint64(n)), s.Pack())
	trx.OnCommit(func() {
		m.segments = append(m.segments, s)
		m.shards[s.ID] = shard
	})
	m.Lock()
	err = trx.Commit()
	m.Unlock()
	if nil != err {
		shard.Close()
		return 0, Segment{}, nil, err
	}

	m.log.Infof("provisioned shard: %s  starting at: %d", s.ID, first)
	return n, s, shard, nil
}

// mark a segment as full so the next step provisions a new shard
func (m *Manager) seal(index int, segment Segment) error {
	segment.Sealed = true

	trx, err := m.blocks.Store().Begin()
	if nil != err {
		return err
	}
	trx.Put(m.blocks.Store().Archives, util.Uint64ToBytes(uint64(index)), segment.Pack())
	trx.OnCommit(func() {
		m.segments[index] = segment
	})
	m.Lock()
	err = trx.Commit()
	m.Unlock()
	if nil != err {
		return err
	}
	m.log.Infof("sealed shard: %s  range: [%d, %d)", segment.ID, segment.Start, segment.End)
	return nil
}

// UpdateShardOwner - change the administrator of one shard
func (m *Manager) UpdateShardOwner(id string, caller account.Principal, owner account.Principal) error {
	shard, err := m.Shard(id)
	if nil != err {
		return err
	}
	return shard.UpdateOwner(caller, owner)
}

// Run - background migration loop
//
// failures are logged, counted and retried on the next tick; they never
// reach the callers whose appends triggered the migration
func (m *Manager) Run(args interface{}, shutdown <-chan struct{}) {
	m.log.Info("starting…")

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-m.notify:
		case <-ticker.C:
		}

	drain:
		for {
			more, err := m.MaybeArchive()
			if nil != err {
				m.log.Errorf("migration error: %s", err)
				metrics.MigrationFailed()
				break drain
			}
			if !more {
				break drain
			}
			select {
			case <-shutdown:
				break loop
			default:
			}
		}
	}

	m.log.Info("shutting down…")
	m.log.Flush()
}
