// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/nftledger/archive"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/transactionrecord"
	"github.com/bitmark-inc/nftledger/value"
)

// replayIndex - recently committed requests keyed by their replay key
//
// a request stays a duplicate for as long as its created_at_time would
// still be accepted, so expiry is decided on ledger time at lookup; the
// cache expiry only reclaims memory and outlives any accepted request,
// since created_at_time is at most drift ahead of the commit
type replayIndex struct {
	entries *cache.Cache
	horizon uint64 // tx_window + permitted_drift
}

// replayEntry - block of a committed request and its created_at_time
type replayEntry struct {
	tid       uint64
	createdAt uint64
}

func newReplayIndex(window uint64, drift uint64) *replayIndex {
	return &replayIndex{
		entries: cache.New(time.Duration(window+2*drift), time.Minute),
		horizon: window + drift,
	}
}

func (r *replayIndex) expired(e replayEntry, now uint64) bool {
	return now > r.horizon && e.createdAt < now-r.horizon
}

func (r *replayIndex) add(key merkle.Digest, e replayEntry, now uint64) {
	if r.expired(e, now) {
		return
	}
	r.entries.SetDefault(key.String(), e)
}

// lookup - the tid of an identical committed request
func (r *replayIndex) lookup(key merkle.Digest, now uint64) (uint64, bool) {
	item, ok := r.entries.Get(key.String())
	if !ok {
		return 0, false
	}
	e := item.(replayEntry)
	if r.expired(e, now) {
		r.entries.Delete(key.String())
		return 0, false
	}
	return e.tid, true
}

func (r *replayIndex) count() int {
	return r.entries.ItemCount()
}

// blocks read from a shard per step while rebuilding
const replayScanBlocks = 100

// shardReader - an archiver whose shards can be read directly
type shardReader interface {
	Shard(id string) (archive.Shard, error)
}

// rebuild - index the requests of every block still inside the window
//
// the live segment is scanned in full, then archived blocks are read
// newest first until their ledger time falls before the window; a request
// is at most drift ahead of its block, so older blocks cannot hold one
func (l *Ledger) rebuildReplayIndex() error {
	now := l.clock()

	first, length := l.blocks.Bounds()
	for index := first; index < length; index += 1 {
		block, err := l.blocks.Get(index)
		if nil != err {
			return err
		}
		if _, err := l.indexRequest(index, block, now); nil != err {
			return err
		}
	}

	reader, ok := l.archiver.(shardReader)
	if ok && first > 0 {
		oldest := uint64(0)
		if cutoff := l.replay.horizon + l.config.PermittedDrift; now > cutoff {
			oldest = now - cutoff
		}
		if err := l.rebuildArchived(reader, first, oldest, now); nil != err {
			return err
		}
	}

	l.log.Infof("replay index: %d requests", l.replay.count())
	return nil
}

func (l *Ledger) rebuildArchived(reader shardReader, end uint64, oldest uint64, now uint64) error {
	for end > 0 {
		start := uint64(0)
		if end > replayScanBlocks {
			start = end - replayScanBlocks
		}
		pieces := l.archiver.Route(start, end-start)
		for i := len(pieces) - 1; i >= 0; i -= 1 {
			piece := pieces[i]
			if piece.Live() {
				continue
			}
			shard, err := reader.Shard(piece.Shard)
			if nil != err {
				return err
			}
			blocks, err := shard.GetBlocks(piece.Start, piece.Length)
			if nil != err {
				return err
			}
			for j := len(blocks) - 1; j >= 0; j -= 1 {
				block, err := value.Decode(blocks[j].Block)
				if nil != err {
					return err
				}
				timestamp, err := l.indexRequest(blocks[j].ID, block, now)
				if nil != err {
					return err
				}
				if timestamp < oldest {
					return nil
				}
			}
		}
		end = start
	}
	return nil
}

// indexRequest - add the request recorded by a block, returns the block time
func (l *Ledger) indexRequest(index uint64, block value.Value, now uint64) (uint64, error) {
	t, err := transactionrecord.FromBlock(index, block)
	if nil != err {
		return 0, err
	}
	if nil == t.CreatedAt {
		return t.Timestamp, nil
	}
	key, err := t.ReplayKey()
	if nil != err {
		return 0, err
	}
	l.replay.add(key, replayEntry{tid: index, createdAt: *t.CreatedAt}, now)
	return t.Timestamp, nil
}

// replay key of a request, the fields exactly as they will be recorded
func replayKey(t *transactionrecord.Transaction) (*merkle.Digest, error) {
	if nil == t.CreatedAt {
		return nil, nil
	}
	key, err := t.ReplayKey()
	if nil != err {
		return nil, err
	}
	return &key, nil
}
