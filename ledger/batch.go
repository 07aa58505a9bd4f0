// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/metrics"
	"github.com/bitmark-inc/nftledger/storage"
	"github.com/bitmark-inc/nftledger/transactionrecord"
	"github.com/bitmark-inc/nftledger/value"
)

// batch - one call in progress
type batch struct {
	trx  storage.Transaction
	now  uint64
	seen map[merkle.Digest]replayEntry // replay keys of blocks staged by this call
}

// item - validate then apply one request
//
// a rejected item must not have staged any write; the error return is
// fatal and aborts the whole call
type item func(b *batch, i int) (uint64, *Error, error)

// run - execute count items in one transaction
//
// batch level rejections fill only the first result; in atomic mode a
// single rejected item aborts the call and only rejections are reported
func (l *Ledger) run(caller account.Principal, count int, limit uint64, f item) ([]*Result, error) {
	if 0 == count {
		return []*Result{{Err: batchError(CodeNoArguments, messageNoArguments)}}, nil
	}
	results := make([]*Result, count)
	if uint64(count) > limit {
		results[0] = &Result{Err: batchError(CodeExceedUpdateBatch, messageExceedBatch)}
		return results, nil
	}
	if caller.IsAnonymous() {
		results[0] = &Result{Err: batchError(CodeAnonymousIdentity, messageAnonymous)}
		return results, nil
	}

	trx, err := l.store.Begin()
	if nil != err {
		return nil, err
	}
	b := &batch{
		trx:  trx,
		now:  l.clock(),
		seen: make(map[merkle.Digest]replayEntry),
	}
	trx.OnCommit(func() {
		for key, e := range b.seen {
			l.replay.add(key, e, b.now)
		}
	})

	rejected := false
	for i := 0; i < count; i += 1 {
		tid, e, err := f(b, i)
		if nil != err {
			l.log.Errorf("item: %d  fatal error: %s", i, err)
			trx.Abort()
			return nil, err
		}
		if nil != e {
			metrics.ItemError(string(e.Kind))
			results[i] = &Result{Err: e}
			rejected = true
			continue
		}
		results[i] = &Result{Ok: &tid}
	}

	if rejected && l.config.AtomicBatchTransfers {
		trx.Abort()
		for i, r := range results {
			if r.IsOk() {
				results[i] = nil
			}
		}
		return results, nil
	}

	if !anyOk(results) {
		trx.Abort()
		return results, nil
	}
	if err := trx.Commit(); nil != err {
		l.log.Errorf("commit error: %s", err)
		return nil, err
	}
	l.archiver.Notify()
	return results, nil
}

func anyOk(results []*Result) bool {
	for _, r := range results {
		if r.IsOk() {
			return true
		}
	}
	return false
}

// checks shared by every mutating request

func (l *Ledger) checkMemo(memo []byte) *Error {
	if uint64(len(memo)) > l.config.MaxMemoSize {
		return genericError(CodeExceedMemoSize, messageExceedMemo)
	}
	return nil
}

// checkTime - created_at_time inside [now - window - drift, now + drift]
func (l *Ledger) checkTime(createdAt *uint64, now uint64) *Error {
	if nil == createdAt {
		return nil
	}
	if *createdAt > now+l.config.PermittedDrift {
		return futureError(now)
	}
	horizon := l.config.TxWindow + l.config.PermittedDrift
	if now > horizon && *createdAt < now-horizon {
		return newError(TooOld)
	}
	return nil
}

// checkReplay - time window and duplicate detection for a request
//
// returns the replay key to record once the block is staged
func (l *Ledger) checkReplay(b *batch, t *transactionrecord.Transaction) (*merkle.Digest, *Error, error) {
	if e := l.checkTime(t.CreatedAt, b.now); nil != e {
		return nil, e, nil
	}
	key, err := replayKey(t)
	if nil != err || nil == key {
		return nil, nil, err
	}
	if e, ok := b.seen[*key]; ok {
		return nil, duplicateError(e.tid), nil
	}
	if tid, ok := l.replay.lookup(*key, b.now); ok {
		return nil, duplicateError(tid), nil
	}
	return key, nil, nil
}

// record - append the block of an accepted request
func (l *Ledger) record(b *batch, t *transactionrecord.Transaction, key *merkle.Digest) (uint64, error) {
	index, err := l.blocks.Append(b.trx, func(index uint64, previous *merkle.Digest) (value.Value, error) {
		t.Index = index
		t.Timestamp = b.now
		return t.Block(previous)
	})
	if nil != err {
		return 0, err
	}
	if nil != key {
		b.seen[*key] = replayEntry{tid: index, createdAt: *t.CreatedAt}
	}
	return index, nil
}

// zero length memos are recorded as absent
func normaliseMemo(memo []byte) []byte {
	if 0 == len(memo) {
		return nil
	}
	return memo
}
