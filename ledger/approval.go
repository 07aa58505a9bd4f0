// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"
	"sort"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/storage"
	"github.com/bitmark-inc/nftledger/value"
)

// ApprovalEntry - one grant in a token or collection table
type ApprovalEntry struct {
	Spender   account.Account `json:"spender"`
	ExpiresAt *uint64         `json:"expires_at,string,omitempty"`
	Memo      []byte          `json:"memo,omitempty"`
	CreatedAt uint64          `json:"created_at_time,string"`
	sequence  uint64
}

// active - not yet expired at now
func (e *ApprovalEntry) active(now uint64) bool {
	return nil == e.ExpiresAt || *e.ExpiresAt > now
}

type approvalTable []ApprovalEntry

func (t approvalTable) find(spender account.Account) int {
	for i := range t {
		if t[i].Spender.Equal(spender) {
			return i
		}
	}
	return -1
}

// approves - spender holds an unexpired grant
func (t approvalTable) approves(spender account.Account, now uint64) bool {
	i := t.find(spender)
	return i >= 0 && t[i].active(now)
}

// put - insert or replace the entry of its spender, true if the table grew
func (t *approvalTable) put(e ApprovalEntry) bool {
	if i := t.find(e.Spender); i >= 0 {
		(*t)[i] = e
		return false
	}
	*t = append(*t, e)
	return true
}

func (t *approvalTable) remove(spender account.Account) bool {
	i := t.find(spender)
	if i < 0 {
		return false
	}
	*t = append((*t)[:i], (*t)[i+1:]...)
	return true
}

// evictsBefore - order in which entries leave a full table
//
// soonest expiry first and entries without expiry last, then oldest
// creation time, then insertion order
func evictsBefore(a *ApprovalEntry, b *ApprovalEntry) bool {
	switch {
	case nil != a.ExpiresAt && nil == b.ExpiresAt:
		return true
	case nil == a.ExpiresAt && nil != b.ExpiresAt:
		return false
	case nil != a.ExpiresAt && *a.ExpiresAt != *b.ExpiresAt:
		return *a.ExpiresAt < *b.ExpiresAt
	case a.CreatedAt != b.CreatedAt:
		return a.CreatedAt < b.CreatedAt
	}
	return a.sequence < b.sequence
}

// settle - drop entries in eviction order until at most size remain
//
// returns the number of dropped entries
func (t *approvalTable) settle(size uint64) uint64 {
	n := uint64(len(*t))
	if n <= size {
		return 0
	}
	order := make(approvalTable, len(*t))
	copy(order, *t)
	sort.SliceStable(order, func(i, j int) bool {
		return evictsBefore(&order[i], &order[j])
	})
	for _, e := range order[:n-size] {
		t.remove(e.Spender)
	}
	return n - size
}

// sorted - copy in spender key order, for paging
func (t approvalTable) sorted() approvalTable {
	result := make(approvalTable, len(t))
	copy(result, t)
	sort.Slice(result, func(i, j int) bool {
		return bytes.Compare(result[i].Spender.Key(), result[j].Spender.Key()) < 0
	})
	return result
}

func (t approvalTable) pack() []byte {
	items := make(value.Array, 0, len(t))
	for _, e := range t {
		entries := []value.Entry{
			{Key: "spender", Value: e.Spender.Value()},
			{Key: "created", Value: value.NatFromUint64(e.CreatedAt)},
			{Key: "seq", Value: value.NatFromUint64(e.sequence)},
		}
		if nil != e.ExpiresAt {
			entries = append(entries, value.Entry{Key: "exp", Value: value.NatFromUint64(*e.ExpiresAt)})
		}
		if nil != e.Memo {
			entries = append(entries, value.Entry{Key: "memo", Value: value.Blob(e.Memo)})
		}
		items = append(items, value.MustMap(entries...))
	}
	return value.Encode(items)
}

func unpackApprovals(buffer []byte) (approvalTable, error) {
	v, err := value.Decode(buffer)
	if nil != err {
		return nil, err
	}
	items, ok := v.(value.Array)
	if !ok {
		return nil, fault.ErrCannotDecodeValue
	}
	t := make(approvalTable, 0, len(items))
	for _, item := range items {
		m, ok := item.(value.Map)
		if !ok {
			return nil, fault.ErrCannotDecodeValue
		}
		spender, ok := m.Get("spender")
		if !ok {
			return nil, fault.ErrCannotDecodeValue
		}
		e := ApprovalEntry{}
		if e.Spender, err = account.FromValue(spender); nil != err {
			return nil, err
		}
		e.CreatedAt, _ = natField(m, "created")
		e.sequence, _ = natField(m, "seq")
		if exp, ok := natField(m, "exp"); ok {
			e.ExpiresAt = &exp
		}
		if memo, ok := m.Get("memo"); ok {
			if b, ok := memo.(value.Blob); ok {
				e.Memo = []byte(b)
			}
		}
		t = append(t, e)
	}
	return t, nil
}

func natField(m value.Map, key string) (uint64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(value.Nat)
	if !ok || !n.Big().IsUint64() {
		return 0, false
	}
	return n.Big().Uint64(), true
}

func (l *Ledger) getApprovals(r reader, pool *storage.PoolHandle, key []byte) (approvalTable, error) {
	buffer := r.Get(pool, key)
	if nil == buffer {
		return approvalTable{}, nil
	}
	return unpackApprovals(buffer)
}

func (l *Ledger) putApprovals(trx storage.Transaction, pool *storage.PoolHandle, key []byte, t approvalTable) {
	if 0 == len(t) {
		trx.Delete(pool, key)
		return
	}
	trx.Put(pool, key, t.pack())
}
