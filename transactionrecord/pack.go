// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/value"
)

// block field names
const (
	fieldBlockType = "btype"
	fieldTimestamp = "ts"
	fieldPrevious  = "phash"
	fieldTx        = "tx"

	fieldTokenID   = "tid"
	fieldFrom      = "from"
	fieldTo        = "to"
	fieldSpender   = "spender"
	fieldExpiresAt = "exp"
	fieldMemo      = "memo"
	fieldMeta      = "meta"
	fieldCreatedAt = "ts"
)

// Block - build the block value for this transaction
//
// previous is nil only for the first block of the log
//
//	{ btype: Text, ts: Nat, phash: Blob, tx: { tid, from, to, spender, exp, memo, meta, ts } }
func (t *Transaction) Block(previous *merkle.Digest) (value.Map, error) {
	if !t.Op.Valid() {
		return value.Map{}, fault.ErrUnknownOperation
	}

	txMap, err := t.txMap()
	if nil != err {
		return value.Map{}, err
	}

	entries := []value.Entry{
		{Key: fieldBlockType, Value: value.Text(t.Op)},
		{Key: fieldTimestamp, Value: value.NatFromUint64(t.Timestamp)},
		{Key: fieldTx, Value: txMap},
	}
	if nil != previous {
		entries = append(entries, value.Entry{Key: fieldPrevious, Value: value.Blob(previous[:])})
	}
	return value.NewMap(entries...)
}

// the tx part of the block, everything the caller supplied
func (t *Transaction) txMap() (value.Map, error) {
	tx := make([]value.Entry, 0, 8)
	if nil != t.TokenID {
		tx = append(tx, value.Entry{Key: fieldTokenID, Value: value.NatFromUint64(*t.TokenID)})
	}
	if nil != t.From {
		tx = append(tx, value.Entry{Key: fieldFrom, Value: t.From.Value()})
	}
	if nil != t.To {
		tx = append(tx, value.Entry{Key: fieldTo, Value: t.To.Value()})
	}
	if nil != t.Spender {
		tx = append(tx, value.Entry{Key: fieldSpender, Value: t.Spender.Value()})
	}
	if nil != t.ExpiresAt {
		tx = append(tx, value.Entry{Key: fieldExpiresAt, Value: value.NatFromUint64(*t.ExpiresAt)})
	}
	if nil != t.Memo {
		tx = append(tx, value.Entry{Key: fieldMemo, Value: value.Blob(t.Memo)})
	}
	if nil != t.Meta {
		tx = append(tx, value.Entry{Key: fieldMeta, Value: *t.Meta})
	}
	if nil != t.CreatedAt {
		tx = append(tx, value.Entry{Key: fieldCreatedAt, Value: value.NatFromUint64(*t.CreatedAt)})
	}

	return value.NewMap(tx...)
}

// ReplayKey - identity of the request that produced this transaction
//
// two requests with the same operation and the same tx fields, including
// created_at_time, have the same key; ledger time and index are excluded
func (t *Transaction) ReplayKey() (merkle.Digest, error) {
	if !t.Op.Valid() {
		return merkle.Digest{}, fault.ErrUnknownOperation
	}
	txMap, err := t.txMap()
	if nil != err {
		return merkle.Digest{}, err
	}
	m, err := value.NewMap(
		value.Entry{Key: fieldBlockType, Value: value.Text(t.Op)},
		value.Entry{Key: fieldTx, Value: txMap},
	)
	if nil != err {
		return merkle.Digest{}, err
	}
	return value.Hash(m), nil
}
