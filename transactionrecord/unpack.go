// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/value"
)

// FromBlock - recover the transaction view of the block at index
func FromBlock(index uint64, block value.Value) (*Transaction, error) {
	m, ok := block.(value.Map)
	if !ok {
		return nil, fault.ErrNotTransactionPack
	}

	btype, ok := getText(m, fieldBlockType)
	if !ok || !Operation(btype).Valid() {
		return nil, fault.ErrUnknownOperation
	}
	ts, ok := getNat(m, fieldTimestamp)
	if !ok {
		return nil, fault.ErrNotTransactionPack
	}
	txValue, ok := m.Get(fieldTx)
	if !ok {
		return nil, fault.ErrNotTransactionPack
	}
	tx, ok := txValue.(value.Map)
	if !ok {
		return nil, fault.ErrNotTransactionPack
	}

	t := &Transaction{
		Op:        Operation(btype),
		Index:     index,
		Timestamp: ts,
	}

	if n, ok := getNat(tx, fieldTokenID); ok {
		t.TokenID = &n
	}
	if n, ok := getNat(tx, fieldExpiresAt); ok {
		t.ExpiresAt = &n
	}
	if n, ok := getNat(tx, fieldCreatedAt); ok {
		t.CreatedAt = &n
	}

	var err error
	if t.From, err = getAccount(tx, fieldFrom); nil != err {
		return nil, err
	}
	if t.To, err = getAccount(tx, fieldTo); nil != err {
		return nil, err
	}
	if t.Spender, err = getAccount(tx, fieldSpender); nil != err {
		return nil, err
	}

	if v, ok := tx.Get(fieldMemo); ok {
		memo, ok := v.(value.Blob)
		if !ok {
			return nil, fault.ErrNotTransactionPack
		}
		t.Memo = []byte(memo)
	}
	if v, ok := tx.Get(fieldMeta); ok {
		meta, ok := v.(value.Map)
		if !ok {
			return nil, fault.ErrNotTransactionPack
		}
		t.Meta = &meta
	}
	return t, nil
}

// PreviousHash - the phash link of a block, false for the first block
func PreviousHash(block value.Value) (merkle.Digest, bool) {
	var d merkle.Digest
	m, ok := block.(value.Map)
	if !ok {
		return d, false
	}
	v, ok := m.Get(fieldPrevious)
	if !ok {
		return d, false
	}
	b, ok := v.(value.Blob)
	if !ok || nil != merkle.DigestFromBytes(&d, b) {
		return d, false
	}
	return d, true
}

func getText(m value.Map, key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(value.Text)
	return string(s), ok
}

func getNat(m value.Map, key string) (uint64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case value.Nat:
		b := n.Big()
		if !b.IsUint64() {
			return 0, false
		}
		return b.Uint64(), true
	case value.Nat64:
		return uint64(n), true
	}
	return 0, false
}

func getAccount(m value.Map, key string) (*account.Account, error) {
	v, ok := m.Get(key)
	if !ok {
		return nil, nil
	}
	a, err := account.FromValue(v)
	if nil != err {
		return nil, err
	}
	return &a, nil
}
