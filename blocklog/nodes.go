// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklog

import (
	"encoding/binary"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/storage"
)

// level ++ index
func nodeKey(level uint8, index uint64) []byte {
	key := make([]byte, 9)
	key[0] = level
	binary.BigEndian.PutUint64(key[1:], index)
	return key
}

func toDigest(buffer []byte) (merkle.Digest, bool) {
	var d merkle.Digest
	if nil == buffer {
		return d, false
	}
	if err := merkle.DigestFromBytes(&d, buffer); nil != err {
		return d, false
	}
	return d, true
}

// committed nodes, read only
type poolNodes struct {
	pool *storage.PoolHandle
}

func (p poolNodes) GetNode(level uint8, index uint64) (merkle.Digest, bool) {
	return toDigest(p.pool.Get(nodeKey(level, index)))
}

func (p poolNodes) PutNode(level uint8, index uint64, digest merkle.Digest) {
	logger.Panicf("blocklog: write to committed node: %d/%d", level, index)
}

// nodes staged on a transaction
type trxNodes struct {
	trx  storage.Transaction
	pool *storage.PoolHandle
}

func (t trxNodes) GetNode(level uint8, index uint64) (merkle.Digest, bool) {
	return toDigest(t.trx.Get(t.pool, nodeKey(level, index)))
}

func (t trxNodes) PutNode(level uint8, index uint64, digest merkle.Digest) {
	t.trx.Put(t.pool, nodeKey(level, index), digest[:])
}
