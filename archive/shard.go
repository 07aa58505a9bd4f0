// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package archive

import (
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/blocklog"
)

// Shard - an archive store holding one contiguous range of blocks
//
// AppendBlocks is idempotent: blocks already stored with identical bytes
// are accepted again, so a stalled migration can simply be retried
type Shard interface {
	ID() string
	Bounds() (uint64, uint64)
	AppendBlocks(start uint64, blocks [][]byte) error
	GetBlock(index uint64) ([]byte, error)
	GetBlocks(start uint64, length uint64) ([]blocklog.IndexedBlock, error)
	RemainingCapacity() uint64
	Owner() account.Principal
	UpdateOwner(caller account.Principal, owner account.Principal) error
	Close()
}

// Provisioner - creates and reopens shards
type Provisioner interface {
	Create(start uint64, owner account.Principal) (Shard, error)
	Open(id string) (Shard, error)
}
