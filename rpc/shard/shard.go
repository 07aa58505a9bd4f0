// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package shard - RPC access to the archive shards of the block log
package shard

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/archive"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/metrics"
	"github.com/bitmark-inc/nftledger/rpc/ratelimit"
	"github.com/bitmark-inc/nftledger/transactionrecord"
	"github.com/bitmark-inc/nftledger/value"
)

const (
	rateLimitShard = 100
	rateBurstShard = 2000
	maximumRanges  = 100
)

// Shards - lookup of open shards by identity
type Shards interface {
	Shard(id string) (archive.Shard, error)
}

// Shard - type for RPC calls
type Shard struct {
	Log       *logger.L
	Limiter   *rate.Limiter
	Shards    Shards
	maxAppend uint64
}

// New - create the service, maxAppend bounds one AppendBlocks call
func New(log *logger.L, shards Shards, maxAppend uint64) *Shard {
	return &Shard{
		Log:       log,
		Limiter:   rate.NewLimiter(rateLimitShard, rateBurstShard),
		Shards:    shards,
		maxAppend: maxAppend,
	}
}

// ---

// GetBlocksArguments - ranges to read from one shard
type GetBlocksArguments struct {
	Shard  string              `json:"shard"`
	Ranges []ledger.BlockRange `json:"ranges"`
}

// GetBlocksReply - stored blocks, each range clipped to the shard
type GetBlocksReply struct {
	Blocks []blocklog.IndexedBlock `json:"blocks"`
}

// GetBlocks - read archived blocks
func (s *Shard) GetBlocks(arguments *GetBlocksArguments, reply *GetBlocksReply) error {
	metrics.RPCCall("Shard.GetBlocks")

	if err := ratelimit.LimitN(s.Limiter, len(arguments.Ranges), maximumRanges); nil != err {
		return err
	}

	shard, err := s.Shards.Shard(arguments.Shard)
	if nil != err {
		return err
	}

	reply.Blocks = []blocklog.IndexedBlock{}
	for _, r := range arguments.Ranges {
		blocks, err := shard.GetBlocks(r.Start, r.Length)
		if nil != err {
			return err
		}
		reply.Blocks = append(reply.Blocks, blocks...)
	}
	return nil
}

// GetTransactionArguments - one archived block
type GetTransactionArguments struct {
	Shard string `json:"shard"`
	Index uint64 `json:"index,string"`
}

// GetTransactionReply - the block and its decoded view
type GetTransactionReply struct {
	Block       []byte                         `json:"block"`
	Transaction *transactionrecord.Transaction `json:"transaction"`
}

// GetTransaction - read and decode one archived block
func (s *Shard) GetTransaction(arguments *GetTransactionArguments, reply *GetTransactionReply) error {
	metrics.RPCCall("Shard.GetTransaction")

	if err := ratelimit.Limit(s.Limiter); nil != err {
		return err
	}

	shard, err := s.Shards.Shard(arguments.Shard)
	if nil != err {
		return err
	}
	packed, err := shard.GetBlock(arguments.Index)
	if nil != err {
		return err
	}
	block, err := value.Decode(packed)
	if nil != err {
		s.Log.Errorf("shard: %s  block: %d  decode error: %s", arguments.Shard, arguments.Index, err)
		return err
	}
	t, err := transactionrecord.FromBlock(arguments.Index, block)
	if nil != err {
		return err
	}

	reply.Block = packed
	reply.Transaction = t
	return nil
}

// ---

// ShardArguments - a shard identity
type ShardArguments struct {
	Shard string `json:"shard"`
}

// CapacityReply - records the shard can still take
type CapacityReply struct {
	Capacity uint64 `json:"capacity,string"`
}

// RemainingCapacity - free record slots of a shard
func (s *Shard) RemainingCapacity(arguments *ShardArguments, reply *CapacityReply) error {
	metrics.RPCCall("Shard.RemainingCapacity")

	if err := ratelimit.Limit(s.Limiter); nil != err {
		return err
	}

	shard, err := s.Shards.Shard(arguments.Shard)
	if nil != err {
		return err
	}
	reply.Capacity = shard.RemainingCapacity()
	return nil
}

// OwnerReply - the administrator of a shard
type OwnerReply struct {
	Owner account.Principal `json:"owner"`
}

// GetOwner - current administrator
func (s *Shard) GetOwner(arguments *ShardArguments, reply *OwnerReply) error {
	metrics.RPCCall("Shard.GetOwner")

	if err := ratelimit.Limit(s.Limiter); nil != err {
		return err
	}

	shard, err := s.Shards.Shard(arguments.Shard)
	if nil != err {
		return err
	}
	reply.Owner = shard.Owner()
	return nil
}

// UpdateOwnerArguments - hand a shard to a new administrator
type UpdateOwnerArguments struct {
	Caller account.Principal `json:"caller"`
	Shard  string            `json:"shard"`
	Owner  account.Principal `json:"owner"`
}

// UpdateOwner - only the current owner may do this
func (s *Shard) UpdateOwner(arguments *UpdateOwnerArguments, reply *OwnerReply) error {
	metrics.RPCCall("Shard.UpdateOwner")

	if err := ratelimit.Limit(s.Limiter); nil != err {
		return err
	}

	shard, err := s.Shards.Shard(arguments.Shard)
	if nil != err {
		return err
	}
	err = shard.UpdateOwner(arguments.Caller, arguments.Owner)
	if nil != err {
		s.Log.Warnf("shard: %s  update owner by: %s  error: %s", arguments.Shard, arguments.Caller, err)
		return err
	}
	reply.Owner = shard.Owner()
	return nil
}

// ---

// AppendBlocksArguments - contiguous blocks starting at Start
type AppendBlocksArguments struct {
	Caller account.Principal `json:"caller"`
	Shard  string            `json:"shard"`
	Start  uint64            `json:"start,string"`
	Blocks [][]byte          `json:"blocks"`
}

// AppendBlocksReply - the shard range after the append
type AppendBlocksReply struct {
	Start uint64 `json:"start,string"`
	End   uint64 `json:"end,string"`
}

// AppendBlocks - store blocks in a shard, only its owner may do this
func (s *Shard) AppendBlocks(arguments *AppendBlocksArguments, reply *AppendBlocksReply) error {
	metrics.RPCCall("Shard.AppendBlocks")

	if err := ratelimit.LimitN(s.Limiter, len(arguments.Blocks), s.maxAppend); nil != err {
		return err
	}

	shard, err := s.Shards.Shard(arguments.Shard)
	if nil != err {
		return err
	}
	if !arguments.Caller.Equal(shard.Owner()) {
		s.Log.Warnf("shard: %s  append by: %s  rejected", arguments.Shard, arguments.Caller)
		return fault.ErrUnauthorisedOwner
	}

	err = shard.AppendBlocks(arguments.Start, arguments.Blocks)
	if nil != err {
		return err
	}
	reply.Start, reply.End = shard.Bounds()
	return nil
}
