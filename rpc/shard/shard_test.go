// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shard_test

import (
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/archive"
	"github.com/bitmark-inc/nftledger/archive/mocks"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/rpc/fixtures"
	"github.com/bitmark-inc/nftledger/rpc/shard"
	"github.com/bitmark-inc/nftledger/transactionrecord"
)

var shardOwner = account.Principal{0x0e, 0x01}

type shardMap map[string]archive.Shard

func (m shardMap) Shard(id string) (archive.Shard, error) {
	s, ok := m[id]
	if !ok {
		return nil, fault.ErrShardNotFound
	}
	return s, nil
}

func TestShard_GetBlocks(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	m := mocks.NewMockShard(ctl)
	s := shard.New(logger.New(fixtures.LogCategory), shardMap{"a": m}, 10)

	m.EXPECT().GetBlocks(uint64(0), uint64(2)).Return([]blocklog.IndexedBlock{{ID: 0}, {ID: 1}}, nil).Times(1)
	m.EXPECT().GetBlocks(uint64(5), uint64(1)).Return([]blocklog.IndexedBlock{{ID: 5}}, nil).Times(1)

	var reply shard.GetBlocksReply
	err := s.GetBlocks(&shard.GetBlocksArguments{
		Shard:  "a",
		Ranges: []ledger.BlockRange{{Start: 0, Length: 2}, {Start: 5, Length: 1}},
	}, &reply)
	assert.Nil(t, err, "wrong GetBlocks")
	assert.Equal(t, []blocklog.IndexedBlock{{ID: 0}, {ID: 1}, {ID: 5}}, reply.Blocks, "wrong blocks")

	err = s.GetBlocks(&shard.GetBlocksArguments{Shard: "missing", Ranges: []ledger.BlockRange{{Length: 1}}}, &reply)
	assert.Equal(t, fault.ErrShardNotFound, err, "missing shard found")

	err = s.GetBlocks(&shard.GetBlocksArguments{Shard: "a"}, &reply)
	assert.Equal(t, fault.ErrInvalidCount, err, "empty range list accepted")
}

func TestShard_GetTransaction(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	l, teardown := fixtures.Ledger(t, fixtures.Config(), nil)
	defer teardown()
	fixtures.Mint(t, l, fixtures.Alice, 3)

	packed, err := l.Blocks().GetEncoded(0)
	assert.Nil(t, err, "encoded block error")

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	m := mocks.NewMockShard(ctl)
	s := shard.New(logger.New(fixtures.LogCategory), shardMap{"a": m}, 10)

	m.EXPECT().GetBlock(uint64(0)).Return(packed, nil).Times(1)

	var reply shard.GetTransactionReply
	err = s.GetTransaction(&shard.GetTransactionArguments{Shard: "a", Index: 0}, &reply)
	assert.Nil(t, err, "wrong GetTransaction")
	assert.Equal(t, packed, reply.Block, "wrong block")
	assert.Equal(t, transactionrecord.MintOp, reply.Transaction.Op, "wrong op")
	assert.Equal(t, uint64(3), *reply.Transaction.TokenID, "wrong token")
}

func TestShard_Owner(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	m := mocks.NewMockShard(ctl)
	s := shard.New(logger.New(fixtures.LogCategory), shardMap{"a": m}, 10)

	m.EXPECT().Owner().Return(shardOwner).Times(1)
	var owner shard.OwnerReply
	err := s.GetOwner(&shard.ShardArguments{Shard: "a"}, &owner)
	assert.Nil(t, err, "wrong GetOwner")
	assert.Equal(t, shardOwner, owner.Owner, "wrong owner")

	m.EXPECT().UpdateOwner(fixtures.Alice, fixtures.Bob).Return(fault.ErrUnauthorisedOwner).Times(1)
	err = s.UpdateOwner(&shard.UpdateOwnerArguments{Caller: fixtures.Alice, Shard: "a", Owner: fixtures.Bob}, &owner)
	assert.Equal(t, fault.ErrUnauthorisedOwner, err, "stranger changed owner")

	gomock.InOrder(
		m.EXPECT().UpdateOwner(shardOwner, fixtures.Bob).Return(nil).Times(1),
		m.EXPECT().Owner().Return(fixtures.Bob).Times(1),
	)
	err = s.UpdateOwner(&shard.UpdateOwnerArguments{Caller: shardOwner, Shard: "a", Owner: fixtures.Bob}, &owner)
	assert.Nil(t, err, "wrong UpdateOwner")
	assert.Equal(t, fixtures.Bob, owner.Owner, "owner not changed")

	m.EXPECT().RemainingCapacity().Return(uint64(42)).Times(1)
	var capacity shard.CapacityReply
	err = s.RemainingCapacity(&shard.ShardArguments{Shard: "a"}, &capacity)
	assert.Nil(t, err, "wrong RemainingCapacity")
	assert.Equal(t, uint64(42), capacity.Capacity, "wrong capacity")
}

func TestShard_AppendBlocks(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	m := mocks.NewMockShard(ctl)
	s := shard.New(logger.New(fixtures.LogCategory), shardMap{"a": m}, 2)

	blocks := [][]byte{{0x01}, {0x02}}

	m.EXPECT().Owner().Return(shardOwner).AnyTimes()

	var reply shard.AppendBlocksReply
	err := s.AppendBlocks(&shard.AppendBlocksArguments{Caller: fixtures.Alice, Shard: "a", Start: 0, Blocks: blocks}, &reply)
	assert.Equal(t, fault.ErrUnauthorisedOwner, err, "stranger appended")

	err = s.AppendBlocks(&shard.AppendBlocksArguments{Caller: shardOwner, Shard: "a", Start: 0, Blocks: append(blocks, []byte{0x03})}, &reply)
	assert.Equal(t, fault.ErrInvalidCount, err, "oversized append accepted")

	m.EXPECT().AppendBlocks(uint64(0), blocks).Return(nil).Times(1)
	m.EXPECT().Bounds().Return(uint64(0), uint64(2)).Times(1)
	err = s.AppendBlocks(&shard.AppendBlocksArguments{Caller: shardOwner, Shard: "a", Start: 0, Blocks: blocks}, &reply)
	assert.Nil(t, err, "wrong AppendBlocks")
	assert.Equal(t, shard.AppendBlocksReply{Start: 0, End: 2}, reply, "wrong bounds")
}
