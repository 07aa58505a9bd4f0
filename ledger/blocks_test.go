// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/nftledger/archive"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/ledger/mocks"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/transactionrecord"
	"github.com/bitmark-inc/nftledger/value"
)

func TestArchivedBlocksAreRouted(t *testing.T) {
	var m *archive.Manager
	e, teardown := setup(t, testConfig(), func(blocks *blocklog.Log, dir string) ledger.Archiver {
		provisioner := &archive.DirectoryProvisioner{Directory: filepath.Join(dir, "archives"), Capacity: 100}
		var err error
		m, err = archive.NewManager(archive.Configuration{MaxActiveRecords: 2}, blocks, provisioner, minter)
		assert.Nil(t, err, "manager error")
		return m
	})
	defer teardown()
	defer m.Close()

	for id := uint64(1); id <= 3; id += 1 {
		e.mint(t, id, alice)
		for {
			more, err := m.MaybeArchive()
			assert.Nil(t, err, "archive error")
			if !more {
				break
			}
		}
	}

	archives := e.ledger.GetArchives(nil)
	if !assert.Equal(t, 2, len(archives)) {
		return
	}
	assert.Equal(t, archive.Segment{ID: archive.LiveSegmentID, Start: 1, End: 3}, archives[0])
	id := archives[1].ID
	assert.Equal(t, uint64(0), archives[1].Start)
	assert.Equal(t, uint64(1), archives[1].End)

	result, err := e.ledger.GetBlocks([]ledger.BlockRange{{Start: 0, Length: 3}})
	assert.Nil(t, err, "get blocks error")
	assert.Equal(t, uint64(3), result.LogLength)
	if assert.Equal(t, 2, len(result.Blocks)) {
		assert.Equal(t, uint64(1), result.Blocks[0].ID)
		assert.Equal(t, uint64(2), result.Blocks[1].ID)
	}
	assert.Equal(t, []ledger.ArchivedBlocks{{
		Shard:  id,
		Method: ledger.GetBlocksMethod,
		Args:   []ledger.BlockRange{{Start: 0, Length: 1}},
	}}, result.Archived)

	// the archived block is served by its shard and still proves
	shard, err := m.Shard(id)
	assert.Nil(t, err, "shard error")
	archived, err := shard.GetBlocks(0, 1)
	assert.Nil(t, err, "shard get error")
	if assert.Equal(t, 1, len(archived)) {
		proof, root, err := e.ledger.BlockProof(0)
		assert.Nil(t, err, "proof error")
		assert.True(t, proof.Verify(merkle.NewDigest(archived[0].Block), root))

		v, err := value.Decode(archived[0].Block)
		assert.Nil(t, err, "decode error")
		tx, err := transactionrecord.FromBlock(0, v)
		assert.Nil(t, err, "block error")
		assert.Equal(t, transactionrecord.MintOp, tx.Op)
	}

	// ownership is unaffected by archiving
	assert.True(t, e.owner(t, 1).Equal(acct(alice)))
}

func TestReplayIndexCoversArchivedBlocks(t *testing.T) {
	var m *archive.Manager
	e, teardown := setup(t, testConfig(), func(blocks *blocklog.Log, dir string) ledger.Archiver {
		provisioner := &archive.DirectoryProvisioner{Directory: filepath.Join(dir, "archives"), Capacity: 100}
		var err error
		m, err = archive.NewManager(archive.Configuration{MaxActiveRecords: 2}, blocks, provisioner, minter)
		assert.Nil(t, err, "manager error")
		return m
	})
	defer teardown()
	defer m.Close()

	archiveAll := func() {
		for {
			more, err := m.MaybeArchive()
			assert.Nil(t, err, "archive error")
			if !more {
				return
			}
		}
	}

	e.mint(t, 1, alice)
	created := startTime
	arg := ledger.TransferArg{To: acct(bob), TokenID: 1, CreatedAtTime: &created}
	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{arg})
	assert.Nil(t, err, "transfer error")
	if !assert.True(t, results[0].IsOk()) {
		return
	}
	tid := *results[0].Ok

	for id := uint64(2); id <= 6; id += 1 {
		e.mint(t, id, alice)
		archiveAll()
	}
	if !assert.True(t, e.blocks.FirstIndex() > tid, "transfer block still live") {
		return
	}

	e.clock.now += 1000
	reopened, err := ledger.New(e.config, e.blocks, m, e.clock.clock)
	assert.Nil(t, err, "reopen error")
	results, err = reopened.Transfer(alice, []ledger.TransferArg{arg})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.Duplicate, kind(results[0]))
	if assert.NotNil(t, results[0].Err.DuplicateOf) {
		assert.Equal(t, tid, *results[0].Err.DuplicateOf)
	}
}

func TestGetBlocksGroupsShards(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	a := mocks.NewMockArchiver(ctl)
	e, teardown := setup(t, testConfig(), func(*blocklog.Log, string) ledger.Archiver {
		return a
	})
	defer teardown()

	a.EXPECT().Notify().Times(1)
	e.mint(t, 1, alice)

	a.EXPECT().Route(uint64(0), uint64(10)).Return([]archive.Piece{
		{Shard: "shard-a", Start: 0, Length: 2},
		{Shard: "shard-b", Start: 2, Length: 2},
	}).Times(1)
	a.EXPECT().Route(uint64(4), uint64(2)).Return([]archive.Piece{
		{Shard: "shard-a", Start: 4, Length: 1},
		{Shard: archive.LiveSegmentID, Start: 0, Length: 1},
	}).Times(1)

	result, err := e.ledger.GetBlocks([]ledger.BlockRange{{Start: 0, Length: 10}, {Start: 4, Length: 2}})
	assert.Nil(t, err, "get blocks error")
	assert.Equal(t, 1, len(result.Blocks))
	assert.Equal(t, []ledger.ArchivedBlocks{
		{Shard: "shard-a", Method: ledger.GetBlocksMethod, Args: []ledger.BlockRange{{Start: 0, Length: 2}, {Start: 4, Length: 1}}},
		{Shard: "shard-b", Method: ledger.GetBlocksMethod, Args: []ledger.BlockRange{{Start: 2, Length: 2}}},
	}, result.Archived)
}

func TestRejectedCallDoesNotNotify(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	a := mocks.NewMockArchiver(ctl)
	e, teardown := setup(t, testConfig(), func(*blocklog.Log, string) ledger.Archiver {
		return a
	})
	defer teardown()

	a.EXPECT().Notify().Times(0)
	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{{To: acct(bob), TokenID: 1}})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.NonExistingTokenID, kind(results[0]))
}

func TestTipAndProof(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	tip, err := e.ledger.Tip()
	assert.Nil(t, err, "tip error")
	assert.Equal(t, uint64(0), tip.Length)
	assert.Nil(t, tip.LastIndex)

	for id := uint64(1); id <= 3; id += 1 {
		e.mint(t, id, alice)
	}

	tip, err = e.ledger.Tip()
	assert.Nil(t, err, "tip error")
	assert.Equal(t, uint64(3), tip.Length)
	if assert.NotNil(t, tip.LastIndex) {
		assert.Equal(t, uint64(2), *tip.LastIndex)
	}

	result, err := e.ledger.GetBlocks([]ledger.BlockRange{{Start: 0, Length: 10}})
	assert.Nil(t, err, "get blocks error")
	assert.Equal(t, 3, len(result.Blocks))
	assert.Equal(t, 0, len(result.Archived))

	last := result.Blocks[2].Block
	assert.Equal(t, merkle.NewDigest(last), tip.LastBlockHash)
	if assert.NotNil(t, tip.Proof) {
		assert.True(t, tip.Proof.Verify(tip.LastBlockHash, tip.Root))
	}
	for _, b := range result.Blocks {
		proof, root, err := e.ledger.BlockProof(b.ID)
		assert.Nil(t, err, "proof error")
		assert.Equal(t, tip.Root, root)
		assert.True(t, proof.Verify(merkle.NewDigest(b.Block), root), "block: %d", b.ID)
	}

	assert.Nil(t, e.ledger.TipCertificate(), "certificate without a certifier")
	assert.Equal(t, 8, len(e.ledger.SupportedBlockTypes()))
}

func TestTxnLogs(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)
	e.mint(t, 2, alice)
	e.mint(t, 3, alice)
	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{{To: acct(bob), TokenID: 2, Memo: []byte("hi")}})
	assert.Nil(t, err, "transfer error")
	assert.True(t, results[0].IsOk())

	logs, err := e.ledger.TxnLogs(0, 10)
	assert.Nil(t, err, "logs error")
	if assert.Equal(t, 4, len(logs)) {
		assert.Equal(t, transactionrecord.MintOp, logs[0].Op)
		x := logs[3]
		assert.Equal(t, transactionrecord.TransferOp, x.Op)
		assert.Equal(t, uint64(3), x.Index)
		assert.Equal(t, uint64(2), *x.TokenID)
		assert.True(t, x.From.Equal(acct(alice)))
		assert.True(t, x.To.Equal(acct(bob)))
		assert.Equal(t, []byte("hi"), x.Memo)
		assert.Equal(t, startTime, x.Timestamp)
	}

	logs, err = e.ledger.TxnLogs(2, 1)
	assert.Nil(t, err, "logs error")
	if assert.Equal(t, 1, len(logs)) {
		assert.Equal(t, uint64(2), logs[0].Index)
	}

	tests := []struct {
		page     uint64
		expected []uint64
	}{
		{0, []uint64{3, 2}},
		{1, []uint64{1, 0}},
		{2, []uint64{}},
	}
	for _, item := range tests {
		logs, err := e.ledger.TxnLogsPage(item.page, 2)
		assert.Nil(t, err, "page: %d  error", item.page)
		indexes := []uint64{}
		for _, l := range logs {
			indexes = append(indexes, l.Index)
		}
		assert.Equal(t, item.expected, indexes, "page: %d", item.page)
	}
}
