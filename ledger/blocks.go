// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/nftledger/archive"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/transactionrecord"
)

// GetBlocksMethod - the RPC a client calls on the shard service for archived ranges
const GetBlocksMethod = "Shard.GetBlocks"

// BlockRange - a requested half open range of block indexes
type BlockRange struct {
	Start  uint64 `json:"start,string"`
	Length uint64 `json:"length,string"`
}

// ArchivedBlocks - ranges a client must fetch from one shard
type ArchivedBlocks struct {
	Shard  string       `json:"shard"`
	Method string       `json:"method"`
	Args   []BlockRange `json:"args"`
}

// GetBlocksResult - live blocks and routing for the archived ones
type GetBlocksResult struct {
	LogLength uint64                  `json:"log_length,string"`
	Blocks    []blocklog.IndexedBlock `json:"blocks"`
	Archived  []ArchivedBlocks        `json:"archived_blocks"`
}

// GetBlocks - read live blocks and describe where the archived ones are
func (l *Ledger) GetBlocks(ranges []BlockRange) (*GetBlocksResult, error) {
	if err := l.checkQueryBatch(len(ranges)); nil != err {
		return nil, err
	}

	result := &GetBlocksResult{
		Blocks:   []blocklog.IndexedBlock{},
		Archived: []ArchivedBlocks{},
	}
	shards := map[string]int{}
	for _, r := range ranges {
		if err := l.collect(result, shards, r.Start, r.Length, true); nil != err {
			return nil, err
		}
	}
	result.LogLength = l.blocks.Length()
	return result, nil
}

// collect - route one range into the result
//
// a migration between routing and reading moves the start of the live
// segment; such a piece is routed again once
func (l *Ledger) collect(result *GetBlocksResult, shards map[string]int, start uint64, length uint64, retry bool) error {
	for _, piece := range l.archiver.Route(start, length) {
		if !piece.Live() {
			i, ok := shards[piece.Shard]
			if !ok {
				i = len(result.Archived)
				shards[piece.Shard] = i
				result.Archived = append(result.Archived, ArchivedBlocks{
					Shard:  piece.Shard,
					Method: GetBlocksMethod,
				})
			}
			result.Archived[i].Args = append(result.Archived[i].Args, BlockRange{
				Start:  piece.Start,
				Length: piece.Length,
			})
			continue
		}

		blocks, err := l.blocks.Range(piece.Start, piece.Length)
		if fault.ErrIndexOutOfRange == err && retry {
			if err := l.collect(result, shards, piece.Start, piece.Length, false); nil != err {
				return err
			}
			continue
		}
		if nil != err {
			return err
		}
		for i, b := range blocks {
			result.Blocks = append(result.Blocks, blocklog.IndexedBlock{
				ID:    piece.Start + uint64(i),
				Block: b,
			})
		}
	}
	return nil
}

// GetArchives - shard boundaries, the live segment first when from is nil
func (l *Ledger) GetArchives(from *string) []archive.Segment {
	return l.archiver.ListArchives(from)
}

// Tip - the current tip of the block log
func (l *Ledger) Tip() (*blocklog.Tip, error) {
	return l.blocks.Tip()
}

// TipCertificate - nil when the log cannot be certified
func (l *Ledger) TipCertificate() *blocklog.Certificate {
	return l.blocks.TipCertificate()
}

// BlockProof - inclusion proof of one block against the current root
func (l *Ledger) BlockProof(index uint64) (*merkle.Proof, merkle.Digest, error) {
	return l.blocks.Prove(index)
}

// SupportedBlockTypes - block types written by this ledger
func (l *Ledger) SupportedBlockTypes() []transactionrecord.BlockType {
	return transactionrecord.SupportedBlockTypes()
}

// TxnLogs - transaction views of live blocks in [offset, offset+length)
//
// length is capped at the maximum take value; archived indexes are skipped
func (l *Ledger) TxnLogs(offset uint64, length uint64) ([]*transactionrecord.Transaction, error) {
	if length > l.config.MaxTakeValue {
		length = l.config.MaxTakeValue
	}
	first, logLength := l.blocks.Bounds()
	if offset < first {
		skip := first - offset
		if skip >= length {
			return []*transactionrecord.Transaction{}, nil
		}
		offset = first
		length -= skip
	}
	if offset >= logLength {
		return []*transactionrecord.Transaction{}, nil
	}
	if length > logLength-offset {
		length = logLength - offset
	}
	return l.transactions(offset, offset+length, false)
}

// TxnLogsPage - transaction views of live blocks, newest first
func (l *Ledger) TxnLogsPage(page uint64, size uint64) ([]*transactionrecord.Transaction, error) {
	if 0 == size || size > l.config.MaxTakeValue {
		size = l.config.MaxTakeValue
	}
	first, logLength := l.blocks.Bounds()
	skip := page * size
	if 0 != page && skip/page != size || skip >= logLength-first {
		return []*transactionrecord.Transaction{}, nil
	}
	end := logLength - skip
	start := first
	if end-first > size {
		start = end - size
	}
	return l.transactions(start, end, true)
}

func (l *Ledger) transactions(start uint64, end uint64, reverse bool) ([]*transactionrecord.Transaction, error) {
	result := make([]*transactionrecord.Transaction, 0, end-start)
	for index := start; index < end; index += 1 {
		block, err := l.blocks.Get(index)
		if nil != err {
			return nil, err
		}
		t, err := transactionrecord.FromBlock(index, block)
		if nil != err {
			return nil, err
		}
		result = append(result, t)
	}
	if reverse {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result, nil
}
