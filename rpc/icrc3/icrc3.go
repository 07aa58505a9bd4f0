// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package icrc3 - RPC access to the block log, its tip and the archives
package icrc3

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/archive"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/metrics"
	"github.com/bitmark-inc/nftledger/rpc/ratelimit"
	"github.com/bitmark-inc/nftledger/transactionrecord"
)

const (
	rateLimitICRC3 = 200
	rateBurstICRC3 = 100
)

// ICRC3 - type for RPC calls
type ICRC3 struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Ledger  *ledger.Ledger
}

// New - create the service
func New(log *logger.L, l *ledger.Ledger) *ICRC3 {
	return &ICRC3{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitICRC3, rateBurstICRC3),
		Ledger:  l,
	}
}

// EmptyArguments - for calls without parameters
type EmptyArguments struct{}

// ---

// GetBlocksArguments - ranges of block indexes
type GetBlocksArguments struct {
	Ranges []ledger.BlockRange `json:"ranges"`
}

// GetBlocks - live blocks and the shards holding the archived ones
func (icrc3 *ICRC3) GetBlocks(arguments *GetBlocksArguments, reply *ledger.GetBlocksResult) error {
	metrics.RPCCall("ICRC3.GetBlocks")

	if err := ratelimit.Limit(icrc3.Limiter); nil != err {
		return err
	}

	result, err := icrc3.Ledger.GetBlocks(arguments.Ranges)
	if nil != err {
		return err
	}
	*reply = *result
	return nil
}

// GetArchivesArguments - list segments after a shard, or from the start
type GetArchivesArguments struct {
	From *string `json:"from,omitempty"`
}

// GetArchivesReply - segments in log order
type GetArchivesReply struct {
	Archives []archive.Segment `json:"archives"`
}

// GetArchives - where each range of blocks is held
func (icrc3 *ICRC3) GetArchives(arguments *GetArchivesArguments, reply *GetArchivesReply) error {
	metrics.RPCCall("ICRC3.GetArchives")

	if err := ratelimit.Limit(icrc3.Limiter); nil != err {
		return err
	}

	reply.Archives = icrc3.Ledger.GetArchives(arguments.From)
	return nil
}

// ---

// Tip - length, last hash, root and hash tree of the log
func (icrc3 *ICRC3) Tip(_ *EmptyArguments, reply *blocklog.Tip) error {
	metrics.RPCCall("ICRC3.Tip")

	if err := ratelimit.Limit(icrc3.Limiter); nil != err {
		return err
	}

	tip, err := icrc3.Ledger.Tip()
	if nil != err {
		icrc3.Log.Errorf("tip error: %s", err)
		return err
	}
	*reply = *tip
	return nil
}

// CertificateReply - null when no certifier is configured
type CertificateReply struct {
	Certificate *blocklog.Certificate `json:"certificate"`
}

// GetTipCertificate - signature over the current hash tree
func (icrc3 *ICRC3) GetTipCertificate(_ *EmptyArguments, reply *CertificateReply) error {
	metrics.RPCCall("ICRC3.GetTipCertificate")

	if err := ratelimit.Limit(icrc3.Limiter); nil != err {
		return err
	}

	reply.Certificate = icrc3.Ledger.TipCertificate()
	return nil
}

// BlockProofArguments - one block index
type BlockProofArguments struct {
	Index uint64 `json:"index,string"`
}

// BlockProofReply - inclusion proof against the current root
type BlockProofReply struct {
	Proof *merkle.Proof `json:"proof"`
	Root  merkle.Digest `json:"root"`
}

// BlockProof - prove that a block is part of the log
func (icrc3 *ICRC3) BlockProof(arguments *BlockProofArguments, reply *BlockProofReply) error {
	metrics.RPCCall("ICRC3.BlockProof")

	if err := ratelimit.Limit(icrc3.Limiter); nil != err {
		return err
	}

	proof, root, err := icrc3.Ledger.BlockProof(arguments.Index)
	if nil != err {
		return err
	}
	reply.Proof = proof
	reply.Root = root
	return nil
}

// BlockTypesReply - recorded operations and their standards
type BlockTypesReply struct {
	BlockTypes []transactionrecord.BlockType `json:"block_types"`
}

// SupportedBlockTypes - every block type the log can hold
func (icrc3 *ICRC3) SupportedBlockTypes(_ *EmptyArguments, reply *BlockTypesReply) error {
	metrics.RPCCall("ICRC3.SupportedBlockTypes")

	if err := ratelimit.Limit(icrc3.Limiter); nil != err {
		return err
	}

	reply.BlockTypes = icrc3.Ledger.SupportedBlockTypes()
	return nil
}

// ---

// TxnLogsArguments - ascending window of the live segment
type TxnLogsArguments struct {
	Offset uint64 `json:"offset,string"`
	Length uint64 `json:"length,string"`
}

// TxnLogsPageArguments - newest first pages
type TxnLogsPageArguments struct {
	Page uint64 `json:"page,string"`
	Size uint64 `json:"size,string"`
}

// TxnLogsReply - decoded blocks
type TxnLogsReply struct {
	Transactions []*transactionrecord.Transaction `json:"transactions"`
}

// TxnLogs - decoded live blocks from offset
func (icrc3 *ICRC3) TxnLogs(arguments *TxnLogsArguments, reply *TxnLogsReply) error {
	metrics.RPCCall("ICRC3.TxnLogs")

	if err := ratelimit.Limit(icrc3.Limiter); nil != err {
		return err
	}

	transactions, err := icrc3.Ledger.TxnLogs(arguments.Offset, arguments.Length)
	if nil != err {
		return err
	}
	reply.Transactions = transactions
	return nil
}

// TxnLogsPage - decoded live blocks, newest first
func (icrc3 *ICRC3) TxnLogsPage(arguments *TxnLogsPageArguments, reply *TxnLogsReply) error {
	metrics.RPCCall("ICRC3.TxnLogsPage")

	if err := ratelimit.Limit(icrc3.Limiter); nil != err {
		return err
	}

	transactions, err := icrc3.Ledger.TxnLogsPage(arguments.Page, arguments.Size)
	if nil != err {
		return err
	}
	reply.Transactions = transactions
	return nil
}
