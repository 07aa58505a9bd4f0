// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/archive"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/rpc/icrc3"
	"github.com/bitmark-inc/nftledger/rpc/icrc7"
	"github.com/bitmark-inc/nftledger/rpc/node"
	"github.com/bitmark-inc/nftledger/rpc/shard"
)

// Info - node status
func (client *Client) Info() (*node.InfoReply, error) {
	var reply node.InfoReply
	if err := client.call("Node.Info", node.InfoArguments{}, &reply); nil != err {
		return nil, err
	}
	return &reply, nil
}

// Tip - the current tip with its proof
func (client *Client) Tip() (*blocklog.Tip, error) {
	var reply blocklog.Tip
	if err := client.call("ICRC3.Tip", icrc3.EmptyArguments{}, &reply); nil != err {
		return nil, err
	}
	return &reply, nil
}

// TipCertificate - nil if the node does not certify
func (client *Client) TipCertificate() (*blocklog.Certificate, error) {
	var reply icrc3.CertificateReply
	if err := client.call("ICRC3.GetTipCertificate", icrc3.EmptyArguments{}, &reply); nil != err {
		return nil, err
	}
	return reply.Certificate, nil
}

// GetBlocks - live blocks and archive routing
func (client *Client) GetBlocks(ranges []ledger.BlockRange) (*ledger.GetBlocksResult, error) {
	var reply ledger.GetBlocksResult
	if err := client.call("ICRC3.GetBlocks", icrc3.GetBlocksArguments{Ranges: ranges}, &reply); nil != err {
		return nil, err
	}
	return &reply, nil
}

// GetArchivedBlocks - follow one routing entry of GetBlocks
func (client *Client) GetArchivedBlocks(archived ledger.ArchivedBlocks) ([]blocklog.IndexedBlock, error) {
	arguments := shard.GetBlocksArguments{
		Shard:  archived.Shard,
		Ranges: archived.Args,
	}
	var reply shard.GetBlocksReply
	if err := client.call(archived.Method, arguments, &reply); nil != err {
		return nil, err
	}
	return reply.Blocks, nil
}

// GetArchives - segments after from, the live ledger first when from is nil
func (client *Client) GetArchives(from *string) ([]archive.Segment, error) {
	var reply icrc3.GetArchivesReply
	if err := client.call("ICRC3.GetArchives", icrc3.GetArchivesArguments{From: from}, &reply); nil != err {
		return nil, err
	}
	return reply.Archives, nil
}

// BlockProof - inclusion proof of one live block
func (client *Client) BlockProof(index uint64) (*icrc3.BlockProofReply, error) {
	var reply icrc3.BlockProofReply
	if err := client.call("ICRC3.BlockProof", icrc3.BlockProofArguments{Index: index}, &reply); nil != err {
		return nil, err
	}
	return &reply, nil
}

// OwnerOf - owners of tokens, nil entries for missing tokens
func (client *Client) OwnerOf(tokenIDs []uint64) ([]*account.Account, error) {
	var reply icrc7.OwnerOfReply
	if err := client.call("ICRC7.OwnerOf", icrc7.TokenIDsArguments{TokenIDs: tokenIDs}, &reply); nil != err {
		return nil, err
	}
	return reply.Owners, nil
}

// Tokens - one page of token ids, the whole collection if owner is nil
func (client *Client) Tokens(owner *account.Account, prev *uint64, take *uint64) ([]uint64, error) {
	arguments := icrc7.TokensArguments{
		Account: owner,
		Prev:    prev,
		Take:    take,
	}
	var reply icrc7.TokensReply
	if err := client.call("ICRC7.Tokens", arguments, &reply); nil != err {
		return nil, err
	}
	return reply.Tokens, nil
}
