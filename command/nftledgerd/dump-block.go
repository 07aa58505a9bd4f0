// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/transactionrecord"
	"github.com/bitmark-inc/nftledger/value"
)

type blockResult struct {
	Index       uint64                         `json:"index,string"`
	Hash        merkle.Digest                  `json:"hash"`
	Block       value.Value                    `json:"block"`
	Transaction *transactionrecord.Transaction `json:"transaction"`
}

// dump of a particular live block
func dumpBlock(blocks *blocklog.Log, number uint64) (*blockResult, error) {

	block, err := blocks.Get(number)
	if nil != err {
		return nil, err
	}

	t, err := transactionrecord.FromBlock(number, block)
	if nil != err {
		return nil, err
	}

	return &blockResult{
		Index:       number,
		Hash:        value.Hash(block),
		Block:       block,
		Transaction: t,
	}, nil
}
