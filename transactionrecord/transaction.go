// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/value"
)

// Operation - block type tag
type Operation string

// enumerate the possible block types
const (
	MintOp              = Operation("7mint")
	BurnOp              = Operation("7burn")
	TransferOp          = Operation("7xfer")
	ApproveOp           = Operation("37approve")
	ApproveCollectionOp = Operation("37approve_coll")
	RevokeOp            = Operation("37revoke")
	RevokeCollectionOp  = Operation("37revoke_coll")
	TransferFromOp      = Operation("37xfer")
)

// BlockType - one supported block type and its standard
type BlockType struct {
	BlockType string `json:"block_type"`
	URL       string `json:"url"`
}

const (
	icrc7URL  = "https://github.com/dfinity/ICRC/blob/main/ICRCs/ICRC-7/ICRC-7.md"
	icrc37URL = "https://github.com/dfinity/ICRC/blob/main/ICRCs/ICRC-37/ICRC-37.md"
)

// SupportedBlockTypes - every block type this ledger writes
func SupportedBlockTypes() []BlockType {
	return []BlockType{
		{string(MintOp), icrc7URL},
		{string(BurnOp), icrc7URL},
		{string(TransferOp), icrc7URL},
		{string(ApproveOp), icrc37URL},
		{string(ApproveCollectionOp), icrc37URL},
		{string(RevokeOp), icrc37URL},
		{string(RevokeCollectionOp), icrc37URL},
		{string(TransferFromOp), icrc37URL},
	}
}

// Valid - known operation
func (op Operation) Valid() bool {
	switch op {
	case MintOp, BurnOp, TransferOp, ApproveOp, ApproveCollectionOp,
		RevokeOp, RevokeCollectionOp, TransferFromOp:
		return true
	}
	return false
}

// Transaction - denormalised view of one block
//
// the block is authoritative, this is derived from it
type Transaction struct {
	Op        Operation        `json:"op"`
	Index     uint64           `json:"block,string"`
	Timestamp uint64           `json:"ts,string"` // ledger time of the block
	TokenID   *uint64          `json:"tid,string,omitempty"`
	From      *account.Account `json:"from,omitempty"`
	To        *account.Account `json:"to,omitempty"`
	Spender   *account.Account `json:"spender,omitempty"`
	CreatedAt *uint64          `json:"created_at_time,string,omitempty"`
	ExpiresAt *uint64          `json:"exp,string,omitempty"`
	Memo      []byte           `json:"memo,omitempty"`
	Meta      *value.Map       `json:"meta,omitempty"`
}
