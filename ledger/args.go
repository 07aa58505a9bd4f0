// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"sort"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/value"
)

// MintArg - create one token
type MintArg struct {
	FromSubaccount   *account.Subaccount     `json:"from_subaccount,omitempty"`
	To               account.Account         `json:"to"`
	TokenID          uint64                  `json:"token_id,string"`
	TokenName        *string                 `json:"token_name,omitempty"`
	TokenDescription *string                 `json:"token_description,omitempty"`
	TokenLogo        *string                 `json:"token_logo,omitempty"`
	Metadata         map[string]value.Holder `json:"metadata,omitempty"`
	Memo             []byte                  `json:"memo,omitempty"`
	CreatedAtTime    *uint64                 `json:"created_at_time,string,omitempty"`
}

// TransferArg - move a token away from the caller
type TransferArg struct {
	FromSubaccount *account.Subaccount `json:"from_subaccount,omitempty"`
	To             account.Account     `json:"to"`
	TokenID        uint64              `json:"token_id,string"`
	Memo           []byte              `json:"memo,omitempty"`
	CreatedAtTime  *uint64             `json:"created_at_time,string,omitempty"`
}

// BurnArg - destroy a token held by the caller
type BurnArg struct {
	FromSubaccount *account.Subaccount `json:"from_subaccount,omitempty"`
	TokenID        uint64              `json:"token_id,string"`
	Memo           []byte              `json:"memo,omitempty"`
	CreatedAtTime  *uint64             `json:"created_at_time,string,omitempty"`
}

// ApprovalInfo - the grant part of an approve request
type ApprovalInfo struct {
	FromSubaccount *account.Subaccount `json:"from_subaccount,omitempty"`
	Spender        account.Account     `json:"spender"`
	ExpiresAt      *uint64             `json:"expires_at,string,omitempty"`
	Memo           []byte              `json:"memo,omitempty"`
	CreatedAtTime  *uint64             `json:"created_at_time,string,omitempty"`
}

// ApproveTokenArg - let a spender move one token
type ApproveTokenArg struct {
	TokenID      uint64       `json:"token_id,string"`
	ApprovalInfo ApprovalInfo `json:"approval_info"`
}

// ApproveCollectionArg - let a spender move every token of the caller
type ApproveCollectionArg struct {
	ApprovalInfo ApprovalInfo `json:"approval_info"`
}

// RevokeTokenApprovalArg - withdraw one or all grants on a token
type RevokeTokenApprovalArg struct {
	FromSubaccount *account.Subaccount `json:"from_subaccount,omitempty"`
	TokenID        uint64              `json:"token_id,string"`
	Spender        *account.Account    `json:"spender,omitempty"`
	Memo           []byte              `json:"memo,omitempty"`
	CreatedAtTime  *uint64             `json:"created_at_time,string,omitempty"`
}

// RevokeCollectionApprovalArg - withdraw one or all collection grants
type RevokeCollectionApprovalArg struct {
	FromSubaccount *account.Subaccount `json:"from_subaccount,omitempty"`
	Spender        *account.Account    `json:"spender,omitempty"`
	Memo           []byte              `json:"memo,omitempty"`
	CreatedAtTime  *uint64             `json:"created_at_time,string,omitempty"`
}

// TransferFromArg - a spender moves a token on behalf of its owner
type TransferFromArg struct {
	SpenderSubaccount *account.Subaccount `json:"spender_subaccount,omitempty"`
	From              account.Account     `json:"from"`
	To                account.Account     `json:"to"`
	TokenID           uint64              `json:"token_id,string"`
	Memo              []byte              `json:"memo,omitempty"`
	CreatedAtTime     *uint64             `json:"created_at_time,string,omitempty"`
}

// IsApprovedArg - does spender hold a grant from the caller's account
type IsApprovedArg struct {
	Spender        account.Account     `json:"spender"`
	FromSubaccount *account.Subaccount `json:"from_subaccount,omitempty"`
	TokenID        uint64              `json:"token_id,string"`
}

// metadataMap - request metadata in key order, null values dropped
func metadataMap(m map[string]value.Holder) (value.Map, error) {
	keys := make([]string, 0, len(m))
	for k, h := range m {
		if nil != h.Value {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	entries := make([]value.Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, value.Entry{Key: k, Value: m[k].Value})
	}
	return value.NewMap(entries...)
}

// normalised account: zero subaccount dropped
func normalise(a account.Account) account.Account {
	return account.WithSubaccount(a.Owner, a.Subaccount)
}
