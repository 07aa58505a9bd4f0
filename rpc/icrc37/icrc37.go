// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package icrc37 - RPC access to approvals and delegated transfers
package icrc37

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/metrics"
	"github.com/bitmark-inc/nftledger/rpc/ratelimit"
	"github.com/bitmark-inc/nftledger/value"
)

const (
	rateLimitICRC37 = 200
	rateBurstICRC37 = 100
)

// ICRC37 - type for RPC calls
type ICRC37 struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Ledger  *ledger.Ledger
}

// New - create the service
func New(log *logger.L, l *ledger.Ledger) *ICRC37 {
	return &ICRC37{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitICRC37, rateBurstICRC37),
		Ledger:  l,
	}
}

// ResultsReply - per item outcomes of a batch
type ResultsReply struct {
	Results []*ledger.Result `json:"results"`
}

// ---

// ApproveTokensArguments - token grants by caller
type ApproveTokensArguments struct {
	Caller account.Principal        `json:"caller"`
	Items  []ledger.ApproveTokenArg `json:"items"`
}

// ApproveTokens - grant spenders the right to move single tokens
func (icrc37 *ICRC37) ApproveTokens(arguments *ApproveTokensArguments, reply *ResultsReply) error {
	metrics.RPCCall("ICRC37.ApproveTokens")

	if err := ratelimit.Limit(icrc37.Limiter); nil != err {
		return err
	}

	results, err := icrc37.Ledger.ApproveTokens(arguments.Caller, arguments.Items)
	if nil != err {
		icrc37.Log.Errorf("approve tokens error: %s", err)
		return err
	}
	reply.Results = results
	return nil
}

// ApproveCollectionArguments - collection grants by caller
type ApproveCollectionArguments struct {
	Caller account.Principal             `json:"caller"`
	Items  []ledger.ApproveCollectionArg `json:"items"`
}

// ApproveCollection - grant spenders the right to move any token of the caller
func (icrc37 *ICRC37) ApproveCollection(arguments *ApproveCollectionArguments, reply *ResultsReply) error {
	metrics.RPCCall("ICRC37.ApproveCollection")

	if err := ratelimit.Limit(icrc37.Limiter); nil != err {
		return err
	}

	results, err := icrc37.Ledger.ApproveCollection(arguments.Caller, arguments.Items)
	if nil != err {
		icrc37.Log.Errorf("approve collection error: %s", err)
		return err
	}
	reply.Results = results
	return nil
}

// RevokeTokenApprovalsArguments - token revocations by caller
type RevokeTokenApprovalsArguments struct {
	Caller account.Principal               `json:"caller"`
	Items  []ledger.RevokeTokenApprovalArg `json:"items"`
}

// RevokeTokenApprovals - withdraw token grants
func (icrc37 *ICRC37) RevokeTokenApprovals(arguments *RevokeTokenApprovalsArguments, reply *ResultsReply) error {
	metrics.RPCCall("ICRC37.RevokeTokenApprovals")

	if err := ratelimit.Limit(icrc37.Limiter); nil != err {
		return err
	}

	results, err := icrc37.Ledger.RevokeTokenApprovals(arguments.Caller, arguments.Items)
	if nil != err {
		icrc37.Log.Errorf("revoke token approvals error: %s", err)
		return err
	}
	reply.Results = results
	return nil
}

// RevokeCollectionApprovalsArguments - collection revocations by caller
type RevokeCollectionApprovalsArguments struct {
	Caller account.Principal                    `json:"caller"`
	Items  []ledger.RevokeCollectionApprovalArg `json:"items"`
}

// RevokeCollectionApprovals - withdraw collection grants
func (icrc37 *ICRC37) RevokeCollectionApprovals(arguments *RevokeCollectionApprovalsArguments, reply *ResultsReply) error {
	metrics.RPCCall("ICRC37.RevokeCollectionApprovals")

	if err := ratelimit.Limit(icrc37.Limiter); nil != err {
		return err
	}

	results, err := icrc37.Ledger.RevokeCollectionApprovals(arguments.Caller, arguments.Items)
	if nil != err {
		icrc37.Log.Errorf("revoke collection approvals error: %s", err)
		return err
	}
	reply.Results = results
	return nil
}

// TransferFromArguments - delegated transfers by caller as spender
type TransferFromArguments struct {
	Caller account.Principal        `json:"caller"`
	Items  []ledger.TransferFromArg `json:"items"`
}

// TransferFrom - move tokens on behalf of their owners
func (icrc37 *ICRC37) TransferFrom(arguments *TransferFromArguments, reply *ResultsReply) error {
	metrics.RPCCall("ICRC37.TransferFrom")

	if err := ratelimit.Limit(icrc37.Limiter); nil != err {
		return err
	}

	results, err := icrc37.Ledger.TransferFrom(arguments.Caller, arguments.Items)
	if nil != err {
		icrc37.Log.Errorf("transfer from error: %s", err)
		return err
	}
	reply.Results = results
	return nil
}

// ---

// IsApprovedArguments - grant checks against the caller's tokens
type IsApprovedArguments struct {
	Caller account.Principal      `json:"caller"`
	Items  []ledger.IsApprovedArg `json:"items"`
}

// IsApprovedReply - answers in request order
type IsApprovedReply struct {
	Approved []bool `json:"approved"`
}

// IsApproved - whether each spender holds a usable grant
func (icrc37 *ICRC37) IsApproved(arguments *IsApprovedArguments, reply *IsApprovedReply) error {
	metrics.RPCCall("ICRC37.IsApproved")

	if err := ratelimit.Limit(icrc37.Limiter); nil != err {
		return err
	}

	approved, err := icrc37.Ledger.IsApproved(arguments.Caller, arguments.Items)
	if nil != err {
		return err
	}
	reply.Approved = approved
	return nil
}

// TokenApprovalsArguments - one page of grants on a token
type TokenApprovalsArguments struct {
	TokenID uint64           `json:"token_id,string"`
	Prev    *account.Account `json:"prev,omitempty"`
	Take    *uint64          `json:"take,string,omitempty"`
}

// TokenApprovalsReply - grants ordered by spender
type TokenApprovalsReply struct {
	Approvals []ledger.TokenApproval `json:"approvals"`
}

// GetTokenApprovals - page through the grants on one token
func (icrc37 *ICRC37) GetTokenApprovals(arguments *TokenApprovalsArguments, reply *TokenApprovalsReply) error {
	metrics.RPCCall("ICRC37.GetTokenApprovals")

	if err := ratelimit.Limit(icrc37.Limiter); nil != err {
		return err
	}

	approvals, err := icrc37.Ledger.GetTokenApprovals(arguments.TokenID, arguments.Prev, arguments.Take)
	if nil != err {
		return err
	}
	reply.Approvals = approvals
	return nil
}

// CollectionApprovalsArguments - one page of an owner's collection grants
type CollectionApprovalsArguments struct {
	Owner account.Account  `json:"owner"`
	Prev  *account.Account `json:"prev,omitempty"`
	Take  *uint64          `json:"take,string,omitempty"`
}

// CollectionApprovalsReply - grants ordered by spender
type CollectionApprovalsReply struct {
	Approvals []ledger.ApprovalEntry `json:"approvals"`
}

// GetCollectionApprovals - page through the collection grants of an owner
func (icrc37 *ICRC37) GetCollectionApprovals(arguments *CollectionApprovalsArguments, reply *CollectionApprovalsReply) error {
	metrics.RPCCall("ICRC37.GetCollectionApprovals")

	if err := ratelimit.Limit(icrc37.Limiter); nil != err {
		return err
	}

	approvals, err := icrc37.Ledger.GetCollectionApprovals(arguments.Owner, arguments.Prev, arguments.Take)
	if nil != err {
		return err
	}
	reply.Approvals = approvals
	return nil
}

// ---

// EmptyArguments - for calls without parameters
type EmptyArguments struct{}

// MetadataReply - a metadata map
type MetadataReply struct {
	Metadata value.Map `json:"metadata"`
}

// Metadata - approval limits
func (icrc37 *ICRC37) Metadata(_ *EmptyArguments, reply *MetadataReply) error {
	metrics.RPCCall("ICRC37.Metadata")

	if err := ratelimit.Limit(icrc37.Limiter); nil != err {
		return err
	}

	reply.Metadata = icrc37.Ledger.ICRC37Metadata()
	return nil
}
