// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package icrc7 - RPC access to minting, transfers and token queries
package icrc7

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/metrics"
	"github.com/bitmark-inc/nftledger/rpc/ratelimit"
	"github.com/bitmark-inc/nftledger/value"
)

const (
	rateLimitICRC7 = 200
	rateBurstICRC7 = 100
)

// ICRC7 - type for RPC calls
type ICRC7 struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Ledger  *ledger.Ledger
}

// New - create the service
func New(log *logger.L, l *ledger.Ledger) *ICRC7 {
	return &ICRC7{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitICRC7, rateBurstICRC7),
		Ledger:  l,
	}
}

// ---

// MintArguments - one mint by caller
type MintArguments struct {
	Caller account.Principal `json:"caller"`
	Token  ledger.MintArg    `json:"token"`
}

// MintReply - outcome of the mint
type MintReply struct {
	Result *ledger.Result `json:"result"`
}

// Mint - create a token, only the minting authority may do this
func (icrc7 *ICRC7) Mint(arguments *MintArguments, reply *MintReply) error {
	metrics.RPCCall("ICRC7.Mint")

	if err := ratelimit.Limit(icrc7.Limiter); nil != err {
		return err
	}

	result, err := icrc7.Ledger.Mint(arguments.Caller, arguments.Token)
	if nil != err {
		icrc7.Log.Errorf("mint error: %s", err)
		return err
	}
	reply.Result = result
	return nil
}

// ---

// TransferArguments - a batch of transfers by caller
type TransferArguments struct {
	Caller account.Principal    `json:"caller"`
	Items  []ledger.TransferArg `json:"items"`
}

// BurnArguments - a batch of burns by caller
type BurnArguments struct {
	Caller account.Principal `json:"caller"`
	Items  []ledger.BurnArg  `json:"items"`
}

// ResultsReply - per item outcomes of a batch
type ResultsReply struct {
	Results []*ledger.Result `json:"results"`
}

// Transfer - move tokens owned by the caller
func (icrc7 *ICRC7) Transfer(arguments *TransferArguments, reply *ResultsReply) error {
	metrics.RPCCall("ICRC7.Transfer")

	if err := ratelimit.Limit(icrc7.Limiter); nil != err {
		return err
	}

	results, err := icrc7.Ledger.Transfer(arguments.Caller, arguments.Items)
	if nil != err {
		icrc7.Log.Errorf("transfer error: %s", err)
		return err
	}
	reply.Results = results
	return nil
}

// Burn - destroy tokens owned by the caller
func (icrc7 *ICRC7) Burn(arguments *BurnArguments, reply *ResultsReply) error {
	metrics.RPCCall("ICRC7.Burn")

	if err := ratelimit.Limit(icrc7.Limiter); nil != err {
		return err
	}

	results, err := icrc7.Ledger.Burn(arguments.Caller, arguments.Items)
	if nil != err {
		icrc7.Log.Errorf("burn error: %s", err)
		return err
	}
	reply.Results = results
	return nil
}

// ---

// TokenIDsArguments - a query batch of tokens
type TokenIDsArguments struct {
	TokenIDs []uint64 `json:"token_ids"`
}

// OwnerOfReply - owners in request order, null for missing tokens
type OwnerOfReply struct {
	Owners []*account.Account `json:"owners"`
}

// OwnerOf - current owner of each token
func (icrc7 *ICRC7) OwnerOf(arguments *TokenIDsArguments, reply *OwnerOfReply) error {
	metrics.RPCCall("ICRC7.OwnerOf")

	if err := ratelimit.Limit(icrc7.Limiter); nil != err {
		return err
	}

	owners, err := icrc7.Ledger.OwnerOf(arguments.TokenIDs)
	if nil != err {
		return err
	}
	reply.Owners = owners
	return nil
}

// TokenMetadataReply - metadata in request order, null for missing tokens
type TokenMetadataReply struct {
	Metadata []*value.Map `json:"metadata"`
}

// TokenMetadata - stored metadata of each token
func (icrc7 *ICRC7) TokenMetadata(arguments *TokenIDsArguments, reply *TokenMetadataReply) error {
	metrics.RPCCall("ICRC7.TokenMetadata")

	if err := ratelimit.Limit(icrc7.Limiter); nil != err {
		return err
	}

	metadata, err := icrc7.Ledger.TokenMetadata(arguments.TokenIDs)
	if nil != err {
		return err
	}
	reply.Metadata = metadata
	return nil
}

// BalanceOfArguments - a query batch of accounts
type BalanceOfArguments struct {
	Accounts []account.Account `json:"accounts"`
}

// BalanceOfReply - token counts in request order
type BalanceOfReply struct {
	Balances []uint64 `json:"balances"`
}

// BalanceOf - number of tokens held by each account
func (icrc7 *ICRC7) BalanceOf(arguments *BalanceOfArguments, reply *BalanceOfReply) error {
	metrics.RPCCall("ICRC7.BalanceOf")

	if err := ratelimit.Limit(icrc7.Limiter); nil != err {
		return err
	}

	balances, err := icrc7.Ledger.BalanceOf(arguments.Accounts)
	if nil != err {
		return err
	}
	reply.Balances = balances
	return nil
}

// ---

// TokensArguments - one page of token ids
//
// Account absent lists the whole collection
type TokensArguments struct {
	Account *account.Account `json:"account,omitempty"`
	Prev    *uint64          `json:"prev,string,omitempty"`
	Take    *uint64          `json:"take,string,omitempty"`
}

// TokensReply - ascending token ids
type TokensReply struct {
	Tokens []uint64 `json:"tokens"`
}

// Tokens - page through existing token ids
func (icrc7 *ICRC7) Tokens(arguments *TokensArguments, reply *TokensReply) error {
	metrics.RPCCall("ICRC7.Tokens")

	if err := ratelimit.Limit(icrc7.Limiter); nil != err {
		return err
	}

	var tokens []uint64
	var err error
	if nil == arguments.Account {
		tokens, err = icrc7.Ledger.Tokens(arguments.Prev, arguments.Take)
	} else {
		tokens, err = icrc7.Ledger.TokensOf(*arguments.Account, arguments.Prev, arguments.Take)
	}
	if nil != err {
		return err
	}
	reply.Tokens = tokens
	return nil
}

// ---

// EmptyArguments - for calls without parameters
type EmptyArguments struct{}

// MetadataReply - a metadata map
type MetadataReply struct {
	Metadata value.Map `json:"metadata"`
}

// CollectionMetadata - collection description and limits
func (icrc7 *ICRC7) CollectionMetadata(_ *EmptyArguments, reply *MetadataReply) error {
	metrics.RPCCall("ICRC7.CollectionMetadata")

	if err := ratelimit.Limit(icrc7.Limiter); nil != err {
		return err
	}

	reply.Metadata = icrc7.Ledger.CollectionMetadata()
	return nil
}

// ---

// AuthorityReply - the minting authority, null when unset
type AuthorityReply struct {
	Authority *account.Account `json:"authority"`
}

// MintingAuthority - account allowed to mint
func (icrc7 *ICRC7) MintingAuthority(_ *EmptyArguments, reply *AuthorityReply) error {
	metrics.RPCCall("ICRC7.MintingAuthority")

	if err := ratelimit.Limit(icrc7.Limiter); nil != err {
		return err
	}

	reply.Authority = icrc7.Ledger.MintingAuthority()
	return nil
}

// SetAuthorityArguments - replace the minting authority
type SetAuthorityArguments struct {
	Caller    account.Principal `json:"caller"`
	Authority *account.Account  `json:"authority"`
}

// SetMintingAuthority - restricted to the controllers
func (icrc7 *ICRC7) SetMintingAuthority(arguments *SetAuthorityArguments, reply *AuthorityReply) error {
	metrics.RPCCall("ICRC7.SetMintingAuthority")

	if err := ratelimit.Limit(icrc7.Limiter); nil != err {
		return err
	}
	if nil == arguments.Authority {
		return fault.ErrMissingParameters
	}

	err := icrc7.Ledger.SetMintingAuthority(arguments.Caller, *arguments.Authority)
	if nil != err {
		icrc7.Log.Warnf("set minting authority by: %s  error: %s", arguments.Caller, err)
		return err
	}
	reply.Authority = icrc7.Ledger.MintingAuthority()
	return nil
}
