// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"math"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/util"
	"github.com/bitmark-inc/nftledger/value"
)

// TokenApproval - a grant on one token
type TokenApproval struct {
	TokenID      uint64        `json:"token_id,string"`
	ApprovalInfo ApprovalEntry `json:"approval_info"`
}

// queries see committed state only

func (l *Ledger) checkQueryBatch(n int) error {
	if uint64(n) > l.config.MaxQueryBatchSize {
		return batchError(CodeExceedQueryBatch, messageExceedQuery)
	}
	return nil
}

// page size: the request, the default and the maximum, whichever is least
func (l *Ledger) take(take *uint64) uint64 {
	n := l.config.DefaultTakeValue
	if nil != take && *take < n {
		n = *take
	}
	if n > l.config.MaxTakeValue {
		n = l.config.MaxTakeValue
	}
	return n
}

// OwnerOf - owners of tokens, nil for ids that do not exist
func (l *Ledger) OwnerOf(ids []uint64) ([]*account.Account, error) {
	if err := l.checkQueryBatch(len(ids)); nil != err {
		return nil, err
	}
	result := make([]*account.Account, len(ids))
	for i, id := range ids {
		tok, err := l.getToken(committed{}, id)
		if nil != err {
			return nil, err
		}
		if nil != tok {
			owner := tok.owner
			result[i] = &owner
		}
	}
	return result, nil
}

// BalanceOf - number of tokens held by each account
func (l *Ledger) BalanceOf(accounts []account.Account) ([]uint64, error) {
	if err := l.checkQueryBatch(len(accounts)); nil != err {
		return nil, err
	}
	result := make([]uint64, len(accounts))
	for i, a := range accounts {
		owned, err := l.ownedTokens(committed{}, normalise(a))
		if nil != err {
			return nil, err
		}
		result[i] = owned.GetCardinality()
	}
	return result, nil
}

// TokenMetadata - metadata of tokens, nil for ids that do not exist
func (l *Ledger) TokenMetadata(ids []uint64) ([]*value.Map, error) {
	if err := l.checkQueryBatch(len(ids)); nil != err {
		return nil, err
	}
	result := make([]*value.Map, len(ids))
	for i, id := range ids {
		tok, err := l.getToken(committed{}, id)
		if nil != err {
			return nil, err
		}
		if nil != tok {
			m := tok.metadata(l.config.Symbol)
			result[i] = &m
		}
	}
	return result, nil
}

// Tokens - existing token ids in ascending order, strictly after prev
func (l *Ledger) Tokens(prev *uint64, take *uint64) ([]uint64, error) {
	n := l.take(take)
	result := make([]uint64, 0, n)
	if 0 == n {
		return result, nil
	}

	cursor := l.store.Tokens.NewFetchCursor()
	if nil != prev {
		if math.MaxUint64 == *prev {
			return result, nil
		}
		cursor.Seek(util.Uint64ToBytes(*prev + 1))
	}
	elements, err := cursor.Fetch(int(n))
	if nil != err {
		return nil, err
	}
	for _, e := range elements {
		id, ok := util.BytesToUint64(e.Key)
		if !ok {
			continue
		}
		result = append(result, id)
	}
	return result, nil
}

// TokensOf - token ids held by one account, ascending, strictly after prev
func (l *Ledger) TokensOf(a account.Account, prev *uint64, take *uint64) ([]uint64, error) {
	n := l.take(take)
	result := make([]uint64, 0, n)
	if 0 == n {
		return result, nil
	}

	owned, err := l.ownedTokens(committed{}, normalise(a))
	if nil != err {
		return nil, err
	}
	iter := owned.Iterator()
	if nil != prev {
		if math.MaxUint64 == *prev {
			return result, nil
		}
		iter.AdvanceIfNeeded(*prev + 1)
	}
	for iter.HasNext() && uint64(len(result)) < n {
		result = append(result, iter.Next())
	}
	return result, nil
}

// page of a table in spender key order, expired entries skipped
func (l *Ledger) approvalPage(t approvalTable, prev *account.Account, take *uint64) []ApprovalEntry {
	n := l.take(take)
	now := l.clock()
	result := make([]ApprovalEntry, 0, n)

	var after []byte
	if nil != prev {
		after = normalise(*prev).Key()
	}
	for _, e := range t.sorted() {
		if uint64(len(result)) >= n {
			break
		}
		if nil != after && string(e.Spender.Key()) <= string(after) {
			continue
		}
		if !e.active(now) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// GetTokenApprovals - grants on one token, paged by spender
func (l *Ledger) GetTokenApprovals(id uint64, prev *account.Account, take *uint64) ([]TokenApproval, error) {
	t, err := l.getApprovals(committed{}, l.store.TokenApprovals, util.Uint64ToBytes(id))
	if nil != err {
		return nil, err
	}
	page := l.approvalPage(t, prev, take)
	result := make([]TokenApproval, len(page))
	for i, e := range page {
		result[i] = TokenApproval{TokenID: id, ApprovalInfo: e}
	}
	return result, nil
}

// GetCollectionApprovals - collection grants of one owner, paged by spender
func (l *Ledger) GetCollectionApprovals(owner account.Account, prev *account.Account, take *uint64) ([]ApprovalEntry, error) {
	t, err := l.getApprovals(committed{}, l.store.CollectionApprovals, normalise(owner).Key())
	if nil != err {
		return nil, err
	}
	return l.approvalPage(t, prev, take), nil
}

// IsApproved - whether each spender may move the token out of the caller's account
func (l *Ledger) IsApproved(caller account.Principal, args []IsApprovedArg) ([]bool, error) {
	if err := l.checkQueryBatch(len(args)); nil != err {
		return nil, err
	}
	now := l.clock()
	result := make([]bool, len(args))
	for i, arg := range args {
		owner := account.WithSubaccount(caller, arg.FromSubaccount)
		tok, err := l.getToken(committed{}, arg.TokenID)
		if nil != err {
			return nil, err
		}
		if nil == tok || !tok.owner.Equal(owner) {
			continue
		}
		result[i], err = l.approved(committed{}, arg.TokenID, owner, normalise(arg.Spender), now)
		if nil != err {
			return nil, err
		}
	}
	return result, nil
}

// CollectionMetadata - the icrc7 description of the collection
func (l *Ledger) CollectionMetadata() value.Map {
	c := &l.config
	entries := []value.Entry{
		{Key: "icrc7:symbol", Value: value.Text(c.Symbol)},
		{Key: "icrc7:name", Value: value.Text(c.Name)},
		{Key: "icrc7:total_supply", Value: value.NatFromUint64(l.TotalSupply())},
		{Key: "icrc7:max_query_batch_size", Value: value.NatFromUint64(c.MaxQueryBatchSize)},
		{Key: "icrc7:max_update_batch_size", Value: value.NatFromUint64(c.MaxUpdateBatchSize)},
		{Key: "icrc7:default_take_value", Value: value.NatFromUint64(c.DefaultTakeValue)},
		{Key: "icrc7:max_take_value", Value: value.NatFromUint64(c.MaxTakeValue)},
		{Key: "icrc7:max_memo_size", Value: value.NatFromUint64(c.MaxMemoSize)},
		{Key: "icrc7:tx_window", Value: value.NatFromUint64(c.TxWindow)},
		{Key: "icrc7:permitted_drift", Value: value.NatFromUint64(c.PermittedDrift)},
	}
	if "" != c.Description {
		entries = append(entries, value.Entry{Key: "icrc7:description", Value: value.Text(c.Description)})
	}
	if "" != c.Logo {
		entries = append(entries, value.Entry{Key: "icrc7:logo", Value: value.Text(c.Logo)})
	}
	if 0 != c.SupplyCap {
		entries = append(entries, value.Entry{Key: "icrc7:supply_cap", Value: value.NatFromUint64(c.SupplyCap)})
	}
	if c.AtomicBatchTransfers {
		entries = append(entries, value.Entry{Key: "icrc7:atomic_batch_transfers", Value: value.Text("true")})
	}
	return value.MustMap(entries...)
}

// ICRC37Metadata - approval limits
func (l *Ledger) ICRC37Metadata() value.Map {
	return value.MustMap(
		value.Entry{Key: "icrc37:max_approvals_per_token_or_collection", Value: value.NatFromUint64(l.config.MaxApprovalsPerTokenOrCollection)},
		value.Entry{Key: "icrc37:max_revoke_approvals", Value: value.NatFromUint64(l.config.MaxRevokeApprovals)},
	)
}

// ApprovalCount - token and collection grants currently stored
func (l *Ledger) ApprovalCount() uint64 {
	n, _ := l.store.Metadata.GetN(approvalCountKey)
	return n
}
