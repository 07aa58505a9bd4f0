// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/storage"
	"github.com/bitmark-inc/nftledger/transactionrecord"
	"github.com/bitmark-inc/nftledger/util"
)

// ApproveTokens - grant spenders the right to move single tokens
func (l *Ledger) ApproveTokens(caller account.Principal, args []ApproveTokenArg) ([]*Result, error) {
	return l.run(caller, len(args), l.config.MaxUpdateBatchSize, func(b *batch, i int) (uint64, *Error, error) {
		return l.approveToken(b, caller, &args[i])
	})
}

// ApproveCollection - grant spenders the right to move any token of the caller
func (l *Ledger) ApproveCollection(caller account.Principal, args []ApproveCollectionArg) ([]*Result, error) {
	return l.run(caller, len(args), l.config.MaxUpdateBatchSize, func(b *batch, i int) (uint64, *Error, error) {
		return l.approveCollection(b, caller, &args[i])
	})
}

// RevokeTokenApprovals - withdraw token grants
func (l *Ledger) RevokeTokenApprovals(caller account.Principal, args []RevokeTokenApprovalArg) ([]*Result, error) {
	return l.run(caller, len(args), l.config.MaxRevokeApprovals, func(b *batch, i int) (uint64, *Error, error) {
		return l.revokeToken(b, caller, &args[i])
	})
}

// RevokeCollectionApprovals - withdraw collection grants
func (l *Ledger) RevokeCollectionApprovals(caller account.Principal, args []RevokeCollectionApprovalArg) ([]*Result, error) {
	return l.run(caller, len(args), l.config.MaxRevokeApprovals, func(b *batch, i int) (uint64, *Error, error) {
		return l.revokeCollection(b, caller, &args[i])
	})
}

// validate the grant part shared by both approve operations
func (l *Ledger) checkGrant(b *batch, owner account.Account, info *ApprovalInfo) (account.Account, []byte, *Error) {
	spender := normalise(info.Spender)
	memo := normaliseMemo(info.Memo)
	if e := l.checkMemo(memo); nil != e {
		return spender, nil, e
	}
	if 0 == len(spender.Owner) || spender.Equal(owner) {
		return spender, nil, newError(InvalidSpender)
	}
	if nil != info.ExpiresAt && *info.ExpiresAt <= b.now {
		return spender, nil, newError(TooOld)
	}
	return spender, memo, nil
}

func (l *Ledger) approveToken(b *batch, caller account.Principal, arg *ApproveTokenArg) (uint64, *Error, error) {
	info := &arg.ApprovalInfo
	owner := account.WithSubaccount(caller, info.FromSubaccount)
	spender, memo, e := l.checkGrant(b, owner, info)
	if nil != e {
		return 0, e, nil
	}

	id := arg.TokenID
	t := &transactionrecord.Transaction{
		Op:        transactionrecord.ApproveOp,
		TokenID:   &id,
		From:      &owner,
		Spender:   &spender,
		ExpiresAt: info.ExpiresAt,
		Memo:      memo,
		CreatedAt: info.CreatedAtTime,
	}
	key, e, err := l.checkReplay(b, t)
	if nil != err || nil != e {
		return 0, e, err
	}

	tok, err := l.getToken(b.trx, id)
	if nil != err {
		return 0, nil, err
	}
	if nil == tok {
		return 0, newError(NonExistingTokenID), nil
	}
	if !tok.owner.Equal(owner) {
		return 0, newError(Unauthorized), nil
	}

	e, err = l.grant(b, l.store.TokenApprovals, util.Uint64ToBytes(id), spender, info, memo)
	if nil != err || nil != e {
		return 0, e, err
	}
	return l.recorded(b, t, key)
}

func (l *Ledger) approveCollection(b *batch, caller account.Principal, arg *ApproveCollectionArg) (uint64, *Error, error) {
	info := &arg.ApprovalInfo
	owner := account.WithSubaccount(caller, info.FromSubaccount)
	spender, memo, e := l.checkGrant(b, owner, info)
	if nil != e {
		return 0, e, nil
	}

	t := &transactionrecord.Transaction{
		Op:        transactionrecord.ApproveCollectionOp,
		From:      &owner,
		Spender:   &spender,
		ExpiresAt: info.ExpiresAt,
		Memo:      memo,
		CreatedAt: info.CreatedAtTime,
	}
	key, e, err := l.checkReplay(b, t)
	if nil != err || nil != e {
		return 0, e, err
	}

	if l.config.CollectionApprovalRequiresToken {
		owned, err := l.ownedTokens(b.trx, owner)
		if nil != err {
			return 0, nil, err
		}
		if owned.IsEmpty() {
			return 0, newError(Unauthorized), nil
		}
	}

	e, err = l.grant(b, l.store.CollectionApprovals, owner.Key(), spender, info, memo)
	if nil != err || nil != e {
		return 0, e, err
	}
	return l.recorded(b, t, key)
}

// grant - insert or replace one entry and keep the tables bounded
//
// a table over its limit settles by eviction; if the global limit still
// cannot be met the grant is rejected and nothing is staged
func (l *Ledger) grant(b *batch, pool *storage.PoolHandle, key []byte, spender account.Account, info *ApprovalInfo, memo []byte) (*Error, error) {
	table, err := l.getApprovals(b.trx, pool, key)
	if nil != err {
		return nil, err
	}
	count, _ := b.trx.GetN(l.store.Metadata, approvalCountKey)
	sequence, _ := b.trx.GetN(l.store.Metadata, approvalSequenceKey)

	entry := ApprovalEntry{
		Spender:   spender,
		ExpiresAt: info.ExpiresAt,
		Memo:      memo,
		CreatedAt: b.now,
		sequence:  sequence,
	}
	if nil != info.CreatedAtTime {
		entry.CreatedAt = *info.CreatedAtTime
	}
	if table.put(entry) {
		count += 1
	}

	if uint64(len(table)) > l.config.MaxApprovalsPerTokenOrCollection {
		count -= table.settle(l.config.SettleToApprovals)
	}
	if count > l.config.MaxApprovals {
		count -= table.settle(l.config.SettleToApprovals)
	}
	if count > l.config.MaxApprovals {
		return newError(ExceedMaxApprovalLimit), nil
	}

	l.putApprovals(b.trx, pool, key, table)
	b.trx.PutN(l.store.Metadata, approvalCountKey, count)
	b.trx.PutN(l.store.Metadata, approvalSequenceKey, sequence+1)
	return nil, nil
}

func (l *Ledger) revokeToken(b *batch, caller account.Principal, arg *RevokeTokenApprovalArg) (uint64, *Error, error) {
	owner := account.WithSubaccount(caller, arg.FromSubaccount)
	spender, memo, e := l.checkRevoke(owner, arg.Spender, arg.Memo)
	if nil != e {
		return 0, e, nil
	}

	id := arg.TokenID
	t := &transactionrecord.Transaction{
		Op:        transactionrecord.RevokeOp,
		TokenID:   &id,
		From:      &owner,
		Spender:   spender,
		Memo:      memo,
		CreatedAt: arg.CreatedAtTime,
	}
	key, e, err := l.checkReplay(b, t)
	if nil != err || nil != e {
		return 0, e, err
	}

	tok, err := l.getToken(b.trx, id)
	if nil != err {
		return 0, nil, err
	}
	if nil == tok {
		return 0, newError(NonExistingTokenID), nil
	}
	if !tok.owner.Equal(owner) {
		return 0, newError(Unauthorized), nil
	}

	e, err = l.withdraw(b, l.store.TokenApprovals, util.Uint64ToBytes(id), spender)
	if nil != err || nil != e {
		return 0, e, err
	}
	return l.recorded(b, t, key)
}

func (l *Ledger) revokeCollection(b *batch, caller account.Principal, arg *RevokeCollectionApprovalArg) (uint64, *Error, error) {
	owner := account.WithSubaccount(caller, arg.FromSubaccount)
	spender, memo, e := l.checkRevoke(owner, arg.Spender, arg.Memo)
	if nil != e {
		return 0, e, nil
	}

	t := &transactionrecord.Transaction{
		Op:        transactionrecord.RevokeCollectionOp,
		From:      &owner,
		Spender:   spender,
		Memo:      memo,
		CreatedAt: arg.CreatedAtTime,
	}
	key, e, err := l.checkReplay(b, t)
	if nil != err || nil != e {
		return 0, e, err
	}

	e, err = l.withdraw(b, l.store.CollectionApprovals, owner.Key(), spender)
	if nil != err || nil != e {
		return 0, e, err
	}
	return l.recorded(b, t, key)
}

func (l *Ledger) checkRevoke(owner account.Account, spender *account.Account, memo []byte) (*account.Account, []byte, *Error) {
	memo = normaliseMemo(memo)
	if e := l.checkMemo(memo); nil != e {
		return nil, nil, e
	}
	if nil == spender {
		return nil, memo, nil
	}
	s := normalise(*spender)
	if s.Equal(owner) {
		return nil, nil, newError(InvalidSpender)
	}
	return &s, memo, nil
}

// withdraw - remove the entry of spender, or every entry when spender is nil
func (l *Ledger) withdraw(b *batch, pool *storage.PoolHandle, key []byte, spender *account.Account) (*Error, error) {
	table, err := l.getApprovals(b.trx, pool, key)
	if nil != err {
		return nil, err
	}
	removed := uint64(len(table))
	if nil != spender {
		if !table.remove(*spender) {
			return newError(ApprovalDoesNotExist), nil
		}
		removed = 1
	} else {
		table = approvalTable{}
	}

	l.putApprovals(b.trx, pool, key, table)
	l.reduceApprovalCount(b.trx, removed)
	return nil, nil
}

func (l *Ledger) clearTokenApprovals(trx storage.Transaction, id uint64) error {
	key := util.Uint64ToBytes(id)
	table, err := l.getApprovals(trx, l.store.TokenApprovals, key)
	if nil != err {
		return err
	}
	if 0 == len(table) {
		return nil
	}
	trx.Delete(l.store.TokenApprovals, key)
	l.reduceApprovalCount(trx, uint64(len(table)))
	return nil
}

func (l *Ledger) reduceApprovalCount(trx storage.Transaction, n uint64) {
	if 0 == n {
		return
	}
	count, _ := trx.GetN(l.store.Metadata, approvalCountKey)
	if n > count {
		n = count
	}
	trx.PutN(l.store.Metadata, approvalCountKey, count-n)
}

// approved - spender holds an unexpired token or collection grant from owner
func (l *Ledger) approved(r reader, id uint64, owner account.Account, spender account.Account, now uint64) (bool, error) {
	tokenTable, err := l.getApprovals(r, l.store.TokenApprovals, util.Uint64ToBytes(id))
	if nil != err {
		return false, err
	}
	if tokenTable.approves(spender, now) {
		return true, nil
	}
	collectionTable, err := l.getApprovals(r, l.store.CollectionApprovals, owner.Key())
	if nil != err {
		return false, err
	}
	return collectionTable.approves(spender, now), nil
}
