// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/storage"
	"github.com/bitmark-inc/nftledger/transactionrecord"
	"github.com/bitmark-inc/nftledger/util"
)

// Transfer - owner moves tokens to new accounts
func (l *Ledger) Transfer(caller account.Principal, args []TransferArg) ([]*Result, error) {
	return l.run(caller, len(args), l.config.MaxUpdateBatchSize, func(b *batch, i int) (uint64, *Error, error) {
		return l.transfer(b, caller, &args[i])
	})
}

func (l *Ledger) transfer(b *batch, caller account.Principal, arg *TransferArg) (uint64, *Error, error) {
	from := account.WithSubaccount(caller, arg.FromSubaccount)
	to := normalise(arg.To)
	memo := normaliseMemo(arg.Memo)
	if e := l.checkMemo(memo); nil != e {
		return 0, e, nil
	}

	id := arg.TokenID
	t := &transactionrecord.Transaction{
		Op:        transactionrecord.TransferOp,
		TokenID:   &id,
		From:      &from,
		To:        &to,
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
	if 0 == len(to.Owner) || to.Equal(from) {
		return 0, newError(InvalidRecipient), nil
	}
	if !tok.owner.Equal(from) {
		return 0, newError(Unauthorized), nil
	}

	if err := l.changeOwner(b.trx, id, tok, to); nil != err {
		return 0, nil, err
	}
	return l.recorded(b, t, key)
}

// TransferFrom - an approved spender moves tokens out of another account
func (l *Ledger) TransferFrom(caller account.Principal, args []TransferFromArg) ([]*Result, error) {
	return l.run(caller, len(args), l.config.MaxUpdateBatchSize, func(b *batch, i int) (uint64, *Error, error) {
		return l.transferFrom(b, caller, &args[i])
	})
}

func (l *Ledger) transferFrom(b *batch, caller account.Principal, arg *TransferFromArg) (uint64, *Error, error) {
	spender := account.WithSubaccount(caller, arg.SpenderSubaccount)
	from := normalise(arg.From)
	to := normalise(arg.To)
	memo := normaliseMemo(arg.Memo)
	if e := l.checkMemo(memo); nil != e {
		return 0, e, nil
	}

	id := arg.TokenID
	t := &transactionrecord.Transaction{
		Op:        transactionrecord.TransferFromOp,
		TokenID:   &id,
		From:      &from,
		To:        &to,
		Spender:   &spender,
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
	if !tok.owner.Equal(from) {
		return 0, newError(Unauthorized), nil
	}
	if 0 == len(to.Owner) || to.Equal(from) {
		return 0, newError(InvalidRecipient), nil
	}
	if !spender.Equal(from) {
		ok, err := l.approved(b.trx, id, from, spender, b.now)
		if nil != err {
			return 0, nil, err
		}
		if !ok {
			return 0, newError(Unauthorized), nil
		}
	}

	if err := l.changeOwner(b.trx, id, tok, to); nil != err {
		return 0, nil, err
	}
	return l.recorded(b, t, key)
}

// Burn - destroy tokens, their ids are never reused
func (l *Ledger) Burn(caller account.Principal, args []BurnArg) ([]*Result, error) {
	return l.run(caller, len(args), l.config.MaxUpdateBatchSize, func(b *batch, i int) (uint64, *Error, error) {
		return l.burn(b, caller, &args[i])
	})
}

func (l *Ledger) burn(b *batch, caller account.Principal, arg *BurnArg) (uint64, *Error, error) {
	from := account.WithSubaccount(caller, arg.FromSubaccount)
	memo := normaliseMemo(arg.Memo)
	if e := l.checkMemo(memo); nil != e {
		return 0, e, nil
	}

	id := arg.TokenID
	t := &transactionrecord.Transaction{
		Op:        transactionrecord.BurnOp,
		TokenID:   &id,
		From:      &from,
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
	if !tok.owner.Equal(from) {
		return 0, newError(Unauthorized), nil
	}

	b.trx.Delete(l.store.Tokens, util.Uint64ToBytes(id))
	if err := l.moveToken(b.trx, id, &from, nil); nil != err {
		return 0, nil, err
	}
	if err := l.clearTokenApprovals(b.trx, id); nil != err {
		return 0, nil, err
	}
	supply, _ := b.trx.GetN(l.store.Metadata, totalSupplyKey)
	if supply > 0 {
		b.trx.PutN(l.store.Metadata, totalSupplyKey, supply-1)
	}
	return l.recorded(b, t, key)
}

// changeOwner - stage the ownership change and drop the token's grants
func (l *Ledger) changeOwner(trx storage.Transaction, id uint64, tok *token, to account.Account) error {
	from := tok.owner
	tok.owner = to
	l.putToken(trx, id, tok)
	if err := l.moveToken(trx, id, &from, &to); nil != err {
		return err
	}
	return l.clearTokenApprovals(trx, id)
}

func (l *Ledger) recorded(b *batch, t *transactionrecord.Transaction, key *merkle.Digest) (uint64, *Error, error) {
	tid, err := l.record(b, t, key)
	if nil != err {
		return 0, nil, err
	}
	l.log.Debugf("%s: tid: %d", t.Op, tid)
	return tid, nil, nil
}
