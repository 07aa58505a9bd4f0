// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"fmt"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/transactionrecord"
	"github.com/bitmark-inc/nftledger/util"
)

// Mint - create a token owned by arg.To
//
// only the minting authority may mint and ids must keep increasing
func (l *Ledger) Mint(caller account.Principal, arg MintArg) (*Result, error) {
	results, err := l.run(caller, 1, 1, func(b *batch, _ int) (uint64, *Error, error) {
		return l.mint(b, caller, &arg)
	})
	if nil != err {
		return nil, err
	}
	return results[0], nil
}

func (l *Ledger) mint(b *batch, caller account.Principal, arg *MintArg) (uint64, *Error, error) {
	trx := b.trx

	supply, _ := trx.GetN(l.store.Metadata, totalSupplyKey)
	if 0 != l.config.SupplyCap && supply >= l.config.SupplyCap {
		return 0, newError(SupplyCapReached), nil
	}

	authority := l.mintingAuthority(trx)
	if nil == authority {
		return 0, batchError(CodeAuthorityNotSet, messageAuthorityNotSet), nil
	}
	minter := account.WithSubaccount(caller, arg.FromSubaccount)
	if !authority.Equal(minter) {
		return 0, newError(Unauthorized), nil
	}

	memo := normaliseMemo(arg.Memo)
	if e := l.checkMemo(memo); nil != e {
		return 0, e, nil
	}

	to := normalise(arg.To)
	if 0 == len(to.Owner) {
		return 0, newError(InvalidRecipient), nil
	}

	extra, err := metadataMap(arg.Metadata)
	if nil != err {
		return 0, genericError(0, err.Error()), nil
	}
	tok := &token{
		owner:       to,
		description: arg.TokenDescription,
		logo:        arg.TokenLogo,
		extra:       extra,
	}
	if nil != arg.TokenName {
		tok.name = *arg.TokenName
	} else {
		tok.name = fmt.Sprintf("%s %d", l.config.Symbol, arg.TokenID)
	}
	meta := tok.metadata(l.config.Symbol)

	id := arg.TokenID
	t := &transactionrecord.Transaction{
		Op:        transactionrecord.MintOp,
		TokenID:   &id,
		From:      &minter,
		To:        &to,
		Memo:      memo,
		Meta:      &meta,
		CreatedAt: arg.CreatedAtTime,
	}
	key, e, err := l.checkReplay(b, t)
	if nil != err || nil != e {
		return 0, e, err
	}

	next, _ := trx.GetN(l.store.Metadata, nextTokenIDKey)
	if arg.TokenID < next {
		return 0, newError(TokenIDMinimumLimit), nil
	}
	if trx.Has(l.store.Tokens, util.Uint64ToBytes(arg.TokenID)) {
		return 0, newError(TokenIDAlreadyExist), nil
	}

	l.putToken(trx, id, tok)
	if err := l.moveToken(trx, id, nil, &to); nil != err {
		return 0, nil, err
	}
	trx.PutN(l.store.Metadata, totalSupplyKey, supply+1)
	trx.PutN(l.store.Metadata, nextTokenIDKey, id+1)

	tid, err := l.record(b, t, key)
	if nil != err {
		return 0, nil, err
	}
	l.log.Debugf("mint: %d  to: %s  tid: %d", id, to, tid)
	return tid, nil, nil
}
