// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/ledger"
)

func TestTransfer(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)

	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{{To: acct(bob), TokenID: 1}})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, 1, len(results))
	if assert.True(t, results[0].IsOk()) {
		assert.Equal(t, uint64(1), *results[0].Ok)
	}
	assert.True(t, e.owner(t, 1).Equal(acct(bob)))

	balances, err := e.ledger.BalanceOf([]account.Account{acct(alice), acct(bob)})
	assert.Nil(t, err, "balance error")
	assert.Equal(t, []uint64{0, 1}, balances)

	results, err = e.ledger.Transfer(alice, []ledger.TransferArg{
		{To: acct(carol), TokenID: 1},
		{To: acct(bob), TokenID: 99},
	})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.Unauthorized, kind(results[0]))
	assert.Equal(t, ledger.NonExistingTokenID, kind(results[1]))

	results, err = e.ledger.Transfer(bob, []ledger.TransferArg{{To: acct(bob), TokenID: 1}})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.InvalidRecipient, kind(results[0]))

	assert.Equal(t, uint64(2), e.blocks.Length())
}

func TestTransferSubaccount(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)

	sub := account.Subaccount{31: 1}
	to := account.Account{Owner: alice, Subaccount: &sub}
	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{{To: to, TokenID: 1}})
	assert.Nil(t, err, "transfer error")
	assert.True(t, results[0].IsOk())

	// the default account no longer owns it
	results, err = e.ledger.Transfer(alice, []ledger.TransferArg{{To: acct(bob), TokenID: 1}})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.Unauthorized, kind(results[0]))

	results, err = e.ledger.Transfer(alice, []ledger.TransferArg{{FromSubaccount: &sub, To: acct(bob), TokenID: 1}})
	assert.Nil(t, err, "transfer error")
	assert.True(t, results[0].IsOk())

	// an all zero subaccount is the default account
	zero := account.Subaccount{}
	balances, err := e.ledger.BalanceOf([]account.Account{{Owner: bob, Subaccount: &zero}})
	assert.Nil(t, err, "balance error")
	assert.Equal(t, []uint64{1}, balances)
}

func TestTransferTooOld(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)
	config := e.ledger.Configuration()

	old := startTime - config.TxWindow - config.PermittedDrift - 1
	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{{To: acct(bob), TokenID: 1, CreatedAtTime: &old}})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.TooOld, kind(results[0]))
	assert.Equal(t, uint64(1), e.blocks.Length(), "rejected transfer appended a block")
	assert.True(t, e.owner(t, 1).Equal(acct(alice)))

	// the edge of the window is still accepted
	edge := old + 1
	results, err = e.ledger.Transfer(alice, []ledger.TransferArg{{To: acct(bob), TokenID: 1, CreatedAtTime: &edge}})
	assert.Nil(t, err, "transfer error")
	assert.True(t, results[0].IsOk())
}

func TestTransferCreatedInFuture(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)

	future := startTime + e.ledger.Configuration().PermittedDrift + 1
	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{{To: acct(bob), TokenID: 1, CreatedAtTime: &future}})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.CreatedInFuture, kind(results[0]))
	if assert.NotNil(t, results[0].Err.LedgerTime) {
		assert.Equal(t, startTime, *results[0].Err.LedgerTime)
	}
}

func TestTransferDuplicate(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)

	created := startTime
	arg := ledger.TransferArg{To: acct(bob), TokenID: 1, CreatedAtTime: &created, Memo: []byte("gift")}
	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{arg})
	assert.Nil(t, err, "transfer error")
	assert.True(t, results[0].IsOk())
	tid := *results[0].Ok

	e.clock.now += 1000
	results, err = e.ledger.Transfer(alice, []ledger.TransferArg{arg})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.Duplicate, kind(results[0]))
	if assert.NotNil(t, results[0].Err.DuplicateOf) {
		assert.Equal(t, tid, *results[0].Err.DuplicateOf)
	}
	assert.Equal(t, uint64(2), e.blocks.Length())

	// the replay index is rebuilt from the log
	reopened, err := ledger.New(e.config, e.blocks, nil, e.clock.clock)
	assert.Nil(t, err, "reopen error")
	results, err = reopened.Transfer(alice, []ledger.TransferArg{arg})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.Duplicate, kind(results[0]))

	// without created_at_time there is no deduplication
	results, err = e.ledger.Transfer(bob, []ledger.TransferArg{{To: acct(carol), TokenID: 1}})
	assert.Nil(t, err, "transfer error")
	assert.True(t, results[0].IsOk())
}

func TestDuplicateAtEndOfWindow(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)
	config := e.ledger.Configuration()

	// ahead of the ledger clock, but inside the drift
	created := startTime + config.PermittedDrift - 1
	arg := ledger.TransferArg{To: acct(bob), TokenID: 1, CreatedAtTime: &created}
	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{arg})
	assert.Nil(t, err, "transfer error")
	require.True(t, results[0].IsOk())
	tid := *results[0].Ok

	// last instant at which created_at_time is still accepted
	e.clock.now = created + config.TxWindow + config.PermittedDrift
	results, err = e.ledger.Transfer(alice, []ledger.TransferArg{arg})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.Duplicate, kind(results[0]))
	if assert.NotNil(t, results[0].Err.DuplicateOf) {
		assert.Equal(t, tid, *results[0].Err.DuplicateOf)
	}

	reopened, err := ledger.New(e.config, e.blocks, nil, e.clock.clock)
	assert.Nil(t, err, "reopen error")
	results, err = reopened.Transfer(alice, []ledger.TransferArg{arg})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.Duplicate, kind(results[0]))

	e.clock.now += 1
	results, err = e.ledger.Transfer(alice, []ledger.TransferArg{arg})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, ledger.TooOld, kind(results[0]))
	assert.Equal(t, uint64(2), e.blocks.Length(), "replayed request appended a block")
}

func TestDuplicateInsideOneBatch(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)
	e.mint(t, 2, alice)

	created := startTime
	arg := ledger.BurnArg{TokenID: 1, CreatedAtTime: &created}
	results, err := e.ledger.Burn(alice, []ledger.BurnArg{arg, arg})
	assert.Nil(t, err, "burn error")
	assert.True(t, results[0].IsOk())
	assert.Equal(t, ledger.Duplicate, kind(results[1]))
	assert.Equal(t, *results[0].Ok, *results[1].Err.DuplicateOf)
}

func TestAtomicBatch(t *testing.T) {
	config := testConfig()
	config.AtomicBatchTransfers = true
	e, teardown := setup(t, config, nil)
	defer teardown()

	e.mint(t, 1, alice)
	e.mint(t, 2, alice)

	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{
		{To: acct(bob), TokenID: 1},
		{To: acct(bob), TokenID: 99},
		{To: acct(bob), TokenID: 2},
	})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, 3, len(results))
	assert.Nil(t, results[0], "aborted item reported")
	assert.Equal(t, ledger.NonExistingTokenID, kind(results[1]))
	assert.Nil(t, results[2], "aborted item reported")

	assert.Equal(t, uint64(2), e.blocks.Length(), "aborted batch appended blocks")
	assert.True(t, e.owner(t, 1).Equal(acct(alice)))
	assert.True(t, e.owner(t, 2).Equal(acct(alice)))

	results, err = e.ledger.Transfer(alice, []ledger.TransferArg{
		{To: acct(bob), TokenID: 1},
		{To: acct(carol), TokenID: 2},
	})
	assert.Nil(t, err, "transfer error")
	assert.True(t, results[0].IsOk())
	assert.True(t, results[1].IsOk())
	assert.Equal(t, uint64(4), e.blocks.Length())
}

func TestNonAtomicBatch(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)
	e.mint(t, 2, alice)

	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{
		{To: acct(bob), TokenID: 1},
		{To: acct(bob), TokenID: 99},
		{To: acct(carol), TokenID: 2},
	})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, 3, len(results))
	assert.True(t, results[0].IsOk())
	assert.Equal(t, ledger.NonExistingTokenID, kind(results[1]))
	assert.True(t, results[2].IsOk())
	assert.Equal(t, *results[0].Ok+1, *results[2].Ok, "blocks in item order")

	assert.Equal(t, uint64(4), e.blocks.Length())
	assert.True(t, e.owner(t, 1).Equal(acct(bob)))
	assert.True(t, e.owner(t, 2).Equal(acct(carol)))
}

func TestItemsSeeEarlierItems(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)

	// the second item moves the token the first item delivered
	results, err := e.ledger.Transfer(alice, []ledger.TransferArg{
		{To: acct(bob), TokenID: 1},
		{To: acct(carol), TokenID: 1},
	})
	assert.Nil(t, err, "transfer error")
	assert.True(t, results[0].IsOk())
	assert.Equal(t, ledger.Unauthorized, kind(results[1]))
}

func TestBatchLimits(t *testing.T) {
	config := testConfig()
	config.MaxUpdateBatchSize = 2
	e, teardown := setup(t, config, nil)
	defer teardown()

	e.mint(t, 1, alice)

	results, err := e.ledger.Transfer(alice, nil)
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, 1, len(results))
	assert.Equal(t, ledger.GenericBatchError, kind(results[0]))
	assert.Equal(t, uint64(ledger.CodeNoArguments), results[0].Err.Code)

	results, err = e.ledger.Transfer(alice, []ledger.TransferArg{
		{To: acct(bob), TokenID: 1},
		{To: acct(bob), TokenID: 2},
		{To: acct(bob), TokenID: 3},
	})
	assert.Nil(t, err, "transfer error")
	assert.Equal(t, 3, len(results))
	assert.Equal(t, uint64(ledger.CodeExceedUpdateBatch), results[0].Err.Code)
	assert.Nil(t, results[1])
	assert.Nil(t, results[2])
	assert.Equal(t, uint64(1), e.blocks.Length())
}

func TestBurn(t *testing.T) {
	e, teardown := setup(t, testConfig(), nil)
	defer teardown()

	e.mint(t, 1, alice)
	e.mint(t, 2, alice)

	results, err := e.ledger.Burn(bob, []ledger.BurnArg{{TokenID: 1}})
	assert.Nil(t, err, "burn error")
	assert.Equal(t, ledger.Unauthorized, kind(results[0]))

	results, err = e.ledger.Burn(alice, []ledger.BurnArg{{TokenID: 1}})
	assert.Nil(t, err, "burn error")
	assert.True(t, results[0].IsOk())

	assert.Nil(t, e.owner(t, 1), "burned token has an owner")
	assert.Equal(t, uint64(1), e.ledger.TotalSupply())
	tokens, err := e.ledger.Tokens(nil, nil)
	assert.Nil(t, err, "tokens error")
	assert.Equal(t, []uint64{2}, tokens)

	results, err = e.ledger.Burn(alice, []ledger.BurnArg{{TokenID: 1}})
	assert.Nil(t, err, "burn error")
	assert.Equal(t, ledger.NonExistingTokenID, kind(results[0]))

	// burned ids are never reused
	r, err := e.ledger.Mint(minter, ledger.MintArg{To: acct(alice), TokenID: 1})
	assert.Nil(t, err, "mint error")
	assert.Equal(t, ledger.TokenIDMinimumLimit, kind(r))
}
