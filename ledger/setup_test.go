// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/fixtures"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/storage"
)

const startTime = uint64(1700000000000000000)

var (
	minter = account.Principal{0x01, 0x01}
	alice  = account.Principal{0x0a, 0x01}
	bob    = account.Principal{0x0b, 0x01}
	carol  = account.Principal{0x0c, 0x01}
	dave   = account.Principal{0x0d, 0x01}
)

func acct(p account.Principal) account.Account {
	return account.Account{Owner: p}
}

type testClock struct {
	now uint64
}

func (c *testClock) clock() uint64 {
	return c.now
}

type env struct {
	ledger *ledger.Ledger
	blocks *blocklog.Log
	store  *storage.Store
	clock  *testClock
	dir    string
	config ledger.Configuration
}

func testConfig() ledger.Configuration {
	return ledger.Configuration{
		Symbol:           "NFT",
		Name:             "test collection",
		MintingAuthority: acct(minter).String(),
	}
}

// archiver is nil or builds the archiver over the new log
func setup(t *testing.T, config ledger.Configuration, archiver func(*blocklog.Log, string) ledger.Archiver) (*env, func()) {
	fixtures.SetupTestLogger()
	d, remove := fixtures.TempDir(t)

	s, err := storage.Open(filepath.Join(d, "ledger.leveldb"), storage.ReadWrite)
	require.Nil(t, err, "storage open error")
	blocks, err := blocklog.New(s, 0, nil)
	require.Nil(t, err, "blocklog error")

	e := &env{
		blocks: blocks,
		store:  s,
		clock:  &testClock{now: startTime},
		dir:    d,
		config: config,
	}
	var a ledger.Archiver
	if nil != archiver {
		a = archiver(blocks, d)
	}
	e.ledger, err = ledger.New(config, blocks, a, e.clock.clock)
	require.Nil(t, err, "ledger error")

	return e, func() {
		s.Close()
		remove()
		fixtures.TeardownTestLogger()
	}
}

func (e *env) mint(t *testing.T, id uint64, to account.Principal) uint64 {
	r, err := e.ledger.Mint(minter, ledger.MintArg{To: acct(to), TokenID: id})
	require.Nil(t, err, "mint error")
	require.True(t, r.IsOk(), "mint: %d  rejected: %v", id, r.Err)
	return *r.Ok
}

func (e *env) owner(t *testing.T, id uint64) *account.Account {
	owners, err := e.ledger.OwnerOf([]uint64{id})
	require.Nil(t, err, "owner of error")
	return owners[0]
}

func kind(r *ledger.Result) ledger.Kind {
	if nil == r || nil == r.Err {
		return ""
	}
	return r.Err.Kind
}

func ptr(n uint64) *uint64 {
	return &n
}
