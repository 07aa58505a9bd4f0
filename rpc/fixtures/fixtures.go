// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - a small ledger for exercising the RPC services
package fixtures

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/blocklog"
	basefixtures "github.com/bitmark-inc/nftledger/fixtures"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/storage"
)

// LogCategory - logger channel for tests
const LogCategory = basefixtures.LogCategory

// Now - fixed ledger time
const Now = uint64(1700000000000000000)

// test principals
var (
	Minter = account.Principal{0x01, 0x01}
	Alice  = account.Principal{0x0a, 0x01}
	Bob    = account.Principal{0x0b, 0x01}
)

// SetupTestLogger - see the base fixtures
func SetupTestLogger() {
	basefixtures.SetupTestLogger()
}

// TeardownTestLogger - see the base fixtures
func TeardownTestLogger() {
	basefixtures.TeardownTestLogger()
}

// Account - default account of a principal
func Account(p account.Principal) account.Account {
	return account.Account{Owner: p}
}

// Config - a small collection minted by Minter
func Config() ledger.Configuration {
	return ledger.Configuration{
		Symbol:           "RPC",
		Name:             "rpc test collection",
		MintingAuthority: Account(Minter).String(),
	}
}

// Ledger - an empty ledger in a scratch directory with a fixed clock
//
// the archiver may be nil
func Ledger(t *testing.T, config ledger.Configuration, archiver ledger.Archiver) (*ledger.Ledger, func()) {
	return CertifiedLedger(t, config, archiver, nil)
}

// CertifiedLedger - as Ledger, with tip certificates signed by certifier
func CertifiedLedger(t *testing.T, config ledger.Configuration, archiver ledger.Archiver, certifier blocklog.Certifier) (*ledger.Ledger, func()) {
	d, remove := basefixtures.TempDir(t)

	s, err := storage.Open(filepath.Join(d, "rpc.leveldb"), storage.ReadWrite)
	require.Nil(t, err, "storage open error")
	blocks, err := blocklog.New(s, 0, certifier)
	require.Nil(t, err, "blocklog error")

	l, err := ledger.New(config, blocks, archiver, func() uint64 { return Now })
	require.Nil(t, err, "ledger error")

	return l, func() {
		s.Close()
		remove()
	}
}

// Mint - mint token ids to an owner, failing the test on rejection
func Mint(t *testing.T, l *ledger.Ledger, to account.Principal, ids ...uint64) {
	for _, id := range ids {
		r, err := l.Mint(Minter, ledger.MintArg{To: Account(to), TokenID: id})
		require.Nil(t, err, "mint error")
		require.True(t, r.IsOk(), "mint: %d  rejected: %v", id, r.Err)
	}
}
