// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/fixtures"
)

const testConfiguration = `
local M = {}
M.data_directory = "."
M.pidfile = "test.pid"
M.ledger = {
    symbol = arg.symbol,
    max_query_batch_size = 5,
}
M.archive = {
    max_active_records = 100,
}
M.client_rpc = {
    listen = { "127.0.0.1:2130" },
}
return M
`

func TestGetConfiguration(t *testing.T) {
	dir, remove := fixtures.TempDir(t)
	defer remove()

	fileName := filepath.Join(dir, "nftledgerd.conf")
	err := os.WriteFile(fileName, []byte(testConfiguration), 0600)
	require.Nil(t, err, "write configuration")

	options, err := getConfiguration(fileName, map[string]string{"symbol": "TST"})
	require.Nil(t, err, "configuration error")

	assert.Equal(t, "TST", options.Ledger.Symbol, "wrong symbol")
	assert.Equal(t, uint64(5), options.Ledger.MaxQueryBatchSize, "wrong batch size")
	assert.Equal(t, uint64(100), options.Archive.MaxActiveRecords, "wrong archive threshold")

	assert.Equal(t, filepath.Join(dir, "test.pid"), options.PidFile, "pid file not absolute")
	assert.Equal(t, filepath.Join(dir, defaultTipKeyFile), options.TipKey, "tip key not absolute")
	assert.Equal(t, filepath.Join(dir, defaultLevelDBDirectory, defaultLedgerDatabase), options.Database.Name, "wrong database")
	assert.Equal(t, filepath.Join(dir, defaultCertificateFile), options.ClientRPC.Certificate, "wrong certificate")
	assert.Equal(t, uint64(defaultRPCClients), options.ClientRPC.MaximumConnections, "default connections lost")
	assert.Equal(t, []string{"127.0.0.1:2130"}, options.ClientRPC.Listen, "wrong listen")

	for _, d := range []string{options.Database.Directory, options.Archive.Directory, options.Logging.Directory} {
		info, err := os.Stat(d)
		if assert.Nil(t, err, "missing directory: %s", d) {
			assert.True(t, info.IsDir(), "not a directory: %s", d)
		}
	}
}

func TestGetConfigurationWithoutDataDirectory(t *testing.T) {
	dir, remove := fixtures.TempDir(t)
	defer remove()

	fileName := filepath.Join(dir, "nftledgerd.conf")
	err := os.WriteFile(fileName, []byte("return {}"), 0600)
	require.Nil(t, err, "write configuration")

	_, err = getConfiguration(fileName, nil)
	assert.NotNil(t, err, "blank data directory accepted")
}

func TestMakeTipKey(t *testing.T) {
	dir, remove := fixtures.TempDir(t)
	defer remove()

	fileName := filepath.Join(dir, tipKeyFilename)
	publicKey, err := makeTipKey(fileName)
	require.Nil(t, err, "make tip key")

	certifier, err := blocklog.LoadED25519Certifier(fileName)
	require.Nil(t, err, "load tip key")
	assert.Equal(t, publicKey, certifier.PublicKey(), "wrong public key")

	_, err = makeTipKey(fileName)
	assert.NotNil(t, err, "existing key overwritten")
}
