// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/nftledger/configuration"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/fixtures"
)

type listen struct {
	MaximumConnections uint64              `gluamapper:"maximum_connections"`
	Listen             []string            `gluamapper:"listen"`
	Allow              map[string][]string `gluamapper:"allow"`
}

type testConfiguration struct {
	DataDirectory string            `gluamapper:"data_directory"`
	Symbol        string            `gluamapper:"symbol"`
	SupplyCap     uint64            `gluamapper:"supply_cap"`
	Atomic        bool              `gluamapper:"atomic_batch_transfers"`
	RPC           listen            `gluamapper:"client_rpc"`
	Levels        map[string]string `gluamapper:"levels"`
}

const script = `
local M = {}

M.data_directory = arg[0]:match("(.*/)")
M.symbol = arg.symbol or "NONE"
M.supply_cap = 10000
M.atomic_batch_transfers = true

M.client_rpc = {
    maximum_connections = 50,
    listen = { "127.0.0.1:2130", "[::1]:2130" },
    allow = { details = { "127.0.0.0/8" } },
}

M.levels = {
    main = "info",
    DEFAULT = "critical",
}

return M
`

func write(t *testing.T, text string) (string, func()) {
	dir, remove := fixtures.TempDir(t)
	fileName := filepath.Join(dir, "test.conf")
	err := os.WriteFile(fileName, []byte(text), 0600)
	require.Nil(t, err, "write configuration")
	return fileName, remove
}

func TestParseConfigurationFile(t *testing.T) {
	fileName, remove := write(t, script)
	defer remove()

	options := &testConfiguration{
		Symbol: "DEFAULT",
	}
	err := configuration.ParseConfigurationFile(fileName, options, map[string]string{"symbol": "NFT"})
	require.Nil(t, err, "parse error")

	assert.Equal(t, filepath.Dir(fileName)+"/", options.DataDirectory, "wrong data directory")
	assert.Equal(t, "NFT", options.Symbol, "variable not applied")
	assert.Equal(t, uint64(10000), options.SupplyCap, "wrong supply cap")
	assert.True(t, options.Atomic, "wrong atomic flag")
	assert.Equal(t, uint64(50), options.RPC.MaximumConnections, "wrong connections")
	assert.Equal(t, []string{"127.0.0.1:2130", "[::1]:2130"}, options.RPC.Listen, "wrong listen")
	assert.Equal(t, []string{"127.0.0.0/8"}, options.RPC.Allow["details"], "wrong allow")
	assert.Equal(t, "critical", options.Levels["DEFAULT"], "wrong levels")
}

func TestParseConfigurationFileDefaultVariable(t *testing.T) {
	fileName, remove := write(t, script)
	defer remove()

	options := &testConfiguration{}
	err := configuration.ParseConfigurationFile(fileName, options, nil)
	require.Nil(t, err, "parse error")
	assert.Equal(t, "NONE", options.Symbol, "wrong fallback")
}

func TestParseConfigurationFileErrors(t *testing.T) {
	fileName, remove := write(t, "return {")
	defer remove()

	options := testConfiguration{}
	err := configuration.ParseConfigurationFile(fileName, options, nil)
	assert.Equal(t, fault.ErrInvalidStructPointer, err, "struct value accepted")

	err = configuration.ParseConfigurationFile(fileName, &options, nil)
	assert.NotNil(t, err, "syntax error accepted")

	noTable, remove2 := write(t, "return 5")
	defer remove2()
	err = configuration.ParseConfigurationFile(noTable, &options, nil)
	assert.Equal(t, fault.ErrMissingParameters, err, "non-table accepted")

	err = configuration.ParseConfigurationFile(filepath.Join(filepath.Dir(fileName), "missing.conf"), &options, nil)
	assert.NotNil(t, err, "missing file accepted")
}
