// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls_test

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"net"
	"net/rpc/jsonrpc"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/command/nftledger-cli/rpccalls"
	"github.com/bitmark-inc/nftledger/counter"
	"github.com/bitmark-inc/nftledger/rpc/fixtures"
	"github.com/bitmark-inc/nftledger/rpc/server"
)

var seed = bytes.Repeat([]byte{0x5a}, ed25519.SeedSize)

func setup(t *testing.T, certifier blocklog.Certifier, publicKey []byte) (*rpccalls.Client, func()) {
	fixtures.SetupTestLogger()

	l, teardown := fixtures.CertifiedLedger(t, fixtures.Config(), nil, certifier)
	fixtures.Mint(t, l, fixtures.Alice, 1, 2, 3)
	fixtures.Mint(t, l, fixtures.Bob, 4)

	c := counter.Counter(0)
	s, _ := server.Create(logger.New(fixtures.LogCategory), server.Services{
		Version:   "test",
		Counter:   &c,
		Ledger:    l,
		PublicKey: publicKey,
	})

	serverConn, clientConn := net.Pipe()
	go s.ServeCodec(jsonrpc.NewServerCodec(serverConn))

	var trace bytes.Buffer
	client := rpccalls.NewClientFromConn(clientConn, true, &trace)
	return client, func() {
		client.Close()
		teardown()
		fixtures.TeardownTestLogger()
	}
}

func TestQueries(t *testing.T) {
	client, teardown := setup(t, nil, nil)
	defer teardown()

	info, err := client.Info()
	require.Nil(t, err, "info error")
	assert.Equal(t, uint64(4), info.TotalSupply, "wrong supply")
	assert.Equal(t, "", info.TipPublicKey, "unexpected key")

	owners, err := client.OwnerOf([]uint64{1, 4, 9})
	require.Nil(t, err, "owner error")
	require.Equal(t, 3, len(owners), "wrong owner count")
	assert.True(t, owners[0].Equal(fixtures.Account(fixtures.Alice)), "wrong owner of 1")
	assert.True(t, owners[1].Equal(fixtures.Account(fixtures.Bob)), "wrong owner of 4")
	assert.Nil(t, owners[2], "missing token owned")

	alice := fixtures.Account(fixtures.Alice)
	prev := uint64(1)
	tokens, err := client.Tokens(&alice, &prev, nil)
	require.Nil(t, err, "tokens error")
	assert.Equal(t, []uint64{2, 3}, tokens, "wrong tokens")

	archives, err := client.GetArchives(nil)
	require.Nil(t, err, "archives error")
	assert.Equal(t, 1, len(archives), "only the live ledger expected")
}

func TestVerifyUncertified(t *testing.T) {
	client, teardown := setup(t, nil, nil)
	defer teardown()

	v, err := client.VerifyBlock(2, "")
	require.Nil(t, err, "verify error")
	assert.Equal(t, uint64(2), v.Index, "wrong index")
	assert.False(t, v.Certified, "certified without key")
	assert.Equal(t, "", v.Archived, "live block reported archived")

	_, err = client.VerifyBlock(99, "")
	assert.Equal(t, rpccalls.ErrBlockMissing, err, "missing block verified")
}

func TestVerifyCertified(t *testing.T) {
	certifier, err := blocklog.NewED25519Certifier(seed)
	require.Nil(t, err, "certifier error")

	client, teardown := setup(t, certifier, certifier.PublicKey())
	defer teardown()

	v, err := client.VerifyBlock(3, "")
	require.Nil(t, err, "verify error")
	assert.True(t, v.Certified, "certificate not checked")

	other, _, _ := ed25519.GenerateKey(nil)
	_, err = client.VerifyBlock(3, hex.EncodeToString(other))
	assert.Equal(t, rpccalls.ErrCertificateInvalid, err, "wrong key accepted")
}
