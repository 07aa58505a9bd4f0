// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/counter"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/rpc/icrc3"
	"github.com/bitmark-inc/nftledger/rpc/icrc37"
	"github.com/bitmark-inc/nftledger/rpc/icrc7"
	"github.com/bitmark-inc/nftledger/rpc/node"
	"github.com/bitmark-inc/nftledger/rpc/shard"
)

// Services - what the RPC listeners need from the ledger process
type Services struct {
	Version   string
	Counter   *counter.Counter
	Ledger    *ledger.Ledger
	Shards    shard.Shards // nil disables the Shard service
	MaxAppend uint64
	PublicKey []byte
}

// Create - a server with every service registered, and the node
// service separately for the HTTPS details page
func Create(log *logger.L, services Services) (*rpc.Server, *node.Node) {

	start := time.Now().UTC()

	server := rpc.NewServer()

	n := node.New(log, services.Ledger, start, services.Version, services.Counter, services.PublicKey)

	_ = server.Register(icrc7.New(log, services.Ledger))
	_ = server.Register(icrc37.New(log, services.Ledger))
	_ = server.Register(icrc3.New(log, services.Ledger))
	_ = server.Register(n)
	if nil != services.Shards {
		_ = server.Register(shard.New(log, services.Shards, services.MaxAppend))
	}

	return server, n
}
