// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"encoding/hex"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/counter"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/metrics"
	"github.com/bitmark-inc/nftledger/rpc/ratelimit"
)

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

// Node - type for RPC calls
type Node struct {
	Log       *logger.L
	Limiter   *rate.Limiter
	Start     time.Time
	Version   string
	Ledger    *ledger.Ledger
	PublicKey []byte
	counter   *counter.Counter
}

// New - create the service
//
// publicKey is the tip certifier key, nil when the tip is not certified
func New(log *logger.L, l *ledger.Ledger, start time.Time, version string, counter *counter.Counter, publicKey []byte) *Node {
	return &Node{
		Log:       log,
		Limiter:   rate.NewLimiter(rateLimitNode, rateBurstNode),
		Start:     start,
		Version:   version,
		Ledger:    l,
		PublicKey: publicKey,
		counter:   counter,
	}
}

// ---

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	Symbol       string  `json:"symbol"`
	Log          LogInfo `json:"log"`
	TotalSupply  uint64  `json:"totalSupply,string"`
	NextTokenID  uint64  `json:"nextTokenId,string"`
	Approvals    uint64  `json:"approvals,string"`
	Archives     int     `json:"archives"`
	RPCs         uint64  `json:"rpcs"`
	Version      string  `json:"version"`
	Uptime       string  `json:"uptime"`
	TipPublicKey string  `json:"tipPublicKey,omitempty"`
}

// LogInfo - the extent of the block log
type LogInfo struct {
	Length     uint64 `json:"length,string"`
	FirstIndex uint64 `json:"firstIndex,string"`
	LiveSize   uint64 `json:"liveSize,string"`
}

// Info - return some information about this node
// only enough for clients to determine node state
func (node *Node) Info(_ *InfoArguments, reply *InfoReply) error {
	metrics.RPCCall("Node.Info")

	if err := ratelimit.Limit(node.Limiter); nil != err {
		return err
	}

	blocks := node.Ledger.Blocks()
	first, length := blocks.Bounds()

	reply.Symbol = node.Ledger.Configuration().Symbol
	reply.Log = LogInfo{
		Length:     length,
		FirstIndex: first,
		LiveSize:   length - first,
	}
	reply.TotalSupply = node.Ledger.TotalSupply()
	reply.NextTokenID = node.Ledger.NextTokenID()
	reply.Approvals = node.Ledger.ApprovalCount()
	reply.Archives = len(node.Ledger.GetArchives(nil)) - 1
	reply.RPCs = node.counter.Uint64()
	reply.Version = node.Version
	reply.Uptime = time.Since(node.Start).String()
	if nil != node.PublicKey {
		reply.TipPublicKey = hex.EncodeToString(node.PublicKey)
	}
	return nil
}
