// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"crypto/tls"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/counter"
	"github.com/bitmark-inc/nftledger/fault"
)

const (
	logName            = "client_rpc"
	minConnectionCount = 1
)

// RPCConfiguration - configuration file data for RPC setup
type RPCConfiguration struct {
	MaximumConnections uint64   `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string `gluamapper:"listen" json:"listen"`
	Certificate        string   `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string   `gluamapper:"private_key" json:"private_key"`
}

type rpcListener struct {
	log            *logger.L
	count          *counter.Counter
	server         *rpc.Server
	maxConnections uint64
	tlsConfig      *tls.Config
	networks       []string
	addresses      []string
}

// NewRPC - raw JSON-RPC over TLS, one codec per connection
func NewRPC(
	configuration *RPCConfiguration,
	log *logger.L,
	count *counter.Counter,
	server *rpc.Server,
	tlsConfig *tls.Config,
	certificateFingerprint [32]byte,
) (Listener, error) {
	if configuration.MaximumConnections < minConnectionCount {
		log.Errorf("invalid %s maximum connection limit: %d", logName, configuration.MaximumConnections)
		return nil, fault.ErrMissingParameters
	}
	if 0 == len(configuration.Listen) {
		log.Errorf("missing %s listen", logName)
		return nil, fault.ErrMissingParameters
	}

	addresses, networks, err := parseListenAddress(configuration.Listen, log)
	if nil != err {
		return nil, err
	}

	log.Infof("%s: SHA3-256 fingerprint: %x", logName, certificateFingerprint)

	return &rpcListener{
		log:            log,
		count:          count,
		server:         server,
		maxConnections: configuration.MaximumConnections,
		tlsConfig:      tlsConfig,
		networks:       networks,
		addresses:      addresses,
	}, nil
}

// Serve - start accepting on every address
func (r *rpcListener) Serve() error {
	for i, listen := range r.addresses {
		r.log.Infof("starting RPC server: %s", listen)
		listener, err := tls.Listen(r.networks[i], listen, r.tlsConfig)
		if nil != err {
			r.log.Errorf("rpc server listen error: %s", err)
			return err
		}

		go r.accept(listener)
	}
	return nil
}

func (r *rpcListener) accept(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if nil != err {
			r.log.Errorf("rpc.server terminated: accept error: %s", err)
			break
		}
		if !r.count.Acquire(r.maxConnections) {
			r.log.Warnf("connection limit reached, dropping: %s", conn.RemoteAddr())
			_ = conn.Close()
			continue
		}
		go func() {
			r.server.ServeCodec(jsonrpc.NewServerCodec(conn))
			_ = conn.Close()
			r.count.Decrement()
		}()
	}
	_ = listener.Close()
	r.log.Error("RPC accept terminated")
}
