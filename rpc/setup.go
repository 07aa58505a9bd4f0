// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - start the client facing JSON-RPC listeners
package rpc

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/counter"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/metrics"
	"github.com/bitmark-inc/nftledger/rpc/certificate"
	"github.com/bitmark-inc/nftledger/rpc/handler"
	"github.com/bitmark-inc/nftledger/rpc/listeners"
	"github.com/bitmark-inc/nftledger/rpc/server"
)

const (
	rpcName   = "client_rpc"
	httpsName = "https_rpc"
)

// globals
type rpcData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	// connections on the raw listener
	count counter.Counter

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// Initialise - start the JSON-RPC listeners
//
// services.Counter is replaced by the connection counter of the raw listener
func Initialise(rpcConfiguration *listeners.RPCConfiguration, httpsConfiguration *listeners.HTTPSConfiguration, services server.Services) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	log := logger.New("rpc")
	globalData.log = log
	log.Info("starting…")

	services.Counter = &globalData.count
	s, info := server.Create(log, services)

	tlsConfig, fingerprint, err := certificate.Load(log, rpcName, rpcConfiguration.Certificate, rpcConfiguration.PrivateKey)
	if nil != err {
		return err
	}

	rpcListener, err := listeners.NewRPC(
		rpcConfiguration,
		log,
		&globalData.count,
		s,
		tlsConfig,
		fingerprint,
	)
	if nil != err {
		return err
	}
	err = rpcListener.Serve()
	if nil != err {
		return err
	}

	if 0 != len(httpsConfiguration.Listen) {
		tlsConfig, fingerprint, err := certificate.Load(log, httpsName, httpsConfiguration.Certificate, httpsConfiguration.PrivateKey)
		if nil != err {
			return err
		}
		log.Infof("%s: SHA3-256 fingerprint: %x", httpsName, fingerprint)

		hdlr := handler.New(log, s, info, metrics.Handler(), httpsConfiguration.MaximumConnections)
		httpsListener, err := listeners.NewHTTPS(httpsConfiguration, log, tlsConfig, hdlr)
		if nil != err {
			return err
		}
		err = httpsListener.Serve()
		if nil != err {
			return err
		}
	} else {
		log.Infof("disable: %s", httpsName)
	}

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - stop all background tasks
func Finalise() error {

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}
