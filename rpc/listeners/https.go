// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/rpc/handler"
)

const (
	httpsLogName     = "https_rpc"
	readWriteTimeout = 10 * time.Second
	keepAlivePeriod  = 3 * time.Minute
)

// HTTPSConfiguration - configuration file data for HTTPS setup
//
// Allow maps a restricted path (details, metrics) to the CIDR ranges admitted
type HTTPSConfiguration struct {
	MaximumConnections uint64              `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string            `gluamapper:"listen" json:"listen"`
	Certificate        string              `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string              `gluamapper:"private_key" json:"private_key"`
	Allow              map[string][]string `gluamapper:"allow" json:"allow"`
}

type httpsListener struct {
	log       *logger.L
	addresses []string
	tlsConfig *tls.Config
	mux       *http.ServeMux
}

// NewHTTPS - JSON-RPC over HTTP POST plus the status pages
//
// returns nil without error when no listen address is configured
func NewHTTPS(
	configuration *HTTPSConfiguration,
	log *logger.L,
	tlsConfig *tls.Config,
	hdlr handler.Handler,
) (Listener, error) {
	if 0 == len(configuration.Listen) {
		log.Infof("disable: %s", httpsLogName)
		return nil, nil
	}

	if configuration.MaximumConnections < minConnectionCount {
		log.Errorf("invalid %s maximum connection limit: %d", httpsLogName, configuration.MaximumConnections)
		return nil, fault.ErrMissingParameters
	}

	addresses, _, err := parseListenAddress(configuration.Listen, log)
	if nil != err {
		return nil, err
	}

	// access control matched against http.Request.RemoteAddr
	allow := make(map[string][]*net.IPNet)
	for path, ranges := range configuration.Allow {
		set := make([]*net.IPNet, len(ranges))
		for i, ip := range ranges {
			_, cidr, err := net.ParseCIDR(strings.Trim(ip, " "))
			if nil != err {
				log.Errorf("%s allow: %q  error: %s", path, ip, err)
				return nil, err
			}
			set[i] = cidr
		}
		allow[path] = set
	}
	hdlr.SetAllow(allow)

	mux := http.NewServeMux()
	mux.HandleFunc("/nftledger/rpc", hdlr.RPC)
	mux.HandleFunc("/nftledger/details", hdlr.Details)
	mux.HandleFunc("/nftledger/metrics", hdlr.Metrics)
	mux.HandleFunc("/", hdlr.Root)

	return &httpsListener{
		log:       log,
		addresses: addresses,
		tlsConfig: tlsConfig,
		mux:       mux,
	}, nil
}

// Serve - start a server on every address
func (h *httpsListener) Serve() error {
	for _, listen := range h.addresses {
		h.log.Infof("starting server: %s on: %q", httpsLogName, listen)

		ln, err := net.Listen("tcp", listen)
		if nil != err {
			h.log.Errorf("%s listen error: %s", httpsLogName, err)
			return err
		}
		go h.serve(ln)
	}
	return nil
}

func (h *httpsListener) serve(ln net.Listener) {
	s := &http.Server{
		Handler:        h.mux,
		ReadTimeout:    readWriteTimeout,
		WriteTimeout:   readWriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	cfg := h.tlsConfig.Clone()
	cfg.NextProtos = []string{"http/1.1"}

	tlsListener := tls.NewListener(tcpKeepAliveListener{ln.(*net.TCPListener)}, cfg)
	err := s.Serve(tlsListener)
	h.log.Errorf("%s terminated: %s", httpsLogName, err)
}

type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if nil != err {
		return nil, err
	}
	_ = tc.SetKeepAlive(true)
	_ = tc.SetKeepAlivePeriod(keepAlivePeriod)
	return tc, nil
}
