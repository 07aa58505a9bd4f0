// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package listeners - TLS entry points for JSON-RPC clients
package listeners

import (
	"net"
	"strings"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/fault"
)

// Listener - a configured server that can be started
type Listener interface {
	Serve() error
}

// parseListenAddress - normalise listen addresses and pick the network for each
//
// "*:PORT" becomes "[::]:PORT" on the assumption that this listens on tcp4 and tcp6
func parseListenAddress(addrs []string, log *logger.L) ([]string, []string, error) {
	networks := make([]string, len(addrs))
	normalised := make([]string, len(addrs))
	for i, listen := range addrs {
		if "" == listen {
			log.Errorf("empty listen address")
			return nil, nil, fault.ErrInvalidIPAddress
		}

		host := ""
		switch listen[0] {
		case '*':
			parts := strings.SplitN(listen, ":", 2)
			if 2 != len(parts) {
				log.Errorf("listen: %q  missing port", listen)
				return nil, nil, fault.ErrInvalidIPAddress
			}
			normalised[i] = "[::]" + ":" + parts[1]
			host = "::"
			networks[i] = "tcp"
		case '[':
			normalised[i] = listen
			host = strings.Split(listen[1:], "]:")[0]
			networks[i] = "tcp6"
		default:
			normalised[i] = listen
			host = strings.Split(listen, ":")[0]
			networks[i] = "tcp4"
		}

		if ip := net.ParseIP(host); nil == ip {
			err := fault.ErrInvalidIPAddress
			log.Errorf("listen: %q  error: %s", listen, err)
			return nil, nil, err
		}
	}

	return normalised, networks, nil
}
