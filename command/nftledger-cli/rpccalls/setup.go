// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpccalls - typed JSON-RPC calls to an nftledgerd
package rpccalls

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
)

// Client - to hold RPC connections streams
type Client struct {
	conn    net.Conn
	client  *rpc.Client
	verbose bool
	handle  io.Writer // if verbose is set output items here
}

// NewClient - create a RPC connection to an nftledgerd
func NewClient(connect string, verbose bool, handle io.Writer) (*Client, error) {

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
	}

	conn, err := tls.Dial("tcp", connect, tlsConfig)
	if err != nil {
		return nil, err
	}

	return NewClientFromConn(conn, verbose, handle), nil
}

// NewClientFromConn - use an already established connection
func NewClientFromConn(conn net.Conn, verbose bool, handle io.Writer) *Client {
	return &Client{
		conn:    conn,
		client:  jsonrpc.NewClient(conn),
		verbose: verbose,
		handle:  handle,
	}
}

// Close - shutdown the nftledgerd connection
func (client *Client) Close() {
	client.client.Close()
	client.conn.Close()
}

// call with request and reply traced when verbose
func (client *Client) call(method string, arguments interface{}, reply interface{}) error {
	client.printJson(method+" Request", arguments)
	if err := client.client.Call(method, arguments, reply); nil != err {
		return err
	}
	client.printJson(method+" Reply", reply)
	return nil
}

func (client *Client) printJson(title string, message interface{}) {
	if !client.verbose {
		return
	}
	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		fmt.Fprintf(client.handle, "%s: marshal error: %s\n", title, err)
		return
	}
	fmt.Fprintf(client.handle, "--- %s ---\n%s\n", title, b)
}
