// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package handler - JSON-RPC and status requests over HTTPS
package handler

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/rpc"
	"net/rpc/jsonrpc"
	"strings"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/counter"
	"github.com/bitmark-inc/nftledger/rpc/node"
)

// access control paths
const (
	detailsPath = "details"
	metricsPath = "metrics"
)

// Handler - the HTTPS entry points
type Handler interface {
	RPC(http.ResponseWriter, *http.Request)
	Details(http.ResponseWriter, *http.Request)
	Metrics(http.ResponseWriter, *http.Request)
	Root(http.ResponseWriter, *http.Request)
	SetAllow(map[string][]*net.IPNet)
}

// Informer - source of the details reply
type Informer interface {
	Info(*node.InfoArguments, *node.InfoReply) error
}

type handler struct {
	log                *logger.L
	server             *rpc.Server
	info               Informer
	metrics            http.Handler
	allow              map[string][]*net.IPNet
	count              counter.Counter
	maximumConnections uint64
}

// New - handler for one JSON-RPC server
//
// details and metrics are denied until SetAllow admits some addresses
func New(log *logger.L, server *rpc.Server, info Informer, metrics http.Handler, maximumConnections uint64) Handler {
	return &handler{
		log:                log,
		server:             server,
		info:               info,
		metrics:            metrics,
		allow:              map[string][]*net.IPNet{},
		maximumConnections: maximumConnections,
	}
}

// SetAllow - address ranges admitted per restricted path
func (h *handler) SetAllow(allow map[string][]*net.IPNet) {
	h.allow = allow
}

// Root - matches anything not matched and returns error
func (h *handler) Root(w http.ResponseWriter, _ *http.Request) {
	sendNotFound(w)
}

// RPC - one JSON-RPC request in the body
func (h *handler) RPC(w http.ResponseWriter, r *http.Request) {
	if http.MethodPost != r.Method {
		sendMethodNotAllowed(w)
		return
	}

	if !h.count.Acquire(h.maximumConnections) {
		sendTooManyRequests(w)
		return
	}
	defer h.count.Decrement()

	conn := &internalConnection{in: r.Body, out: w}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	err := h.server.ServeRequest(jsonrpc.NewServerCodec(conn))
	if nil != err {
		h.log.Warnf("rpc from: %s  error: %s", r.RemoteAddr, err)

		// an unreadable request gets no JSON-RPC response
		if !conn.written {
			sendBadRequest(w)
		}
	}
}

// Details - the node information, restricted
func (h *handler) Details(w http.ResponseWriter, r *http.Request) {
	if http.MethodGet != r.Method {
		sendMethodNotAllowed(w)
		return
	}
	if !h.allowed(detailsPath, r) {
		h.log.Warnf("deny access: %q", r.RemoteAddr)
		sendForbidden(w)
		return
	}

	var reply node.InfoReply
	if err := h.info.Info(&node.InfoArguments{}, &reply); nil != err {
		h.log.Errorf("details error: %s", err)
		sendInternalServerError(w)
		return
	}
	sendReply(w, reply)
}

// Metrics - prometheus exposition, restricted
func (h *handler) Metrics(w http.ResponseWriter, r *http.Request) {
	if http.MethodGet != r.Method {
		sendMethodNotAllowed(w)
		return
	}
	if !h.allowed(metricsPath, r) {
		h.log.Warnf("deny access: %q", r.RemoteAddr)
		sendForbidden(w)
		return
	}
	h.metrics.ServeHTTP(w, r)
}

// RemoteAddr is host:port, with the host bracketed for IPv6
func (h *handler) allowed(path string, r *http.Request) bool {
	last := strings.LastIndex(r.RemoteAddr, ":")
	if last < 0 {
		return false
	}
	ip := net.ParseIP(strings.Trim(r.RemoteAddr[:last], "[]"))
	if nil == ip {
		return false
	}
	for _, cidr := range h.allow[path] {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// adapts a request/response pair to the codec
type internalConnection struct {
	in      io.Reader
	out     io.Writer
	written bool
}

func (c *internalConnection) Read(p []byte) (int, error) {
	return c.in.Read(p)
}

func (c *internalConnection) Write(d []byte) (int, error) {
	c.written = true
	return c.out.Write(d)
}

func (c *internalConnection) Close() error {
	return nil
}

func sendReply(w http.ResponseWriter, data interface{}) {
	text, err := json.Marshal(data)
	if nil != err {
		sendInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(text)
}

func sendNotFound(w http.ResponseWriter) {
	sendError(w, "not found", http.StatusNotFound)
}

func sendMethodNotAllowed(w http.ResponseWriter) {
	sendError(w, "method not allowed", http.StatusMethodNotAllowed)
}

func sendForbidden(w http.ResponseWriter) {
	sendError(w, "forbidden", http.StatusForbidden)
}

func sendBadRequest(w http.ResponseWriter) {
	sendError(w, "bad request", http.StatusBadRequest)
}

func sendTooManyRequests(w http.ResponseWriter) {
	sendError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}

func sendInternalServerError(w http.ResponseWriter) {
	sendError(w, "internal server error", http.StatusInternalServerError)
}

type eType struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// output an error with a JSON body
func sendError(w http.ResponseWriter, message string, code int) {
	text, err := json.Marshal(eType{
		Code:  code,
		Error: message,
	})
	if nil != err {
		http.Error(w, `{"code":500,"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write(text)
}
