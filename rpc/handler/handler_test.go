// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/rpc"
	"strings"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/nftledger/rpc/fixtures"
	"github.com/bitmark-inc/nftledger/rpc/handler"
	"github.com/bitmark-inc/nftledger/rpc/node"
)

const (
	notAllowed      = "method not allowed"
	tooManyRequests = "Too Many Requests"
)

type eResp struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

type jResp struct {
	ID     int         `json:"id"`
	Result int         `json:"result"`
	Error  interface{} `json:"error"`
}

type jReq struct {
	ID     int      `json:"id"`
	Method string   `json:"method"`
	Params []AddArg `json:"params"`
}

type Add struct{}
type AddArg struct {
	A int `json:"A"`
	B int `json:"B"`
}

func (a Add) Add(arg *AddArg, reply *int) error {
	*reply = arg.A + arg.B
	return nil
}

type informer struct{}

func (informer) Info(_ *node.InfoArguments, reply *node.InfoReply) error {
	reply.Symbol = "TEST"
	reply.Version = "1.0"
	return nil
}

var metricsBody = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("metrics"))
})

func newHandler(maximumConnections uint64) handler.Handler {
	s := rpc.NewServer()
	_ = s.Register(Add{})
	return handler.New(logger.New(fixtures.LogCategory), s, informer{}, metricsBody, maximumConnections)
}

func decodeError(t *testing.T, resp *http.Response) eResp {
	var j eResp
	err := json.NewDecoder(resp.Body).Decode(&j)
	assert.Nil(t, err, "undecodable error body")
	return j
}

func TestRoot(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newHandler(5)

	req := httptest.NewRequest("GET", "http://not.found", nil)
	w := httptest.NewRecorder()
	h.Root(w, req)

	j := decodeError(t, w.Result())
	assert.Equal(t, "not found", j.Error, "wrong response")
	assert.Equal(t, http.StatusNotFound, j.Code, "wrong http code")
}

func TestRPC(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newHandler(5)

	add := AddArg{A: 1, B: 2}
	data, _ := json.Marshal(jReq{ID: 5, Method: "Add.Add", Params: []AddArg{add}})

	req := httptest.NewRequest("POST", "http://not.exist", bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.RPC(w, req)

	resp := w.Result()
	var j jResp
	_ = json.NewDecoder(resp.Body).Decode(&j)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "wrong status code")
	assert.Equal(t, 5, j.ID, "wrong id")
	assert.Equal(t, add.A+add.B, j.Result, "wrong result")
	assert.Nil(t, j.Error, "wrong error")
}

func TestRPCUnknownMethod(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newHandler(5)

	data, _ := json.Marshal(jReq{ID: 1, Method: "Add.Subtract", Params: []AddArg{{}}})

	req := httptest.NewRequest("POST", "http://not.exist", bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.RPC(w, req)

	resp := w.Result()
	var j jResp
	_ = json.NewDecoder(resp.Body).Decode(&j)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "wrong status code")
	assert.NotNil(t, j.Error, "missing JSON-RPC error")
}

func TestRPCWhenWrongHTTPMethod(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newHandler(5)

	req := httptest.NewRequest("GET", "http://not.exist", nil)
	w := httptest.NewRecorder()
	h.RPC(w, req)

	j := decodeError(t, w.Result())
	assert.Equal(t, notAllowed, j.Error, "wrong method")
}

func TestRPCWhenTooManyConnections(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newHandler(0)

	req := httptest.NewRequest("POST", "http://not.exist", nil)
	w := httptest.NewRecorder()
	h.RPC(w, req)

	j := decodeError(t, w.Result())
	assert.Equal(t, tooManyRequests, j.Error, "wrong error")
	assert.Equal(t, http.StatusTooManyRequests, j.Code, "wrong code")
}

func TestRPCWhenUnreadable(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newHandler(5)

	req := httptest.NewRequest("POST", "http://not.exist", strings.NewReader("{garbage"))
	w := httptest.NewRecorder()
	h.RPC(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "wrong status code")
}

func TestDetails(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newHandler(5)

	req := httptest.NewRequest("GET", "http://localhost/details", nil)
	w := httptest.NewRecorder()
	h.Details(w, req)
	assert.Equal(t, http.StatusForbidden, w.Result().StatusCode, "denied address admitted")

	_, local, _ := net.ParseCIDR("192.0.2.0/24")
	h.SetAllow(map[string][]*net.IPNet{"details": {local}})

	w = httptest.NewRecorder()
	h.Details(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "wrong status code")
	var reply node.InfoReply
	_ = json.NewDecoder(resp.Body).Decode(&reply)
	assert.Equal(t, "TEST", reply.Symbol, "wrong details")

	req = httptest.NewRequest("POST", "http://localhost/details", nil)
	w = httptest.NewRecorder()
	h.Details(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Result().StatusCode, "wrong method accepted")
}

func TestMetrics(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := newHandler(5)

	_, local, _ := net.ParseCIDR("192.0.2.0/24")
	h.SetAllow(map[string][]*net.IPNet{"details": {local}})

	req := httptest.NewRequest("GET", "http://localhost/metrics", nil)
	w := httptest.NewRecorder()
	h.Metrics(w, req)
	assert.Equal(t, http.StatusForbidden, w.Result().StatusCode, "metrics follow the details allow list")

	h.SetAllow(map[string][]*net.IPNet{"metrics": {local}})
	w = httptest.NewRecorder()
	h.Metrics(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "wrong status code")
	assert.Equal(t, "metrics", string(body), "wrong body")
}
