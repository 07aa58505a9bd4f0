// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners_test

import (
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/fixtures"
	"github.com/bitmark-inc/nftledger/rpc/listeners"
)

type testHandler struct {
	allow map[string][]*net.IPNet
}

func (h *testHandler) RPC(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("RPC"))
}

func (h *testHandler) Details(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("Details"))
}

func (h *testHandler) Metrics(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("Metrics"))
}

func (h *testHandler) Root(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("Root"))
}

func (h *testHandler) SetAllow(allow map[string][]*net.IPNet) {
	h.allow = allow
}

var client = &http.Client{
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // self signed
	},
}

func setupHTTPS(t *testing.T) (int, *testHandler, listeners.Listener) {
	port := rand.Intn(30000) + 30000

	conf := listeners.HTTPSConfiguration{
		MaximumConnections: 5,
		Listen:             []string{fmt.Sprintf("127.0.0.1:%d", port)},
		Allow: map[string][]string{
			"details": {"127.0.0.1/32"},
			"metrics": {"127.0.0.1/32", " ::1/128 "},
		},
	}

	tlsConfig, _ := serverTLS(t)

	hdlr := &testHandler{}
	h, err := listeners.NewHTTPS(
		&conf,
		logger.New(fixtures.LogCategory),
		tlsConfig,
		hdlr,
	)
	if nil != err {
		t.Fatalf("NewHTTPS with error: %s", err)
	}
	return port, hdlr, h
}

func get(t *testing.T, url string) string {
	resp, err := client.Get(url)
	if nil != err {
		t.Fatalf("client get with error: %s", err)
	}
	defer resp.Body.Close()

	content, _ := io.ReadAll(resp.Body)
	return string(content)
}

func TestHttpsListenerServe(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	port, hdlr, h := setupHTTPS(t)

	assert.Equal(t, 1, len(hdlr.allow["details"]), "wrong details allow list")
	assert.Equal(t, 2, len(hdlr.allow["metrics"]), "wrong metrics allow list")

	err := h.Serve()
	assert.Nil(t, err, "wrong Serve")

	time.Sleep(10 * time.Millisecond) // make sure server is ready
	url := fmt.Sprintf("https://127.0.0.1:%d/", port)

	assert.Equal(t, "RPC", get(t, url+"nftledger/rpc"), "wrong RPC route")
	assert.Equal(t, "Details", get(t, url+"nftledger/details"), "wrong details route")
	assert.Equal(t, "Metrics", get(t, url+"nftledger/metrics"), "wrong metrics route")
	assert.Equal(t, "Root", get(t, url+"anything/else"), "wrong root route")
}

func TestHttpsListenerDisabled(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h, err := listeners.NewHTTPS(
		&listeners.HTTPSConfiguration{},
		logger.New(fixtures.LogCategory),
		&tls.Config{},
		&testHandler{},
	)
	assert.Nil(t, err, "wrong error")
	assert.Nil(t, h, "listener without addresses")
}

func TestHttpsListenerWhenMaxConnectionCountTooSmall(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	_, err := listeners.NewHTTPS(
		&listeners.HTTPSConfiguration{Listen: []string{"127.0.0.1:2131"}},
		logger.New(fixtures.LogCategory),
		&tls.Config{},
		&testHandler{},
	)
	assert.Equal(t, fault.ErrMissingParameters, err, "wrong error")
}

func TestHttpsListenerWhenBadAllow(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	_, err := listeners.NewHTTPS(
		&listeners.HTTPSConfiguration{
			MaximumConnections: 1,
			Listen:             []string{"127.0.0.1:2131"},
			Allow:              map[string][]string{"details": {"not a range"}},
		},
		logger.New(fixtures.LogCategory),
		&tls.Config{},
		&testHandler{},
	)
	assert.NotNil(t, err, "bad allow range accepted")
}
