// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test setup
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/storage"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// SetupTestLogger - log to a scratch directory at critical level only
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove the scratch directory
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}

// TempDir - scratch directory removed by the returned function
func TempDir(t *testing.T) (string, func()) {
	d, err := os.MkdirTemp("", "nftledger")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	return d, func() {
		os.RemoveAll(d)
	}
}

// OpenStore - fresh read/write store in a scratch directory
func OpenStore(t *testing.T, name string) (*storage.Store, func()) {
	d, remove := TempDir(t)
	s, err := storage.Open(filepath.Join(d, name+".leveldb"), storage.ReadWrite)
	if nil != err {
		remove()
		t.Fatalf("storage open error: %s", err)
	}
	return s, func() {
		s.Close()
		remove()
	}
}
