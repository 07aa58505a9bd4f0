// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/nftledger/archive"
	"github.com/bitmark-inc/nftledger/configuration"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/rpc/listeners"
	"github.com/bitmark-inc/nftledger/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultKeyFile         = "rpc.key"
	defaultCertificateFile = "rpc.crt"
	defaultTipKeyFile      = "tip.key"

	defaultLevelDBDirectory = "data"
	defaultLedgerDatabase   = "nftledger.leveldb"
	defaultArchiveDirectory = "archive"

	defaultLogDirectory = "log"
	defaultLogFile      = "nftledgerd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients = 10
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - location of the live ledger database
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// MetricsType - plain HTTP prometheus endpoint, disabled when listen is blank
type MetricsType struct {
	Listen string `gluamapper:"listen" json:"listen"`
}

// Configuration - the whole of the configuration file
type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string       `gluamapper:"pidfile" json:"pidfile"`
	Database      DatabaseType `gluamapper:"database" json:"database"`
	TipKey        string       `gluamapper:"tip_key" json:"tip_key"`

	Ledger  ledger.Configuration  `gluamapper:"ledger" json:"ledger"`
	Archive archive.Configuration `gluamapper:"archive" json:"archive"`

	ClientRPC listeners.RPCConfiguration   `gluamapper:"client_rpc" json:"client_rpc"`
	HttpsRPC  listeners.HTTPSConfiguration `gluamapper:"https_rpc" json:"https_rpc"`
	Metrics   MetricsType                  `gluamapper:"metrics" json:"metrics"`
	Logging   logger.Configuration         `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		TipKey:        defaultTipKeyFile,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultLedgerDatabase,
		},

		Archive: archive.Configuration{
			Directory: defaultArchiveDirectory,
		},

		ClientRPC: listeners.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		// default: share certificate with normal RPC
		HttpsRPC: listeners.HTTPSConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Archive.Directory,
		&options.ClientRPC.Certificate,
		&options.ClientRPC.PrivateKey,
		&options.HttpsRPC.Certificate,
		&options.HttpsRPC.PrivateKey,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
		&options.TipKey,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = util.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
	}

	// create directories if they do not already exist
	for _, d := range []string{
		options.Database.Directory,
		options.Archive.Directory,
		options.Logging.Directory,
	} {
		if err := os.MkdirAll(d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}
