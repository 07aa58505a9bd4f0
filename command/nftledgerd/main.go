// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/archive"
	"github.com/bitmark-inc/nftledger/background"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/metrics"
	"github.com/bitmark-inc/nftledger/rpc"
	"github.com/bitmark-inc/nftledger/rpc/server"
	"github.com/bitmark-inc/nftledger/storage"
	"github.com/bitmark-inc/nftledger/util"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "set", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 's'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// key=value settings visible to the configuration as arg.key
	variables := make(map[string]string)
	for _, v := range options["set"] {
		s := strings.SplitN(v, "=", 2)
		if 2 != len(s) {
			exitwithstatus.Message("%s: invalid setting: %q", program, v)
		}
		variables[strings.TrimSpace(s[0])] = strings.TrimSpace(s[1])
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile, variables)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// general info
	log.Infof("database: %q", theConfiguration.Database.Name)
	log.Infof("archive directory: %q", theConfiguration.Archive.Directory)
	log.Debugf("%s = %#v", "ClientRPC", theConfiguration.ClientRPC)
	log.Debugf("%s = %#v", "HttpsRPC", theConfiguration.HttpsRPC)

	// start the data storage
	log.Info("initialise storage")
	store, err := storage.Open(theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer store.Close()

	// tip certificates are optional
	var certifier blocklog.Certifier
	var publicKey []byte
	if "" != theConfiguration.TipKey && util.EnsureFileExists(theConfiguration.TipKey) {
		c, err := blocklog.LoadED25519Certifier(theConfiguration.TipKey)
		if nil != err {
			log.Criticalf("tip key: %q  error: %s", theConfiguration.TipKey, err)
			exitwithstatus.Message("tip key: %q  error: %s", theConfiguration.TipKey, err)
		}
		certifier = c
		publicKey = c.PublicKey()
		log.Infof("tip public key: %x", publicKey)
	} else {
		log.Warn("no tip key: tip certificates are disabled")
	}

	archiveConfiguration := theConfiguration.Archive
	archiveConfiguration.Normalise()

	log.Info("initialise block log")
	blocks, err := blocklog.New(store, archiveConfiguration.HardCapacity, certifier)
	if nil != err {
		log.Criticalf("block log initialise error: %s", err)
		exitwithstatus.Message("block log initialise error: %s", err)
	}

	// these commands are allowed to access the block log
	if len(arguments) > 0 && processDataCommand(arguments, blocks) {
		return
	}

	// new shards are handed to the first archive controller
	shardOwner := account.Principal(nil)
	if len(archiveConfiguration.ArchiveControllers) > 0 {
		shardOwner, err = account.PrincipalFromString(archiveConfiguration.ArchiveControllers[0])
		if nil != err {
			log.Criticalf("archive controller: %q  error: %s", archiveConfiguration.ArchiveControllers[0], err)
			exitwithstatus.Message("archive controller: %q  error: %s", archiveConfiguration.ArchiveControllers[0], err)
		}
	}

	log.Info("initialise archive")
	provisioner := &archive.DirectoryProvisioner{
		Directory: archiveConfiguration.Directory,
		Capacity:  archiveConfiguration.MaxRecordsInArchive,
		MaxPages:  archiveConfiguration.MaxArchivePages,
	}
	archiver, err := archive.NewManager(archiveConfiguration, blocks, provisioner, shardOwner)
	if nil != err {
		log.Criticalf("archive initialise error: %s", err)
		exitwithstatus.Message("archive initialise error: %s", err)
	}
	defer archiver.Close()

	log.Info("initialise ledger")
	theLedger, err := ledger.New(theConfiguration.Ledger, blocks, archiver, ledger.SystemClock)
	if nil != err {
		log.Criticalf("ledger initialise error: %s", err)
		exitwithstatus.Message("ledger initialise error: %s", err)
	}

	// migration runs in the background
	processes := background.Start(background.Processes{archiver}, nil)
	defer processes.Stop()

	// start up the rpc background processes
	err = rpc.Initialise(&theConfiguration.ClientRPC, &theConfiguration.HttpsRPC, server.Services{
		Version:   version,
		Ledger:    theLedger,
		Shards:    archiver,
		MaxAppend: archiveConfiguration.MaxRecordsToArchive,
		PublicKey: publicKey,
	})
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}
	defer rpc.Finalise()

	// plain prometheus endpoint, separate from the HTTPS server
	if "" != theConfiguration.Metrics.Listen {
		go func() {
			log.Infof("metrics listener on: %s", theConfiguration.Metrics.Listen)
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			err := http.ListenAndServe(theConfiguration.Metrics.Listen, mux)
			exitwithstatus.Message("metrics error: %s", err)
		}()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}
