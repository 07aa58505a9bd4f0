// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bitmark-inc/exitwithstatus"

	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/rpc/certificate"
	"github.com/bitmark-inc/nftledger/util"
)

const (
	rpcCertificateKeyFilename = "rpc.crt"
	rpcPrivateKeyFilename     = "rpc.key"
	tipKeyFilename            = "tip.key"
)

// setup command handler
//
// commands that run to create key and certificate files these
// commands cannot access any internal database or states or the
// configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-rpc-cert", "rpc":
		certificateFilename := getFilenameWithDirectory(arguments, rpcCertificateKeyFilename)
		privateKeyFilename := getFilenameWithDirectory(arguments, rpcPrivateKeyFilename)

		addresses := []string{}
		if len(arguments) >= 2 {
			for _, a := range arguments[1:] {
				if "" != a {
					addresses = append(addresses, a)
				}
			}
		}

		err := certificate.MakeSelfSigned("rpc", certificateFilename, privateKeyFilename, 0 != len(addresses), addresses)
		if nil != err {
			fmt.Printf("generate RPC key: %q and certificate: %q error: %s\n", privateKeyFilename, certificateFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated RPC key: %q and certificate: %q\n", privateKeyFilename, certificateFilename)

	case "gen-tip-key", "tip":
		keyFilename := getFilenameWithDirectory(arguments, tipKeyFilename)
		publicKey, err := makeTipKey(keyFilename)
		if nil != err {
			fmt.Printf("generate tip key: %q error: %s\n", keyFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated tip key: %q\n", keyFilename)
		fmt.Printf("public key: %x\n", publicKey)

	case "start", "run":
		return false // continue processing

	case "block", "b":
		return false // defer processing until database is loaded

	case "config-test", "cfg":
		return false

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [--set=KEY=VALUE...] [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")

		fmt.Printf("  gen-rpc-cert [DIR]         (rpc)    - create private key in:  %q\n", "DIR/"+rpcPrivateKeyFilename)
		fmt.Printf("                                        and the certificate in: %q\n", "DIR/"+rpcCertificateKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  gen-rpc-cert [DIR] [IPs...]         - create private key in:  %q\n", "DIR/"+rpcPrivateKeyFilename)
		fmt.Printf("                                        and the certificate in: %q\n", "DIR/"+rpcCertificateKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  gen-tip-key [DIR]          (tip)    - create the tip certificate signing key in: %q\n", "DIR/"+tipKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  block S [E [FILE]]         (b)      - dump live block(s) as a JSON structures to stdout/file\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if err != nil {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		_ = json.Indent(&out, b, "", "  ")
		_, _ = out.WriteTo(os.Stdout)
		_, _ = os.Stdout.WriteString("\n")

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
// the block log is open so these commands can read it
func processDataCommand(arguments []string, blocks *blocklog.Log) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {

	case "start", "run":
		return false // continue processing

	case "block", "b":
		if len(arguments) < 1 {
			exitwithstatus.Message("missing block number argument")
		}

		n, err := strconv.ParseUint(arguments[0], 10, 64)
		if nil != err {
			exitwithstatus.Message("error in block number: %s", err)
		}

		output := "-"

		// optional end range
		nEnd := n
		if len(arguments) > 1 {
			nEnd, err = strconv.ParseUint(arguments[1], 10, 64)
			if nil != err {
				exitwithstatus.Message("error in ending block number: %s", err)
			}
			if nEnd < n {
				exitwithstatus.Message("error: invalid ending block number: %d must not be less than: %d", nEnd, n)
			}
		}

		if len(arguments) > 2 {
			output = strings.TrimSpace(arguments[2])
		}
		fd := os.Stdout

		if output != "" && output != "-" {
			fd, err = os.Create(output)
			if nil != err {
				exitwithstatus.Message("error: creating: %q error: %s", output, err)
			}
		}

		fmt.Fprintf(fd, "[\n")
		for ; n <= nEnd; n += 1 {
			block, err := dumpBlock(blocks, n)
			if nil != err {
				exitwithstatus.Message("dump block error: %s", err)
			}
			s, err := json.MarshalIndent(block, "  ", "  ")
			if nil != err {
				exitwithstatus.Message("dump block JSON error: %s", err)
			}

			fmt.Fprintf(fd, "  %s,\n", s)
		}
		fmt.Fprintf(fd, "{}]\n")
		fd.Close()

	default:
		exitwithstatus.Message("error: no such command: %q", command)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

func getFilenameWithDirectory(arguments []string, name string) string {
	dir := "."
	if len(arguments) >= 1 {
		dir = arguments[0]
	}

	return filepath.Join(dir, name)
}

// hex encoded ed25519 seed, read back by blocklog.LoadED25519Certifier
func makeTipKey(fileName string) (ed25519.PublicKey, error) {
	if util.EnsureFileExists(fileName) {
		return nil, fault.ErrKeyFileExists
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); nil != err {
		return nil, err
	}

	data := hex.EncodeToString(seed) + "\n"
	if err := os.WriteFile(fileName, []byte(data), 0600); nil != err {
		return nil, fmt.Errorf("error writing tip key file error: %s", err)
	}

	certifier, err := blocklog.NewED25519Certifier(seed)
	if nil != err {
		_ = os.Remove(fileName)
		return nil, err
	}
	return certifier.PublicKey(), nil
}
