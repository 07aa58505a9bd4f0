// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

type metadata struct {
	connect string
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "nftledger-cli"
	app.Usage = "query and verify an nftledgerd"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "127.0.0.1:2130",
			Usage:  " nftledgerd client_rpc `HOST:PORT`",
			EnvVar: "NFTLEDGER_CONNECT",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "info",
			Usage:  "display node status",
			Action: runInfo,
		},
		{
			Name:   "tip",
			Usage:  "display the log tip and its certificate",
			Action: runTip,
		},
		{
			Name:      "blocks",
			Usage:     "list blocks, following archive routing",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "start, s",
					Value: 0,
					Usage: " first block `INDEX`",
				},
				cli.Uint64Flag{
					Name:  "length, l",
					Value: 10,
					Usage: " number of blocks `COUNT`",
				},
			},
			Action: runBlocks,
		},
		{
			Name:  "archives",
			Usage: "list the segments of the log",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "from, f",
					Value: "",
					Usage: " list segments after shard `ID`",
				},
			},
			Action: runArchives,
		},
		{
			Name:      "owner",
			Usage:     "display the owners of tokens",
			ArgsUsage: "TOKEN-ID...",
			Action:    runOwner,
		},
		{
			Name:  "tokens",
			Usage: "list token ids of the collection or of one account",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: " owner `ACCOUNT` text, whole collection if blank",
				},
				cli.StringFlag{
					Name:  "prev, p",
					Value: "",
					Usage: " list ids after `TOKEN-ID`",
				},
				cli.Uint64Flag{
					Name:  "take, t",
					Value: 0,
					Usage: " page size `COUNT`, node default if zero",
				},
			},
			Action: runTokens,
		},
		{
			Name:      "verify",
			Usage:     "prove a block against the certified tip",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "index, i",
					Value: "",
					Usage: "*block `INDEX`",
				},
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: " tip public `KEY` in hex, default from node info",
				},
			},
			Action: runVerify,
		},
		{
			Name:  "version",
			Usage: "display nftledger-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		c.App.Metadata = map[string]interface{}{
			"config": &metadata{
				connect: c.GlobalString("connect"),
				verbose: c.GlobalBool("verbose"),
				e:       c.App.ErrWriter,
				w:       c.App.Writer,
			},
		}
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
