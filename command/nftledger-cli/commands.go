// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/command/nftledger-cli/rpccalls"
	"github.com/bitmark-inc/nftledger/ledger"
)

func connect(c *cli.Context) (*metadata, *rpccalls.Client, error) {
	m := c.App.Metadata["config"].(*metadata)

	client, err := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if nil != err {
		return nil, nil, err
	}
	return m, client, nil
}

func runInfo(c *cli.Context) error {
	m, client, err := connect(c)
	if nil != err {
		return err
	}
	defer client.Close()

	info, err := client.Info()
	if nil != err {
		return err
	}
	return printJson(m.w, info)
}

func runTip(c *cli.Context) error {
	m, client, err := connect(c)
	if nil != err {
		return err
	}
	defer client.Close()

	tip, err := client.Tip()
	if nil != err {
		return err
	}
	certificate, err := client.TipCertificate()
	if nil != err {
		return err
	}

	return printJson(m.w, struct {
		Tip         *blocklog.Tip         `json:"tip"`
		Certificate *blocklog.Certificate `json:"certificate"`
	}{
		Tip:         tip,
		Certificate: certificate,
	})
}

func runBlocks(c *cli.Context) error {
	length := c.Uint64("length")
	if 0 == length {
		return fmt.Errorf("length must be positive")
	}

	m, client, err := connect(c)
	if nil != err {
		return err
	}
	defer client.Close()

	result, err := client.GetBlocks([]ledger.BlockRange{{Start: c.Uint64("start"), Length: length}})
	if nil != err {
		return err
	}

	// archived blocks precede the live ones
	blocks := []blocklog.IndexedBlock{}
	for _, a := range result.Archived {
		archived, err := client.GetArchivedBlocks(a)
		if nil != err {
			return err
		}
		blocks = append(blocks, archived...)
	}
	blocks = append(blocks, result.Blocks...)

	return printJson(m.w, struct {
		LogLength uint64                  `json:"log_length,string"`
		Blocks    []blocklog.IndexedBlock `json:"blocks"`
	}{
		LogLength: result.LogLength,
		Blocks:    blocks,
	})
}

func runArchives(c *cli.Context) error {
	m, client, err := connect(c)
	if nil != err {
		return err
	}
	defer client.Close()

	var from *string
	if s := c.String("from"); "" != s {
		from = &s
	}
	archives, err := client.GetArchives(from)
	if nil != err {
		return err
	}
	return printJson(m.w, archives)
}

func runOwner(c *cli.Context) error {
	if 0 == c.NArg() {
		return fmt.Errorf("missing token ids")
	}
	ids := make([]uint64, 0, c.NArg())
	for _, a := range c.Args() {
		id, err := strconv.ParseUint(a, 10, 64)
		if nil != err {
			return fmt.Errorf("token id: %q  error: %s", a, err)
		}
		ids = append(ids, id)
	}

	m, client, err := connect(c)
	if nil != err {
		return err
	}
	defer client.Close()

	owners, err := client.OwnerOf(ids)
	if nil != err {
		return err
	}

	result := make(map[string]*account.Account, len(ids))
	for i, id := range ids {
		result[strconv.FormatUint(id, 10)] = owners[i]
	}
	return printJson(m.w, result)
}

func runTokens(c *cli.Context) error {
	var owner *account.Account
	if s := c.String("account"); "" != s {
		a, err := account.FromString(s)
		if nil != err {
			return err
		}
		owner = &a
	}

	var prev *uint64
	if s := c.String("prev"); "" != s {
		n, err := strconv.ParseUint(s, 10, 64)
		if nil != err {
			return fmt.Errorf("prev: %q  error: %s", s, err)
		}
		prev = &n
	}

	var take *uint64
	if n := c.Uint64("take"); 0 != n {
		take = &n
	}

	m, client, err := connect(c)
	if nil != err {
		return err
	}
	defer client.Close()

	tokens, err := client.Tokens(owner, prev, take)
	if nil != err {
		return err
	}
	return printJson(m.w, tokens)
}

func runVerify(c *cli.Context) error {
	s := c.String("index")
	if "" == s {
		return fmt.Errorf("missing block index")
	}
	index, err := strconv.ParseUint(s, 10, 64)
	if nil != err {
		return fmt.Errorf("index: %q  error: %s", s, err)
	}

	m, client, err := connect(c)
	if nil != err {
		return err
	}
	defer client.Close()

	v, err := client.VerifyBlock(index, c.String("key"))
	if nil != err {
		return err
	}
	return printJson(m.w, v)
}
