// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"errors"

	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/ledger"
	"github.com/bitmark-inc/nftledger/merkle"
)

// verification failures
var (
	ErrBlockMissing        = errors.New("block not returned")
	ErrBlockNotProven      = errors.New("block does not verify against the root")
	ErrRootChanged         = errors.New("proof root differs from tip root")
	ErrCertificateInvalid  = errors.New("tip certificate does not verify")
	ErrCertificateMismatch = errors.New("certified hash tree differs from tip")
)

// Verification - outcome of VerifyBlock
type Verification struct {
	Index     uint64        `json:"index,string"`
	Hash      merkle.Digest `json:"hash"`
	Root      merkle.Digest `json:"root"`
	Archived  string        `json:"archived,omitempty"`
	Certified bool          `json:"certified"`
}

// VerifyBlock - fetch a block wherever it is held and prove it against
// the tip, then check the tip certificate if publicKey is set
//
// publicKey is the hex key from Node.Info when empty
func (client *Client) VerifyBlock(index uint64, publicKey string) (*Verification, error) {

	result, err := client.GetBlocks([]ledger.BlockRange{{Start: index, Length: 1}})
	if nil != err {
		return nil, err
	}

	v := &Verification{
		Index: index,
	}

	var block []byte
	for _, b := range result.Blocks {
		if index == b.ID {
			block = b.Block
		}
	}
	for _, a := range result.Archived {
		blocks, err := client.GetArchivedBlocks(a)
		if nil != err {
			return nil, err
		}
		for _, b := range blocks {
			if index == b.ID {
				block = b.Block
				v.Archived = a.Shard
			}
		}
	}
	if nil == block {
		return nil, ErrBlockMissing
	}

	tip, err := client.Tip()
	if nil != err {
		return nil, err
	}
	proof, err := client.BlockProof(index)
	if nil != err {
		return nil, err
	}
	if proof.Root != tip.Root {
		return nil, ErrRootChanged
	}

	v.Hash = merkle.NewDigest(block)
	v.Root = proof.Root
	if nil == proof.Proof || !proof.Proof.Verify(v.Hash, proof.Root) {
		return nil, ErrBlockNotProven
	}

	if "" == publicKey {
		info, err := client.Info()
		if nil != err {
			return nil, err
		}
		publicKey = info.TipPublicKey
	}
	if "" == publicKey {
		return v, nil
	}

	key, err := hex.DecodeString(publicKey)
	if nil != err {
		return nil, err
	}
	certificate, err := client.TipCertificate()
	if nil != err {
		return nil, err
	}
	if !blocklog.VerifyCertificate(ed25519.PublicKey(key), certificate) {
		return nil, ErrCertificateInvalid
	}
	if !bytes.Equal(certificate.HashTree, tip.HashTree) {
		return nil, ErrCertificateMismatch
	}
	v.Certified = true

	return v, nil
}
