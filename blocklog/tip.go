// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklog

import (
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/util"
	"github.com/bitmark-inc/nftledger/value"
)

// hash tree labels
const (
	labelLastIndex = "last_block_index"
	labelLastHash  = "last_block_hash"
	labelRoot      = "merkle_root"
)

// Tip - summary of the latest state of the log
//
// LastBlockHash is the hash of the last block, Root is the accumulator
// root over every block hash; HashTree is the canonical encoding of the
// labelled tree that is certified
type Tip struct {
	Length        uint64        `json:"log_length,string"`
	LastIndex     *uint64       `json:"last_block_index,string,omitempty"`
	LastBlockHash merkle.Digest `json:"last_block_hash"`
	Root          merkle.Digest `json:"merkle_root"`
	HashTree      []byte        `json:"hash_tree"`
	Peaks         []merkle.Peak `json:"peaks"`
	Proof         *merkle.Proof `json:"proof,omitempty"`
}

// Certificate - external signature over the hash tree digest
type Certificate struct {
	Certificate []byte `json:"certificate"`
	HashTree    []byte `json:"hash_tree"`
}

// hashTree - labelled tree over the tip values
//
// an empty log certifies only the empty root
func hashTree(length uint64, lastHash merkle.Digest, root merkle.Digest) value.Map {
	entries := []value.Entry{
		{Key: labelRoot, Value: value.Blob(root[:])},
	}
	if length > 0 {
		entries = append(entries,
			value.Entry{Key: labelLastIndex, Value: value.Blob(util.Uint64ToBytes(length - 1))},
			value.Entry{Key: labelLastHash, Value: value.Blob(lastHash[:])},
		)
	}
	return value.MustMap(entries...)
}

// TreeDigest - the digest a certifier signs for this hash tree
func TreeDigest(hashTree []byte) merkle.Digest {
	return merkle.NewDigest(hashTree)
}

// Tip - current tip with the peaks and the proof of the last block
func (l *Log) Tip() (*Tip, error) {
	l.RLock()
	length := l.length
	lastHash := l.lastHash
	root := l.root
	l.RUnlock()

	nodes := poolNodes{l.store.MerkleNodes}
	peaks, err := merkle.Peaks(nodes, length)
	if nil != err {
		return nil, err
	}

	tip := &Tip{
		Length:        length,
		LastBlockHash: lastHash,
		Root:          root,
		HashTree:      value.Encode(hashTree(length, lastHash, root)),
		Peaks:         peaks,
	}
	if length > 0 {
		last := length - 1
		tip.LastIndex = &last
		tip.Proof, err = merkle.Prove(nodes, length, last)
		if nil != err {
			return nil, err
		}
	}
	return tip, nil
}

// TipCertificate - certified hash tree, nil when the host cannot certify
func (l *Log) TipCertificate() *Certificate {
	l.RLock()
	tree := value.Encode(hashTree(l.length, l.lastHash, l.root))
	l.RUnlock()

	signature, ok := l.certifier.Certify(TreeDigest(tree))
	if !ok {
		return nil
	}
	return &Certificate{
		Certificate: signature,
		HashTree:    tree,
	}
}
