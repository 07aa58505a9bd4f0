// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklog

import (
	"encoding/hex"
	"io/ioutil"
	"strings"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/merkle"
)

// Certifier - host primitive that signs the tip hash tree
//
// ok is false when the host cannot certify at the moment
type Certifier interface {
	Certify(digest merkle.Digest) (signature []byte, ok bool)
}

// NoCertifier - host without a certification primitive
type NoCertifier struct{}

// Certify - never certifies
func (NoCertifier) Certify(merkle.Digest) ([]byte, bool) {
	return nil, false
}

// ED25519Certifier - signs with a locally held key
type ED25519Certifier struct {
	privateKey ed25519.PrivateKey
}

// NewED25519Certifier - certifier from a 32 byte seed
func NewED25519Certifier(seed []byte) (*ED25519Certifier, error) {
	if ed25519.SeedSize != len(seed) {
		return nil, fault.ErrInvalidCount
	}
	return &ED25519Certifier{
		privateKey: ed25519.NewKeyFromSeed(seed),
	}, nil
}

// LoadED25519Certifier - read a hex seed file
func LoadED25519Certifier(fileName string) (*ED25519Certifier, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if nil != err {
		return nil, err
	}
	return NewED25519Certifier(seed)
}

// PublicKey - key that verifies certificates
func (c *ED25519Certifier) PublicKey() ed25519.PublicKey {
	return c.privateKey.Public().(ed25519.PublicKey)
}

// Certify - sign the digest
func (c *ED25519Certifier) Certify(digest merkle.Digest) ([]byte, bool) {
	return ed25519.Sign(c.privateKey, digest[:]), true
}

// VerifyCertificate - check a certificate against the public key
func VerifyCertificate(publicKey ed25519.PublicKey, certificate *Certificate) bool {
	if nil == certificate || ed25519.PublicKeySize != len(publicKey) {
		return false
	}
	digest := TreeDigest(certificate.HashTree)
	return ed25519.Verify(publicKey, digest[:], certificate.Certificate)
}
