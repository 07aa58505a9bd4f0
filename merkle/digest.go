// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/nftledger/fault"
)

// DigestLength - number of bytes in the digest
const DigestLength = 32

// Digest - type for a SHA3-256 digest
//
// represented as hex for print and for JSON encoding
// to convert to bytes just use d[:]
type Digest [DigestLength]byte

// NewDigest - create a digest from a byte slice
func NewDigest(record []byte) Digest {
	return sha3.Sum256(record)
}

// String - convert a binary digest to hex string for use by the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - convert a binary digest to hex string for use by the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<SHA3-256:" + hex.EncodeToString(digest[:]) + ">"
}

// MarshalText - convert digest to hex text
func (digest Digest) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(digest))
	buffer := make([]byte, size)
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a digest
func (digest *Digest) UnmarshalText(s []byte) error {
	if DigestLength != hex.DecodedLen(len(s)) {
		return fault.ErrInvalidCount
	}
	_, err := hex.Decode(digest[:], s)
	return err
}

// DigestFromBytes - convert and validate a binary byte slice to a digest
func DigestFromBytes(digest *Digest, buffer []byte) error {
	if DigestLength != len(buffer) {
		return fault.ErrInvalidCount
	}
	copy(digest[:], buffer)
	return nil
}
