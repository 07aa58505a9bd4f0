// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package certificate - TLS key pairs for the RPC listeners
package certificate

import (
	"crypto/tls"
	"os"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/util"
)

// validity of generated certificates
const selfSignedLifetime = 10 * 365 * 24 * time.Hour

// Get - build a TLS configuration from PEM data
// and return the certificate fingerprint
func Get(log *logger.L, name string, certificate string, key string) (*tls.Config, [32]byte, error) {
	var fin [32]byte

	keyPair, err := tls.X509KeyPair([]byte(certificate), []byte(key))
	if nil != err {
		log.Errorf("%s failed to load keypair: %s", name, err)
		return nil, fin, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
		MinVersion: tls.VersionTLS12,
	}

	fin = Fingerprint(keyPair.Certificate[0])

	return tlsConfiguration, fin, nil
}

// Load - as Get but reading the PEM files
func Load(log *logger.L, name string, certificateFileName string, keyFileName string) (*tls.Config, [32]byte, error) {
	var fin [32]byte

	certificate, err := os.ReadFile(certificateFileName)
	if nil != err {
		log.Errorf("%s certificate: %q  error: %s", name, certificateFileName, err)
		return nil, fin, err
	}
	key, err := os.ReadFile(keyFileName)
	if nil != err {
		log.Errorf("%s private key: %q  error: %s", name, keyFileName, err)
		return nil, fin, err
	}
	return Get(log, name, string(certificate), string(key))
}

// MakeSelfSigned - write a new self signed certificate and key
//
// existing files are never overwritten
func MakeSelfSigned(name string, certificateFileName string, keyFileName string, override bool, extraHosts []string) error {
	if util.EnsureFileExists(certificateFileName) {
		return fault.ErrCertificateFileExists
	}
	if util.EnsureFileExists(keyFileName) {
		return fault.ErrKeyFileExists
	}

	org := "nftledger self signed cert for: " + name
	validUntil := time.Now().Add(selfSignedLifetime)
	cert, key, err := certgen.NewTLSCertPair(org, validUntil, override, extraHosts)
	if nil != err {
		return err
	}

	if err := os.WriteFile(certificateFileName, cert, 0666); nil != err {
		return err
	}
	if err := os.WriteFile(keyFileName, key, 0600); nil != err {
		os.Remove(certificateFileName)
		return err
	}
	return nil
}

// Fingerprint - SHA3-256 of a DER certificate
//
// openssl x509 -outform DER -in nftledger-rpc.crt | sha3sum -a 256
func Fingerprint(certificate []byte) [32]byte {
	return sha3.Sum256(certificate)
}
