// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklog_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/fixtures"
	"github.com/bitmark-inc/nftledger/merkle"
	"github.com/bitmark-inc/nftledger/storage"
	"github.com/bitmark-inc/nftledger/transactionrecord"
	"github.com/bitmark-inc/nftledger/value"
)

func builder(n uint64) blocklog.Builder {
	return func(index uint64, previous *merkle.Digest) (value.Value, error) {
		tx := transactionrecord.Transaction{
			Op:        transactionrecord.BurnOp,
			Index:     index,
			Timestamp: 1000 + index,
			TokenID:   &n,
		}
		return tx.Block(previous)
	}
}

func appendCommitted(t *testing.T, l *blocklog.Log, n uint64) uint64 {
	trx, err := l.Store().Begin()
	assert.Nil(t, err, "begin error")
	index, err := l.Append(trx, builder(n))
	assert.Nil(t, err, "append error")
	assert.Nil(t, trx.Commit(), "commit error")
	return index
}

func setup(t *testing.T, capacity uint64) (*blocklog.Log, func()) {
	fixtures.SetupTestLogger()
	s, closeStore := fixtures.OpenStore(t, "blocks")

	l, err := blocklog.New(s, capacity, nil)
	if nil != err {
		t.Fatalf("blocklog new error: %s", err)
	}
	return l, func() {
		closeStore()
		fixtures.TeardownTestLogger()
	}
}

func TestAppendIsIncludedInTip(t *testing.T) {
	l, teardown := setup(t, 0)
	defer teardown()

	for i := uint64(0); i < 9; i += 1 {
		before := l.Length()
		index := appendCommitted(t, l, i)
		assert.Equal(t, before, index)
		assert.Equal(t, before+1, l.Length(), "length did not grow by one")

		tip, err := l.Tip()
		assert.Nil(t, err, "tip error")
		assert.Equal(t, index, *tip.LastIndex)

		// every block so far is included under the current root
		for j := uint64(0); j <= index; j += 1 {
			encoded, err := l.GetEncoded(j)
			assert.Nil(t, err, "get error")
			proof, root, err := l.Prove(j)
			assert.Nil(t, err, "prove error")
			assert.Equal(t, tip.Root, root)
			assert.True(t, proof.Verify(merkle.NewDigest(encoded), tip.Root), "block %d not in tree of %d", j, index+1)
		}
		last, _ := l.GetEncoded(index)
		assert.Equal(t, merkle.NewDigest(last), tip.LastBlockHash)
		assert.True(t, tip.Proof.Verify(tip.LastBlockHash, tip.Root))
	}
}

func TestPreviousHashChain(t *testing.T) {
	l, teardown := setup(t, 0)
	defer teardown()

	appendCommitted(t, l, 1)
	appendCommitted(t, l, 2)

	first, _ := l.GetEncoded(0)
	second, err := l.Get(1)
	assert.Nil(t, err, "get error")

	phash, ok := transactionrecord.PreviousHash(second)
	assert.True(t, ok)
	assert.Equal(t, merkle.NewDigest(first), phash)
}

func TestAbortLeavesLogUnchanged(t *testing.T) {
	l, teardown := setup(t, 0)
	defer teardown()

	appendCommitted(t, l, 1)
	tipBefore, _ := l.Tip()

	trx, _ := l.Store().Begin()
	_, err := l.Append(trx, builder(2))
	assert.Nil(t, err, "append error")
	trx.Abort()

	tipAfter, _ := l.Tip()
	assert.Equal(t, uint64(1), l.Length())
	assert.Equal(t, tipBefore.Root, tipAfter.Root)
	_, err = l.Get(1)
	assert.Equal(t, fault.ErrBlockNotFound, err)
}

func TestStagedAppendsChain(t *testing.T) {
	l, teardown := setup(t, 0)
	defer teardown()

	trx, _ := l.Store().Begin()
	a, _ := l.Append(trx, builder(1))
	b, _ := l.Append(trx, builder(2))
	assert.Nil(t, trx.Commit(), "commit error")

	assert.Equal(t, uint64(0), a)
	assert.Equal(t, uint64(1), b)
	assert.Equal(t, uint64(2), l.Length())

	first, _ := l.GetEncoded(0)
	second, _ := l.Get(1)
	phash, _ := transactionrecord.PreviousHash(second)
	assert.Equal(t, merkle.NewDigest(first), phash)
}

func TestHardCapacityIsFatal(t *testing.T) {
	l, teardown := setup(t, 2)
	defer teardown()

	appendCommitted(t, l, 1)
	appendCommitted(t, l, 2)

	trx, _ := l.Store().Begin()
	_, err := l.Append(trx, builder(3))
	trx.Abort()
	assert.Equal(t, fault.ErrLiveSegmentFull, err)
	assert.True(t, fault.IsErrFatal(err))
	assert.Equal(t, uint64(2), l.Length())

	// trimming makes room
	trx, _ = l.Store().Begin()
	assert.Nil(t, l.Trim(trx, 1), "trim error")
	assert.Nil(t, trx.Commit(), "commit error")

	appendCommitted(t, l, 3)
	assert.Equal(t, uint64(3), l.Length())
	assert.Equal(t, uint64(1), l.FirstIndex())
	assert.Equal(t, uint64(2), l.LiveSize())
}

func TestTrim(t *testing.T) {
	l, teardown := setup(t, 0)
	defer teardown()

	for i := uint64(0); i < 5; i += 1 {
		appendCommitted(t, l, i)
	}
	_, _ = l.Get(0) // populate cache

	trx, _ := l.Store().Begin()
	assert.Nil(t, l.Trim(trx, 3), "trim error")
	assert.Nil(t, trx.Commit(), "commit error")

	_, err := l.Get(0)
	assert.Equal(t, fault.ErrBlockNotFound, err, "trimmed block still readable")
	_, err = l.Get(3)
	assert.Nil(t, err, "live block lost")

	blocks, err := l.Range(3, 10)
	assert.Nil(t, err, "range error")
	assert.Equal(t, 2, len(blocks))

	_, err = l.Range(1, 1)
	assert.NotNil(t, err, "range below first accepted")

	// proofs survive archival
	proof, root, err := l.Prove(0)
	assert.Nil(t, err, "prove error")
	assert.Equal(t, uint64(5), proof.Size)
	tip, _ := l.Tip()
	assert.Equal(t, tip.Root, root)

	trx, _ = l.Store().Begin()
	assert.NotNil(t, l.Trim(trx, 2), "trim backwards accepted")
	trx.Abort()
}

func TestReopen(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	dir, remove := fixtures.TempDir(t)
	defer remove()
	name := filepath.Join(dir, "reopen.leveldb")

	s, _ := storage.Open(name, storage.ReadWrite)
	l, _ := blocklog.New(s, 0, nil)
	for i := uint64(0); i < 3; i += 1 {
		appendCommitted(t, l, i)
	}
	tip, _ := l.Tip()
	s.Close()

	s, _ = storage.Open(name, storage.ReadWrite)
	defer s.Close()
	l, err := blocklog.New(s, 0, nil)
	assert.Nil(t, err, "reopen error")
	again, _ := l.Tip()
	assert.Equal(t, tip.Root, again.Root)
	assert.Equal(t, tip.LastBlockHash, again.LastBlockHash)
	assert.True(t, bytes.Equal(tip.HashTree, again.HashTree))
}

func TestCertificate(t *testing.T) {
	l, teardown := setup(t, 0)
	defer teardown()

	assert.Nil(t, l.TipCertificate(), "certified without a certifier")

	certifier, err := blocklog.NewED25519Certifier(bytes.Repeat([]byte{0x5a}, 32))
	assert.Nil(t, err, "certifier error")

	certified, err := blocklog.New(l.Store(), 0, certifier)
	assert.Nil(t, err, "new error")
	appendCommitted(t, certified, 1)

	certificate := certified.TipCertificate()
	assert.NotNil(t, certificate)
	assert.True(t, blocklog.VerifyCertificate(certifier.PublicKey(), certificate))

	tip, _ := certified.Tip()
	assert.Equal(t, tip.HashTree, certificate.HashTree)

	certificate.HashTree[len(certificate.HashTree)-1] ^= 0xff
	assert.False(t, blocklog.VerifyCertificate(certifier.PublicKey(), certificate))
}

func TestEmptyTip(t *testing.T) {
	l, teardown := setup(t, 0)
	defer teardown()

	tip, err := l.Tip()
	assert.Nil(t, err, "tip error")
	assert.Nil(t, tip.LastIndex)
	assert.Equal(t, merkle.EmptyRoot(), tip.Root)
	assert.Nil(t, tip.Proof)
}
