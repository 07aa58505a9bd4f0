// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - NFT ownership and approvals recorded in a block log
//
// Every accepted mutation becomes one block. A call runs inside a single
// store transaction: the items of a batch see each other's staged writes
// and nothing is visible to queries until the whole call commits.
package ledger

import (
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/archive"
	"github.com/bitmark-inc/nftledger/blocklog"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/storage"
)

const logName = "ledger"

// metadata keys
var (
	totalSupplyKey      = []byte("ledger.total-supply")
	nextTokenIDKey      = []byte("ledger.next-token-id")
	mintingAuthorityKey = []byte("ledger.minting-authority")
	approvalCountKey    = []byte("ledger.approval-count")
	approvalSequenceKey = []byte("ledger.approval-sequence")
)

// Clock - ledger time in nanoseconds since the Unix epoch
type Clock func() uint64

// SystemClock - wall clock time
func SystemClock() uint64 {
	return uint64(time.Now().UnixNano())
}

// Archiver - the archive side of the block log
type Archiver interface {
	Notify()
	Route(start uint64, length uint64) []archive.Piece
	ListArchives(from *string) []archive.Segment
}

// Ledger - token state and the block log recording its changes
type Ledger struct {
	log         *logger.L
	config      Configuration
	controllers []account.Principal
	store       *storage.Store
	blocks      *blocklog.Log
	archiver    Archiver
	clock       Clock
	replay      *replayIndex
}

// New - attach a ledger to a block log
//
// archiver may be nil when the log is never archived
func New(config Configuration, blocks *blocklog.Log, archiver Archiver, clock Clock) (*Ledger, error) {
	config.Normalise()

	controllers, err := config.controllers()
	if nil != err {
		return nil, err
	}
	if nil == clock {
		clock = SystemClock
	}
	if nil == archiver {
		archiver = liveOnly{blocks: blocks}
	}

	l := &Ledger{
		log:         logger.New(logName),
		config:      config,
		controllers: controllers,
		store:       blocks.Store(),
		blocks:      blocks,
		archiver:    archiver,
		clock:       clock,
		replay:      newReplayIndex(config.TxWindow, config.PermittedDrift),
	}

	if "" != config.MintingAuthority && nil == l.store.Metadata.Get(mintingAuthorityKey) {
		authority, err := account.FromString(config.MintingAuthority)
		if nil != err {
			l.log.Errorf("minting authority: %q  error: %s", config.MintingAuthority, err)
			return nil, err
		}
		trx, err := l.store.Begin()
		if nil != err {
			return nil, err
		}
		trx.Put(l.store.Metadata, mintingAuthorityKey, authority.Key())
		if err := trx.Commit(); nil != err {
			return nil, err
		}
		l.log.Infof("minting authority: %s", authority)
	}

	if err := l.rebuildReplayIndex(); nil != err {
		l.log.Criticalf("replay index rebuild error: %s", err)
		return nil, err
	}

	l.log.Infof("collection: %q  symbol: %q  supply: %d", config.Name, config.Symbol, l.TotalSupply())
	return l, nil
}

// Configuration - the normalised configuration
func (l *Ledger) Configuration() Configuration {
	return l.config
}

// Blocks - the underlying block log
func (l *Ledger) Blocks() *blocklog.Log {
	return l.blocks
}

// TotalSupply - minted minus burned
func (l *Ledger) TotalSupply() uint64 {
	n, _ := l.store.Metadata.GetN(totalSupplyKey)
	return n
}

// NextTokenID - lowest id a mint may use
func (l *Ledger) NextTokenID() uint64 {
	n, _ := l.store.Metadata.GetN(nextTokenIDKey)
	return n
}

// MintingAuthority - account allowed to mint, nil when unset
func (l *Ledger) MintingAuthority() *account.Account {
	return l.mintingAuthority(committed{})
}

func (l *Ledger) mintingAuthority(r reader) *account.Account {
	buffer := r.Get(l.store.Metadata, mintingAuthorityKey)
	if nil == buffer {
		return nil
	}
	a, err := account.FromKey(buffer)
	if nil != err {
		l.log.Errorf("stored minting authority error: %s", err)
		return nil
	}
	return &a
}

// SetMintingAuthority - replace the minting authority
//
// allowed to a configured controller, or to the current authority's
// principal when no controllers are configured
func (l *Ledger) SetMintingAuthority(caller account.Principal, authority account.Account) error {
	if caller.IsAnonymous() {
		return fault.ErrUnauthorisedOwner
	}

	trx, err := l.store.Begin()
	if nil != err {
		return err
	}

	allowed := false
	for _, c := range l.controllers {
		if c.Equal(caller) {
			allowed = true
		}
	}
	if 0 == len(l.controllers) {
		current := l.mintingAuthority(trx)
		allowed = nil == current || current.Owner.Equal(caller)
	}
	if !allowed {
		trx.Abort()
		return fault.ErrUnauthorisedOwner
	}

	trx.Put(l.store.Metadata, mintingAuthorityKey, authority.Key())
	if err := trx.Commit(); nil != err {
		return err
	}
	l.log.Infof("minting authority set to: %s by: %s", authority, caller)
	return nil
}

// routes everything to the live segment
type liveOnly struct {
	blocks *blocklog.Log
}

func (liveOnly) Notify() {}

func (a liveOnly) Route(start uint64, length uint64) []archive.Piece {
	first, logLength := a.blocks.Bounds()
	return archive.Plan(nil, first, logLength, start, length)
}

// there are no archives, so only an absent from lists anything
func (a liveOnly) ListArchives(from *string) []archive.Segment {
	if nil != from {
		return []archive.Segment{}
	}
	first, length := a.blocks.Bounds()
	return []archive.Segment{{ID: archive.LiveSegmentID, Start: first, End: length}}
}
