// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/bitmark-inc/nftledger/account"
	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/storage"
	"github.com/bitmark-inc/nftledger/util"
	"github.com/bitmark-inc/nftledger/value"
)

// token metadata keys
const (
	MetadataName        = "Name"
	MetadataSymbol      = "Symbol"
	MetadataDescription = "Description"
	MetadataLogo        = "Logo"
)

// stored token record
type token struct {
	owner       account.Account
	name        string
	description *string
	logo        *string
	extra       value.Map
}

func (t *token) pack() []byte {
	entries := []value.Entry{
		{Key: "owner", Value: t.owner.Value()},
		{Key: "name", Value: value.Text(t.name)},
		{Key: "extra", Value: t.extra},
	}
	if nil != t.description {
		entries = append(entries, value.Entry{Key: "description", Value: value.Text(*t.description)})
	}
	if nil != t.logo {
		entries = append(entries, value.Entry{Key: "logo", Value: value.Text(*t.logo)})
	}
	return value.Encode(value.MustMap(entries...))
}

func unpackToken(buffer []byte) (*token, error) {
	v, err := value.Decode(buffer)
	if nil != err {
		return nil, err
	}
	m, ok := v.(value.Map)
	if !ok {
		return nil, fault.ErrCannotDecodeValue
	}

	t := &token{}
	owner, ok := m.Get("owner")
	if !ok {
		return nil, fault.ErrCannotDecodeValue
	}
	if t.owner, err = account.FromValue(owner); nil != err {
		return nil, err
	}
	if name, ok := m.Get("name"); ok {
		if s, ok := name.(value.Text); ok {
			t.name = string(s)
		}
	}
	if extra, ok := m.Get("extra"); ok {
		if x, ok := extra.(value.Map); ok {
			t.extra = x
		}
	}
	if d, ok := m.Get("description"); ok {
		if s, ok := d.(value.Text); ok {
			str := string(s)
			t.description = &str
		}
	}
	if l, ok := m.Get("logo"); ok {
		if s, ok := l.(value.Text); ok {
			str := string(s)
			t.logo = &str
		}
	}
	return t, nil
}

// metadata - the extra map with the standard keys added
func (t *token) metadata(symbol string) value.Map {
	m := t.extra.
		With(MetadataName, value.Text(t.name)).
		With(MetadataSymbol, value.Text(symbol))
	if nil != t.description {
		m = m.With(MetadataDescription, value.Text(*t.description))
	}
	if nil != t.logo {
		m = m.With(MetadataLogo, value.Text(*t.logo))
	}
	return m
}

// reader - committed pools or a transaction in progress
type reader interface {
	Get(handle *storage.PoolHandle, key []byte) []byte
}

// committed state through the same interface as a transaction
type committed struct{}

func (committed) Get(handle *storage.PoolHandle, key []byte) []byte {
	return handle.Get(key)
}

func (l *Ledger) getToken(r reader, id uint64) (*token, error) {
	buffer := r.Get(l.store.Tokens, util.Uint64ToBytes(id))
	if nil == buffer {
		return nil, nil
	}
	return unpackToken(buffer)
}

func (l *Ledger) putToken(trx storage.Transaction, id uint64, t *token) {
	trx.Put(l.store.Tokens, util.Uint64ToBytes(id), t.pack())
}

// the set of token ids held by one account
func (l *Ledger) ownedTokens(r reader, a account.Account) (*roaring64.Bitmap, error) {
	bitmap := roaring64.New()
	buffer := r.Get(l.store.OwnerTokens, a.Key())
	if nil == buffer {
		return bitmap, nil
	}
	if err := bitmap.UnmarshalBinary(buffer); nil != err {
		return nil, err
	}
	return bitmap, nil
}

func (l *Ledger) putOwnedTokens(trx storage.Transaction, a account.Account, bitmap *roaring64.Bitmap) error {
	if bitmap.IsEmpty() {
		trx.Delete(l.store.OwnerTokens, a.Key())
		return nil
	}
	bitmap.RunOptimize()
	buffer, err := bitmap.ToBytes()
	if nil != err {
		return err
	}
	trx.Put(l.store.OwnerTokens, a.Key(), buffer)
	return nil
}

// move a token id between owner indexes; nil from is a mint, nil to a burn
func (l *Ledger) moveToken(trx storage.Transaction, id uint64, from *account.Account, to *account.Account) error {
	if nil != from {
		bitmap, err := l.ownedTokens(trx, *from)
		if nil != err {
			return err
		}
		bitmap.Remove(id)
		if err := l.putOwnedTokens(trx, *from, bitmap); nil != err {
			return err
		}
	}
	if nil != to {
		bitmap, err := l.ownedTokens(trx, *to)
		if nil != err {
			return err
		}
		bitmap.Add(id)
		if err := l.putOwnedTokens(trx, *to, bitmap); nil != err {
			return err
		}
	}
	return nil
}
