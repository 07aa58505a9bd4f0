// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/nftledger/fault"
	"github.com/bitmark-inc/nftledger/value"
)

// miscellaneous constants
const (
	checksumLength   = 4
	SubaccountLength = 32
	MaxPrincipalSize = 29
)

// anonymous caller identity
var anonymous = []byte{0x04}

// Principal - opaque caller identity
type Principal []byte

// Subaccount - optional discriminator below a principal
type Subaccount [SubaccountLength]byte

// Account - principal plus optional subaccount
//
// an all zero subaccount is the same account as no subaccount,
// constructors normalise it to nil
type Account struct {
	Owner      Principal
	Subaccount *Subaccount
}

// PrincipalFromBytes - validate and copy raw principal bytes
func PrincipalFromBytes(b []byte) (Principal, error) {
	if 0 == len(b) {
		return nil, fault.ErrEmptyPrincipal
	}
	if len(b) > MaxPrincipalSize {
		return nil, fault.ErrInvalidAccount
	}
	p := make(Principal, len(b))
	copy(p, b)
	return p, nil
}

// IsAnonymous - true for an empty or anonymous principal
func (p Principal) IsAnonymous() bool {
	return 0 == len(p) || bytes.Equal(p, anonymous)
}

// Equal - byte equality
func (p Principal) Equal(other Principal) bool {
	return bytes.Equal(p, other)
}

// String - base58 of the principal followed by a short checksum
func (p Principal) String() string {
	checksum := sha3.Sum256(p)
	buffer := make([]byte, 0, len(p)+checksumLength)
	buffer = append(buffer, p...)
	buffer = append(buffer, checksum[:checksumLength]...)
	return base58.Encode(buffer)
}

// MarshalText - text form for JSON
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText - parse the text form
func (p *Principal) UnmarshalText(s []byte) error {
	principal, err := PrincipalFromString(string(s))
	if nil != err {
		return err
	}
	*p = principal
	return nil
}

// PrincipalFromString - decode and verify the checksum
func PrincipalFromString(s string) (Principal, error) {
	buffer, err := base58.Decode(s)
	if nil != err {
		return nil, fault.ErrInvalidAccount
	}
	if len(buffer) <= checksumLength {
		return nil, fault.ErrInvalidAccount
	}
	n := len(buffer) - checksumLength
	checksum := sha3.Sum256(buffer[:n])
	if !bytes.Equal(checksum[:checksumLength], buffer[n:]) {
		return nil, fault.ErrInvalidAccount
	}
	return PrincipalFromBytes(buffer[:n])
}

// New - build an account, normalising a zero subaccount
func New(owner Principal, subaccount []byte) (Account, error) {
	if 0 == len(owner) {
		return Account{}, fault.ErrEmptyPrincipal
	}
	a := Account{
		Owner: owner,
	}
	if 0 == len(subaccount) {
		return a, nil
	}
	if SubaccountLength != len(subaccount) {
		return Account{}, fault.ErrInvalidSubaccountLength
	}
	var s Subaccount
	copy(s[:], subaccount)
	a.Subaccount = normalise(&s)
	return a, nil
}

// WithSubaccount - account of a principal, used for callers naming their own subaccount
func WithSubaccount(owner Principal, subaccount *Subaccount) Account {
	return Account{
		Owner:      owner,
		Subaccount: normalise(subaccount),
	}
}

func normalise(s *Subaccount) *Subaccount {
	if nil == s || (Subaccount{}) == *s {
		return nil
	}
	c := *s
	return &c
}

// Equal - both fields match, treating a zero subaccount as absent
func (a Account) Equal(other Account) bool {
	if !a.Owner.Equal(other.Owner) {
		return false
	}
	s1 := normalise(a.Subaccount)
	s2 := normalise(other.Subaccount)
	if nil == s1 || nil == s2 {
		return nil == s1 && nil == s2
	}
	return *s1 == *s2
}

// Key - unique byte key for indexes
//
// length byte, principal, then the 32 byte subaccount (zeros when absent)
func (a Account) Key() []byte {
	buffer := make([]byte, 0, 1+len(a.Owner)+SubaccountLength)
	buffer = append(buffer, byte(len(a.Owner)))
	buffer = append(buffer, a.Owner...)
	if s := normalise(a.Subaccount); nil != s {
		buffer = append(buffer, s[:]...)
	} else {
		buffer = append(buffer, make([]byte, SubaccountLength)...)
	}
	return buffer
}

// FromKey - inverse of Key
func FromKey(key []byte) (Account, error) {
	if 0 == len(key) {
		return Account{}, fault.ErrInvalidAccount
	}
	n := int(key[0])
	if len(key) != 1+n+SubaccountLength {
		return Account{}, fault.ErrInvalidAccount
	}
	owner, err := PrincipalFromBytes(key[1 : 1+n])
	if nil != err {
		return Account{}, err
	}
	return New(owner, key[1+n:])
}

// String - principal text, then "." and the hex subaccount when present
func (a Account) String() string {
	if s := normalise(a.Subaccount); nil != s {
		return a.Owner.String() + "." + hex.EncodeToString(s[:])
	}
	return a.Owner.String()
}

// FromString - parse the String form
func FromString(s string) (Account, error) {
	parts := strings.SplitN(s, ".", 2)
	owner, err := PrincipalFromString(parts[0])
	if nil != err {
		return Account{}, err
	}
	if 1 == len(parts) {
		return New(owner, nil)
	}
	sub, err := hex.DecodeString(parts[1])
	if nil != err {
		return Account{}, fault.ErrInvalidAccount
	}
	return New(owner, sub)
}

// MarshalText - text form for JSON
func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText - parse the text form
func (a *Account) UnmarshalText(s []byte) error {
	acc, err := FromString(string(s))
	if nil != err {
		return err
	}
	*a = acc
	return nil
}

// Value - block representation: [owner] or [owner, subaccount]
func (a Account) Value() value.Value {
	if s := normalise(a.Subaccount); nil != s {
		return value.Array{value.Blob(a.Owner), value.Blob(s[:])}
	}
	return value.Array{value.Blob(a.Owner)}
}

// FromValue - inverse of Value
func FromValue(v value.Value) (Account, error) {
	items, ok := v.(value.Array)
	if !ok || 0 == len(items) || len(items) > 2 {
		return Account{}, fault.ErrInvalidAccount
	}
	owner, ok := items[0].(value.Blob)
	if !ok {
		return Account{}, fault.ErrInvalidAccount
	}
	principal, err := PrincipalFromBytes(owner)
	if nil != err {
		return Account{}, err
	}
	if 1 == len(items) {
		return New(principal, nil)
	}
	sub, ok := items[1].(value.Blob)
	if !ok {
		return Account{}, fault.ErrInvalidAccount
	}
	return New(principal, sub)
}
