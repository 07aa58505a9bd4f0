// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type FatalError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised        = ExistsError("already initialised")
	ErrArchiveMismatch           = RecordError("archived block differs from stored block")
	ErrArchiveNotContiguous      = InvalidError("archive append is not contiguous")
	ErrArchiveShardFull          = LengthError("archive shard is full")
	ErrBlockNotFound             = NotFoundError("block not found")
	ErrCannotDecodeValue         = RecordError("cannot decode value")
	ErrCertificateFileExists     = ExistsError("certificate file already exists")
	ErrDatabaseIsNewer           = InvalidError("database version is newer than software")
	ErrDuplicateMapKey           = InvalidError("duplicate map key")
	ErrEmptyPrincipal            = InvalidError("principal is empty")
	ErrIndexOutOfRange           = InvalidError("index out of range")
	ErrInvalidAccount            = InvalidError("invalid account")
	ErrInvalidCount              = InvalidError("invalid count")
	ErrInvalidCursor             = InvalidError("invalid cursor")
	ErrInvalidIPAddress          = InvalidError("invalid IP address")
	ErrInvalidLoggerChannel      = InvalidError("invalid logger channel")
	ErrInvalidPoolPrefix         = InvalidError("invalid pool prefix")
	ErrInvalidProof              = InvalidError("invalid proof")
	ErrInvalidStructPointer      = InvalidError("invalid struct pointer")
	ErrInvalidSubaccountLength   = LengthError("invalid subaccount length")
	ErrInvalidValueTag           = RecordError("invalid value tag")
	ErrKeyFileExists             = ExistsError("key file already exists")
	ErrLiveSegmentFull           = FatalError("live segment has reached hard capacity")
	ErrMissingParameters         = InvalidError("missing parameters")
	ErrNotInitialised            = NotFoundError("not initialised")
	ErrNotTransactionPack        = RecordError("not a transaction block")
	ErrRateLimiting              = InvalidError("rate limiting")
	ErrShardNotFound             = NotFoundError("archive shard not found")
	ErrTransactionAlreadyStarted = ProcessError("transaction already started")
	ErrTransactionFinished       = ProcessError("transaction already finished")
	ErrTruncatedValue            = LengthError("truncated value")
	ErrUnauthorisedOwner         = InvalidError("caller is not the shard owner")
	ErrUnknownOperation          = InvalidError("unknown operation")
	ErrValueTooLarge             = LengthError("value too large")
	ErrWrongNetworkForPublicKey  = InvalidError("wrong network for public key")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e FatalError) Error() string    { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e RecordError) Error() string   { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrFatal(e error) bool    { _, ok := e.(FatalError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool   { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrRecord(e error) bool   { _, ok := e.(RecordError); return ok }
