// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"fmt"
)

// Kind - the variant of an item error
type Kind string

// error variants
const (
	GenericError           = Kind("GenericError")
	GenericBatchError      = Kind("GenericBatchError")
	SupplyCapReached       = Kind("SupplyCapReached")
	TokenIDMinimumLimit    = Kind("TokenIdMinimumLimit")
	Unauthorized           = Kind("Unauthorized")
	TokenIDAlreadyExist    = Kind("TokenIdAlreadyExist")
	NonExistingTokenID     = Kind("NonExistingTokenId")
	InvalidRecipient       = Kind("InvalidRecipient")
	InvalidSpender         = Kind("InvalidSpender")
	TooOld                 = Kind("TooOld")
	CreatedInFuture        = Kind("CreatedInFuture")
	Duplicate              = Kind("Duplicate")
	ApprovalDoesNotExist   = Kind("ApprovalDoesNotExist")
	ExceedMaxApprovalLimit = Kind("ExceedMaxApprovals")
)

// generic error codes
const (
	CodeNoArguments        = 1
	CodeExceedUpdateBatch  = 2
	CodeExceedMemoSize     = 3
	CodeAuthorityNotSet    = 6
	CodeExceedQueryBatch   = 7
	CodeAnonymousIdentity  = 100
	messageNoArguments     = "No Arguments Provided"
	messageExceedBatch     = "Exceed Max allowed Update Batch Size"
	messageExceedMemo      = "Exceeds Max Memo Size"
	messageAuthorityNotSet = "Minting Authority Not Set"
	messageExceedQuery     = "Exceed Max allowed Query Batch Size"
	messageAnonymous       = "Anonymous Identity"
)

// Error - a rejected item, never fatal
type Error struct {
	Kind        Kind    `json:"kind"`
	Code        uint64  `json:"error_code,omitempty"`
	Message     string  `json:"message,omitempty"`
	DuplicateOf *uint64 `json:"duplicate_of,string,omitempty"`
	LedgerTime  *uint64 `json:"ledger_time,string,omitempty"`
}

// Error - satisfy the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case GenericError, GenericBatchError:
		return fmt.Sprintf("%s(%d): %s", e.Kind, e.Code, e.Message)
	case Duplicate:
		return fmt.Sprintf("%s of: %d", e.Kind, *e.DuplicateOf)
	case CreatedInFuture:
		return fmt.Sprintf("%s ledger time: %d", e.Kind, *e.LedgerTime)
	default:
		return string(e.Kind)
	}
}

func newError(kind Kind) *Error {
	return &Error{Kind: kind}
}

func genericError(code uint64, message string) *Error {
	return &Error{Kind: GenericError, Code: code, Message: message}
}

func batchError(code uint64, message string) *Error {
	return &Error{Kind: GenericBatchError, Code: code, Message: message}
}

func duplicateError(tid uint64) *Error {
	return &Error{Kind: Duplicate, DuplicateOf: &tid}
}

func futureError(now uint64) *Error {
	return &Error{Kind: CreatedInFuture, LedgerTime: &now}
}

// Result - outcome of one batch item: the tid of its block or an error
type Result struct {
	Ok  *uint64 `json:"Ok,string,omitempty"`
	Err *Error  `json:"Err,omitempty"`
}

// IsOk - true if the item produced a block
func (r *Result) IsOk() bool {
	return nil != r && nil != r.Ok
}
