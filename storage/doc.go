// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintain separate pools of a number of elements in key->value form
//
// Each store is one LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. index        = big endian uint64 (8 bytes)
// 4. token        = token id as big endian uint64 (8 bytes)
// 5. account key  = length(1) ++ principal ++ subaccount(32)
// 6. level        = single byte merkle node level
//
// Blocks:
//
//	B ++ index                 - canonical encoded block
//	M ++ level ++ index        - accumulator node digest
//
// Ledger:
//
//	T ++ token                 - token record (owner, metadata, created)
//	O ++ account key           - roaring bitmap of owned tokens
//	A ++ token                 - token approval table
//	C ++ account key           - collection approval table
//
// Archives:
//
//	R ++ sequence              - archive segment: shard id, start, end
//
// Metadata:
//
//	D ++ name                  - counters and settings
//	                             (log length, first live index, last hash, supply ...)
package storage
