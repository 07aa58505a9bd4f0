// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

type nodeKey struct {
	level uint8
	index uint64
}

// MemoryStore - in-memory NodeStore, used by the command line verifier
type MemoryStore struct {
	nodes map[nodeKey]Digest
}

// NewMemoryStore - create an empty node store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[nodeKey]Digest),
	}
}

// GetNode - read one node
func (m *MemoryStore) GetNode(level uint8, index uint64) (Digest, bool) {
	d, ok := m.nodes[nodeKey{level, index}]
	return d, ok
}

// PutNode - write one node
func (m *MemoryStore) PutNode(level uint8, index uint64, digest Digest) {
	m.nodes[nodeKey{level, index}] = digest
}
