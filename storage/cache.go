// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	cache "github.com/patrickmn/go-cache"
)

// Cache - staged writes of an open transaction
type Cache interface {
	Get(string) ([]byte, bool, bool)
	Set(int, string, []byte)
	Clear()
}

const (
	dbPut = iota
	dbDelete
)

type dbCache struct {
	cache *cache.Cache
}

type cacheData struct {
	op    int
	value []byte
}

// staged items must live as long as the transaction, so never expire
func newCache() Cache {
	return &dbCache{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Get - return value, found, deleted
//
// a staged delete is found with deleted set so the database is not consulted
func (c *dbCache) Get(key string) ([]byte, bool, bool) {
	obj, found := c.cache.Get(key)
	if !found {
		return nil, false, false
	}

	data := obj.(cacheData)
	if dbDelete == data.op {
		return nil, true, true
	}

	return data.value, true, false
}

func (c *dbCache) Set(op int, key string, value []byte) {
	cached := cacheData{
		op:    op,
		value: value,
	}
	c.cache.Set(key, cached, cache.NoExpiration)
}

func (c *dbCache) Clear() {
	c.cache.Flush()
}
