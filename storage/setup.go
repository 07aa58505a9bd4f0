// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/nftledger/fault"
)

// Pools - the exported pools of a store
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type Pools struct {
	Blocks              *PoolHandle `prefix:"B"`
	MerkleNodes         *PoolHandle `prefix:"M"`
	Tokens              *PoolHandle `prefix:"T"`
	OwnerTokens         *PoolHandle `prefix:"O"`
	TokenApprovals      *PoolHandle `prefix:"A"`
	CollectionApprovals *PoolHandle `prefix:"C"`
	Archives            *PoolHandle `prefix:"R"`
	Metadata            *PoolHandle `prefix:"D"`
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentDBVersion = 0x100
)

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Store - one leveldb database and its pools
type Store struct {
	Pools

	sync.RWMutex            // guards db
	writer       sync.Mutex // one transaction at a time

	name string
	db   *leveldb.DB
}

// Open - open up the database and attach the pools
func Open(name string, readOnly bool) (*Store, error) {

	db, version, err := getDB(name, readOnly)
	if nil != err {
		return nil, err
	}

	ok := false
	defer func() {
		if !ok {
			db.Close()
		}
	}()

	// ensure no database downgrade
	if version > currentDBVersion {
		logger.Criticalf("database: %s  version: %d > current version: %d", name, version, currentDBVersion)
		return nil, fault.ErrDatabaseIsNewer
	}

	if 0 == version && !readOnly {
		// database was empty so tag as current version
		err = putVersion(db, currentDBVersion)
		if nil != err {
			return nil, err
		}
	}

	s := &Store{
		name: name,
		db:   db,
	}

	// this will be a struct type
	poolType := reflect.TypeOf(s.Pools)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&s.Pools).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix: prefix,
			limit:  limit,
			store:  s,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	ok = true // prevent db close
	return s, nil
}

// Close - close the database connection
func (s *Store) Close() {
	s.Lock()
	defer s.Unlock()
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

// Name - the database path
func (s *Store) Name() string {
	return s.name
}

// return:
//
//	database handle
//	version number
func getDB(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
