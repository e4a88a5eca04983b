// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/custodian/kv"
)

var _ kv.Store = (*LevelDB)(nil)

const minCacheMB = 16

// Options tunes a disk backed instance. Sizes are in MB.
type Options struct {
	CacheSize              int
	OpenFilesCacheCapacity int
}

// LevelDB is a kv.Store backed by goleveldb.
type LevelDB struct {
	ldb *leveldb.DB
	stg storage.Storage
}

// New opens the database at path, creating it when missing.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open leveldb storage")
	}
	return open(stg, opts)
}

// NewMem returns an empty database held in memory.
func NewMem() *LevelDB {
	db, err := open(storage.NewMemStorage(), Options{})
	if err != nil {
		panic(err)
	}
	return db
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheMB := max(opts.CacheSize, minCacheMB)
	ldb, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: max(opts.OpenFilesCacheCapacity, 16),
		BlockCacheCapacity:     cacheMB / 2 * opt.MiB,
		// goleveldb keeps two write buffers alive
		WriteBuffer: cacheMB / 4 * opt.MiB,
		Filter:      filter.NewBloomFilter(10),
	})
	if err != nil {
		stg.Close()
		return nil, pkgerrors.Wrap(err, "open leveldb")
	}
	return &LevelDB{ldb, stg}, nil
}

func (db *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (db *LevelDB) Get(key []byte) ([]byte, error) {
	return db.ldb.Get(key, nil)
}

func (db *LevelDB) Has(key []byte) (bool, error) {
	return db.ldb.Has(key, nil)
}

func (db *LevelDB) Put(key, val []byte) error {
	return db.ldb.Put(key, val, nil)
}

func (db *LevelDB) Delete(key []byte) error {
	return db.ldb.Delete(key, nil)
}

// Close releases the database and the storage lock it holds. Any later call fails.
func (db *LevelDB) Close() error {
	if err := db.ldb.Close(); err != nil {
		return err
	}
	return db.stg.Close()
}

// NewBatch returns a batch whose Write is synced to disk.
func (db *LevelDB) NewBatch() kv.Batch {
	return &batch{db.ldb, new(leveldb.Batch)}
}

func (db *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return db.ldb.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, nil)
}

type batch struct {
	ldb *leveldb.DB
	b   *leveldb.Batch
}

func (b *batch) Put(key, val []byte) error {
	b.b.Put(key, val)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *batch) Len() int { return b.b.Len() }

func (b *batch) Write() error {
	return b.ldb.Write(b.b, &opt.WriteOptions{Sync: true})
}
