// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv declares the byte-level key/value contracts the registry state and
// its metadata are persisted through.
package kv

// Getter reads values. A missing key is an error recognized by IsNotFound.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter writes or removes values.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Batch buffers writes until Write applies them all at once.
type Batch interface {
	Putter
	Len() int
	Write() error
}

// Iterator walks key ordered pairs. Release must be called when done.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range selects keys in [Start, Limit). A nil Limit means no upper bound.
type Range struct {
	Start []byte
	Limit []byte
}

// Store is a key/value database with batches and range iteration.
type Store interface {
	Getter
	Putter
	NewBatch() Batch
	Iterate(r Range) Iterator
	Close() error
}
