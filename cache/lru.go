// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache holds decoded storage slots in front of the key/value store.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU is a golang-lru cache counting hits and misses of GetOrLoad.
type LRU struct {
	*lru.Cache
	hits, misses atomic.Int64
}

// NewLRU fails unless size is positive.
func NewLRU(size int) (*LRU, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRU{Cache: c}, nil
}

// Loader reads the value for a key that is not cached.
type Loader func(key any) (any, error)

// GetOrLoad returns the cached value for key, calling load and caching its result on a miss.
// Failed loads are not cached.
func (c *LRU) GetOrLoad(key any, load Loader) (any, error) {
	if v, ok := c.Get(key); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)
	v, err := load(key)
	if err != nil {
		return nil, err
	}
	c.Add(key, v)
	return v, nil
}

func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
