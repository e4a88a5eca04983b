// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Bucket provides logical bucket for kv store.
type Bucket string

// Key returns the key prefixed with the bucket name.
func (b Bucket) Key(key []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(key)), b...), key...)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &bucketGetter{b, src}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &bucketPutter{b, src}
}

// Prefix returns the range covering all keys of the bucket.
func (b Bucket) Prefix() Range {
	start := []byte(b)
	var limit []byte
	for i := len(start) - 1; i >= 0; i-- {
		if c := start[i]; c < 0xff {
			limit = make([]byte, i+1)
			copy(limit, start)
			limit[i] = c + 1
			break
		}
	}
	return Range{Start: start, Limit: limit}
}

type bucketGetter struct {
	bucket Bucket
	src    Getter
}

func (g *bucketGetter) Get(key []byte) ([]byte, error) { return g.src.Get(g.bucket.Key(key)) }
func (g *bucketGetter) Has(key []byte) (bool, error)   { return g.src.Has(g.bucket.Key(key)) }
func (g *bucketGetter) IsNotFound(err error) bool      { return g.src.IsNotFound(err) }

type bucketPutter struct {
	bucket Bucket
	src    Putter
}

func (p *bucketPutter) Put(key, val []byte) error { return p.src.Put(p.bucket.Key(key), val) }
func (p *bucketPutter) Delete(key []byte) error   { return p.src.Delete(p.bucket.Key(key)) }
