// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package custodian

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Bytes32 array of 32 bytes. Storage slots and hashes use it.
type Bytes32 [32]byte

var (
	_ json.Marshaler   = (*Bytes32)(nil)
	_ json.Unmarshaler = (*Bytes32)(nil)
)

func (b Bytes32) String() string {
	return "0x" + hex.EncodeToString(b[:])
}

// AbbrevString keeps the first and last four bytes, for log lines.
func (b Bytes32) AbbrevString() string {
	return fmt.Sprintf("0x%x…%x", b[:4], b[28:])
}

func (b Bytes32) Bytes() []byte { return b[:] }

func (b Bytes32) IsZero() bool { return b == Bytes32{} }

// MarshalJSON encodes b as a 0x-prefixed hex string, or null for a nil pointer.
func (b *Bytes32) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(b.String())
}

func (b *Bytes32) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := ParseBytes32(str)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ParseBytes32 decodes exactly 64 hex digits, optionally 0x-prefixed.
func ParseBytes32(s string) (b Bytes32, err error) {
	digits := s
	if len(s) == 2*len(b)+2 {
		if !strings.EqualFold(s[:2], "0x") {
			return b, errors.New("invalid prefix")
		}
		digits = s[2:]
	}
	if len(digits) != 2*len(b) {
		return b, errors.New("invalid length")
	}
	if _, err := hex.Decode(b[:], []byte(digits)); err != nil {
		return Bytes32{}, err
	}
	return b, nil
}

func MustParseBytes32(s string) Bytes32 {
	b, err := ParseBytes32(s)
	if err != nil {
		panic(err)
	}
	return b
}

// BytesToBytes32 right-aligns b, dropping leading bytes beyond 32.
func BytesToBytes32(b []byte) Bytes32 {
	return Bytes32(common.BytesToHash(b))
}

// Uint64ToBytes32 left-pads the big endian form of n.
func Uint64ToBytes32(n uint64) (b Bytes32) {
	binary.BigEndian.PutUint64(b[24:], n)
	return
}
