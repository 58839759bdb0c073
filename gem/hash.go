// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gem

import (
	"encoding/binary"
	"hash"
	"io"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
)

// NewBlake2b return blake2b-256 hash.
func NewBlake2b() hash.Hash {
	hash, _ := blake2b.New256(nil)
	return hash
}

// Blake2bFn computes blake2b-256 checksum for the provided writer.
func Blake2bFn(fn func(w io.Writer)) (h Bytes32) {
	w := blake2bStatePool.Get().(*blake2bState)
	fn(w)
	w.Sum(w.b32[:0])
	h = w.b32 // to avoid 1 alloc
	w.Reset()
	blake2bStatePool.Put(w)
	return
}

type blake2bState struct {
	hash.Hash
	b32 Bytes32
}

var blake2bStatePool = sync.Pool{
	New: func() any {
		return &blake2bState{
			Hash: NewBlake2b(),
		}
	},
}

// DeriveID derives a stable record identifier from a prefix and the
// components of a composite key. Components are length-prefixed so that
// different splits of the same bytes never collide.
func DeriveID(prefix string, parts ...[]byte) Bytes32 {
	return Blake2bFn(func(w io.Writer) {
		var l [4]byte
		binary.BigEndian.PutUint32(l[:], uint32(len(prefix)))
		w.Write(l[:])
		w.Write([]byte(prefix))
		for _, p := range parts {
			binary.BigEndian.PutUint32(l[:], uint32(len(p)))
			w.Write(l[:])
			w.Write(p)
		}
	})
}

// Uint64Bytes encodes n as 8 little-endian bytes, the layout used in lock ids.
func Uint64Bytes(n uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	return b[:]
}
