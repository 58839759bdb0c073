// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/vechain/gemfarm/gem"
)

func RandomHash() gem.Bytes32 {
	var b32 gem.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() gem.Address {
	var addr gem.Address

	rand.Read(addr[:])
	return addr
}

// RandAddresses returns n distinct random addresses.
func RandAddresses(n int) []gem.Address {
	seen := make(map[gem.Address]struct{}, n)
	out := make([]gem.Address, 0, n)
	for len(out) < n {
		a := RandAddress()
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
