// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farm stores farms and their managers.
package farm

import (
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/staking/reward"
)

// Farm is a staking program paying Reward.Mint to its farmers.
type Farm struct {
	Authority gem.Address
	Reward    reward.Pool
}

// Manager grants Authority the management of Farm.
type Manager struct {
	Farm      gem.Bytes32
	Authority gem.Address
}

// ID derives the farm id from its authority and reward mint.
func ID(authority, mint gem.Address) gem.Bytes32 {
	return gem.DeriveID("farm", authority.Bytes(), mint.Bytes())
}

// ManagerID derives the id of the manager record of authority in farm.
func ManagerID(farm gem.Bytes32, authority gem.Address) gem.Bytes32 {
	return gem.DeriveID("farm_manager", farm.Bytes(), authority.Bytes())
}

// Vault returns the address holding the funded reward of the farm.
func Vault(id gem.Bytes32) gem.Address {
	return id.Address()
}

// IsEmpty returns whether the farm does not exist.
func (f *Farm) IsEmpty() bool {
	return f.Authority.IsZero()
}

func (m *Manager) IsEmpty() bool {
	return m.Authority.IsZero()
}
