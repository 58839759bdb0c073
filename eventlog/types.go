// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventlog

import (
	"github.com/vechain/gemfarm/gem"
)

// Kind names the ledger operation an event records.
type Kind string

const (
	KindCreateFarm          Kind = "create_farm"
	KindAddManager          Kind = "add_manager"
	KindAddToWhitelist      Kind = "add_to_whitelist"
	KindRemoveFromWhitelist Kind = "remove_from_whitelist"
	KindCreateLock          Kind = "create_lock"
	KindFundReward          Kind = "fund_reward"
	KindInitializeFarmer    Kind = "initialize_farmer"
	KindStake               Kind = "stake"
	KindUnstake             Kind = "unstake"
	KindBuff                Kind = "buff"
	KindDebuff              Kind = "debuff"
	KindClaim               Kind = "claim"
)

// Event is one committed ledger operation.
type Event struct {
	Seq     uint64      // assigned on append
	Kind    Kind
	Farm    gem.Bytes32
	Actor   gem.Address // who called the operation
	Subject gem.Bytes32 // main record touched, e.g. receipt or lock id
	Asset   gem.Address // staked or buff asset, zero if none
	Amount  uint64      // staked, funded or claimed amount, or rate delta for buffs
	Time    uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive range of event times.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects events. Nil fields match everything.
type Filter struct {
	Farm    *gem.Bytes32
	Actor   *gem.Address
	Subject *gem.Bytes32
	Kinds   []Kind
	Range   *Range
	Options *Options
	Order   Order // default asc
}
