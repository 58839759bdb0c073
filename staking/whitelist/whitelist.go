// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package whitelist

import (
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/staking/reverts"
)

// Kind tells what a whitelist entry identifies and how its value is read.
type Kind uint8

const (
	KindCreator Kind = iota + 1 // gems of a verified creator, value is a base rate
	KindMint                    // a single mint, value is a base rate
	KindBuff                    // a buff asset, value is a rate multiplier
)

func (k Kind) String() string {
	switch k {
	case KindCreator:
		return "creator"
	case KindMint:
		return "mint"
	case KindBuff:
		return "buff"
	default:
		return "invalid"
	}
}

func (k Kind) Valid() bool {
	return k >= KindCreator && k <= KindBuff
}

// Resolver resolves the verified creator of an asset from an authenticity proof.
type Resolver interface {
	ResolveCreator(asset gem.Address, proof []byte) (gem.Address, error)
}

type body struct {
	Farm    gem.Bytes32
	Subject gem.Address
	Value   uint64
	Kind    Kind
	Refs    uint64 // receipts relying on the entry
}

// Entry is a whitelisted identity of a farm.
type Entry struct {
	body *body
}

// ID derives the entry id from the farm and the whitelisted identity.
func ID(farm gem.Bytes32, subject gem.Address) gem.Bytes32 {
	return gem.DeriveID("collection_data", farm.Bytes(), subject.Bytes())
}

// IsEmpty returns whether the entry can be treated as empty.
func (e *Entry) IsEmpty() bool {
	return e.body.Kind == 0
}

func (e *Entry) Farm() gem.Bytes32    { return e.body.Farm }
func (e *Entry) Subject() gem.Address { return e.body.Subject }
func (e *Entry) Kind() Kind           { return e.body.Kind }
func (e *Entry) Refs() uint64         { return e.body.Refs }

// BaseRate returns the reward per staked unit per second of a creator or mint entry.
func (e *Entry) BaseRate() (uint64, error) {
	switch e.body.Kind {
	case KindCreator, KindMint:
		return e.body.Value, nil
	default:
		return 0, reverts.ErrInvalidWhitelistType
	}
}

// BuffFactor returns the multiplier of a buff entry.
func (e *Entry) BuffFactor() (uint64, error) {
	if e.body.Kind != KindBuff {
		return 0, reverts.ErrInvalidWhitelistType
	}
	return e.body.Value, nil
}

// Identity returns the identity this entry must have been registered for, given the presented asset.
// Mint and buff entries name the asset itself, creator entries the creator resolved from proof.
func (e *Entry) Identity(asset gem.Address, proof []byte, resolver Resolver) (gem.Address, error) {
	switch e.body.Kind {
	case KindMint, KindBuff:
		return asset, nil
	case KindCreator:
		if resolver == nil {
			return gem.Address{}, reverts.ErrInvalidAccountData
		}
		creator, err := resolver.ResolveCreator(asset, proof)
		if err != nil || creator.IsZero() {
			return gem.Address{}, reverts.ErrInvalidAccountData
		}
		return creator, nil
	default:
		return gem.Address{}, reverts.ErrInvalidWhitelist
	}
}

// Validate checks that the entry stored under entryID was registered by farm for identity.
// It rejects an entry presented for an asset it does not cover.
func (e *Entry) Validate(entryID, farm gem.Bytes32, identity gem.Address) error {
	if e.IsEmpty() || e.body.Farm != farm || e.body.Subject != identity {
		return reverts.ErrInvalidWhitelist
	}
	if ID(farm, identity) != entryID {
		return reverts.ErrInvalidWhitelist
	}
	return nil
}
