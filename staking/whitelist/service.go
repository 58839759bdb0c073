// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package whitelist

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking/reverts"
)

const bucket = kv.Bucket("whitelist/")

type Service struct {
	entries *record.Mapping[*body]
}

func New(tx *record.Tx) *Service {
	return &Service{
		entries: record.NewMapping[*body](tx, bucket),
	}
}

// Get returns the entry, or an empty one if it does not exist.
func (s *Service) Get(id gem.Bytes32) (*Entry, error) {
	b, err := s.entries.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get whitelist entry")
	}
	return &Entry{b}, nil
}

// Add whitelists subject for farm.
func (s *Service) Add(farm gem.Bytes32, subject gem.Address, value uint64, kind Kind) (gem.Bytes32, error) {
	if !kind.Valid() {
		return gem.Bytes32{}, reverts.ErrInvalidWhitelistType
	}
	if kind == KindBuff && value == 0 {
		return gem.Bytes32{}, reverts.ErrFactorMustBeGtZero
	}

	id := ID(farm, subject)
	err := s.entries.Insert(id, &body{
		Farm:    farm,
		Subject: subject,
		Value:   value,
		Kind:    kind,
	})
	if err != nil {
		if errors.Is(err, record.ErrExists) {
			return gem.Bytes32{}, reverts.ErrAlreadyExists
		}
		return gem.Bytes32{}, errors.Wrap(err, "failed to add whitelist entry")
	}
	return id, nil
}

// Remove deletes the entry of farm. Entries still relied on by receipts cannot be removed.
func (s *Service) Remove(farm, id gem.Bytes32) error {
	entry, err := s.Get(id)
	if err != nil {
		return err
	}
	if entry.IsEmpty() || entry.Farm() != farm {
		return reverts.ErrNotFound
	}
	if entry.Refs() > 0 {
		return reverts.ErrWhitelistInUse
	}
	return s.entries.Delete(id)
}

// Retain records one more receipt relying on the entry.
func (s *Service) Retain(id gem.Bytes32, entry *Entry) error {
	refs, overflow := math.SafeAdd(entry.body.Refs, 1)
	if overflow {
		return reverts.ErrArithmetic
	}
	entry.body.Refs = refs
	return s.entries.Update(id, entry.body)
}

// ReleaseRef records one receipt less relying on the entry.
func (s *Service) ReleaseRef(id gem.Bytes32, entry *Entry) error {
	refs, underflow := math.SafeSub(entry.body.Refs, 1)
	if underflow {
		return reverts.ErrArithmetic
	}
	entry.body.Refs = refs
	return s.entries.Update(id, entry.body)
}
