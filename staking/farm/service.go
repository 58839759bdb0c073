// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking/reverts"
	"github.com/vechain/gemfarm/staking/reward"
)

const (
	farmBucket    = kv.Bucket("farm/")
	managerBucket = kv.Bucket("manager/")
)

type Service struct {
	farms    *record.Mapping[*Farm]
	managers *record.Mapping[*Manager]
}

func New(tx *record.Tx) *Service {
	return &Service{
		farms:    record.NewMapping[*Farm](tx, farmBucket),
		managers: record.NewMapping[*Manager](tx, managerBucket),
	}
}

// Create stores a farm of authority paying mint and registers authority as its first manager.
func (s *Service) Create(authority, mint gem.Address) (gem.Bytes32, error) {
	if authority.IsZero() {
		return gem.Bytes32{}, reverts.ErrInvalidAccountData
	}
	id := ID(authority, mint)
	err := s.farms.Insert(id, &Farm{
		Authority: authority,
		Reward:    reward.Pool{Mint: mint},
	})
	if err != nil {
		if errors.Is(err, record.ErrExists) {
			return gem.Bytes32{}, reverts.ErrAlreadyExists
		}
		return gem.Bytes32{}, errors.Wrap(err, "failed to create farm")
	}
	if _, err := s.AddManager(id, authority); err != nil {
		return gem.Bytes32{}, err
	}
	return id, nil
}

// Get returns the farm, or an empty one if it does not exist.
func (s *Service) Get(id gem.Bytes32) (*Farm, error) {
	f, err := s.farms.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get farm")
	}
	return f, nil
}

// GetExisting returns the farm, failing with ErrNotFound if it does not exist.
func (s *Service) GetExisting(id gem.Bytes32) (*Farm, error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return nil, reverts.ErrNotFound
	}
	return f, nil
}

// Set stores an existing farm.
func (s *Service) Set(id gem.Bytes32, f *Farm) error {
	return s.farms.Update(id, f)
}

// AddManager registers authority as a manager of farm.
func (s *Service) AddManager(farm gem.Bytes32, authority gem.Address) (gem.Bytes32, error) {
	if authority.IsZero() {
		return gem.Bytes32{}, reverts.ErrInvalidAccountData
	}
	id := ManagerID(farm, authority)
	err := s.managers.Insert(id, &Manager{Farm: farm, Authority: authority})
	if err != nil {
		if errors.Is(err, record.ErrExists) {
			return gem.Bytes32{}, reverts.ErrAlreadyExists
		}
		return gem.Bytes32{}, errors.Wrap(err, "failed to add manager")
	}
	return id, nil
}

// IsManager returns whether authority manages farm.
func (s *Service) IsManager(farm gem.Bytes32, authority gem.Address) (bool, error) {
	m, err := s.managers.Get(ManagerID(farm, authority))
	if err != nil {
		return false, errors.Wrap(err, "failed to get manager")
	}
	return !m.IsEmpty() && m.Farm == farm, nil
}
