// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farmer

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
	"github.com/vechain/gemfarm/record"
	"github.com/vechain/gemfarm/staking/reverts"
)

const bucket = kv.Bucket("farmer/")

type Service struct {
	farmers *record.Mapping[*Farmer]
}

func New(tx *record.Tx) *Service {
	return &Service{
		farmers: record.NewMapping[*Farmer](tx, bucket),
	}
}

// Get returns the farmer, or an empty one if it was never initialized.
func (s *Service) Get(id gem.Bytes32) (*Farmer, error) {
	f, err := s.farmers.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get farmer")
	}
	return f, nil
}

// GetExisting returns the farmer of owner in farm, failing with ErrNotFound if it was never initialized.
func (s *Service) GetExisting(farm gem.Bytes32, owner gem.Address) (gem.Bytes32, *Farmer, error) {
	id := ID(farm, owner)
	f, err := s.Get(id)
	if err != nil {
		return gem.Bytes32{}, nil, err
	}
	if f.IsEmpty() {
		return gem.Bytes32{}, nil, reverts.ErrNotFound
	}
	return id, f, nil
}

// Init creates the farmer of owner in farm, accruing from now.
func (s *Service) Init(farm gem.Bytes32, owner gem.Address, now uint64) (gem.Bytes32, error) {
	id := ID(farm, owner)
	err := s.farmers.Insert(id, &Farmer{
		Farm:       farm,
		Owner:      owner,
		LastUpdate: now,
	})
	if err != nil {
		if errors.Is(err, record.ErrExists) {
			return gem.Bytes32{}, reverts.ErrAlreadyExists
		}
		return gem.Bytes32{}, errors.Wrap(err, "failed to init farmer")
	}
	return id, nil
}

// Set stores an existing farmer.
func (s *Service) Set(id gem.Bytes32, f *Farmer) error {
	return s.farmers.Update(id, f)
}

// Each walks every initialized farmer in id order.
func Each(store *record.Store, fn func(id gem.Bytes32, f *Farmer) error) error {
	return record.Iterate(store, bucket, fn)
}
