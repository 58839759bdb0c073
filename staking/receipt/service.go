// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package receipt

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
	"github.com/vechain/gemfarm/record"
)

const bucket = kv.Bucket("receipt/")

// body is the stored form of a receipt. Optional fields carry explicit flags
// so that a zero timestamp survives encoding.
type body struct {
	Farmer     gem.Bytes32
	Asset      gem.Address
	Lock       gem.Bytes32
	Whitelist  gem.Bytes32
	StartTs    uint64
	Ended      bool
	EndTs      uint64
	Amount     uint64
	RewardRate uint64
	Buffed     bool
	BuffAsset  gem.Address
	BuffFactor uint64
}

func newBody(r *Receipt) *body {
	b := &body{
		Farmer:     r.Farmer,
		Asset:      r.Asset,
		Lock:       r.Lock,
		Whitelist:  r.Whitelist,
		StartTs:    r.StartTs,
		Amount:     r.Amount,
		RewardRate: r.RewardRate,
	}
	if r.EndTs != nil {
		b.Ended, b.EndTs = true, *r.EndTs
	}
	if r.Buff != nil {
		b.Buffed, b.BuffAsset, b.BuffFactor = true, r.Buff.Asset, r.Buff.Factor
	}
	return b
}

func (b *body) receipt() *Receipt {
	r := &Receipt{
		Farmer:     b.Farmer,
		Asset:      b.Asset,
		Lock:       b.Lock,
		Whitelist:  b.Whitelist,
		StartTs:    b.StartTs,
		Amount:     b.Amount,
		RewardRate: b.RewardRate,
	}
	if b.Ended {
		end := b.EndTs
		r.EndTs = &end
	}
	if b.Buffed {
		r.Buff = &Buff{Asset: b.BuffAsset, Factor: b.BuffFactor}
	}
	return r
}

type Service struct {
	receipts *record.Mapping[*body]
}

func New(tx *record.Tx) *Service {
	return &Service{
		receipts: record.NewMapping[*body](tx, bucket),
	}
}

// Get returns the receipt, or an empty one if the asset was never staked by the farmer.
func (s *Service) Get(id gem.Bytes32) (*Receipt, error) {
	b, err := s.receipts.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get receipt")
	}
	return b.receipt(), nil
}

// Set stores the receipt.
func (s *Service) Set(id gem.Bytes32, r *Receipt) error {
	return s.receipts.Upsert(id, newBody(r))
}

// Each walks every stored receipt in id order.
func Each(store *record.Store, fn func(id gem.Bytes32, r *Receipt) error) error {
	return record.Iterate(store, bucket, func(id gem.Bytes32, b *body) error {
		return fn(id, b.receipt())
	})
}
