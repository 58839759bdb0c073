// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/record"
)

// transfer moves amount of asset and, should tx fail to commit, moves it back.
// It must be the last step of an operation so that only a commit failure can follow it.
func (s *Staker) transfer(tx *record.Tx, asset, from, to, authority gem.Address, amount uint64) error {
	if err := s.custody.Transfer(asset, from, to, authority, amount); err != nil {
		return errors.Wrap(err, "custody transfer")
	}
	tx.OnAbort(func() {
		// the receiving account signs the way back
		if err := s.custody.Transfer(asset, to, from, to, amount); err != nil {
			logger.Error("compensating transfer failed", "asset", asset, "from", to, "to", from, "amount", amount, "error", err)
			metricCompensations().AddWithLabel(1, map[string]string{"status": "failed"})
			return
		}
		logger.Warn("compensated transfer", "asset", asset, "from", to, "to", from, "amount", amount)
		metricCompensations().AddWithLabel(1, map[string]string{"status": "ok"})
	})
	return nil
}
