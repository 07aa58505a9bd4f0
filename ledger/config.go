// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"time"

	"github.com/bitmark-inc/nftledger/account"
)

// defaults for unset limits
const (
	DefaultMaxQueryBatchSize  = 32
	DefaultMaxUpdateBatchSize = 32
	DefaultTakeValue          = 32
	DefaultMaxTakeValue       = 32
	DefaultMaxMemoSize        = 32
	DefaultTxWindow           = uint64(24 * time.Hour)
	DefaultPermittedDrift     = uint64(2 * time.Minute)
	DefaultMaxApprovalsPerKey = 10
	DefaultMaxRevokeApprovals = 10
	DefaultMaxApprovals       = 1000
	DefaultSettleToApprovals  = 5
)

// Configuration - collection description and limits, fixed at creation
//
// durations are in nanoseconds
type Configuration struct {
	Symbol      string `gluamapper:"symbol" json:"symbol"`
	Name        string `gluamapper:"name" json:"name"`
	Description string `gluamapper:"description" json:"description"`
	Logo        string `gluamapper:"logo" json:"logo"`

	SupplyCap            uint64 `gluamapper:"supply_cap" json:"supply_cap"`
	MaxQueryBatchSize    uint64 `gluamapper:"max_query_batch_size" json:"max_query_batch_size"`
	MaxUpdateBatchSize   uint64 `gluamapper:"max_update_batch_size" json:"max_update_batch_size"`
	DefaultTakeValue     uint64 `gluamapper:"default_take_value" json:"default_take_value"`
	MaxTakeValue         uint64 `gluamapper:"max_take_value" json:"max_take_value"`
	MaxMemoSize          uint64 `gluamapper:"max_memo_size" json:"max_memo_size"`
	AtomicBatchTransfers bool   `gluamapper:"atomic_batch_transfers" json:"atomic_batch_transfers"`
	TxWindow             uint64 `gluamapper:"tx_window" json:"tx_window"`
	PermittedDrift       uint64 `gluamapper:"permitted_drift" json:"permitted_drift"`

	MaxApprovalsPerTokenOrCollection uint64 `gluamapper:"max_approvals_per_token_or_collection" json:"max_approvals_per_token_or_collection"`
	MaxRevokeApprovals               uint64 `gluamapper:"max_revoke_approvals" json:"max_revoke_approvals"`
	MaxApprovals                     uint64 `gluamapper:"max_approvals" json:"max_approvals"`
	SettleToApprovals                uint64 `gluamapper:"settle_to_approvals" json:"settle_to_approvals"`
	CollectionApprovalRequiresToken  bool   `gluamapper:"collection_approval_requires_token" json:"collection_approval_requires_token"`

	MintingAuthority string   `gluamapper:"minting_authority" json:"minting_authority"`
	Controllers      []string `gluamapper:"controllers" json:"controllers"`
}

// Normalise - apply defaults and keep the approval limits ordered
func (c *Configuration) Normalise() {
	setDefault(&c.MaxQueryBatchSize, DefaultMaxQueryBatchSize)
	setDefault(&c.MaxUpdateBatchSize, DefaultMaxUpdateBatchSize)
	setDefault(&c.DefaultTakeValue, DefaultTakeValue)
	setDefault(&c.MaxTakeValue, DefaultMaxTakeValue)
	setDefault(&c.MaxMemoSize, DefaultMaxMemoSize)
	setDefault(&c.TxWindow, DefaultTxWindow)
	setDefault(&c.PermittedDrift, DefaultPermittedDrift)
	setDefault(&c.MaxApprovalsPerTokenOrCollection, DefaultMaxApprovalsPerKey)
	setDefault(&c.MaxRevokeApprovals, DefaultMaxRevokeApprovals)
	setDefault(&c.MaxApprovals, DefaultMaxApprovals)
	setDefault(&c.SettleToApprovals, DefaultSettleToApprovals)

	if c.SettleToApprovals > c.MaxApprovalsPerTokenOrCollection {
		c.SettleToApprovals = c.MaxApprovalsPerTokenOrCollection
	}
	if c.DefaultTakeValue > c.MaxTakeValue {
		c.DefaultTakeValue = c.MaxTakeValue
	}
}

func setDefault(n *uint64, value uint64) {
	if 0 == *n {
		*n = value
	}
}

// controllers - principals allowed to run admin setters
func (c *Configuration) controllers() ([]account.Principal, error) {
	result := make([]account.Principal, 0, len(c.Controllers))
	for _, s := range c.Controllers {
		p, err := account.PrincipalFromString(s)
		if nil != err {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}
