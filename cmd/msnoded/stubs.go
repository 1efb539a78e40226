// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package main

import (
	"context"

	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/money/currency"
	"github.com/monetary-system/msnode/pkg/p2p/peer"
)

// The types below stand in for the out-of-scope external collaborators
// (block/consensus engine, signature primitives, account ledger, peer
// connection management). A production deployment replaces
// each of these with the real subsystem through the same interface; running
// msnoded with these stubs processes no transactions (there are never any
// peers to gossip with or pull from, and nothing in msnoded calls
// Broadcast), but the mempool, worker, and metrics wiring is otherwise
// identical to production. The empty registry resolves no currency, so a
// non-issuance currency transaction would skip capability checks.

type noopApplier struct{}

func (noopApplier) ApplyUnconfirmed(*transactions.Transaction) (bool, error) { return true, nil }
func (noopApplier) UndoUnconfirmed(*transactions.Transaction) error         { return nil }

type noopVerifier struct{}

func (noopVerifier) Verify(*transactions.Transaction) error { return nil }

type noopAccounts struct{}

func (noopAccounts) AccountExists(uint64) (bool, error) { return false, nil }

type noopChain struct{}

func (noopChain) Height() uint64    { return 0 }
func (noopChain) Downloading() bool { return false }

type noopRegistry struct{}

func (noopRegistry) ByID(uint64) (*currency.Currency, error)               { return nil, nil }
func (noopRegistry) ByLowercaseName(string) (*currency.Currency, error)    { return nil, nil }
func (noopRegistry) ByCode(string) (*currency.Currency, error)             { return nil, nil }

type noopPeers struct{}

func (noopPeers) RandomPeer() (peer.ID, error) { return "", peer.ErrNoPeers }
func (noopPeers) SendToSome([]*transactions.Transaction) {}
func (noopPeers) RequestUnconfirmed(context.Context, peer.ID) (peer.GetUnconfirmedTransactionsResponse, error) {
	return peer.GetUnconfirmedTransactionsResponse{}, peer.ErrNoPeers
}
func (noopPeers) Blacklist(peer.ID, string) {}
