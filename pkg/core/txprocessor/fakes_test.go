// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package txprocessor

import (
	"context"
	"sync"

	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/p2p/peer"
)

// fakeApplier is a minimal balance ledger: every sender starts with a fixed
// balance and ApplyUnconfirmed debits it, returning false (double-spend) on
// insufficient funds.
type fakeApplier struct {
	mu       sync.Mutex
	balances map[uint64]int64
	applied  map[uint64]int64 // txID -> amount debited, for UndoUnconfirmed
	undone   map[uint64]int
}

func newFakeApplier() *fakeApplier {
	return &fakeApplier{
		balances: make(map[uint64]int64),
		applied:  make(map[uint64]int64),
		undone:   make(map[uint64]int),
	}
}

func (f *fakeApplier) fund(sender uint64, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[sender] = amount
}

func (f *fakeApplier) ApplyUnconfirmed(tx *transactions.Transaction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cost := int64(tx.Amount + tx.Fee)
	if f.balances[tx.SenderID] < cost {
		return false, nil
	}
	f.balances[tx.SenderID] -= cost
	f.applied[tx.ID] = cost
	return true, nil
}

func (f *fakeApplier) UndoUnconfirmed(tx *transactions.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[tx.SenderID] += f.applied[tx.ID]
	f.undone[tx.ID]++
	return nil
}

func (f *fakeApplier) undoCount(id uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.undone[id]
}

type fakeVerifier struct{ fail bool }

func (f fakeVerifier) Verify(*transactions.Transaction) error {
	if f.fail {
		return errTestSignature
	}
	return nil
}

type fakeAccounts struct{ exists bool }

func (f fakeAccounts) AccountExists(uint64) (bool, error) { return f.exists, nil }

type fakeSelfValidator struct{ err error }

func (f fakeSelfValidator) Validate(*transactions.Transaction) error { return f.err }

type fakeChain struct {
	downloading bool
	height      uint64
}

func (f fakeChain) Height() uint64    { return f.height }
func (f fakeChain) Downloading() bool { return f.downloading }

// fakePeers records every SendToSome call and answers RequestUnconfirmed
// from a fixed reply.
type fakePeers struct {
	mu   sync.Mutex
	sent [][]*transactions.Transaction
}

func (f *fakePeers) RandomPeer() (peer.ID, error) { return "peer-a", nil }

func (f *fakePeers) SendToSome(batch []*transactions.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, batch)
}

func (f *fakePeers) RequestUnconfirmed(context.Context, peer.ID) (peer.GetUnconfirmedTransactionsResponse, error) {
	return peer.GetUnconfirmedTransactionsResponse{}, nil
}

func (f *fakePeers) Blacklist(peer.ID, string) {}

func (f *fakePeers) sentBatches() [][]*transactions.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]*transactions.Transaction, len(f.sent))
	copy(out, f.sent)
	return out
}

type testError string

func (e testError) Error() string { return string(e) }

const errTestSignature = testError("signature verification failed")
