// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package txprocessor

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monetary-system/msnode/pkg/clock"
	"github.com/monetary-system/msnode/pkg/config"
	"github.com/monetary-system/msnode/pkg/core/ledgerindex"
	"github.com/monetary-system/msnode/pkg/core/mempool"
	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/util/nativeutils/eventbus"
)

// testRig wires a Processor against real mempool/ledger storage and
// deterministic fakes for everything out of scope, following the
// collaborator-injection shape New expects.
type testRig struct {
	proc     *Processor
	store    *mempool.Store
	ledger   *ledgerindex.Index
	bus      *eventbus.EventBus
	localOr  *mempool.LocalOriginTracker
	applier  *fakeApplier
	peers    *fakePeers
	clk      *clock.Mock
	chain    *fakeChain
}

func newTestRig(t *testing.T) *testRig {
	return newTestRigAtHeight(t, 0)
}

// newTestRigAtHeight builds a rig whose Processor requires chain height
// digitalGoodsStoreBlock before it will process anything.
func newTestRigAtHeight(t *testing.T, digitalGoodsStoreBlock uint64) *testRig {
	t.Helper()

	store, err := mempool.Open(filepath.Join(t.TempDir(), "mempool.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ledger, err := ledgerindex.Open(filepath.Join(t.TempDir(), "ledgerindex"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	bus := eventbus.New()
	localOrigin := mempool.NewLocalOriginTracker()
	applier := newFakeApplier()
	peers := &fakePeers{}
	clk := clock.NewMock(1_700_000_000)
	chain := &fakeChain{}

	proc := New(
		&sync.Mutex{},
		store,
		ledger,
		localOrigin,
		bus,
		peers,
		clk,
		applier,
		fakeVerifier{},
		fakeAccounts{exists: true},
		fakeSelfValidator{},
		chain,
		config.Default().Drift,
		digitalGoodsStoreBlock,
	)

	return &testRig{
		proc:    proc,
		store:   store,
		ledger:  ledger,
		bus:     bus,
		localOr: localOrigin,
		applier: applier,
		peers:   peers,
		clk:     clk,
		chain:   chain,
	}
}

// newTestTx builds a well-formed, funded transaction whose Bytes are its
// canonical encoding, so bytesToTx round-trips it correctly.
func newTestTx(id, sender uint64, amount, fee uint64, timestamp int64) *transactions.Transaction {
	tx := &transactions.Transaction{
		ID:          id,
		SenderID:    sender,
		RecipientID: sender + 1000,
		Amount:      amount,
		Fee:         fee,
		Timestamp:   timestamp,
		DeadlineMin: 1440,
		Version:     1,
	}
	var buf bytes.Buffer
	if err := transactions.Marshal(&buf, tx); err != nil {
		panic(err)
	}
	tx.Bytes = buf.Bytes()
	return tx
}

// P1: an accepted transaction is immediately visible in the mempool and
// debits the applier's ledger exactly once.
func TestProcessTransactionsAcceptsFundedTransaction(t *testing.T) {
	r := newTestRig(t)
	r.applier.fund(1, 1000)

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())

	accepted, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	require.Equal(t, tx.ID, accepted[0].ID)

	has, err := r.store.Contains(tx.ID)
	require.NoError(t, err)
	require.True(t, has)
}

// A transaction whose sender cannot cover amount+fee is a double-spend: no
// error, not inserted into the mempool, reported via AddedDoubleSpending.
func TestProcessTransactionsRejectsDoubleSpend(t *testing.T) {
	r := newTestRig(t)
	r.applier.fund(1, 10) // insufficient for amount+fee below

	var doubleSpent []uint64
	r.bus.Subscribe(eventbus.AddedDoubleSpending, func(ids []uint64) {
		doubleSpent = append(doubleSpent, ids...)
	})

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())

	accepted, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)
	require.Empty(t, accepted)
	require.Equal(t, []uint64{tx.ID}, doubleSpent)

	has, err := r.store.Contains(tx.ID)
	require.NoError(t, err)
	require.False(t, has)
}

// The drift gate silently drops a transaction stamped too far in the future.
func TestProcessTransactionsDropsTimestampBeyondTolerance(t *testing.T) {
	r := newTestRig(t)
	r.applier.fund(1, 1000)

	future := r.clk.Now() + config.Default().Drift.TimestampToleranceSeconds + 100
	tx := newTestTx(1, 1, 100, 1, future)

	accepted, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)
	require.Empty(t, accepted)
}

// The drift gate silently drops an already-expired transaction.
func TestProcessTransactionsDropsExpiredTransaction(t *testing.T) {
	r := newTestRig(t)
	r.applier.fund(1, 1000)

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())
	tx.DeadlineMin = -1000 // Expiration() well before now

	accepted, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)
	require.Empty(t, accepted)
}

// S5: a transaction this node broadcast locally, then echoed back by a
// peer, must not be re-forwarded and must be dropped from the local-origin
// tracker.
func TestBroadcastThenPeerEchoSuppressesRegossip(t *testing.T) {
	r := newTestRig(t)
	r.applier.fund(1, 1000)

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())

	require.NoError(t, r.proc.Broadcast(tx))
	require.True(t, r.localOr.Contains(tx.ID))
	require.Len(t, r.peers.sentBatches(), 1, "the original broadcast forwards to peers")

	// The peer echoes the very same transaction back, already accepted
	// locally, so ProcessPeerBatch's duplicate gate should simply drop it
	// without a second forward and without an error.
	err := r.proc.ProcessPeerBatch([]*transactions.Transaction{tx}, true)
	require.NoError(t, err)
	require.False(t, r.localOr.Contains(tx.ID))
	require.Len(t, r.peers.sentBatches(), 1, "echoed duplicate must not trigger a second forward")
}

// P2: OnBlockApplied removes confirmed transactions from the mempool and
// marks them in the ledger index.
func TestOnBlockAppliedClearsConfirmedFromMempool(t *testing.T) {
	r := newTestRig(t)
	r.applier.fund(1, 1000)

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())
	_, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)

	var removed, confirmed []uint64
	r.bus.Subscribe(eventbus.RemovedUnconfirmed, func(ids []uint64) { removed = append(removed, ids...) })
	r.bus.Subscribe(eventbus.AddedConfirmed, func(ids []uint64) { confirmed = append(confirmed, ids...) })

	require.NoError(t, r.proc.OnBlockApplied([]*transactions.Transaction{tx}))

	has, err := r.store.Contains(tx.ID)
	require.NoError(t, err)
	require.False(t, has)

	inLedger, err := r.ledger.Contains(tx.ID)
	require.NoError(t, err)
	require.True(t, inLedger)

	require.Equal(t, []uint64{tx.ID}, removed)
	require.Equal(t, []uint64{tx.ID}, confirmed)
}

// P3: OnBlockUndone re-adds a block's transactions to the mempool and
// unmarks them in the ledger index.
func TestOnBlockUndoneReinstatesUnconfirmed(t *testing.T) {
	r := newTestRig(t)
	r.applier.fund(1, 1000)

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())
	_, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)
	require.NoError(t, r.proc.OnBlockApplied([]*transactions.Transaction{tx}))

	var addedUnconfirmed []uint64
	r.bus.Subscribe(eventbus.AddedUnconfirmed, func(ids []uint64) { addedUnconfirmed = append(addedUnconfirmed, ids...) })

	require.NoError(t, r.proc.OnBlockUndone([]*transactions.Transaction{tx}))

	has, err := r.store.Contains(tx.ID)
	require.NoError(t, err)
	require.True(t, has)

	inLedger, err := r.ledger.Contains(tx.ID)
	require.NoError(t, err)
	require.False(t, inLedger)

	require.Equal(t, []uint64{tx.ID}, addedUnconfirmed)
	require.Equal(t, 1, r.applier.undoCount(tx.ID))
}

// P6: processing the same accepted transaction twice is idempotent — the
// mempool gains exactly one row and AddedUnconfirmed fires exactly once
// with one id.
func TestProcessTransactionsIsIdempotentForRepeatSubmission(t *testing.T) {
	r := newTestRig(t)
	r.applier.fund(1, 1000)

	var addedBatches [][]uint64
	r.bus.Subscribe(eventbus.AddedUnconfirmed, func(ids []uint64) { addedBatches = append(addedBatches, ids) })

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())

	_, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)
	_, err = r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)

	n, err := r.store.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// The resubmission is dropped by the duplicate gate before it ever
	// reaches the event bus, so only the first acceptance is published
	// (empty batches are never emitted).
	require.Len(t, addedBatches, 1)
	require.Equal(t, []uint64{tx.ID}, addedBatches[0])
}

// RemoveUnconfirmed evicts a mempool entry and reverses its applied state,
// exercising the bytesToTx round trip.
func TestRemoveUnconfirmedEvictsAndUndoes(t *testing.T) {
	r := newTestRig(t)
	r.applier.fund(1, 1000)

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())
	_, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)

	require.NoError(t, r.proc.RemoveUnconfirmed([]uint64{tx.ID}))

	has, err := r.store.Contains(tx.ID)
	require.NoError(t, err)
	require.False(t, has)
	require.Equal(t, 1, r.applier.undoCount(tx.ID))
}

// A failing chain-downloading gate halts the batch before any storage
// mutation and forwards nothing.
func TestProcessTransactionsStopsWhileChainDownloading(t *testing.T) {
	r := newTestRig(t)
	r.chain.downloading = true
	r.applier.fund(1, 1000)

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())

	accepted, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)
	require.Empty(t, accepted)

	has, err := r.store.Contains(tx.ID)
	require.NoError(t, err)
	require.False(t, has)
}

// A chain height below the configured activation threshold halts the
// batch exactly like an in-progress download.
func TestProcessTransactionsStopsBelowDigitalGoodsStoreBlock(t *testing.T) {
	r := newTestRigAtHeight(t, 100)
	r.chain.height = 50
	r.applier.fund(1, 1000)

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())

	accepted, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)
	require.Empty(t, accepted)

	has, err := r.store.Contains(tx.ID)
	require.NoError(t, err)
	require.False(t, has)
}

// Once the chain reaches the activation height, processing resumes.
func TestProcessTransactionsResumesAtDigitalGoodsStoreBlock(t *testing.T) {
	r := newTestRigAtHeight(t, 100)
	r.chain.height = 100
	r.applier.fund(1, 1000)

	tx := newTestTx(1, 1, 100, 1, r.clk.Now())

	accepted, err := r.proc.ProcessTransactions([]*transactions.Transaction{tx}, false)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
}
