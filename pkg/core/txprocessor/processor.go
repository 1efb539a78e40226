// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package txprocessor implements TransactionProcessor: validation, mempool
// insertion/removal, peer gossip, and fork reconciliation, all coordinated
// under a single explicit blockchain lock passed in at construction time
// alongside the mempool, peers, and clock handles rather than held as
// package-level singletons.
package txprocessor

import (
	"bytes"
	"sync"

	"github.com/monetary-system/msnode/pkg/clock"
	"github.com/monetary-system/msnode/pkg/config"
	"github.com/monetary-system/msnode/pkg/core/ledgerindex"
	"github.com/monetary-system/msnode/pkg/core/mempool"
	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/errors"
	"github.com/monetary-system/msnode/pkg/log"
	"github.com/monetary-system/msnode/pkg/p2p/peer"
	"github.com/monetary-system/msnode/pkg/util/nativeutils/eventbus"
)

var logP = log.WithPrefix("txprocessor")

// Processor is TransactionProcessor.
type Processor struct {
	// blockchainLock serializes every mutation that must be consistent
	// with the confirmed ledger. Acquired per-transaction in
	// ProcessTransactions, and for the whole of OnBlockApplied,
	// OnBlockUndone, ApplyUnconfirmedBulk and RemoveUnconfirmed.
	blockchainLock *sync.Mutex

	store       *mempool.Store
	ledger      *ledgerindex.Index
	localOrigin *mempool.LocalOriginTracker
	bus         *eventbus.EventBus
	peers       peer.Peers
	clock       clock.Clock

	applier  LedgerApplier
	verifier SignatureVerifier
	accounts AccountExistence
	self     SelfValidator
	chain    ChainState

	drift config.Drift
	// digitalGoodsStoreBlock is the activation height below which the
	// whole batch halts, same as an in-progress chain download.
	digitalGoodsStoreBlock uint64
}

// New builds a Processor from its collaborators. lock is owned by the
// caller and shared with any other subsystem that must serialize with the
// confirmed ledger.
func New(
	lock *sync.Mutex,
	store *mempool.Store,
	ledger *ledgerindex.Index,
	localOrigin *mempool.LocalOriginTracker,
	bus *eventbus.EventBus,
	peers peer.Peers,
	clk clock.Clock,
	applier LedgerApplier,
	verifier SignatureVerifier,
	accounts AccountExistence,
	self SelfValidator,
	chain ChainState,
	drift config.Drift,
	digitalGoodsStoreBlock uint64,
) *Processor {
	return &Processor{
		blockchainLock:         lock,
		store:                  store,
		ledger:                 ledger,
		localOrigin:            localOrigin,
		bus:                    bus,
		peers:                  peers,
		clock:                  clk,
		applier:                applier,
		verifier:               verifier,
		accounts:               accounts,
		self:                   self,
		chain:                  chain,
		drift:                  drift,
		digitalGoodsStoreBlock: digitalGoodsStoreBlock,
	}
}

// Broadcast is the local-API entry point for submitting a new transaction.
func (p *Processor) Broadcast(tx *transactions.Transaction) error {
	if err := p.verifier.Verify(tx); err != nil {
		return errors.NotValid("signature")
	}

	accepted, err := p.ProcessTransactions([]*transactions.Transaction{tx}, true)
	if err != nil {
		return err
	}

	for _, a := range accepted {
		if a.ID == tx.ID {
			p.localOrigin.Put(tx)
			logP.WithField("txid", tx.ID).Info("accepted locally broadcast transaction")
			return nil
		}
	}

	return errors.NotValid("double spending")
}

// ProcessPeerBatch self-validates a batch of already-decoded peer
// transactions before handing them to ProcessTransactions, then suppresses
// further local rebroadcast of anything this node itself originated.
//
// Wire JSON decoding into transactions.Transaction is the caller's
// responsibility — this subsystem only consumes the parsed fields, not the
// full encoding — so this method takes pre-parsed transactions.
func (p *Processor) ProcessPeerBatch(txs []*transactions.Transaction, sendToPeers bool) error {
	for _, tx := range txs {
		if err := p.self.Validate(tx); err != nil {
			if errors.Is(err, errors.KindNotCurrentlyValid) || errors.Is(err, errors.KindNotYetEnabled) {
				// Transient failures should not poison gossip: swallow and
				// still forward to ProcessTransactions, which runs
				// apply_unconfirmed as the next correctness gate.
				continue
			}
			return err
		}
	}

	if _, err := p.ProcessTransactions(txs, sendToPeers); err != nil {
		return err
	}

	for _, tx := range txs {
		p.localOrigin.Remove(tx.ID)
	}

	return nil
}

// ProcessTransactions is the core validation/insertion loop. Each
// transaction is processed under its own storage transaction while the
// blockchain lock is held; a failing transaction does not roll back earlier
// accepted ones within the same batch — partial success is permitted.
func (p *Processor) ProcessTransactions(batch []*transactions.Transaction, sendToPeers bool) ([]*transactions.Transaction, error) {
	var (
		addedUnconfirmed    []*transactions.Transaction
		addedDoubleSpending []*transactions.Transaction
		forwardQueue        []*transactions.Transaction
	)

	for _, tx := range batch {
		now := p.clock.Now()
		if tx.Timestamp > now+p.drift.TimestampToleranceSeconds ||
			tx.Expiration() < now ||
			tx.DeadlineMin > p.drift.MaxDeadlineMinutes ||
			tx.Version < 1 {
			continue // drift gate: silent reject
		}

		accepted, doubleSpent, forward, stop, err := p.processOne(tx, sendToPeers)
		if err != nil {
			return nil, err
		}
		if stop {
			break // chain still downloading / below activation height
		}
		if accepted {
			addedUnconfirmed = append(addedUnconfirmed, tx)
			if forward {
				forwardQueue = append(forwardQueue, tx)
			}
		} else if doubleSpent {
			addedDoubleSpending = append(addedDoubleSpending, tx)
		}
	}

	if len(forwardQueue) > 0 {
		p.peers.SendToSome(forwardQueue)
	}

	p.bus.Publish(eventbus.AddedUnconfirmed, ids(addedUnconfirmed))
	p.bus.Publish(eventbus.AddedDoubleSpending, ids(addedDoubleSpending))

	return addedUnconfirmed, nil
}

// processOne runs one transaction through the blockchain-lock-protected
// critical section. The three named bool returns are whether it was
// accepted, whether it was a double-spend, and whether it should be
// forwarded to peers; stop signals the whole batch must halt (premature
// chain state).
func (p *Processor) processOne(tx *transactions.Transaction, sendToPeers bool) (accepted, doubleSpent, forward, stop bool, err error) {
	p.blockchainLock.Lock()
	defer p.blockchainLock.Unlock()

	if p.chain.Downloading() || p.chain.Height() < p.digitalGoodsStoreBlock {
		return false, false, false, true, nil
	}

	dbTx, err := p.store.Begin()
	if err != nil {
		return false, false, false, false, err
	}

	confirmed, cErr := p.ledger.Contains(tx.ID)
	if cErr != nil {
		dbTx.Rollback()
		return false, false, false, false, cErr
	}

	mempoolHas, mErr := p.store.Contains(tx.ID)
	if mErr != nil {
		dbTx.Rollback()
		return false, false, false, false, mErr
	}

	if confirmed || mempoolHas {
		dbTx.Rollback()
		return false, false, false, false, nil
	}

	if err := p.verifier.Verify(tx); err != nil {
		if p.accounts != nil {
			if exists, _ := p.accounts.AccountExists(tx.SenderID); exists {
				logP.WithField("txid", tx.ID).WithError(err).Error("signature verification failed")
			}
		}
		dbTx.Rollback()
		return false, false, false, false, nil
	}

	ok, aErr := p.applier.ApplyUnconfirmed(tx)
	if aErr != nil {
		dbTx.Rollback()
		return false, false, false, false, aErr
	}

	if !ok {
		if err := dbTx.Commit(); err != nil {
			return false, false, false, false, err
		}
		return false, true, false, false, nil
	}

	if sendToPeers {
		if p.localOrigin.Contains(tx.ID) {
			p.localOrigin.Remove(tx.ID)
		} else {
			forward = true
		}
	}

	if err := p.store.Insert(dbTx, mempool.Entry{ID: tx.ID, Expiration: tx.Expiration(), Bytes: tx.Bytes}); err != nil {
		dbTx.Rollback()
		return false, false, false, false, err
	}

	if err := dbTx.Commit(); err != nil {
		return false, false, false, false, err
	}

	return true, false, forward, false, nil
}

// OnBlockApplied clears confirmed transactions out of the mempool.
func (p *Processor) OnBlockApplied(b []*transactions.Transaction) error {
	var addedConfirmed, removedUnconfirmed []*transactions.Transaction

	p.blockchainLock.Lock()
	defer p.blockchainLock.Unlock()

	for _, tx := range b {
		addedConfirmed = append(addedConfirmed, tx)
		if err := p.ledger.MarkConfirmed(tx.ID); err != nil {
			return err
		}

		has, err := p.store.Contains(tx.ID)
		if err != nil {
			return err
		}
		if !has {
			continue
		}

		dbTx, err := p.store.Begin()
		if err != nil {
			return err
		}
		if err := p.store.Delete(dbTx, tx.ID); err != nil {
			dbTx.Rollback()
			return err
		}
		if err := dbTx.Commit(); err != nil {
			return err
		}
		removedUnconfirmed = append(removedUnconfirmed, tx)
	}

	p.bus.Publish(eventbus.AddedConfirmed, ids(addedConfirmed))
	p.bus.Publish(eventbus.RemovedUnconfirmed, ids(removedUnconfirmed))
	return nil
}

// OnBlockUndone re-introduces a rolled-back block's transactions into the
// mempool.
func (p *Processor) OnBlockUndone(b []*transactions.Transaction) error {
	var addedUnconfirmed []*transactions.Transaction

	p.blockchainLock.Lock()
	defer p.blockchainLock.Unlock()

	for _, tx := range b {
		if err := p.ledger.Unmark(tx.ID); err != nil {
			return err
		}
		if err := p.applier.UndoUnconfirmed(tx); err != nil {
			return err
		}

		dbTx, err := p.store.Begin()
		if err != nil {
			return err
		}
		if err := p.store.Insert(dbTx, mempool.Entry{ID: tx.ID, Expiration: tx.Expiration(), Bytes: tx.Bytes}); err != nil {
			dbTx.Rollback()
			return err
		}
		if err := dbTx.Commit(); err != nil {
			return err
		}
		addedUnconfirmed = append(addedUnconfirmed, tx)
	}

	p.bus.Publish(eventbus.AddedUnconfirmed, ids(addedUnconfirmed))
	return nil
}

// ApplyUnconfirmedBulk re-applies unconfirmed state for the given ids,
// evicting any that no longer apply.
func (p *Processor) ApplyUnconfirmedBulk(txIDs []uint64) error {
	var removed []*transactions.Transaction

	p.blockchainLock.Lock()
	defer p.blockchainLock.Unlock()

	for _, id := range txIDs {
		entry, err := p.store.Get(id)
		if err != nil {
			return err
		}
		if entry == nil {
			continue
		}

		r, err := bytesToTx(entry)
		if err != nil {
			return err
		}

		ok, err := p.applier.ApplyUnconfirmed(r)
		if err != nil {
			return err
		}
		if ok {
			continue
		}

		dbTx, err := p.store.Begin()
		if err != nil {
			return err
		}
		if err := p.store.Delete(dbTx, id); err != nil {
			dbTx.Rollback()
			return err
		}
		if err := dbTx.Commit(); err != nil {
			return err
		}
		removed = append(removed, r)
	}

	p.bus.Publish(eventbus.RemovedUnconfirmed, ids(removed))
	return nil
}

// UndoAllUnconfirmed calls UndoUnconfirmed on every mempool entry without
// deleting any rows, returning the touched id set — used when the ledger
// is about to reapply them.
func (p *Processor) UndoAllUnconfirmed() (map[uint64]struct{}, error) {
	touched := make(map[uint64]struct{})

	cursor, err := p.store.IterAll()
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	for cursor.Next() {
		entry, err := cursor.Entry()
		if err != nil {
			return nil, err
		}
		tx, err := bytesToTx(&entry)
		if err != nil {
			return nil, err
		}
		if err := p.applier.UndoUnconfirmed(tx); err != nil {
			return nil, err
		}
		touched[entry.ID] = struct{}{}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return touched, nil
}

// RemoveUnconfirmed deletes the given ids from the mempool and undoes
// their unconfirmed state, under the blockchain lock and a single storage
// transaction.
func (p *Processor) RemoveUnconfirmed(txIDs []uint64) error {
	var removed []*transactions.Transaction

	p.blockchainLock.Lock()
	defer p.blockchainLock.Unlock()

	dbTx, err := p.store.Begin()
	if err != nil {
		return err
	}

	for _, id := range txIDs {
		entry, err := p.store.Get(id)
		if err != nil {
			dbTx.Rollback()
			return err
		}
		if entry == nil {
			continue
		}

		tx, err := bytesToTx(entry)
		if err != nil {
			dbTx.Rollback()
			return err
		}

		if err := p.store.Delete(dbTx, id); err != nil {
			dbTx.Rollback()
			return err
		}
		if err := p.applier.UndoUnconfirmed(tx); err != nil {
			dbTx.Rollback()
			return err
		}

		removed = append(removed, tx)
	}

	if err := dbTx.Commit(); err != nil {
		return err
	}

	p.bus.Publish(eventbus.RemovedUnconfirmed, ids(removed))
	return nil
}

func ids(txs []*transactions.Transaction) []uint64 {
	out := make([]uint64, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func bytesToTx(e *mempool.Entry) (*transactions.Transaction, error) {
	tx, err := transactions.Unmarshal(bytes.NewReader(e.Bytes))
	if err != nil {
		return nil, errors.Fatal("corrupted mempool row for id %d: %v", e.ID, err)
	}
	tx.ID = e.ID
	return tx, nil
}
