// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Command msnoded starts the Monetary System unconfirmed-transaction
// processor: mempool store, confirmed-ledger index, event bus, and the
// three background workers, all sharing one blockchain mutex — there are
// no implicit singletons here; every subsystem is constructed once and
// handed the lock, mempool handle, peers handle, and clock it needs.
//
// The block/consensus engine, signature primitives, peer wire framing, and
// account ledger are external collaborators out of scope for this
// subsystem; main wires minimal stand-ins for them so the binary runs
// standalone, and documents the interfaces a production deployment
// replaces them through.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/monetary-system/msnode/pkg/clock"
	"github.com/monetary-system/msnode/pkg/config"
	"github.com/monetary-system/msnode/pkg/core/ledgerindex"
	"github.com/monetary-system/msnode/pkg/core/mempool"
	"github.com/monetary-system/msnode/pkg/core/txprocessor"
	"github.com/monetary-system/msnode/pkg/core/workers"
	"github.com/monetary-system/msnode/pkg/log"
	"github.com/monetary-system/msnode/pkg/metrics"
	"github.com/monetary-system/msnode/pkg/money"
	"github.com/monetary-system/msnode/pkg/money/capability"
	"github.com/monetary-system/msnode/pkg/money/hashalgo"
	"github.com/monetary-system/msnode/pkg/money/naming"
	"github.com/monetary-system/msnode/pkg/util/nativeutils/eventbus"
)

func main() {
	tomlPath := flag.String("config", "", "path to node.toml")
	propsPath := flag.String("properties", "", "path to node.properties overrides")
	metricsAddr := flag.String("metrics-addr", "127.0.0.1:9190", "address for the /metrics endpoint")
	flag.Parse()

	if err := config.Load(*tomlPath, *propsPath); err != nil {
		log.WithPrefix("msnoded").WithError(err).Fatal("failed to load configuration")
	}
	cfg := config.Get()
	log.Setup(cfg.Logging)

	logger := log.WithPrefix("msnoded")

	store, err := mempool.Open(cfg.Storage.MempoolDBPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to open mempool store")
	}
	defer store.Close()

	ledger, err := ledgerindex.Open(cfg.Storage.LedgerIndexDBPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to open ledger index")
	}
	defer ledger.Close()

	blockchainLock := &sync.Mutex{}
	bus := eventbus.New()
	localOrigin := mempool.NewLocalOriginTracker()
	sysClock := clock.System{}
	peers := noopPeers{}

	nameValidator := naming.New(cfg.Naming, noopRegistry{})
	selfValidator := money.NewValidator(capability.Context{
		CurrentHeight:       0,
		MonetarySystemBlock: cfg.Heights.MonetarySystemBlock,
		ResolveAlgorithm:    hashalgo.Known,
	}, noopRegistry{}, nameValidator, nil)

	proc := txprocessor.New(
		blockchainLock, store, ledger, localOrigin, bus, peers, sysClock,
		noopApplier{}, noopVerifier{}, noopAccounts{}, selfValidator, noopChain{},
		cfg.Drift, cfg.Heights.DigitalGoodsStoreBlock,
	)

	bus.Subscribe(eventbus.AddedUnconfirmed, func(ids []uint64) {
		logger.WithField("count", len(ids)).Debug("added unconfirmed")
	})
	bus.Subscribe(eventbus.RemovedUnconfirmed, func(ids []uint64) {
		logger.WithField("count", len(ids)).Debug("removed unconfirmed")
	})
	bus.Subscribe(eventbus.AddedDoubleSpending, func(ids []uint64) {
		logger.WithField("count", len(ids)).Warn("double spending detected")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	startWorker := func(run func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx)
		}()
	}

	sweeper := workers.NewSweeper(store, bus, sysClock, blockchainLock, time.Duration(cfg.Workers.SweepSeconds)*time.Second)
	rebroadcaster := workers.NewRebroadcaster(localOrigin, ledger, peers, sysClock, cfg.Drift.RebroadcastStalenessSecs, time.Duration(cfg.Workers.RebroadcastSeconds)*time.Second)
	puller := workers.NewPeerPuller(peers, proc, time.Duration(cfg.Workers.PeerPullSeconds)*time.Second, 5*time.Second)

	startWorker(sweeper.Run)
	startWorker(rebroadcaster.Run)
	startWorker(puller.Run)

	go func() {
		g := metrics.Gauges{Store: store, LocalOrigin: localOrigin}
		if err := metrics.ListenAndServe(*metricsAddr, g); err != nil {
			logger.WithError(err).Error("metrics endpoint stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()
	wg.Wait()
}
