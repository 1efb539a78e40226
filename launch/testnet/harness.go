// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package testnet

import (
	"io/ioutil"
	"sync"

	yaml "gopkg.in/yaml.v2"

	"github.com/monetary-system/msnode/pkg/clock"
	"github.com/monetary-system/msnode/pkg/config"
	"github.com/monetary-system/msnode/pkg/core/ledgerindex"
	"github.com/monetary-system/msnode/pkg/core/mempool"
	"github.com/monetary-system/msnode/pkg/core/txprocessor"
	"github.com/monetary-system/msnode/pkg/p2p/peer"
	"github.com/monetary-system/msnode/pkg/util/nativeutils/eventbus"
)

// PeerSeed describes one harness node's identity. This is harness-only
// scaffolding, not a protocol the production node speaks.
type PeerSeed struct {
	ID            string `yaml:"id"`
	MempoolDBPath string `yaml:"mempool_db_path"`
}

// Seeds is the top-level harness config document.
type Seeds struct {
	Peers []PeerSeed `yaml:"peers"`
}

// LoadSeeds reads a YAML peer-seed file of the form:
//
//	peers:
//	  - id: node-a
//	    mempool_db_path: /tmp/node-a.db
//	  - id: node-b
//	    mempool_db_path: /tmp/node-b.db
func LoadSeeds(path string) (Seeds, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return Seeds{}, err
	}

	var s Seeds
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Seeds{}, err
	}
	return s, nil
}

// Harness owns the lifetime of every node it spins up: in-memory fabric,
// one Processor + mempool.Store + ledgerindex.Index per seed.
type Harness struct {
	Fabric *Fabric
	Nodes  map[peer.ID]*Node

	stores  []*mempool.Store
	ledgers []*ledgerindex.Index
	locks   []*sync.Mutex
}

// Close releases every node's storage handles.
func (h *Harness) Close() error {
	var first error
	for _, s := range h.stores {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	for _, l := range h.ledgers {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build constructs a Harness from seeds using the given factory to assemble
// each node's collaborators (signature verification, ledger application,
// chain state) — those remain external to this subsystem so the harness
// cannot default them sensibly; callers supply fakes.
func Build(seeds Seeds, collab CollaboratorFactory) (*Harness, error) {
	h := &Harness{
		Fabric: NewFabric(),
		Nodes:  make(map[peer.ID]*Node),
	}

	for _, seed := range seeds.Peers {
		id := peer.ID(seed.ID)

		store, err := mempool.Open(seed.MempoolDBPath)
		if err != nil {
			return nil, err
		}
		h.stores = append(h.stores, store)

		ledger, err := ledgerindex.Open(seed.MempoolDBPath + ".ledgerindex")
		if err != nil {
			return nil, err
		}
		h.ledgers = append(h.ledgers, ledger)

		lock := &sync.Mutex{}
		h.locks = append(h.locks, lock)

		localOrigin := mempool.NewLocalOriginTracker()
		bus := collab.EventBus()
		view := &View{fabric: h.Fabric, self: id}

		applier, verifier, accounts, self, chain, clk, drift, digitalGoodsStoreBlock := collab.For(id)

		proc := txprocessor.New(lock, store, ledger, localOrigin, bus, view, clk, applier, verifier, accounts, self, chain, drift, digitalGoodsStoreBlock)

		node := NewNode(proc)
		h.Nodes[id] = node
		h.Fabric.Register(id, node)
	}

	return h, nil
}

// CollaboratorFactory supplies the out-of-scope collaborators each harness
// node needs: ledger application, signature verification, account
// existence, self-validation, and chain state. Production wiring and tests
// each provide their own implementation.
type CollaboratorFactory interface {
	EventBus() *eventbus.EventBus
	For(id peer.ID) (
		applier txprocessor.LedgerApplier,
		verifier txprocessor.SignatureVerifier,
		accounts txprocessor.AccountExistence,
		self txprocessor.SelfValidator,
		chain txprocessor.ChainState,
		clk clock.Clock,
		drift config.Drift,
		digitalGoodsStoreBlock uint64,
	)
}
