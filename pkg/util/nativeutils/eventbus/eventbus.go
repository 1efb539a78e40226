// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package eventbus implements the typed, synchronous mempool-mutation
// fan-out. It adapts the teacher's pkg/util/nativeutils/eventbus
// Subscribe/Unsubscribe(id) shape to four fixed event kinds instead of an
// open string-topic space, since this core's listener surface is closed.
//
// The listener list uses copy-on-write semantics, since add/remove are
// rare compared to publish: Subscribe/Unsubscribe take a mutex and install
// a freshly copied slice; Publish reads the current slice without locking.
package eventbus

import (
	"sync"
	"sync/atomic"

	"github.com/monetary-system/msnode/pkg/log"
)

var logEB = log.WithPrefix("eventbus")

// Topic identifies one of the four mempool mutation event kinds.
type Topic int

const (
	AddedUnconfirmed Topic = iota
	RemovedUnconfirmed
	AddedConfirmed
	AddedDoubleSpending
	topicCount
)

func (t Topic) String() string {
	switch t {
	case AddedUnconfirmed:
		return "AddedUnconfirmed"
	case RemovedUnconfirmed:
		return "RemovedUnconfirmed"
	case AddedConfirmed:
		return "AddedConfirmed"
	case AddedDoubleSpending:
		return "AddedDoubleSpending"
	default:
		return "Unknown"
	}
}

// Listener receives a non-empty batch of transaction ids for one mutation
// event. batch is never empty: empty batches are never emitted.
type Listener func(batch []uint64)

type entry struct {
	id       uint32
	listener Listener
}

// EventBus is the typed, four-topic mempool-mutation fan-out.
type EventBus struct {
	mu        sync.Mutex // guards writes to listeners and nextID
	nextID    uint32
	listeners [topicCount]atomic.Value // each holds []entry
}

// New returns an empty EventBus.
func New() *EventBus {
	b := &EventBus{}
	for t := Topic(0); t < topicCount; t++ {
		b.listeners[t].Store([]entry{})
	}
	return b
}

// Subscribe registers listener on topic and returns an id usable with
// Unsubscribe.
func (b *EventBus) Subscribe(topic Topic, listener Listener) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	old := b.listeners[topic].Load().([]entry)
	next := make([]entry, len(old), len(old)+1)
	copy(next, old)
	next = append(next, entry{id: id, listener: listener})
	b.listeners[topic].Store(next)

	return id
}

// Unsubscribe removes the listener registered under id on topic, if any.
func (b *EventBus) Unsubscribe(topic Topic, id uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	old := b.listeners[topic].Load().([]entry)
	next := make([]entry, 0, len(old))
	found := false
	for _, e := range old {
		if e.id == id {
			found = true
			continue
		}
		next = append(next, e)
	}
	b.listeners[topic].Store(next)

	logEB.WithField("found", found).WithField("topic", topic).Traceln("unsubscribing")
}

// Publish synchronously invokes every listener registered on topic with
// batch, on the calling goroutine — the same goroutine that completed the
// mutation — after the caller's storage transaction has committed. Empty
// batches are dropped without notifying listeners. Each listener is
// invoked under a recover() so one listener's panic cannot break
// notification ordering for the rest.
func (b *EventBus) Publish(topic Topic, batch []uint64) {
	if len(batch) == 0 {
		return
	}

	entries := b.listeners[topic].Load().([]entry)
	for _, e := range entries {
		invoke(e.listener, batch, topic)
	}
}

func invoke(l Listener, batch []uint64, topic Topic) {
	defer func() {
		if r := recover(); r != nil {
			logEB.WithField("topic", topic).WithField("panic", r).Error("event listener panicked")
		}
	}()
	l(batch)
}
